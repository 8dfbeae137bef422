package mail

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg *gomail.Msg) error
}

// Encryption modes understood by SMTPTransport.
const (
	EncryptionNone = ""
	EncryptionSSL  = "ssl"
	EncryptionTLS  = "tls"
)

// SMTPTransport delivers over SMTP. A new connection is opened per send.
type SMTPTransport struct {
	host       string
	port       int
	encryption string
	username   string
	password   string
	authMode   string
	timeout    time.Duration
}

// NewSMTPTransport returns a transport for localhost:25 without encryption.
func NewSMTPTransport() *SMTPTransport {
	return &SMTPTransport{host: "localhost", port: 25}
}

func (t *SMTPTransport) SetHost(host string) *SMTPTransport {
	t.host = host
	return t
}

func (t *SMTPTransport) SetPort(port int) *SMTPTransport {
	t.port = port
	return t
}

// SetEncryption accepts "ssl", "tls" or "" (opportunistic STARTTLS).
func (t *SMTPTransport) SetEncryption(enc string) *SMTPTransport {
	t.encryption = strings.ToLower(enc)
	return t
}

func (t *SMTPTransport) SetUsername(user string) *SMTPTransport {
	t.username = user
	return t
}

func (t *SMTPTransport) SetPassword(pass string) *SMTPTransport {
	t.password = pass
	return t
}

// SetAuthMode selects the SMTP auth mechanism, e.g. plain, login or cram-md5.
// "none" disables authentication even when a username is set.
func (t *SMTPTransport) SetAuthMode(mode string) *SMTPTransport {
	t.authMode = mode
	return t
}

func (t *SMTPTransport) SetTimeout(d time.Duration) *SMTPTransport {
	t.timeout = d
	return t
}

func (t *SMTPTransport) Host() string       { return t.host }
func (t *SMTPTransport) Port() int          { return t.port }
func (t *SMTPTransport) Encryption() string { return t.encryption }
func (t *SMTPTransport) Username() string   { return t.username }
func (t *SMTPTransport) AuthMode() string   { return t.authMode }

// ClientOptions translates the transport settings into go-mail options.
func (t *SMTPTransport) ClientOptions() []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(t.port)}
	switch t.encryption {
	case EncryptionSSL:
		opts = append(opts, gomail.WithSSL())
	case EncryptionTLS:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if t.username != "" && !strings.EqualFold(t.authMode, "none") {
		mode := t.authMode
		if mode == "" {
			mode = string(gomail.SMTPAuthPlain)
		}
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthType(strings.ToUpper(mode))),
			gomail.WithUsername(t.username),
			gomail.WithPassword(t.password),
		)
	}
	if t.timeout > 0 {
		opts = append(opts, gomail.WithTimeout(t.timeout))
	}
	return opts
}

// Client builds a go-mail client without connecting.
func (t *SMTPTransport) Client() (*gomail.Client, error) {
	return gomail.NewClient(t.host, t.ClientOptions()...)
}

// Send dials the server, delivers msg and closes the connection.
func (t *SMTPTransport) Send(ctx context.Context, msg *gomail.Msg) error {
	c, err := t.Client()
	if err != nil {
		return fmt.Errorf("smtp client %s:%d: %w", t.host, t.port, err)
	}
	return c.DialAndSendWithContext(ctx, msg)
}

// DefaultSendmailCommand is used when no command is configured.
const DefaultSendmailCommand = "/usr/sbin/sendmail -oi -t"

// SendmailTransport pipes the message into a sendmail-compatible command.
// The command is used as given, so it must read recipients from the
// headers (-t) or accept them some other way.
type SendmailTransport struct {
	command string
}

// NewSendmailTransport returns a transport running command, or
// DefaultSendmailCommand when command is empty.
func NewSendmailTransport(command string) *SendmailTransport {
	if strings.TrimSpace(command) == "" {
		command = DefaultSendmailCommand
	}
	return &SendmailTransport{command: command}
}

func (t *SendmailTransport) Command() string { return t.command }

func (t *SendmailTransport) Send(ctx context.Context, msg *gomail.Msg) error {
	fields := strings.Fields(t.command)
	return pipe(ctx, fields[0], fields[1:], msg)
}

// DefaultMailBinary is the local delivery agent used by MailTransport.
const DefaultMailBinary = "/usr/sbin/sendmail"

// MailTransport hands the message to the local delivery agent the way the
// system mail facility does: recipients from headers, a lone dot does not
// end input, and Extra is appended as additional parameters.
type MailTransport struct {
	Binary string
	Extra  []string
}

// NewMailTransport returns a local delivery transport with extra parameters.
func NewMailTransport(extra ...string) *MailTransport {
	return &MailTransport{Binary: DefaultMailBinary, Extra: extra}
}

// Args returns the delivery agent arguments.
func (t *MailTransport) Args() []string {
	return append([]string{"-t", "-i"}, t.Extra...)
}

func (t *MailTransport) Send(ctx context.Context, msg *gomail.Msg) error {
	bin := t.Binary
	if bin == "" {
		bin = DefaultMailBinary
	}
	return pipe(ctx, bin, t.Args(), msg)
}

func pipe(ctx context.Context, bin string, args []string, msg *gomail.Msg) error {
	var body bytes.Buffer
	if _, err := msg.WriteTo(&body); err != nil {
		return fmt.Errorf("render message: %w", err)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = &body
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return fmt.Errorf("%s: %w: %s", bin, err, s)
		}
		return fmt.Errorf("%s: %w", bin, err)
	}
	return nil
}
