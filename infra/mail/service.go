package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/infra/logger"
)

// ErrNoTransport is wrapped in a ConstructionError when the configured
// transport cannot be built.
var ErrNoTransport = errors.New("mail: no transport")

// Constructor builds an object from positional arguments.
type Constructor func(args ...any) (any, error)

// Service builds mail objects from a configuration section. It is safe for
// concurrent use.
type Service struct {
	params Params
	log    logger.Logger

	mu     sync.Mutex
	mailer *Mailer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used by the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New returns a service for the given section. Absent keys take the values
// of Defaults.
func New(sec adapter.Section, opts ...Option) (*Service, error) {
	p, err := DecodeParams(sec)
	if err != nil {
		return nil, adapter.Constructing("mail", err)
	}
	s := &Service{params: p, log: logger.NopLogger{}}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Params returns the decoded configuration.
func (s *Service) Params() Params { return s.params }

// Proxy returns an unbound proxy over the service.
func (s *Service) Proxy() Proxy { return Proxy{svc: s} }

// Synthetic returns the configuration-aware constructor registered under a
// canonical name (Message, SmtpTransport, SendmailTransport, MailTransport
// or Mailer).
func (s *Service) Synthetic(canonical string) (Constructor, bool) {
	switch canonical {
	case "Message":
		return func(in ...any) (any, error) { return s.message(in) }, true
	case "SmtpTransport":
		return func(in ...any) (any, error) { return s.smtpTransport(in) }, true
	case "SendmailTransport":
		return func(in ...any) (any, error) { return s.sendmailTransport(in) }, true
	case "MailTransport":
		return func(in ...any) (any, error) { return s.mailTransport(in) }, true
	case "Mailer":
		return func(in ...any) (any, error) { return s.Mailer(in...) }, true
	}
	return nil, false
}

// construct resolves a canonical name to a synthetic constructor first and
// to the class default factory otherwise.
func (s *Service) construct(canonical string, in []any) (any, error) {
	if c, ok := s.Synthetic(canonical); ok {
		return c(in...)
	}
	return CallStatic(ClassPrefix+canonical, DefaultFactory, in...)
}

// message accepts the optional subject, body and content type of the
// MailMessage factory on top of the configured headers.
func (s *Service) message(in []any) (*Message, error) {
	a := args(in)
	subject, err := a.str(0)
	if err != nil {
		return nil, err
	}
	body, err := a.str(1)
	if err != nil {
		return nil, err
	}
	ct, err := a.str(2)
	if err != nil {
		return nil, err
	}
	m := s.Message()
	if subject != "" {
		m.SetSubject(subject)
	}
	if body != "" || ct != "" {
		m.SetBody(body, ct)
	}
	return m, nil
}

type headerField struct {
	email    string
	name     string
	withName bool
	set      func(m *Message, email, name string)
}

// Message returns a new message with the configured default headers.
func (s *Service) Message() *Message {
	p := s.params
	m := NewMessage().SetCharset(p.Charset)
	fields := []headerField{
		{email: p.ReturnTo, set: func(m *Message, e, _ string) { m.SetReturnTo(e) }},
		{email: p.From, name: p.FromName, withName: true, set: func(m *Message, e, n string) { m.SetFrom(e, n) }},
		{email: p.Sender, set: func(m *Message, e, _ string) { m.SetSender(e) }},
		{email: p.ReplyTo, name: p.ReplyToName, withName: true, set: func(m *Message, e, n string) { m.SetReplyTo(e, n) }},
		{email: p.Bcc, name: p.BccName, withName: true, set: func(m *Message, e, n string) { m.SetBcc(e, n) }},
	}
	for _, f := range fields {
		if f.email == "" {
			continue
		}
		name := ""
		if f.withName {
			name = f.name
		}
		f.set(m, f.email, name)
	}
	return m
}

// SMTPTransport returns an SMTP transport. Non-empty arguments take
// precedence over the host, port and ssl keys; credentials always come from
// the configuration.
func (s *Service) SMTPTransport(host string, port int, ssl string) *SMTPTransport {
	p := s.params
	t := NewSMTPTransport()
	if host = firstNonEmpty(host, p.Host); host != "" {
		t.SetHost(host)
	}
	if port == 0 {
		port = p.Port
	}
	if port != 0 {
		t.SetPort(port)
	}
	if ssl = firstNonEmpty(ssl, p.SSL); ssl != "" {
		t.SetEncryption(ssl)
	}
	if p.Username != "" {
		t.SetUsername(p.Username)
	}
	if p.Password != "" {
		t.SetPassword(p.Password)
	}
	if p.AuthMode != "" {
		t.SetAuthMode(p.AuthMode)
	}
	if p.Timeout > 0 {
		t.SetTimeout(p.DialTimeout())
	}
	s.log.Debugf("smtp transport %s:%d encryption=%q", t.Host(), t.Port(), t.Encryption())
	return t
}

func (s *Service) smtpTransport(in []any) (*SMTPTransport, error) {
	a := args(in)
	host, err := a.str(0)
	if err != nil {
		return nil, err
	}
	port, err := a.int(1)
	if err != nil {
		return nil, err
	}
	ssl, err := a.str(2)
	if err != nil {
		return nil, err
	}
	return s.SMTPTransport(host, port, ssl), nil
}

// SendmailTransport returns a sendmail transport running command, or the
// sendmail key when command is empty.
func (s *Service) SendmailTransport(command string) *SendmailTransport {
	t := NewSendmailTransport(firstNonEmpty(command, s.params.Sendmail))
	s.log.Debugf("sendmail transport %q", t.Command())
	return t
}

func (s *Service) sendmailTransport(in []any) (*SendmailTransport, error) {
	var command string
	switch v := args(in).at(0).(type) {
	case nil, string:
		command, _ = v.(string)
	default:
		parts, err := toStrings(v)
		if err != nil {
			return nil, err
		}
		command = strings.Join(parts, " ")
	}
	return s.SendmailTransport(command), nil
}

// MailTransport returns a local delivery transport. Non-empty extra
// parameters replace the extra key.
func (s *Service) MailTransport(extra ...string) (*MailTransport, error) {
	if len(extra) == 0 {
		var err error
		if extra, err = splitExtra(s.params.Extra); err != nil {
			return nil, err
		}
	}
	t := NewMailTransport(extra...)
	s.log.Debugf("mail transport %s %v", t.Binary, t.Args())
	return t, nil
}

func (s *Service) mailTransport(in []any) (*MailTransport, error) {
	extra, err := splitExtra(args(in).at(0))
	if err != nil {
		return nil, err
	}
	return s.MailTransport(extra...)
}

// splitExtra accepts a parameter string or a list of parameters.
func splitExtra(v any) ([]string, error) {
	if str, ok := v.(string); ok {
		return strings.Fields(str), nil
	}
	return toStrings(v)
}

// Mailer builds the transport named by the transport key (mail, smtp,
// sendmail) with the given arguments and wraps it in a Mailer.
func (s *Service) Mailer(in ...any) (*Mailer, error) {
	canonical := Canonicalize(s.params.Transport) + "Transport"
	v, err := s.construct(canonical, in)
	if err != nil {
		return nil, adapter.Constructing("mailer", fmt.Errorf("%w: %s: %w", ErrNoTransport, canonical, err))
	}
	t, ok := v.(Transport)
	if !ok || t == nil {
		return nil, adapter.Constructing("mailer", fmt.Errorf("%w: %s built %T", ErrNoTransport, canonical, v))
	}
	return NewMailer(t), nil
}

// Send delivers msg through a mailer shared by every Send call on the
// service. See Mailer.Send for the return values.
func (s *Service) Send(ctx context.Context, msg *Message) (int, []string, error) {
	m, err := s.sharedMailer()
	if err != nil {
		return 0, msg.Recipients(), err
	}
	n, failed, err := m.Send(ctx, msg)
	if err != nil {
		s.log.Errorf("send %q: %v", msg.Subject(), err)
		return n, failed, err
	}
	s.log.Infow("mail sent", map[string]any{"subject": msg.Subject(), "accepted": n, "failed": len(failed)})
	return n, failed, nil
}

func (s *Service) sharedMailer() (*Mailer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mailer != nil {
		return s.mailer, nil
	}
	m, err := s.Mailer()
	if err != nil {
		return nil, err
	}
	s.mailer = m
	return m, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
