package mail

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/svckit/core/adapter"
)

// smtpSink is a minimal SMTP server accepting every message except
// recipients listed in reject.
type smtpSink struct {
	addr   *net.TCPAddr
	reject map[string]bool

	mu    sync.Mutex
	rcpts []string
	data  []string
}

func startSMTP(t *testing.T, reject ...string) *smtpSink {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	s := &smtpSink{addr: ln.Addr().(*net.TCPAddr), reject: map[string]bool{}}
	for _, r := range reject {
		s.reject[r] = true
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	return s
}

func (s *smtpSink) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(line string) { fmt.Fprintf(conn, "%s\r\n", line) }
	reply("220 localhost ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		cmd := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(cmd, "RCPT TO:"):
			addr := strings.Trim(line[len("RCPT TO:"):], "<> ")
			if s.reject[addr] {
				reply("550 no such user")
				continue
			}
			s.mu.Lock()
			s.rcpts = append(s.rcpts, addr)
			s.mu.Unlock()
			reply("250 ok")
		case cmd == "DATA":
			reply("354 go ahead")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			s.mu.Lock()
			s.data = append(s.data, b.String())
			s.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 ok")
		}
	}
}

func (s *smtpSink) received() ([]string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rcpts...), append([]string(nil), s.data...)
}

func smtpService(t *testing.T, sink *smtpSink) *Service {
	return newService(t, adapter.Section{
		"transport": "smtp",
		"host":      "127.0.0.1",
		"port":      strconv.Itoa(sink.addr.Port),
		"from":      "noreply@x.com",
		"timeout":   5,
	})
}

func TestSend_SMTP(t *testing.T) {
	sink := startSMTP(t)
	s := smtpService(t, sink)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := s.Message().SetTo("ann@x.com", "Ann").AddCc("bob@x.com", "").SetSubject("Hello").SetBody("Body")
	n, failed, err := s.Send(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, failed)

	rcpts, data := sink.received()
	assert.ElementsMatch(t, []string{"ann@x.com", "bob@x.com"}, rcpts)
	require.Len(t, data, 1)
	assert.Contains(t, data[0], "Subject: Hello")
	assert.Contains(t, data[0], "Body")

	// the mailer is shared between sends
	first, _ := s.sharedMailer()
	_, _, err = s.Send(ctx, s.Message().SetTo("ann@x.com", "").SetSubject("Again"))
	require.NoError(t, err)
	second, _ := s.sharedMailer()
	assert.Same(t, first, second)
}

func TestSend_SMTPRejectedRecipient(t *testing.T) {
	sink := startSMTP(t, "ghost@x.com")
	s := smtpService(t, sink)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := s.Message().SetTo("ann@x.com", "").AddTo("ghost@x.com", "").SetSubject("Hello")
	n, failed, err := s.Send(ctx, msg)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"ann@x.com", "ghost@x.com"}, failed)
}

func TestSend_SMTPUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	tr := NewSMTPTransport().SetHost("127.0.0.1").SetPort(port).SetTimeout(time.Second)
	msg := NewMessage().SetFrom("a@x.com", "").SetTo("b@x.com", "")
	n, failed, err := NewMailer(tr).Send(context.Background(), msg)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"b@x.com"}, failed)
}

// fakeSendmail writes a script that records its arguments and stdin.
func fakeSendmail(t *testing.T) (bin, argsFile, bodyFile string) {
	t.Helper()
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	bodyFile = filepath.Join(dir, "body")
	bin = filepath.Join(dir, "sendmail")
	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" > %s\ncat > %s\n", argsFile, bodyFile)
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, argsFile, bodyFile
}

func TestSend_Sendmail(t *testing.T) {
	bin, argsFile, bodyFile := fakeSendmail(t)
	s := newService(t, adapter.Section{
		"transport": "sendmail",
		"sendmail":  bin + " -oi -t -fbounce@x.com",
		"from":      "a@x.com",
	})

	n, failed, err := s.Send(context.Background(), s.Message().SetTo("b@x.com", "").SetSubject("Piped"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, failed)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "-oi -t -fbounce@x.com\n", string(args))
	body, err := os.ReadFile(bodyFile)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Subject: Piped")
	assert.Contains(t, string(body), "To: <b@x.com>")
}

func TestSend_MailTransport(t *testing.T) {
	bin, argsFile, _ := fakeSendmail(t)
	s := newService(t, adapter.Section{"extra": "-odq"})
	tr, err := s.MailTransport()
	require.NoError(t, err)
	tr.Binary = bin

	msg := s.Message().SetFrom("a@x.com", "").SetTo("b@x.com", "")
	n, _, err := NewMailer(tr).Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "-t -i -odq\n", string(args))
}

func TestSend_TransportCommandFails(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "sendmail")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\ncat >/dev/null\necho 'queue full' >&2\nexit 75\n"), 0o755))

	msg := NewMessage().SetFrom("a@x.com", "").SetTo("b@x.com", "")
	_, failed, err := NewMailer(NewSendmailTransport(bin)).Send(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")
	assert.Equal(t, []string{"b@x.com"}, failed)
}
