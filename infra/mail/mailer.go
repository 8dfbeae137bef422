package mail

import (
	"context"
)

// Mailer sends messages through a transport.
type Mailer struct {
	transport Transport
}

// NewMailer wraps t.
func NewMailer(t Transport) *Mailer {
	return &Mailer{transport: t}
}

func (m *Mailer) Transport() Transport { return m.transport }

// Send delivers msg and returns the number of accepted recipients together
// with the recipients that were rejected. When the transport fails every
// recipient is reported as failed.
func (m *Mailer) Send(ctx context.Context, msg *Message) (int, []string, error) {
	gm, failed, err := msg.build()
	if err != nil {
		return 0, msg.Recipients(), err
	}
	if err := m.transport.Send(ctx, gm); err != nil {
		return 0, msg.Recipients(), err
	}
	return len(msg.Recipients()) - len(failed), failed, nil
}
