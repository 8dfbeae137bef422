package mail

import (
	"errors"
	"fmt"
	netmail "net/mail"

	gomail "github.com/wneessen/go-mail"
)

// Address is an email address with an optional display name.
type Address struct {
	Email string
	Name  string
}

// String formats the address for a header.
func (a Address) String() string {
	return (&netmail.Address{Name: a.Name, Address: a.Email}).String()
}

// Part is an alternative body representation.
type Part struct {
	ContentType string
	Body        string
}

// Message is a mutable email message. Setters return the message so calls
// can be chained.
type Message struct {
	returnTo    string
	from        []Address
	sender      *Address
	replyTo     []Address
	to          []Address
	cc          []Address
	bcc         []Address
	subject     string
	body        string
	contentType string
	charset     string
	parts       []Part
	attachments []*Attachment
}

// NewMessage returns an empty text/plain message.
func NewMessage() *Message {
	return &Message{contentType: string(gomail.TypeTextPlain)}
}

// SetReturnTo sets the bounce address (envelope sender).
func (m *Message) SetReturnTo(email string) *Message {
	m.returnTo = email
	return m
}

// SetFrom replaces the From address.
func (m *Message) SetFrom(email, name string) *Message {
	m.from = []Address{{Email: email, Name: name}}
	return m
}

// SetSender sets the Sender header.
func (m *Message) SetSender(email string) *Message {
	m.sender = &Address{Email: email}
	return m
}

// SetReplyTo replaces the Reply-To address.
func (m *Message) SetReplyTo(email, name string) *Message {
	m.replyTo = []Address{{Email: email, Name: name}}
	return m
}

// SetTo replaces the To recipients with a single address.
func (m *Message) SetTo(email, name string) *Message {
	m.to = []Address{{Email: email, Name: name}}
	return m
}

// AddTo appends a To recipient.
func (m *Message) AddTo(email, name string) *Message {
	m.to = append(m.to, Address{Email: email, Name: name})
	return m
}

// SetCc replaces the Cc recipients with a single address.
func (m *Message) SetCc(email, name string) *Message {
	m.cc = []Address{{Email: email, Name: name}}
	return m
}

// AddCc appends a Cc recipient.
func (m *Message) AddCc(email, name string) *Message {
	m.cc = append(m.cc, Address{Email: email, Name: name})
	return m
}

// SetBcc replaces the Bcc recipients with a single address.
func (m *Message) SetBcc(email, name string) *Message {
	m.bcc = []Address{{Email: email, Name: name}}
	return m
}

// AddBcc appends a Bcc recipient.
func (m *Message) AddBcc(email, name string) *Message {
	m.bcc = append(m.bcc, Address{Email: email, Name: name})
	return m
}

// SetSubject sets the subject.
func (m *Message) SetSubject(subject string) *Message {
	m.subject = subject
	return m
}

// SetBody sets the main body. An optional content type replaces the current one.
func (m *Message) SetBody(body string, contentType ...string) *Message {
	m.body = body
	if len(contentType) > 0 && contentType[0] != "" {
		m.contentType = contentType[0]
	}
	return m
}

// SetCharset sets the message charset.
func (m *Message) SetCharset(charset string) *Message {
	m.charset = charset
	return m
}

// AddPart adds an alternative representation of the body.
func (m *Message) AddPart(body, contentType string) *Message {
	m.parts = append(m.parts, Part{ContentType: contentType, Body: body})
	return m
}

// Attach adds an attachment or inline image.
func (m *Message) Attach(a *Attachment) *Message {
	m.attachments = append(m.attachments, a)
	return m
}

func (m *Message) ReturnTo() string           { return m.returnTo }
func (m *Message) From() []Address            { return m.from }
func (m *Message) ReplyTo() []Address         { return m.replyTo }
func (m *Message) To() []Address              { return m.to }
func (m *Message) Cc() []Address              { return m.cc }
func (m *Message) Bcc() []Address             { return m.bcc }
func (m *Message) Subject() string            { return m.subject }
func (m *Message) Body() string               { return m.body }
func (m *Message) ContentType() string        { return m.contentType }
func (m *Message) Charset() string            { return m.charset }
func (m *Message) Parts() []Part              { return m.parts }
func (m *Message) Attachments() []*Attachment { return m.attachments }

// Sender returns the Sender address, if set.
func (m *Message) Sender() (Address, bool) {
	if m.sender == nil {
		return Address{}, false
	}
	return *m.sender, true
}

// Recipients lists the To, Cc and Bcc addresses.
func (m *Message) Recipients() []string {
	out := make([]string, 0, len(m.to)+len(m.cc)+len(m.bcc))
	for _, list := range [][]Address{m.to, m.cc, m.bcc} {
		for _, a := range list {
			out = append(out, a.Email)
		}
	}
	return out
}

// ErrNoRecipients is returned when a message has no valid recipient.
var ErrNoRecipients = errors.New("mail: no valid recipients")

// Msg converts the message into a go-mail message.
func (m *Message) Msg() (*gomail.Msg, error) {
	msg, _, err := m.build()
	return msg, err
}

// build converts the message; invalid recipients are skipped and returned
// as failed.
func (m *Message) build() (*gomail.Msg, []string, error) {
	var opts []gomail.MsgOption
	if m.charset != "" {
		opts = append(opts, gomail.WithCharset(gomail.Charset(m.charset)))
	}
	msg := gomail.NewMsg(opts...)

	if m.returnTo != "" {
		if err := msg.EnvelopeFrom(m.returnTo); err != nil {
			return nil, nil, fmt.Errorf("return-to: %w", err)
		}
	}
	if len(m.from) > 0 {
		if err := setAddress(m.from[0], msg.From, msg.FromFormat); err != nil {
			return nil, nil, fmt.Errorf("from: %w", err)
		}
	}
	if m.sender != nil {
		if _, err := netmail.ParseAddress(m.sender.Email); err != nil {
			return nil, nil, fmt.Errorf("sender: %w", err)
		}
		msg.SetGenHeader(gomail.Header("Sender"), m.sender.String())
	}
	if len(m.replyTo) > 0 {
		if err := setAddress(m.replyTo[0], msg.ReplyTo, msg.ReplyToFormat); err != nil {
			return nil, nil, fmt.Errorf("reply-to: %w", err)
		}
	}

	var failed []string
	accepted := 0
	add := func(list []Address, plain func(string) error, named func(string, string) error) {
		for _, a := range list {
			if err := setAddress(a, plain, named); err != nil {
				failed = append(failed, a.Email)
				continue
			}
			accepted++
		}
	}
	add(m.to, msg.AddTo, msg.AddToFormat)
	add(m.cc, msg.AddCc, msg.AddCcFormat)
	add(m.bcc, msg.AddBcc, msg.AddBccFormat)
	if accepted == 0 {
		return nil, failed, ErrNoRecipients
	}

	msg.Subject(m.subject)
	msg.SetBodyString(gomail.ContentType(m.contentType), m.body)
	for _, p := range m.parts {
		msg.AddAlternativeString(gomail.ContentType(p.ContentType), p.Body)
	}
	for _, a := range m.attachments {
		a.attach(msg)
	}
	return msg, failed, nil
}

func setAddress(a Address, plain func(string) error, named func(string, string) error) error {
	if a.Name != "" {
		return named(a.Name, a.Email)
	}
	return plain(a.Email)
}
