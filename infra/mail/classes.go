package mail

import (
	"fmt"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/core/factory"
)

// ClassPrefix is prepended to canonical names to form class names.
const ClassPrefix = "Mail"

// DefaultFactory is the method used when a class is invoked directly.
const DefaultFactory = "newInstance"

// Method is a static constructor of a class taking positional arguments.
type Method func(args ...any) (any, error)

// Class maps method names to static constructors.
type Class map[string]Method

// Classes is the table of constructible classes, keyed by prefixed name.
var Classes = factory.NewRegistry[Class]()

func init() {
	Classes.MustRegister("MailMessage", Class{
		DefaultFactory: func(in ...any) (any, error) {
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
			return NewMessage().SetSubject(subject).SetBody(body, ct), nil
		},
	})
	Classes.MustRegister("MailSmtpTransport", Class{
		DefaultFactory: func(in ...any) (any, error) {
			a := args(in)
			t := NewSMTPTransport()
			if a.present(0) {
				host, err := a.str(0)
				if err != nil {
					return nil, err
				}
				t.SetHost(host)
			}
			if a.present(1) {
				port, err := a.int(1)
				if err != nil {
					return nil, err
				}
				t.SetPort(port)
			}
			enc, err := a.str(2)
			if err != nil {
				return nil, err
			}
			return t.SetEncryption(enc), nil
		},
	})
	Classes.MustRegister("MailSendmailTransport", Class{
		DefaultFactory: func(in ...any) (any, error) {
			cmd, err := args(in).str(0)
			if err != nil {
				return nil, err
			}
			return NewSendmailTransport(cmd), nil
		},
	})
	Classes.MustRegister("MailMailTransport", Class{
		DefaultFactory: func(in ...any) (any, error) {
			extra, err := args(in).strs(0)
			if err != nil {
				return nil, err
			}
			return NewMailTransport(extra...), nil
		},
	})
	Classes.MustRegister("MailMailer", Class{
		DefaultFactory: func(in ...any) (any, error) {
			t, ok := args(in).at(0).(Transport)
			if !ok {
				return nil, fmt.Errorf("%w: mailer needs a transport, got %T", ErrBadArgument, args(in).at(0))
			}
			return NewMailer(t), nil
		},
	})
	Classes.MustRegister("MailAttachment", Class{
		DefaultFactory: func(in ...any) (any, error) {
			return dataAttachment(in, NewAttachment)
		},
		"fromPath": func(in ...any) (any, error) {
			a := args(in)
			path, err := a.str(0)
			if err != nil {
				return nil, err
			}
			ct, err := a.str(1)
			if err != nil {
				return nil, err
			}
			return AttachmentFromPath(path, ct), nil
		},
	})
	Classes.MustRegister("MailImage", Class{
		DefaultFactory: func(in ...any) (any, error) {
			return dataAttachment(in, NewImage)
		},
		"fromPath": func(in ...any) (any, error) {
			path, err := args(in).str(0)
			if err != nil {
				return nil, err
			}
			return ImageFromPath(path), nil
		},
	})
}

func dataAttachment(in []any, build func([]byte, string, string) *Attachment) (any, error) {
	a := args(in)
	data, err := a.bytes(0)
	if err != nil {
		return nil, err
	}
	name, err := a.str(1)
	if err != nil {
		return nil, err
	}
	ct, err := a.str(2)
	if err != nil {
		return nil, err
	}
	return build(data, name, ct), nil
}

// CallStatic invokes method on the class registered as className.
func CallStatic(className, method string, in ...any) (any, error) {
	cls, ok := Classes.Lookup(className)
	if !ok {
		return nil, &adapter.UnknownClassError{Name: className}
	}
	m, ok := cls[method]
	if !ok {
		return nil, &adapter.UnknownClassError{Name: className + "::" + method}
	}
	return m(in...)
}
