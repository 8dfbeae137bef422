package mail

import (
	"time"

	"dario.cat/mergo"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/core/factory"
)

// Params are the recognised keys of a mail service section.
type Params struct {
	Transport string `json:"transport"`

	Host     string `json:"host"`
	Port     int    `json:"port"`
	SSL      string `json:"ssl"`
	Username string `json:"username"`
	Password string `json:"password"`
	AuthMode string `json:"auth_mode"`
	// Timeout is the SMTP dial timeout in seconds.
	Timeout float64 `json:"timeout"`

	Sendmail string `json:"sendmail"`
	Extra    any    `json:"extra"`

	ReturnTo    string `json:"returnto"`
	From        string `json:"from"`
	FromName    string `json:"from_name"`
	Sender      string `json:"sender"`
	ReplyTo     string `json:"replyto"`
	ReplyToName string `json:"replyto_name"`
	Bcc         string `json:"bcc"`
	BccName     string `json:"bcc_name"`
	Charset     string `json:"charset"`

	TemplatePrefix string `json:"template_prefix"`
}

// DefaultTemplatePrefix is prepended to template names.
const DefaultTemplatePrefix = "email/"

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{Transport: "mail", Charset: "utf-8", TemplatePrefix: DefaultTemplatePrefix}
}

// Defaults is the static default section of the adapter.
func Defaults() adapter.Section {
	p := DefaultParams()
	return adapter.Section{
		"transport":       p.Transport,
		"charset":         p.Charset,
		"template_prefix": p.TemplatePrefix,
	}
}

// DecodeParams extracts the parameters from sec, filling absent values with
// DefaultParams.
func DecodeParams(sec adapter.Section) (Params, error) {
	var p Params
	if err := factory.Decode(sec, &p); err != nil {
		return Params{}, err
	}
	if err := mergo.Merge(&p, DefaultParams()); err != nil {
		return Params{}, err
	}
	return p, nil
}

// DialTimeout converts Timeout to a duration.
func (p Params) DialTimeout() time.Duration {
	return time.Duration(p.Timeout * float64(time.Second))
}
