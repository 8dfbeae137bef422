package mail

import (
	"context"
	"errors"
	"maps"
	"strings"
)

// ErrNothingRendered reports that a template produced no output. It is a
// soft failure: nothing was sent and the caller decides what to do.
var ErrNothingRendered = errors.New("mail: template rendered nothing")

// MessageParam is the template parameter holding the message being built.
const MessageParam = "message"

// Renderable is what a Renderer renders.
type Renderable interface {
	TemplateName() string
	TemplateParams() map[string]any
}

// RenderOptions are passed through to the renderer.
type RenderOptions map[string]any

// Renderer renders a template to text.
type Renderer interface {
	Render(ctx context.Context, view Renderable, opts RenderOptions) (string, error)
}

type templateView struct {
	name   string
	params map[string]any
}

func (v templateView) TemplateName() string           { return v.name }
func (v templateView) TemplateParams() map[string]any { return v.params }

// MessageFromTemplate renders the template prefixed with the configured
// template prefix. See MessageFromTemplateWithPrefix.
func (s *Service) MessageFromTemplate(ctx context.Context, r Renderer, name string, params map[string]any, opts RenderOptions) (*Message, error) {
	return s.MessageFromTemplateWithPrefix(ctx, r, s.params.TemplatePrefix, name, params, opts)
}

// MessageFromTemplateWithPrefix builds a message with Message, then renders
// prefix+name with params plus the message under MessageParam. The first
// line of the output is the subject and the remainder the body. Empty
// output yields ErrNothingRendered.
func (s *Service) MessageFromTemplateWithPrefix(ctx context.Context, r Renderer, prefix, name string, params map[string]any, opts RenderOptions) (*Message, error) {
	msg := s.Message()
	view := templateView{name: prefix + name, params: make(map[string]any, len(params)+1)}
	maps.Copy(view.params, params)
	view.params[MessageParam] = msg

	out, err := r.Render(ctx, view, opts)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, ErrNothingRendered
	}
	if !strings.Contains(out, "\n") {
		out += "\n"
	}
	subject, body, _ := strings.Cut(out, "\n")
	msg.SetSubject(strings.TrimSuffix(subject, "\r")).SetBody(body)
	return msg, nil
}

// SendFromTemplate renders a message and sends it. prepare, when not nil,
// runs between rendering and sending, typically to add recipients.
func (s *Service) SendFromTemplate(ctx context.Context, r Renderer, name string, params map[string]any, opts RenderOptions, prepare func(*Message)) (int, []string, error) {
	msg, err := s.MessageFromTemplate(ctx, r, name, params, opts)
	if err != nil {
		return 0, nil, err
	}
	if prepare != nil {
		prepare(msg)
	}
	return s.Send(ctx, msg)
}
