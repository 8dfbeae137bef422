// Package view renders mail templates stored in a file system with
// text/template and the sprig function set.
package view

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/kilianp07/svckit/infra/logger"
	"github.com/kilianp07/svckit/infra/mail"
)

// DefaultExtension is appended to template names to find their file.
const DefaultExtension = ".tmpl"

// OptionsKey is the data key holding the render options.
const OptionsKey = "options"

// Renderer implements mail.Renderer. Parsed templates are cached.
type Renderer struct {
	fsys  fs.FS
	ext   string
	funcs template.FuncMap
	log   logger.Logger

	mu    sync.Mutex
	cache map[string]*template.Template
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithExtension changes the template file extension.
func WithExtension(ext string) Option {
	return func(r *Renderer) { r.ext = ext }
}

// WithFuncs adds functions on top of the sprig set.
func WithFuncs(funcs template.FuncMap) Option {
	return func(r *Renderer) { maps.Copy(r.funcs, funcs) }
}

func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// New returns a renderer reading templates from fsys.
func New(fsys fs.FS, opts ...Option) *Renderer {
	r := &Renderer{
		fsys:  fsys,
		ext:   DefaultExtension,
		funcs: sprig.TxtFuncMap(),
		log:   logger.NopLogger{},
		cache: map[string]*template.Template{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render executes the template named by v. The template data holds the
// parameters of v plus the options under OptionsKey.
func (r *Renderer) Render(ctx context.Context, v mail.Renderable, opts mail.RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tpl, err := r.lookup(v.TemplateName())
	if err != nil {
		return "", err
	}
	data := make(map[string]any, len(v.TemplateParams())+1)
	maps.Copy(data, v.TemplateParams())
	data[OptionsKey] = map[string]any(opts)

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", v.TemplateName(), err)
	}
	r.log.Debugf("rendered %s (%d bytes)", v.TemplateName(), buf.Len())
	return buf.String(), nil
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[name]; ok {
		return tpl, nil
	}
	file := name + r.ext
	tpl, err := template.New(path.Base(file)).Funcs(r.funcs).ParseFS(r.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	r.cache[name] = tpl
	return tpl, nil
}
