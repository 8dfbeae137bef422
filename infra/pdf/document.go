package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/kilianp07/svckit/core/adapter"
)

const defaultBinary = "wkhtmltopdf"

// Page is one input of the document.
type Page struct {
	Input   string
	Options map[string]any
	Cover   bool
}

// Document collects wkhtmltopdf global options and pages.
type Document struct {
	options        map[string]any
	command        CommandOptions
	binary         string
	ignoreWarnings bool
	pages          []Page
}

// NewDocument creates a document from options as produced by Options.
func NewDocument(options map[string]any) (*Document, error) {
	sec := adapter.Section(options)
	co, err := decodeCommandOptions(sec.Map(KeyCommandOptions))
	if err != nil {
		return nil, fmt.Errorf("command options: %w", err)
	}
	d := &Document{
		options:        make(map[string]any, len(options)),
		command:        co,
		binary:         defaultBinary,
		ignoreWarnings: sec.Bool(KeyIgnoreWarnings),
	}
	if sec.Has(KeyBinary) {
		d.binary = sec.String(KeyBinary)
	}
	for k, v := range options {
		if !reserved[k] {
			d.options[k] = v
		}
	}
	return d, nil
}

// Options returns the wkhtmltopdf global options.
func (d *Document) Options() map[string]any { return d.options }

// CommandOptions returns the command wrapper options.
func (d *Document) CommandOptions() CommandOptions { return d.command }

// Binary returns the wkhtmltopdf executable.
func (d *Document) Binary() string { return d.binary }

// AddPage appends a page read from a URL or file path.
func (d *Document) AddPage(input string, opts map[string]any) *Document {
	d.pages = append(d.pages, Page{Input: input, Options: opts})
	return d
}

// AddCover appends a cover page.
func (d *Document) AddCover(input string, opts map[string]any) *Document {
	d.pages = append(d.pages, Page{Input: input, Options: opts, Cover: true})
	return d
}

// Pages returns the pages added so far.
func (d *Document) Pages() []Page { return d.pages }

// Args returns the wkhtmltopdf arguments writing the document to out.
func (d *Document) Args(out string) []string {
	args := optionArgs(d.options)
	for _, p := range d.pages {
		if p.Cover {
			args = append(args, "cover")
		}
		args = append(args, p.Input)
		args = append(args, optionArgs(p.Options)...)
	}
	return append(args, out)
}

// Command returns the command that renders the document to out, wrapped in
// xvfb-run when enabled.
func (d *Document) Command(ctx context.Context, out string) *exec.Cmd {
	args := d.Args(out)
	if d.command.EnableXvfb {
		wrapped := append(append([]string{}, d.command.XvfbRunOptions...), d.binary)
		return exec.CommandContext(ctx, d.command.XvfbRunBinary, append(wrapped, args...)...)
	}
	return exec.CommandContext(ctx, d.binary, args...)
}

// SaveAs renders the document into the file at path.
func (d *Document) SaveAs(ctx context.Context, path string) error {
	if len(d.pages) == 0 {
		return fmt.Errorf("pdf: no pages added")
	}
	cmd := d.Command(ctx, path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if d.ignoreWarnings {
			if fi, statErr := os.Stat(path); statErr == nil && fi.Size() > 0 {
				return nil
			}
		}
		return fmt.Errorf("%s: %w: %s", d.binary, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Bytes renders the document and returns its content.
func (d *Document) Bytes(ctx context.Context) ([]byte, error) {
	if len(d.pages) == 0 {
		return nil, fmt.Errorf("pdf: no pages added")
	}
	cmd := d.Command(ctx, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil && !(d.ignoreWarnings && stdout.Len() > 0) {
		return nil, fmt.Errorf("%s: %w: %s", d.binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// optionArgs renders options sorted by key. true and nil values are bare
// flags, false values are omitted, lists repeat the flag and maps emit
// key/value pairs.
func optionArgs(opts map[string]any) []string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var args []string
	for _, k := range keys {
		flag := "--" + k
		switch v := opts[k].(type) {
		case nil:
			args = append(args, flag)
		case bool:
			if v {
				args = append(args, flag)
			}
		case []string:
			for _, item := range v {
				args = append(args, flag, item)
			}
		case []any:
			for _, item := range v {
				args = append(args, flag, fmt.Sprint(item))
			}
		case map[string]any:
			sub := make([]string, 0, len(v))
			for sk := range v {
				sub = append(sub, sk)
			}
			sort.Strings(sub)
			for _, sk := range sub {
				args = append(args, flag, sk, fmt.Sprint(v[sk]))
			}
		default:
			args = append(args, flag, fmt.Sprint(v))
		}
	}
	return args
}
