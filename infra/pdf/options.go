package pdf

import (
	"dario.cat/mergo"

	"github.com/kilianp07/svckit/core/adapter"
	"github.com/kilianp07/svckit/core/factory"
)

const (
	// KeyCommandOptions holds options for the command wrapper rather than
	// for wkhtmltopdf itself.
	KeyCommandOptions = "commandOptions"
	// KeyEnableXvfb runs wkhtmltopdf under xvfb-run when true.
	KeyEnableXvfb = "enableXvfb"
	// KeyBinary overrides the wkhtmltopdf executable.
	KeyBinary = "binary"
	// KeyIgnoreWarnings accepts a non-zero exit status when the output was written.
	KeyIgnoreWarnings = "ignoreWarnings"
)

// reserved keys never become command line arguments.
var reserved = map[string]bool{
	KeyCommandOptions: true,
	KeyBinary:         true,
	KeyIgnoreWarnings: true,
}

// CommandOptions configure how wkhtmltopdf is executed.
type CommandOptions struct {
	EnableXvfb     bool     `json:"enableXvfb"`
	XvfbRunBinary  string   `json:"xvfbRunBinary"`
	XvfbRunOptions []string `json:"xvfbRunOptions"`
}

func defaultCommandOptions() CommandOptions {
	return CommandOptions{
		XvfbRunBinary:  "xvfb-run",
		XvfbRunOptions: []string{"-a", "--server-args=-screen 0, 1024x768x24"},
	}
}

// Options translates a configuration section into document options.
func Options(sec adapter.Section) map[string]any {
	out := make(map[string]any, len(sec))
	var cmd map[string]any
	if existing := sec.Map(KeyCommandOptions); existing != nil {
		cmd = make(map[string]any, len(existing)+1)
		for k, v := range existing {
			cmd[k] = v
		}
	}
	for _, key := range sec.Keys() {
		switch key {
		case KeyCommandOptions:
		case KeyEnableXvfb:
			if cmd == nil {
				cmd = make(map[string]any, 1)
			}
			cmd[KeyEnableXvfb] = adapter.ToBool(sec[key])
		default:
			out[key] = sec[key]
		}
	}
	if cmd != nil {
		out[KeyCommandOptions] = cmd
	}
	return out
}

// Build creates a document from the configuration section.
func Build(sec adapter.Section) (*Document, error) {
	doc, err := NewDocument(Options(sec))
	if err != nil {
		return nil, adapter.Constructing("pdf", err)
	}
	return doc, nil
}

// decodeCommandOptions decodes into a zero value so that a configured
// xvfbRunOptions list replaces the default one instead of overlaying it.
func decodeCommandOptions(raw map[string]any) (CommandOptions, error) {
	var co CommandOptions
	if err := factory.Decode(raw, &co); err != nil {
		return CommandOptions{}, err
	}
	if err := mergo.Merge(&co, defaultCommandOptions()); err != nil {
		return CommandOptions{}, err
	}
	return co, nil
}
