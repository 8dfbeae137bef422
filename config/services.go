package config

import (
	"fmt"

	"github.com/kilianp07/svckit/core/adapter"
)

// ServiceConfig defines one service of the container. Adapter names the
// builder; Options is passed to it as is.
type ServiceConfig struct {
	Adapter string         `json:"adapter"`
	Shared  bool           `json:"shared"`
	Options map[string]any `json:"options"`
}

// TemplatesConfig locates the mail templates.
type TemplatesConfig struct {
	Dir string `json:"dir"`
}

func (c *TemplatesConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "templates"
	}
}

func (c *ServiceConfig) SetDefaults() {
	if c.Options == nil {
		c.Options = map[string]any{}
	}
}

// Validate checks mandatory fields.
func (c ServiceConfig) Validate() error {
	if c.Adapter == "" {
		return fmt.Errorf("adapter is required")
	}
	return nil
}

// Section returns the options as an adapter section.
func (c ServiceConfig) Section() adapter.Section {
	return adapter.Section(c.Options).Clone()
}
