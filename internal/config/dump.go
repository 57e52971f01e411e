package config

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the keys applyConfigSettings understands, so a dumped
// configuration can be fed back through --config unchanged.
type fileConfig struct {
	URL                 string             `yaml:"url"`
	Method              string             `yaml:"method"`
	Delay               float64            `yaml:"delay"`
	Limit               int                `yaml:"limit"`
	XForwardedForRandom bool               `yaml:"xforwardedfor_random"`
	Timeout             string             `yaml:"timeout,omitempty"`
	Plain               bool               `yaml:"plain,omitempty"`
	Tracing             *fileTracingConfig `yaml:"tracing,omitempty"`
}

type fileTracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Protocol    string  `yaml:"protocol,omitempty"`
	Insecure    bool    `yaml:"insecure,omitempty"`
	ServiceName string  `yaml:"service_name,omitempty"`
	SampleRate  float64 `yaml:"sample_rate"`
	Propagate   *bool   `yaml:"propagate,omitempty"`
}

// WriteYAML writes the effective configuration in config-file form.
func (c Config) WriteYAML(w io.Writer) error {
	out := fileConfig{
		URL:                 c.TargetURL,
		Method:              c.Method,
		Delay:               c.Delay,
		Limit:               c.Limit,
		XForwardedForRandom: c.RandomForwardedFor,
		Plain:               c.Plain,
	}
	if c.Timeout > 0 {
		out.Timeout = c.Timeout.String()
	}
	if c.Tracing.Enabled() {
		out.Tracing = &fileTracingConfig{
			Endpoint:    strings.TrimSpace(c.Tracing.Endpoint),
			Protocol:    c.Tracing.Protocol,
			Insecure:    c.Tracing.Insecure,
			ServiceName: c.Tracing.ServiceName,
			SampleRate:  c.Tracing.SampleRate,
			Propagate:   c.Tracing.Propagate,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
