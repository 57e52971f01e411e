package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultMethod = "GET"
	DefaultDelay  = 1.0
	DefaultLimit  = 100
)

// Config is the immutable run configuration built once from the command line
// and the optional config file.
type Config struct {
	TargetURL          string        `mapstructure:"url"`
	Method             string        `mapstructure:"method"`
	Delay              float64       `mapstructure:"delay"` // seconds
	Limit              int           `mapstructure:"limit"` // 0 means unbounded
	RandomForwardedFor bool          `mapstructure:"xforwardedfor_random"`
	Timeout            time.Duration `mapstructure:"timeout"`
	Plain              bool          `mapstructure:"plain"`
	Tracing            TracingConfig `mapstructure:"tracing"`
	ConfigFile         string        `mapstructure:"-"`
	PrintConfig        bool          `mapstructure:"-"`
}

// TracingConfig controls OpenTelemetry export of per-request spans.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" (default) or "http"
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   *bool   `mapstructure:"propagate"` // nil means propagate whenever exporting
}

// Enabled reports whether an exporter endpoint was configured explicitly.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers go out with each request.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return true
}

// DelayDuration converts the configured delay in seconds to a time.Duration.
func (c Config) DelayDuration() time.Duration {
	if c.Delay <= 0 || math.IsNaN(c.Delay) {
		return 0
	}
	return time.Duration(c.Delay * float64(time.Second))
}

// Bounded reports whether the run stops after Limit requests.
func (c Config) Bounded() bool {
	return c.Limit > 0
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	target := strings.TrimSpace(c.TargetURL)
	if target == "" {
		issues = append(issues, "url is required (use --help for usage information)")
	} else if issue := validateTarget(target); issue != "" {
		issues = append(issues, issue)
	}

	if !validMethod(c.Method) {
		issues = append(issues, fmt.Sprintf("method %q is not a valid HTTP method token", c.Method))
	}
	if math.IsNaN(c.Delay) || math.IsInf(c.Delay, 0) {
		issues = append(issues, "delay must be a finite number of seconds")
	} else if c.Delay < 0 {
		issues = append(issues, "delay must be >= 0")
	}
	if c.Limit < 0 {
		issues = append(issues, "limit must be >= 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// Warnings returns non-fatal remarks about the configuration.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Limit == 0 && c.DelayDuration() == 0 {
		warnings = append(warnings, "WARNING: no delay and no limit configured; requests will be sent back to back until interrupted.")
	}
	if c.RandomForwardedFor {
		warnings = append(warnings, "WARNING: X-Forwarded-For is randomized. Ensure you have authorization to test the target system.")
	}
	return warnings
}

func validateTarget(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Sprintf("url %q is malformed: %v", target, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		return fmt.Sprintf("url %q must include a scheme (http:// or https://)", target)
	default:
		return fmt.Sprintf("url %q has unsupported scheme %q", target, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Sprintf("url %q must include a host", target)
	}
	return ""
}

// validMethod reports whether m is a non-empty RFC 7230 token.
func validMethod(m string) bool {
	if m == "" {
		return false
	}
	for _, r := range m {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			continue
		}
		if !strings.ContainsRune("!#$%&'*+-.^_`|~", r) {
			return false
		}
	}
	return true
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 || math.IsNaN(t.SampleRate) {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
