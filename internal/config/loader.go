package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct {
	out io.Writer
}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader that writes help text to out.
// A nil out writes to os.Stdout.
func NewLoader(out io.Writer) *Loader {
	if out == nil {
		out = os.Stdout
	}
	return &Loader{out: out}
}

// Load parses command-line arguments and the optional configuration file to
// produce a Config. Flags override file values; the positional URL overrides
// the file's url.
func (l Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand(l.out)
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, fmt.Errorf("%w (run '%s --help' for usage)", err, commandName)
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	positional := flagSet.Args()
	if err := cmd.ValidateArgs(positional); err != nil {
		return nil, fmt.Errorf("%w (run '%s --help' for usage)", err, commandName)
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	cfg := &Config{
		Method:     DefaultMethod,
		Delay:      DefaultDelay,
		Limit:      DefaultLimit,
		ConfigFile: configPath,
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
	}

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, fmt.Errorf("config %s: %w", configPath, err)
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	if len(positional) == 1 {
		cfg.TargetURL = positional[0]
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "url", "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("url: %w", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "method"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("method: %w", err)
		}
		if val != "" {
			cfg.Method = val
		}
	}

	if raw, ok := lookupSetting(settings, "delay"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("delay: %w", err)
		}
		cfg.Delay = val
	}

	if raw, ok := lookupSetting(settings, "limit"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("limit: %w", err)
		}
		cfg.Limit = val
	}

	if raw, ok := lookupSetting(settings, "xforwardedfor_random", "xforwardedfor-random", "xforwardedforrandom"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("xforwardedfor_random: %w", err)
		}
		cfg.RandomForwardedFor = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "plain"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("plain: %w", err)
		}
		cfg.Plain = val
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracingConfig(raw, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseTracingConfig(value interface{}, base TracingConfig) (TracingConfig, error) {
	if value == nil {
		return base, nil
	}
	settings, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}
	tc := base
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tc.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		tc.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tc.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "service_name", "servicename", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		tc.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "sample_rate", "samplerate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		tc.SampleRate = val
	}
	if raw, ok := lookupSetting(settings, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("propagate: %w", err)
		}
		tc.Propagate = &val
	}
	return tc, nil
}
