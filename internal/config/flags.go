package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const commandName = "ratelimit-probe"

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           commandName + " <url>",
		Short:         "Send paced HTTP requests to a URL and watch latency and status codes",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(out)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Request loop flags
	flags.String("method", DefaultMethod, "HTTP method to use")
	flags.Float64("delay", DefaultDelay, "Delay in seconds between requests")
	flags.Int("limit", DefaultLimit, "Number of requests to make (0: unlimited)")
	flags.Bool("xforwardedfor-random", false, "Inject a random X-Forwarded-For header into every request")
	flags.Duration("timeout", 0, "Per-request timeout (0 means no timeout)")

	// Output flags
	flags.Bool("plain", false, "Print plain result lines without the live progress display")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
	flags.Bool("print-config", false, "Print the effective configuration as YAML and exit")

	// Tracing flags
	flags.String("otel-endpoint", "", "OTLP collector endpoint for per-request spans (e.g. localhost:4317)")
	flags.String("otel-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.Bool("otel-insecure", false, "Disable TLS when talking to the OTLP collector")
	flags.String("otel-service-name", "", "service.name reported on spans")
	flags.Float64("otel-sample-rate", 1.0, "Fraction of requests to sample (0.0-1.0)")
	flags.Bool("otel-propagate", true, "Send W3C traceparent headers with each request")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("method") {
		val, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = val
	}
	if fs.Changed("delay") {
		val, err := fs.GetFloat64("delay")
		if err != nil {
			return err
		}
		cfg.Delay = val
	}
	if fs.Changed("limit") {
		val, err := fs.GetInt("limit")
		if err != nil {
			return err
		}
		cfg.Limit = val
	}
	if fs.Changed("xforwardedfor-random") {
		val, err := fs.GetBool("xforwardedfor-random")
		if err != nil {
			return err
		}
		cfg.RandomForwardedFor = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("plain") {
		val, err := fs.GetBool("plain")
		if err != nil {
			return err
		}
		cfg.Plain = val
	}
	if fs.Changed("print-config") {
		val, err := fs.GetBool("print-config")
		if err != nil {
			return err
		}
		cfg.PrintConfig = val
	}

	if fs.Changed("otel-endpoint") {
		val, err := fs.GetString("otel-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("otel-protocol") {
		val, err := fs.GetString("otel-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("otel-insecure") {
		val, err := fs.GetBool("otel-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("otel-service-name") {
		val, err := fs.GetString("otel-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("otel-sample-rate") {
		val, err := fs.GetFloat64("otel-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("otel-propagate") {
		val, err := fs.GetBool("otel-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = &val
	}

	return nil
}
