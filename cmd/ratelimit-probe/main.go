package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/torosent/ratelimit-probe/internal/config"
	"github.com/torosent/ratelimit-probe/internal/httpclient"
	"github.com/torosent/ratelimit-probe/internal/metrics"
	"github.com/torosent/ratelimit-probe/internal/output"
	"github.com/torosent/ratelimit-probe/internal/runner"
	"github.com/torosent/ratelimit-probe/internal/tracing"
)

const tracingShutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader(stdout)
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.PrintConfig {
		return cfg.WriteYAML(stdout)
	}

	logger := newStderrLogger(stderr)
	for _, warning := range cfg.Warnings() {
		logger.Println(warning)
	}

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		return err
	}

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	otel.SetErrorHandler(otel.ErrorHandlerFunc(logger.LogError))
	if provider.Enabled() {
		logger.Println(fmt.Sprintf("Tracing enabled, run ID %s", provider.RunID()))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.LogError(fmt.Errorf("tracing shutdown: %w", err))
		}
	}()

	client := httpclient.NewClient(cfg.Timeout)
	defer client.CloseIdleConnections()

	collector := metrics.NewCollector()
	requester := &httpRequester{
		client:    client,
		builder:   builder,
		tracer:    provider.Tracer(),
		propagate: provider.ShouldPropagate(),
	}

	output.PrintSummary(stdout, *cfg)

	r := runner.New(runner.Options{
		Limit:             cfg.Limit,
		Delay:             cfg.DelayDuration(),
		SpoofForwardedFor: cfg.RandomForwardedFor,
		Requester:         requester,
		Renderer:          output.NewRenderer(stdout, cfg.Plain, collector),
		Recorder:          collector,
	})

	result, err := r.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			output.PrintInterrupted(stderr, result.Total)
			return nil
		}
		return err
	}
	return nil
}
