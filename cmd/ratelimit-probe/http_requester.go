package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/ratelimit-probe/internal/httpclient"
	"github.com/torosent/ratelimit-probe/internal/runner"
	"github.com/torosent/ratelimit-probe/internal/tracing"
)

const maxBodyReadSize = 1024 * 1024

// httpRequester implements runner.Requester for one target URL.
type httpRequester struct {
	client    *http.Client
	builder   *httpclient.RequestBuilder
	tracer    trace.Tracer
	propagate bool
}

// Do sends one request and measures the time until the response body has
// been read, so the connection can be reused by the next iteration.
func (r *httpRequester) Do(ctx context.Context, index int, header http.Header) (runner.Response, error) {
	ctx, span := tracing.StartRequestSpan(ctx, r.tracer, r.builder.Method(), index)
	if r.propagate {
		tracing.InjectHTTPHeaders(ctx, header)
	}

	req, err := r.builder.Build(ctx, header)
	if err != nil {
		tracing.EndSpan(span, 0, err)
		return runner.Response{}, err
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		tracing.EndSpan(span, 0, err)
		return runner.Response{}, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyReadSize))
	resp.Body.Close()
	elapsed := time.Since(start)

	tracing.EndSpan(span, resp.StatusCode, nil)
	return runner.Response{StatusCode: resp.StatusCode, Elapsed: elapsed}, nil
}
