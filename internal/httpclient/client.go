package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/torosent/ratelimit-probe/internal/config"
)

// UserAgent identifies the probe to the target unless the caller sets one.
const UserAgent = "ratelimit-probe/1"

type RequestBuilder struct {
	method string
	target string
}

func NewRequestBuilder(cfg *config.Config) (*RequestBuilder, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	target := strings.TrimSpace(cfg.TargetURL)
	if target == "" {
		return nil, errors.New("target URL is required")
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse target URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("target URL scheme must be http or https, got %q", u.Scheme)
	}

	method := strings.TrimSpace(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	return &RequestBuilder{
		method: method,
		target: u.String(),
	}, nil
}

// Method returns the HTTP method every built request uses.
func (b *RequestBuilder) Method() string {
	return b.method
}

// Build returns a bodiless request for the configured method and URL carrying
// a copy of header. Later changes to header do not affect the request.
func (b *RequestBuilder) Build(ctx context.Context, header http.Header) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, b.method, b.target, nil)
	if err != nil {
		return nil, err
	}

	for key, values := range header {
		if strings.ContainsAny(key, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		for _, val := range values {
			if strings.ContainsAny(val, "\r\n") {
				return nil, fmt.Errorf("invalid header value for %s", key)
			}
			req.Header.Add(key, val)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	return req, nil
}

// NewClient returns the client shared by every request of a run. Requests are
// strictly sequential, so a small idle pool is enough to keep the connection
// to the target alive between iterations.
func NewClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
