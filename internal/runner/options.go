package runner

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/torosent/ratelimit-probe/internal/spoof"
)

// Requester abstracts sending a single request. header is the loop's current
// header set; implementations may add to it but must not retain it.
// Implementations should return an error only for transport failures; any
// HTTP status, 200 or not, is a normal Response.
type Requester interface {
	Do(ctx context.Context, index int, header http.Header) (Response, error)
}

// Response is what the loop needs to know about one completed exchange.
type Response struct {
	StatusCode int
	Elapsed    time.Duration // round-trip time as measured by the requester
}

// Renderer receives the loop's display events, strictly in order:
// Begin once, then Result and Advance once per iteration, then End once.
type Renderer interface {
	Begin(Progress)
	Result(Iteration)
	Advance()
	End()
}

// AddressSource supplies spoofed client addresses.
type AddressSource interface {
	Next() netip.Addr
}

// Recorder observes every completed request, e.g. for live statistics.
type Recorder interface {
	RecordRequest(latency time.Duration, statusCode int)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Options configure the Runner.
type Options struct {
	Limit             int           // requests to send (0 means until interrupted)
	Delay             time.Duration // pause after every request
	SpoofForwardedFor bool          // set a random X-Forwarded-For on each request
	Requester         Requester     // request executor (required)
	Renderer          Renderer      // display sink (optional)
	Addresses         AddressSource // optional injection for tests
	Recorder          Recorder      // optional
	Sleep             Sleeper       // optional injection for tests
}

func (o *Options) normalize() {
	if o.Limit < 0 {
		o.Limit = 0
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.Renderer == nil {
		o.Renderer = discardRenderer{}
	}
	if o.SpoofForwardedFor && o.Addresses == nil {
		o.Addresses = spoof.NewRandom()
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type discardRenderer struct{}

func (discardRenderer) Begin(Progress)   {}
func (discardRenderer) Result(Iteration) {}
func (discardRenderer) Advance()         {}
func (discardRenderer) End()             {}
