package runner

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/torosent/ratelimit-probe/internal/spoof"
)

// Result captures execution summary.
type Result struct {
	Total    int // requests that completed
	Duration time.Duration
}

// Runner sends requests one at a time, pausing between them.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run executes the request loop until the limit is reached, a request fails,
// or ctx is done. A transport failure ends the run with an error naming the
// iteration; a canceled ctx ends it with ctx.Err() wrapped the same way.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.opt.Requester == nil {
		return Result{}, fmt.Errorf("runner: requester is not configured")
	}

	start := time.Now()
	header := http.Header{}

	r.opt.Renderer.Begin(ProgressFor(r.opt.Limit))
	defer r.opt.Renderer.End()

	index := 0
	for r.opt.Limit == 0 || index < r.opt.Limit {
		if r.opt.SpoofForwardedFor {
			header.Set(spoof.HeaderName, r.opt.Addresses.Next().String())
		}

		resp, err := r.opt.Requester.Do(ctx, index, header.Clone())
		if err != nil {
			return Result{Total: index, Duration: time.Since(start)}, fmt.Errorf("request #%d: %w", index, err)
		}

		if r.opt.Recorder != nil {
			r.opt.Recorder.RecordRequest(resp.Elapsed, resp.StatusCode)
		}
		r.opt.Renderer.Result(Iteration{
			Index:      index,
			ElapsedMs:  RoundMillis(resp.Elapsed),
			StatusCode: resp.StatusCode,
		})
		r.opt.Renderer.Advance()

		if err := r.opt.Sleep(ctx, r.opt.Delay); err != nil {
			return Result{Total: index + 1, Duration: time.Since(start)}, err
		}
		index++
	}

	return Result{Total: index, Duration: time.Since(start)}, nil
}
