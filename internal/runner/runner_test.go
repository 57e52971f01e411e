package runner_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/torosent/ratelimit-probe/internal/runner"
	"github.com/torosent/ratelimit-probe/internal/spoof"
)

// fakeRequester records every header set it is handed and replies with a
// scripted status.
type fakeRequester struct {
	statuses []int // cycled; defaults to 200
	elapsed  time.Duration
	headers  []http.Header
	indices  []int
	failAt   int // fail on this call number (1-based); 0 never fails
	onCall   func(call int)
}

func (f *fakeRequester) Do(ctx context.Context, index int, header http.Header) (runner.Response, error) {
	f.headers = append(f.headers, header)
	f.indices = append(f.indices, index)
	call := len(f.headers)
	if f.onCall != nil {
		f.onCall(call)
	}
	if f.failAt > 0 && call == f.failAt {
		return runner.Response{}, errors.New("dial tcp: connection refused")
	}
	if err := ctx.Err(); err != nil {
		return runner.Response{}, err
	}
	status := http.StatusOK
	if len(f.statuses) > 0 {
		status = f.statuses[(call-1)%len(f.statuses)]
	}
	return runner.Response{StatusCode: status, Elapsed: f.elapsed}, nil
}

// recordingRenderer captures the event stream.
type recordingRenderer struct {
	progress []runner.Progress
	results  []runner.Iteration
	events   []string
}

func (r *recordingRenderer) Begin(p runner.Progress) {
	r.progress = append(r.progress, p)
	r.events = append(r.events, "begin")
}

func (r *recordingRenderer) Result(it runner.Iteration) {
	r.results = append(r.results, it)
	r.events = append(r.events, "result")
}

func (r *recordingRenderer) Advance() { r.events = append(r.events, "advance") }
func (r *recordingRenderer) End()     { r.events = append(r.events, "end") }

type recordingSleeper struct {
	calls []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return ctx.Err()
}

type statusRecorder struct {
	statuses []int
}

func (s *statusRecorder) RecordRequest(_ time.Duration, status int) {
	s.statuses = append(s.statuses, status)
}

func TestRunnerSendsExactlyLimitRequests(t *testing.T) {
	for _, limit := range []int{1, 3, 25} {
		req := &fakeRequester{}
		rend := &recordingRenderer{}
		sleeper := &recordingSleeper{}
		r := runner.New(runner.Options{
			Limit:     limit,
			Requester: req,
			Renderer:  rend,
			Sleep:     sleeper.sleep,
		})

		res, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("limit %d: Run() error = %v", limit, err)
		}
		if res.Total != limit {
			t.Fatalf("limit %d: total = %d", limit, res.Total)
		}
		if len(req.headers) != limit {
			t.Fatalf("limit %d: requester called %d times", limit, len(req.headers))
		}
		if len(rend.results) != limit {
			t.Fatalf("limit %d: rendered %d lines", limit, len(rend.results))
		}
		for i, it := range rend.results {
			if it.Index != i {
				t.Fatalf("limit %d: line %d has index %d", limit, i, it.Index)
			}
			if req.indices[i] != i {
				t.Fatalf("limit %d: request %d had index %d", limit, i, req.indices[i])
			}
		}
		if len(sleeper.calls) != limit {
			t.Fatalf("limit %d: slept %d times, want once per request", limit, len(sleeper.calls))
		}
	}
}

func TestRunnerEventOrder(t *testing.T) {
	rend := &recordingRenderer{}
	r := runner.New(runner.Options{
		Limit:     2,
		Requester: &fakeRequester{},
		Renderer:  rend,
		Sleep:     (&recordingSleeper{}).sleep,
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"begin", "result", "advance", "result", "advance", "end"}
	if !reflect.DeepEqual(rend.events, want) {
		t.Fatalf("events = %v, want %v", rend.events, want)
	}
	if got, ok := rend.progress[0].(runner.Bounded); !ok || got.Total != 2 {
		t.Fatalf("progress = %#v, want Bounded{Total: 2}", rend.progress[0])
	}
}

func TestRunnerScenarioNoSpoofNoDelay(t *testing.T) {
	req := &fakeRequester{elapsed: 12 * time.Millisecond}
	rend := &recordingRenderer{}
	sleeper := &recordingSleeper{}
	r := runner.New(runner.Options{
		Limit:     3,
		Delay:     0,
		Requester: req,
		Renderer:  rend,
		Sleep:     sleeper.sleep,
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, h := range req.headers {
		if _, ok := h[spoof.HeaderName]; ok {
			t.Fatalf("request %d carried %s", i, spoof.HeaderName)
		}
	}
	want := []runner.Iteration{
		{Index: 0, ElapsedMs: 12, StatusCode: 200},
		{Index: 1, ElapsedMs: 12, StatusCode: 200},
		{Index: 2, ElapsedMs: 12, StatusCode: 200},
	}
	if !reflect.DeepEqual(rend.results, want) {
		t.Fatalf("results = %+v, want %+v", rend.results, want)
	}
	for _, d := range sleeper.calls {
		if d != 0 {
			t.Fatalf("slept %s with zero delay", d)
		}
	}
}

func TestRunnerSpoofsForwardedForOnEveryRequest(t *testing.T) {
	req := &fakeRequester{}
	r := runner.New(runner.Options{
		Limit:             50,
		SpoofForwardedFor: true,
		Requester:         req,
		Addresses:         spoof.New(rand.NewPCG(9, 9)),
		Sleep:             (&recordingSleeper{}).sleep,
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, h := range req.headers {
		values := h.Values(spoof.HeaderName)
		if len(values) != 1 {
			t.Fatalf("request %d: %s values = %v, want exactly one", i, spoof.HeaderName, values)
		}
		addr, err := netip.ParseAddr(values[0])
		if err != nil || !addr.Is4() {
			t.Fatalf("request %d: %q is not a dotted-quad address", i, values[0])
		}
		if addr == netip.AddrFrom4([4]byte{}) {
			t.Fatalf("request %d: address 0.0.0.0 out of range", i)
		}
	}
}

func TestRunnerSpoofUsesFreshAddressEachIteration(t *testing.T) {
	addrs := &sequenceSource{addrs: []netip.Addr{
		netip.MustParseAddr("1.1.1.1"),
		netip.MustParseAddr("2.2.2.2"),
		netip.MustParseAddr("3.3.3.3"),
	}}
	req := &fakeRequester{}
	r := runner.New(runner.Options{
		Limit:             3,
		SpoofForwardedFor: true,
		Requester:         req,
		Addresses:         addrs,
		Sleep:             (&recordingSleeper{}).sleep,
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, want := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		if got := req.headers[i].Get(spoof.HeaderName); got != want {
			t.Errorf("request %d: %s = %q, want %q", i, spoof.HeaderName, got, want)
		}
	}
}

type sequenceSource struct {
	addrs []netip.Addr
	next  int
}

func (s *sequenceSource) Next() netip.Addr {
	a := s.addrs[s.next%len(s.addrs)]
	s.next++
	return a
}

func TestRunnerRequesterCannotMutateLoopHeader(t *testing.T) {
	req := &fakeRequester{onCall: nil}
	mutating := &mutatingRequester{inner: req}
	r := runner.New(runner.Options{
		Limit:     2,
		Requester: mutating,
		Sleep:     (&recordingSleeper{}).sleep,
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := req.headers[1].Get("Traceparent"); got != "" {
		t.Fatalf("header added by the requester leaked into the next iteration: %q", got)
	}
}

type mutatingRequester struct {
	inner *fakeRequester
}

func (m *mutatingRequester) Do(ctx context.Context, index int, header http.Header) (runner.Response, error) {
	resp, err := m.inner.Do(ctx, index, header.Clone())
	header.Set("Traceparent", "00-abc-def-01")
	return resp, err
}

func TestRunnerNon200IsNotAFailure(t *testing.T) {
	req := &fakeRequester{statuses: []int{200, 429, 503}}
	rend := &recordingRenderer{}
	rec := &statusRecorder{}
	r := runner.New(runner.Options{
		Limit:     6,
		Requester: req,
		Renderer:  rend,
		Recorder:  rec,
		Sleep:     (&recordingSleeper{}).sleep,
	})
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Total != 6 {
		t.Fatalf("total = %d, want 6", res.Total)
	}
	wantStatuses := []int{200, 429, 503, 200, 429, 503}
	if !reflect.DeepEqual(rec.statuses, wantStatuses) {
		t.Fatalf("recorded = %v, want %v", rec.statuses, wantStatuses)
	}
	for i, it := range rend.results {
		if it.OK() != (it.StatusCode == 200) {
			t.Fatalf("line %d: OK() = %v for status %d", i, it.OK(), it.StatusCode)
		}
	}
}

func TestRunnerTransportErrorAborts(t *testing.T) {
	req := &fakeRequester{failAt: 3}
	rend := &recordingRenderer{}
	r := runner.New(runner.Options{
		Limit:     10,
		Requester: req,
		Renderer:  rend,
		Sleep:     (&recordingSleeper{}).sleep,
	})
	res, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected error from transport failure")
	}
	if res.Total != 2 {
		t.Fatalf("total = %d, want 2", res.Total)
	}
	if len(req.headers) != 3 {
		t.Fatalf("requester called %d times, want 3 (no retry)", len(req.headers))
	}
	if len(rend.results) != 2 {
		t.Fatalf("rendered %d lines, want 2", len(rend.results))
	}
	if rend.events[len(rend.events)-1] != "end" {
		t.Fatalf("renderer not ended on failure: %v", rend.events)
	}
	if want := "request #2: dial tcp: connection refused"; err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestRunnerUnboundedRunsUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := &fakeRequester{}
	req.onCall = func(call int) {
		if call == 5 {
			cancel()
		}
	}
	rend := &recordingRenderer{}
	r := runner.New(runner.Options{
		Limit:     0,
		Requester: req,
		Renderer:  rend,
		Sleep:     (&recordingSleeper{}).sleep,
	})

	res, err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(req.headers) != 5 {
		t.Fatalf("requests sent = %d, want 5", len(req.headers))
	}
	if _, ok := rend.progress[0].(runner.Unbounded); !ok {
		t.Fatalf("progress = %#v, want Unbounded", rend.progress[0])
	}
	if res.Total != 4 && res.Total != 5 {
		t.Fatalf("total = %d", res.Total)
	}
}

func TestRunnerUnboundedHasNoImplicitCap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := &fakeRequester{}
	req.onCall = func(call int) {
		if call == 1000 {
			cancel()
		}
	}
	r := runner.New(runner.Options{Requester: req, Sleep: (&recordingSleeper{}).sleep})
	if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(req.headers) != 1000 {
		t.Fatalf("requests sent = %d, want 1000", len(req.headers))
	}
}

func TestRunnerDelayIsPassedToSleeper(t *testing.T) {
	sleeper := &recordingSleeper{}
	r := runner.New(runner.Options{
		Limit:     2,
		Delay:     1500 * time.Millisecond,
		Requester: &fakeRequester{},
		Sleep:     sleeper.sleep,
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []time.Duration{1500 * time.Millisecond, 1500 * time.Millisecond}
	if !reflect.DeepEqual(sleeper.calls, want) {
		t.Fatalf("sleeps = %v, want %v", sleeper.calls, want)
	}
}

func TestRunnerRealSleepHonorsDelay(t *testing.T) {
	r := runner.New(runner.Options{
		Limit:     3,
		Delay:     20 * time.Millisecond,
		Requester: &fakeRequester{},
	})
	start := time.Now()
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("run took %s, want at least 3 delays", elapsed)
	}
}

func TestRunnerCancelInterruptsSleep(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	r := runner.New(runner.Options{
		Limit:     2,
		Delay:     time.Hour,
		Requester: &fakeRequester{},
	})
	start := time.Now()
	res, err := r.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want deadline exceeded", err)
	}
	if res.Total != 1 {
		t.Fatalf("total = %d, want 1", res.Total)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("sleep was not interrupted")
	}
}

func TestRunnerWithoutRequester(t *testing.T) {
	if _, err := runner.New(runner.Options{Limit: 1}).Run(context.Background()); err == nil {
		t.Fatal("expected error without requester")
	}
}

func TestRunnerRepeatedRunsAreIdentical(t *testing.T) {
	run := func() []runner.Iteration {
		rend := &recordingRenderer{}
		r := runner.New(runner.Options{
			Limit:             4,
			SpoofForwardedFor: true,
			Requester:         &fakeRequester{statuses: []int{200, 429}},
			Renderer:          rend,
			Sleep:             (&recordingSleeper{}).sleep,
		})
		if _, err := r.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return rend.results
	}
	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ: %+v vs %+v", first, second)
	}
}
