// Package runner provides the request loop of ratelimit-probe.
//
// The loop is strictly sequential: build a request, send it, report the
// result, sleep, repeat. It stops after a fixed number of requests or, with a
// limit of zero, runs until the context is canceled.
//
// # Basic Usage
//
//	r := runner.New(runner.Options{
//		Limit:             100,
//		Delay:             time.Second,
//		SpoofForwardedFor: true,
//		Requester:         myRequester,
//		Renderer:          myRenderer,
//	})
//	result, err := r.Run(ctx)
//
// # Requester Interface
//
// The [Requester] sends one request with the loop's header set and reports
// its status and round-trip time. Only transport failures are errors; a
// non-200 status is an ordinary [Response].
//
// # Rendering
//
// A [Renderer] receives [Progress] once ([Bounded] when a limit is set,
// [Unbounded] otherwise), then one [Iteration] and one Advance per request.
//
// # Spoofed Addresses
//
// With SpoofForwardedFor set, every request carries an X-Forwarded-For
// header holding a fresh random IPv4 address. The header lives in the loop's
// own header map, so once set it is present on every later request.
package runner
