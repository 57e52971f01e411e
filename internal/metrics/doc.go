// Package metrics tracks latency and status codes while a probe runs.
//
// A [Collector] is fed by the request loop and read by the live progress
// display:
//
//	collector := metrics.NewCollector()
//	collector.RecordRequest(latency, resp.StatusCode)
//	snap := collector.Snapshot()
//	fmt.Printf("p50 %s p99 %s\n", snap.P50Latency, snap.P99Latency)
//
// Latencies are kept in an HdrHistogram with microsecond resolution between
// 1µs and 10 minutes at 3 significant figures; slower requests are clamped to
// the upper bound. Nothing recorded here is exported or persisted.
package metrics
