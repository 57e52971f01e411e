package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	lowestTrackableMicros  = 1
	highestTrackableMicros = int64(10 * time.Minute / time.Microsecond)
	significantFigures     = 3
)

// Collector tracks latency and status codes for the requests of one run.
// It is safe for concurrent use: the runner records while the renderer reads.
type Collector struct {
	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	count      int64
	non200     int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
	statuses   map[int]int
}

// Snapshot is a point-in-time view of the collector.
type Snapshot struct {
	Count       int64
	Non200      int64
	MinLatency  time.Duration
	MaxLatency  time.Duration
	MeanLatency time.Duration
	P50Latency  time.Duration
	P90Latency  time.Duration
	P99Latency  time.Duration
	Statuses    []StatusCount
}

func NewCollector() *Collector {
	return &Collector{
		hist:     hdrhistogram.New(lowestTrackableMicros, highestTrackableMicros, significantFigures),
		statuses: make(map[int]int),
	}
}

// RecordRequest records one completed request.
func (c *Collector) RecordRequest(latency time.Duration, statusCode int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	us := latency.Microseconds()
	if us < c.hist.LowestTrackableValue() {
		us = c.hist.LowestTrackableValue()
	}
	if us > c.hist.HighestTrackableValue() {
		us = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(us)

	if c.count == 0 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}
	c.sumLatency += latency
	c.count++
	if statusCode != http.StatusOK {
		c.non200++
	}
	c.statuses[statusCode]++
}

// Snapshot returns the current aggregates. Percentiles are zero until the
// first request is recorded.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Count:      c.count,
		Non200:     c.non200,
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
		Statuses:   sortStatusCounts(c.statuses),
	}
	if c.count > 0 {
		s.MeanLatency = c.sumLatency / time.Duration(c.count)
		s.P50Latency = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		s.P90Latency = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		s.P99Latency = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}
	return s
}
