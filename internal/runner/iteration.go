package runner

import (
	"net/http"
	"time"
)

// Iteration is the outcome of one pass through the loop.
type Iteration struct {
	Index      int   // 0-based
	ElapsedMs  int64 // round-trip time rounded to the nearest millisecond
	StatusCode int
}

// OK reports whether the response was a 200.
func (it Iteration) OK() bool {
	return it.StatusCode == http.StatusOK
}

// RoundMillis rounds d to the nearest millisecond, halves away from zero.
// Negative durations count as zero.
func RoundMillis(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond).Milliseconds()
}
