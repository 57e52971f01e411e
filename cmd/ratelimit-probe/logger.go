package main

import (
	"fmt"
	"io"
	"sync"
)

// stderrLogger writes operator notices. It is shared with the OTel exporter,
// which reports failures from its own goroutine.
type stderrLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func newStderrLogger(w io.Writer) *stderrLogger {
	return &stderrLogger{w: w}
}

func (l *stderrLogger) Println(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, msg)
}

func (l *stderrLogger) LogError(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[ratelimit-probe] %v\n", err)
}
