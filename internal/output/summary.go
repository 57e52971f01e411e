package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/torosent/ratelimit-probe/internal/config"
)

// PrintSummary writes the startup block: one line per run setting, values
// aligned on a common column.
func PrintSummary(w io.Writer, cfg config.Config) {
	fmt.Fprintf(w, "URL:                     %s\n", cfg.TargetURL)
	fmt.Fprintf(w, "Method:                  %s\n", cfg.Method)
	fmt.Fprintf(w, "Delay:                   %s s\n", strconv.FormatFloat(cfg.Delay, 'f', -1, 64))
	fmt.Fprintf(w, "Limit:                   %d\n", cfg.Limit)
	fmt.Fprintf(w, "Random X-Forwarded-For:  %t\n", cfg.RandomForwardedFor)
}

// PrintInterrupted reports an operator interrupt.
func PrintInterrupted(w io.Writer, sent int) {
	noun := "requests"
	if sent == 1 {
		noun = "request"
	}
	fmt.Fprintf(w, "interrupted after %d %s\n", sent, noun)
}
