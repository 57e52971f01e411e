package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/torosent/ratelimit-probe/internal/runner"
)

func TestResultLine(t *testing.T) {
	tests := []struct {
		name string
		it   runner.Iteration
		want string
	}{
		{
			name: "ok",
			it:   runner.Iteration{Index: 0, ElapsedMs: 12, StatusCode: 200},
			want: "#0      12ms      200",
		},
		{
			name: "rate limited",
			it:   runner.Iteration{Index: 41, ElapsedMs: 3, StatusCode: 429},
			want: "#41     3ms       429",
		},
		{
			name: "wide values",
			it:   runner.Iteration{Index: 1234567, ElapsedMs: 123456, StatusCode: 503},
			want: "#1234567 123456ms  503",
		},
		{
			name: "index wider than its column",
			it:   runner.Iteration{Index: 12345678, ElapsedMs: 5, StatusCode: 503},
			want: "#12345678 5ms       503",
		},
		{
			name: "latency wider than its column",
			it:   runner.Iteration{Index: 7, ElapsedMs: 1234567890, StatusCode: 200},
			want: "#7      1234567890ms 200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResultLine(PlainStyles(), tt.it); got != tt.want {
				t.Errorf("ResultLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResultLineWithoutColorProfile(t *testing.T) {
	// A buffer is not a terminal, so the renderer emits no escape sequences.
	styles := NewStyles(lipgloss.NewRenderer(&bytes.Buffer{}))
	got := ResultLine(styles, runner.Iteration{Index: 2, ElapsedMs: 9, StatusCode: 200})
	if strings.Contains(got, "\x1b[") {
		t.Errorf("unexpected escape sequence in %q", got)
	}
	if !strings.HasPrefix(got, "#2") || !strings.HasSuffix(got, "200") {
		t.Errorf("ResultLine() = %q", got)
	}
}

func TestStatusStyles(t *testing.T) {
	styles := NewStyles(lipgloss.NewRenderer(&bytes.Buffer{}))
	if styles.OK.GetForeground() != ColorSecondary {
		t.Errorf("OK foreground = %v, want green", styles.OK.GetForeground())
	}
	if styles.Fail.GetForeground() != ColorError {
		t.Errorf("Fail foreground = %v, want red", styles.Fail.GetForeground())
	}
	if styles.Index.GetForeground() != ColorWarning {
		t.Errorf("Index foreground = %v, want yellow", styles.Index.GetForeground())
	}
	if styles.Latency.GetForeground() != ColorInfo {
		t.Errorf("Latency foreground = %v, want blue", styles.Latency.GetForeground())
	}
}
