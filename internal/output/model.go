package output

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/torosent/ratelimit-probe/internal/metrics"
	"github.com/torosent/ratelimit-probe/internal/runner"
)

const (
	taskDescription = "Sending requests..."
	minBarWidth     = 10
	maxBarWidth     = 40
)

// StatsSource supplies the live latency figures shown next to the bar.
type StatsSource interface {
	Snapshot() metrics.Snapshot
}

type advanceMsg struct{}

type endMsg struct{}

// progressModel is the live region drawn beneath the result lines.
type progressModel struct {
	kind    runner.Progress
	done    int
	styles  Styles
	spinner spinner.Model
	bar     progress.Model
	stats   StatsSource
	snap    metrics.Snapshot
	now     func() time.Time
	start   time.Time
	elapsed time.Duration
	ended   bool
}

func newProgressModel(kind runner.Progress, styles Styles, stats StatsSource, now func() time.Time) progressModel {
	if now == nil {
		now = time.Now
	}
	return progressModel{
		kind:   kind,
		styles: styles,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.Spinner),
		),
		bar: progress.New(
			progress.WithGradient(string(ColorPrimary), string(ColorSecondary)),
			progress.WithWidth(maxBarWidth),
			progress.WithoutPercentage(),
		),
		stats: stats,
		now:   now,
		start: now(),
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case advanceMsg:
		m.done++
		m.elapsed = m.now().Sub(m.start)
		if m.stats != nil {
			m.snap = m.stats.Snapshot()
		}
		return m, nil

	case endMsg:
		m.ended = true
		m.elapsed = m.now().Sub(m.start)
		return m, tea.Quit

	case tea.WindowSizeMsg:
		w := msg.Width / 3
		if w < minBarWidth {
			w = minBarWidth
		}
		if w > maxBarWidth {
			w = maxBarWidth
		}
		m.bar.Width = w
		return m, nil

	case spinner.TickMsg:
		if m.ended {
			return m, nil
		}
		m.elapsed = m.now().Sub(m.start)
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	if m.ended {
		b.WriteString(m.styles.OK.Render("✓"))
	} else {
		b.WriteString(m.spinner.View())
	}
	b.WriteString(" ")
	b.WriteString(m.styles.Task.Render(taskDescription))
	b.WriteString(" ")

	switch p := m.kind.(type) {
	case runner.Bounded:
		pct := 0.0
		if p.Total > 0 {
			pct = float64(m.done) / float64(p.Total)
		}
		if pct > 1 {
			pct = 1
		}
		b.WriteString(m.bar.ViewAs(pct))
		fmt.Fprintf(&b, " %d/%d %3.0f%%", m.done, p.Total, pct*100)
	default:
		fmt.Fprintf(&b, "%d sent", m.done)
	}

	b.WriteString("  ")
	b.WriteString(m.styles.Subtle.Render(formatElapsed(m.elapsed)))
	b.WriteString("\n")

	if m.snap.Count > 0 {
		b.WriteString("  ")
		b.WriteString(m.styles.Subtle.Render(latencyLine(m.snap)))
		b.WriteString("\n")
		b.WriteString(statusLine(m.styles, m.snap))
		b.WriteString("\n")
	}
	return b.String()
}

// latencyLine summarizes the latency distribution recorded so far.
func latencyLine(s metrics.Snapshot) string {
	return fmt.Sprintf("min %s  mean %s  max %s  p50 %s  p90 %s  p99 %s",
		formatLatency(s.MinLatency),
		formatLatency(s.MeanLatency),
		formatLatency(s.MaxLatency),
		formatLatency(s.P50Latency),
		formatLatency(s.P90Latency),
		formatLatency(s.P99Latency),
	)
}

// statusLine lists response counts per status code, most frequent first,
// followed by the non-200 total once the target has refused anything.
func statusLine(st Styles, s metrics.Snapshot) string {
	var b strings.Builder
	for _, row := range s.Statuses {
		style := st.Fail
		if row.Code == http.StatusOK {
			style = st.OK
		}
		b.WriteString("  ")
		b.WriteString(style.Render(fmt.Sprintf("%d×%d", row.Code, row.Count)))
	}
	if s.Non200 > 0 {
		b.WriteString("  ")
		b.WriteString(st.Subtle.Render("non-200"))
		b.WriteString(" ")
		b.WriteString(st.Fail.Render(strconv.FormatInt(s.Non200, 10)))
	}
	return b.String()
}

// formatLatency prints a latency in whole milliseconds, like result lines.
func formatLatency(d time.Duration) string {
	return fmt.Sprintf("%dms", runner.RoundMillis(d))
}

// formatElapsed renders d as h:mm:ss.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
