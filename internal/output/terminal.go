package output

import (
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/torosent/ratelimit-probe/internal/runner"
)

// isTerminal reports whether w is attached to a terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewRenderer picks the live terminal renderer when w is a terminal and plain
// output was not requested, otherwise the plain renderer.
func NewRenderer(w io.Writer, plain bool, stats StatsSource) runner.Renderer {
	if plain || !isTerminal(w) {
		return NewPlainRenderer(w)
	}
	return NewTerminalRenderer(w, stats)
}

// TerminalRenderer drives a bubbletea program that keeps a spinner, progress
// bar and live latency figures below the printed result lines.
type TerminalRenderer struct {
	out     io.Writer
	stats   StatsSource
	styles  Styles
	now     func() time.Time
	opts    []tea.ProgramOption
	program *tea.Program
	done    chan struct{}
}

func NewTerminalRenderer(w io.Writer, stats StatsSource) *TerminalRenderer {
	return &TerminalRenderer{
		out:    w,
		stats:  stats,
		styles: NewStyles(lipgloss.NewRenderer(w)),
		now:    time.Now,
	}
}

func (r *TerminalRenderer) Begin(p runner.Progress) {
	model := newProgressModel(p, r.styles, r.stats, r.now)
	opts := append([]tea.ProgramOption{
		tea.WithOutput(r.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	}, r.opts...)
	r.program = tea.NewProgram(model, opts...)
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
}

// Result prints the line above the live region. Send hands the line to the
// event loop before returning, so lines keep the order they were produced
// in, and it gives up once the program has exited.
func (r *TerminalRenderer) Result(it runner.Iteration) {
	if r.program == nil {
		return
	}
	r.program.Send(tea.Println(ResultLine(r.styles, it))())
}

func (r *TerminalRenderer) Advance() {
	if r.program == nil {
		return
	}
	r.program.Send(advanceMsg{})
}

// End stops the program and waits for the final frame to be drawn.
func (r *TerminalRenderer) End() {
	if r.program == nil {
		return
	}
	r.program.Send(endMsg{})
	<-r.done
	r.program = nil
}
