package output

import (
	"fmt"
	"io"

	"github.com/torosent/ratelimit-probe/internal/runner"
)

// PlainRenderer prints one uncolored line per request and no live region.
// It is used when stdout is not a terminal or --plain is set.
type PlainRenderer struct {
	w      io.Writer
	styles Styles
}

func NewPlainRenderer(w io.Writer) *PlainRenderer {
	if w == nil {
		w = io.Discard
	}
	return &PlainRenderer{w: w, styles: PlainStyles()}
}

func (r *PlainRenderer) Begin(runner.Progress) {}

func (r *PlainRenderer) Result(it runner.Iteration) {
	fmt.Fprintln(r.w, ResultLine(r.styles, it))
}

func (r *PlainRenderer) Advance() {}

func (r *PlainRenderer) End() {}
