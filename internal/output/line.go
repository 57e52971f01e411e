package output

import (
	"fmt"
	"strconv"

	"github.com/torosent/ratelimit-probe/internal/runner"
)

const (
	indexColumnWidth   = 8
	latencyColumnWidth = 10
)

// ResultLine formats one completed request as `#index  Nms  status`. Columns
// are padded before styling so escape sequences never shift alignment, and
// values wider than their column still keep one space before the next.
func ResultLine(s Styles, it runner.Iteration) string {
	index := fmt.Sprintf("%-*s ", indexColumnWidth-1, "#"+strconv.Itoa(it.Index))
	latency := fmt.Sprintf("%-*s ", latencyColumnWidth-1, strconv.FormatInt(it.ElapsedMs, 10)+"ms")

	status := s.Fail
	if it.OK() {
		status = s.OK
	}
	return s.Index.Render(index) + s.Latency.Render(latency) + status.Render(strconv.Itoa(it.StatusCode))
}
