package runner

// Progress describes how the progress indicator should be drawn. It is
// either Bounded or Unbounded.
type Progress interface {
	isProgress()
}

// Bounded progress has a known number of steps.
type Bounded struct {
	Total int
}

// Unbounded progress runs until the operator stops the process.
type Unbounded struct{}

func (Bounded) isProgress()   {}
func (Unbounded) isProgress() {}

// ProgressFor selects the progress kind for a request limit.
func ProgressFor(limit int) Progress {
	if limit > 0 {
		return Bounded{Total: limit}
	}
	return Unbounded{}
}
