package models

// Status describes where the session's search lifecycle is.
type Status string

const (
	Idle      Status = "idle"
	Running   Status = "running"
	Found     Status = "found"
	NoPath    Status = "no-path"
	Cancelled Status = "cancelled"
)

// Frame is a render snapshot of the grid. States is a copy, so frames may be
// handed to other goroutines while the grid keeps changing.
type Frame struct {
	RunID      string    `json:"runId,omitempty"`
	Status     Status    `json:"status"`
	Step       int       `json:"step"`
	PathLength int       `json:"pathLength"`
	States     [][]State `json:"states"`
}

// NewFrame snapshots the grid's states.
func NewFrame(g *Grid, status Status) Frame {
	return Frame{
		Status: status,
		States: g.States(),
	}
}
