package models

import "fmt"

// State is the logical state of a grid cell. Exactly one state holds at a time.
// How a state is drawn is the views' concern; nothing here knows about colors.
type State int

const (
	Empty State = iota
	Open
	Closed
	Barrier
	Start
	End
	Path
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Barrier:
		return "barrier"
	case Start:
		return "start"
	case End:
		return "end"
	case Path:
		return "path"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes states by name, e.g. in json frames.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Position identifies a cell within one grid. It is comparable, so it serves as
// the map key for anything keyed by cell identity.
type Position struct {
	Row, Col int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Cell is one addressable unit of the grid. Its identity is its position; the
// state and neighbor list mutate freely without affecting identity.
type Cell struct {
	row, col  int
	state     State
	neighbors []*Cell
}

func newCell(row, col int) *Cell {
	return &Cell{row: row, col: col}
}

func (c *Cell) Row() int { return c.row }
func (c *Cell) Col() int { return c.col }

// Pos returns the cell's identity.
func (c *Cell) Pos() Position {
	return Position{Row: c.row, Col: c.col}
}

func (c *Cell) State() State { return c.state }

// Neighbors returns the neighbor list computed by the last Grid.UpdateNeighbors call.
// The slice is shared with the cell and must not be modified.
func (c *Cell) Neighbors() []*Cell { return c.neighbors }

func (c *Cell) IsBarrier() bool { return c.state == Barrier }
func (c *Cell) IsStart() bool   { return c.state == Start }
func (c *Cell) IsEnd() bool     { return c.state == End }

// State transitions.
func (c *Cell) Reset()       { c.state = Empty }
func (c *Cell) MakeOpen()    { c.state = Open }
func (c *Cell) MakeClosed()  { c.state = Closed }
func (c *Cell) MakeBarrier() { c.state = Barrier }
func (c *Cell) MakeStart()   { c.state = Start }
func (c *Cell) MakeEnd()     { c.state = End }
func (c *Cell) MakePath()    { c.state = Path }

func (c *Cell) String() string {
	return fmt.Sprintf("%v:%v", c.Pos(), c.state)
}
