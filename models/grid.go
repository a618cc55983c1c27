// models contains the grid model: cells, their states and the neighbor
// relations the search runs over.
package models

import (
	"errors"
	"fmt"
)

// MinGridSize is the smallest grid on which a start and end can both be placed.
const MinGridSize = 2

// ErrGridTooSmall is returned when a grid dimension is below MinGridSize.
var ErrGridTooSmall = errors.New("models: grid size must be at least 2")

// Grid is a square N×N collection of cells. The grid owns its cells; neighbor
// lists are back-references into the same grid and are only as fresh as the last
// call to UpdateNeighbors or UpdateAllNeighbors.
type Grid struct {
	size  int
	cells [][]*Cell
}

// NewGrid builds a size×size grid of Empty cells.
func NewGrid(size int) (*Grid, error) {
	if size < MinGridSize {
		return nil, fmt.Errorf("%w: got %d", ErrGridTooSmall, size)
	}

	cells := make([][]*Cell, 0, size)
	for row := 0; row < size; row++ {
		cells = append(cells, make([]*Cell, 0, size))
		for col := 0; col < size; col++ {
			cells[row] = append(cells[row], newCell(row, col))
		}
	}

	return &Grid{
		size:  size,
		cells: cells,
	}, nil
}

// Size returns the grid dimension N.
func (g *Grid) Size() int { return g.size }

// InBounds reports whether (row, col) addresses a cell of this grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.size && col >= 0 && col < g.size
}

// Cell returns the cell at (row, col), or nil when out of range.
func (g *Grid) Cell(row, col int) *Cell {
	if !g.InBounds(row, col) {
		return nil
	}
	return g.cells[row][col]
}

// Owns reports whether c is this grid's cell at c's coordinates, as opposed to a
// cell of some other grid instance.
func (g *Grid) Owns(c *Cell) bool {
	return c != nil && g.Cell(c.row, c.col) == c
}

// Neighbor offsets, in the fixed order down, up, right, left. The order does not
// affect correctness but makes exploration order reproducible.
var neighborOffsets = [4][2]int{
	{1, 0},
	{-1, 0},
	{0, 1},
	{0, -1},
}

// UpdateNeighbors replaces the cell's neighbor list with the in-bounds,
// non-barrier cells immediately below, above, right and left of it.
// This must be re-run whenever barrier states change before a search.
func (g *Grid) UpdateNeighbors(c *Cell) {
	c.neighbors = c.neighbors[:0]
	for _, offset := range neighborOffsets {
		nb := g.Cell(c.row+offset[0], c.col+offset[1])
		if nb != nil && !nb.IsBarrier() {
			c.neighbors = append(c.neighbors, nb)
		}
	}
}

// UpdateAllNeighbors recomputes every cell's neighbor list.
func (g *Grid) UpdateAllNeighbors() {
	g.Visit(g.UpdateNeighbors)
}

// ResetSearch returns cells marked by a previous search (Open, Closed, Path) to
// Empty, leaving barriers and endpoints untouched.
func (g *Grid) ResetSearch() {
	g.Visit(func(c *Cell) {
		switch c.state {
		case Open, Closed, Path:
			c.Reset()
		}
	})
}

// Visits every cell using the passed function, row by row.
func (g *Grid) Visit(fn func(c *Cell)) {
	for row := range g.cells {
		for col := range g.cells[row] {
			fn(g.cells[row][col])
		}
	}
}

// States returns a copy of the state matrix, indexed [row][col].
func (g *Grid) States() [][]State {
	states := make([][]State, g.size)
	for row := range g.cells {
		states[row] = make([]State, g.size)
		for col, c := range g.cells[row] {
			states[row][col] = c.state
		}
	}
	return states
}
