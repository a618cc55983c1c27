package models

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Layout runes.
const (
	EMPTY   = '.'
	BARRIER = '#'
	START   = 'S'
	END     = 'E'
	OPEN    = 'o'
	CLOSED  = 'x'
	PATH    = '*'
)

var (
	ErrNonSquareLayout = errors.New("models: layout rows must form a square")
	ErrLayoutRune      = errors.New("models: unknown layout rune")
	ErrDuplicateCell   = errors.New("models: layout has more than one start or end")
)

// A small layout for development, and a larger one with a corridor around a
// walled block, for exercising the search visually.
var (
	DebugLayout []string = []string{
		"S.....",
		".####.",
		"....#.",
		"###.#.",
		"....#.",
		".####E",
	}

	FullLayout []string = []string{
		"S.................#.",
		"..###########.....#.",
		"..#.........#.###.#.",
		"..#.#######.#...#.#.",
		"..#.#.....#.###.#...",
		"..#.#.###.#...#.###.",
		"..#.#.#E#.###.#.....",
		"..#.#.#.#...#.#####.",
		"..#.#.#.###.#.....#.",
		"..#.#.#...#.#####.#.",
		"..#.#.###.#.....#.#.",
		"..#.#.....#####.#.#.",
		"..#.#########...#.#.",
		"..#...........###.#.",
		"..#############...#.",
		"..................#.",
		"#################.#.",
		"....................",
		".##################.",
		"....................",
	}
)

var runeStates = map[rune]State{
	EMPTY:   Empty,
	BARRIER: Barrier,
	START:   Start,
	END:     End,
	OPEN:    Open,
	CLOSED:  Closed,
	PATH:    Path,
}

// Rune returns the layout rune for the state.
func (s State) Rune() rune {
	for r, state := range runeStates {
		if state == s {
			return r
		}
	}
	return '?'
}

// ParseLayout converts a square layout of rows into a grid. Start and end are
// returned when present, nil otherwise.
func ParseLayout(rows []string) (grid *Grid, start, end *Cell, err error) {
	if grid, err = NewGrid(len(rows)); err != nil {
		return nil, nil, nil, err
	}

	for row, line := range rows {
		runes := []rune(line)
		if len(runes) != len(rows) {
			return nil, nil, nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrNonSquareLayout, row, len(runes), len(rows))
		}
		for col, r := range runes {
			state, ok := runeStates[r]
			if !ok {
				return nil, nil, nil, fmt.Errorf("%w: %q at %v", ErrLayoutRune, r, Position{row, col})
			}

			cell := grid.cells[row][col]
			cell.state = state
			switch state {
			case Start:
				if start != nil {
					return nil, nil, nil, fmt.Errorf("%w: second start at %v", ErrDuplicateCell, cell.Pos())
				}
				start = cell
			case End:
				if end != nil {
					return nil, nil, nil, fmt.Errorf("%w: second end at %v", ErrDuplicateCell, cell.Pos())
				}
				end = cell
			}
		}
	}

	return
}

// Layout renders the grid back into layout rows.
func (g *Grid) Layout() []string {
	rows := make([]string, 0, g.size)
	for _, line := range g.cells {
		var sb strings.Builder
		for _, c := range line {
			sb.WriteRune(c.state.Rune())
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// Show the grid, for visual reference.
func (g *Grid) Show(w io.Writer) {
	showStates(w, g.States())
}

// Show the frame's grid, for visual reference.
func (f Frame) Show(w io.Writer) {
	showStates(w, f.States)
}

func showStates(w io.Writer, states [][]State) {
	for _, row := range states {
		for _, state := range row {
			fmt.Fprintf(w, "%c ", state.Rune())
		}
		fmt.Fprintln(w)
	}
}
