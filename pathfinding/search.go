// pathfinding implements A* over a models.Grid: 4-directional moves of unit
// cost, Manhattan heuristic, and first-in first-out tie-breaking between equal
// f-scores so that runs over the same input are reproducible.
package pathfinding

import (
	"context"
	"errors"
	"fmt"
	"math"

	"astarviz/models"
)

// ErrInvalidConfig is returned when a search is requested with missing,
// identical or foreign endpoints. No search is attempted.
var ErrInvalidConfig = errors.New("pathfinding: invalid search configuration")

// StepFunc is invoked once per expansion and once per reconstructed path cell.
// It is the only point at which Search yields to its caller, e.g. to render.
type StepFunc func()

// Result is the outcome of one search. Not finding a path and being cancelled
// are ordinary outcomes, not errors.
type Result struct {
	Found     bool
	Cancelled bool
	// Path holds the positions from start to end inclusive, when found.
	Path []models.Position
	// Cost is the g-score of the end cell, i.e. the number of moves, when found.
	Cost int
	// Expanded counts popped frontier items.
	Expanded int
	// CameFrom is the predecessor table as it stood when the search stopped.
	CameFrom map[models.Position]models.Position
}

// validate checks the call's preconditions.
func validate(grid *models.Grid, start, end *models.Cell) error {
	switch {
	case grid == nil:
		return fmt.Errorf("%w: nil grid", ErrInvalidConfig)
	case start == nil:
		return fmt.Errorf("%w: missing start", ErrInvalidConfig)
	case end == nil:
		return fmt.Errorf("%w: missing end", ErrInvalidConfig)
	case !grid.Owns(start):
		return fmt.Errorf("%w: start %v is not a cell of this grid", ErrInvalidConfig, start.Pos())
	case !grid.Owns(end):
		return fmt.Errorf("%w: end %v is not a cell of this grid", ErrInvalidConfig, end.Pos())
	case start == end:
		return fmt.Errorf("%w: start and end are both %v", ErrInvalidConfig, start.Pos())
	}
	return nil
}

// scores maps positions to path costs; absent entries are +infinity.
type scores map[models.Position]int

func (s scores) get(p models.Position) int {
	if v, ok := s[p]; ok {
		return v
	}
	return math.MaxInt
}

// Search runs A* from start to end over the grid's current neighbor lists, which
// the caller must have refreshed since the last barrier change. Cells pushed onto
// the frontier are marked Open and expanded cells Closed; on success the path is
// marked and the endpoints restored to Start and End.
//
// ctx is polled once per iteration. When it is done the search stops with
// Cancelled set, leaving the grid partially marked; reset it before running again.
func Search(
	ctx context.Context,
	grid *models.Grid,
	start *models.Cell,
	end *models.Cell,
	onStep StepFunc,
) (Result, error) {
	if err := validate(grid, start, end); err != nil {
		return Result{}, err
	}
	if onStep == nil {
		onStep = func() {}
	}

	goal := end.Pos()
	gScore := scores{start.Pos(): 0}
	fScore := scores{start.Pos(): Manhattan(start.Pos(), goal)}
	cameFrom := make(map[models.Position]models.Position)

	open := newFrontier()
	open.Push(fScore.get(start.Pos()), start)

	result := Result{CameFrom: cameFrom}
	for open.Len() > 0 {
		if ctx.Err() != nil {
			result.Cancelled = true
			return result, nil
		}

		current := open.Pop()
		result.Expanded++

		if current == end {
			result.Found = true
			result.Cost = gScore.get(goal)
			result.Path = reconstructPath(grid, cameFrom, start, end, onStep)
			return result, nil
		}

		tentative := gScore.get(current.Pos()) + 1
		for _, nb := range current.Neighbors() {
			pos := nb.Pos()
			if tentative >= gScore.get(pos) {
				continue
			}

			cameFrom[pos] = current.Pos()
			gScore[pos] = tentative
			fScore[pos] = tentative + Manhattan(pos, goal)
			if !open.Contains(nb) {
				open.Push(fScore[pos], nb)
				nb.MakeOpen()
			}
		}

		onStep()

		if current != start {
			current.MakeClosed()
		}
	}

	return result, nil
}

// reconstructPath walks the came-from links from end back to start, marking each
// cell but the start as Path and yielding after each mark, then restores the
// endpoints. It returns the positions in start-to-end order.
func reconstructPath(
	grid *models.Grid,
	cameFrom map[models.Position]models.Position,
	start *models.Cell,
	end *models.Cell,
	onStep StepFunc,
) []models.Position {
	path := []models.Position{end.Pos()}
	for current := end.Pos(); current != start.Pos(); {
		grid.Cell(current.Row, current.Col).MakePath()
		onStep()
		current = cameFrom[current]
		path = append(path, current)
	}
	end.MakeEnd()
	start.MakeStart()

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
