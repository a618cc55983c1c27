// cell_views contains views derived from the Board view-model.
package cell_views

import (
	"astarviz/models"
)

// Cell is the view-model of one grid cell. As a rule of thumb, Cell fields
// should be immediately usable as view parameters.
type Cell struct {
	Row, Col int
	Fill     string
}

// Board is the view-model of a whole frame: the cells plus the run's progress.
type Board struct {
	Cells      [][]Cell
	Status     string
	Step       int
	PathLength int
	RunID      string
}

// Convert transforms a frame into a Board for consumption by the views.
func Convert(frame models.Frame) Board {
	cells := make([][]Cell, len(frame.States))
	for row, states := range frame.States {
		cells[row] = make([]Cell, len(states))
		for col, state := range states {
			cells[row][col] = Cell{
				Row:  row,
				Col:  col,
				Fill: Fill(state),
			}
		}
	}

	return Board{
		Cells:      cells,
		Status:     string(frame.Status),
		Step:       frame.Step,
		PathLength: frame.PathLength,
		RunID:      frame.RunID,
	}
}

// Fill is the svg fill color of a cell state.
func Fill(state models.State) (fill string) {
	switch state {
	case models.Empty:
		fill = "white"
	case models.Open:
		fill = "rgb(0,255,0)"
	case models.Closed:
		fill = "rgb(255,0,0)"
	case models.Barrier:
		fill = "black"
	case models.Start:
		fill = "rgb(255,165,0)"
	case models.End:
		fill = "rgb(64,224,208)"
	case models.Path:
		fill = "rgb(128,0,128)"
	default:
		fill = "grey"
	}
	return
}
