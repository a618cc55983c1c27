package cell_views

import (
	"fmt"
	"html/template"

	"astarviz/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// cellDim is the cell height/width size in pixels.
const cellDim = 14

// GridView draws the grid as an svg of cell rects, one per cell, filled per state.
type GridView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewGridView(
	done <-chan struct{},
	boards <-chan Board,
) (gv *GridView) {
	gv = &GridView{id: "grid"}
	gv.updates = channerics.Convert(done, boards, gv.onUpdate)
	return
}

func (gv *GridView) Updates() <-chan []fastview.EleUpdate {
	return gv.updates
}

// cellId is the element id of the rect at (row, col); the page script parses it back.
func cellId(row, col int) string {
	return fmt.Sprintf("cell-%d-%d", row, col)
}

// Returns the fill of every cell. Each update carries the full grid, so any
// single update brings the client fully up to date.
func (gv *GridView) onUpdate(board Board) (ops []fastview.EleUpdate) {
	for _, row := range board.Cells {
		for _, cell := range row {
			ops = append(ops, fastview.EleUpdate{
				EleId: cellId(cell.Row, cell.Col),
				Ops: []fastview.Op{
					{Key: "fill", Value: cell.Fill},
				},
			})
		}
	}
	return
}

// Parse adds the grid svg template. Rows run down the y axis, columns along x.
func (gv *GridView) Parse(t *template.Template) (name string, err error) {
	name = gv.id
	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div id="` + gv.id + `-container">
			{{ $cell_dim := ` + fmt.Sprintf("%d", cellDim) + ` }}
			{{ $size := len .Cells }}
			<svg id="` + gv.id + `"
				width="{{ add (mult $cell_dim $size) 1 }}px"
				height="{{ add (mult $cell_dim $size) 1 }}px"
				style="shape-rendering: crispEdges;"
				oncontextmenu="return false;">
				{{ range $row := .Cells }}
					{{ range $cell := $row }}
					<rect id="cell-{{ $cell.Row }}-{{ $cell.Col }}"
						data-row="{{ $cell.Row }}" data-col="{{ $cell.Col }}"
						x="{{ mult $cell.Col $cell_dim }}"
						y="{{ mult $cell.Row $cell_dim }}"
						width="{{ $cell_dim }}"
						height="{{ $cell_dim }}"
						fill="{{ $cell.Fill }}"
						stroke="grey"
						stroke-width="1"/>
					{{ end }}
				{{ end }}
			</svg>
		</div>
		{{ end }}`)
	return
}
