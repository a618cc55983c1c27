package cell_views

import (
	"fmt"
	"html/template"

	"astarviz/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// StatusView shows the run status, step count and path length as text.
type StatusView struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewStatusView(
	done <-chan struct{},
	boards <-chan Board,
) (sv *StatusView) {
	sv = &StatusView{id: "status"}
	sv.updates = channerics.Convert(done, boards, sv.onUpdate)
	return
}

func (sv *StatusView) Updates() <-chan []fastview.EleUpdate {
	return sv.updates
}

func (sv *StatusView) onUpdate(board Board) []fastview.EleUpdate {
	text := func(suffix, value string) fastview.EleUpdate {
		return fastview.EleUpdate{
			EleId: sv.id + "-" + suffix,
			Ops:   []fastview.Op{{Key: fastview.TextContent, Value: value}},
		}
	}
	return []fastview.EleUpdate{
		text("text", board.Status),
		text("step", fmt.Sprintf("%d", board.Step)),
		text("path", pathText(board)),
	}
}

func pathText(board Board) string {
	if board.PathLength == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", board.PathLength)
}

func (sv *StatusView) Parse(t *template.Template) (name string, err error) {
	name = sv.id
	addedMap := template.FuncMap{
		"pathText": pathText,
	}
	_, err = t.Funcs(addedMap).Parse(
		`{{ define "` + name + `" }}
		<div id="` + sv.id + `" style="font-family: monospace; padding: 8px 0;">
			status: <span id="` + sv.id + `-text">{{ .Status }}</span>
			&nbsp; steps: <span id="` + sv.id + `-step">{{ .Step }}</span>
			&nbsp; path length: <span id="` + sv.id + `-path">{{ pathText . }}</span>
		</div>
		{{ end }}`)
	return
}
