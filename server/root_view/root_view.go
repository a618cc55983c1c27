package root_view

import (
	"context"
	"html/template"
	"time"

	"astarviz/models"
	"astarviz/server/cell_views"
	"astarviz/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// batchRate bounds how often ele-updates are sent to the client.
const batchRate = time.Millisecond * 40

// RootView is the main page's index.html, which is the container for all the
// view components and the wiring for their channels.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// NewRootView creates the main page and the views it contains, fed by frames.
func NewRootView(
	ctx context.Context,
	frames <-chan models.Frame,
) (*RootView, error) {
	views, err := fastview.NewViewBuilder[models.Frame, cell_views.Board]().
		WithContext(ctx).
		WithModel(frames, cell_views.Convert).
		WithView(func(
			done <-chan struct{},
			boards <-chan cell_views.Board) fastview.ViewComponent {
			return cell_views.NewStatusView(done, boards)
		}).
		WithView(func(
			done <-chan struct{},
			boards <-chan cell_views.Board) fastview.ViewComponent {
			return cell_views.NewGridView(done, boards)
		}).
		Build()
	if err != nil {
		return nil, err
	}

	return &RootView{
		views:   views,
		updates: fanIn(ctx.Done(), views, batchRate),
	}, nil
}

// Updates returns the main ele-update channel for all the views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the main page's template, with websocket bootstrap and input
// handling code, and returns its name. It also sets up the func-map that child
// components depend on.
func (rv *RootView) Parse(
	parent *template.Template,
) (name string, err error) {
	rt := parent.Funcs(
		template.FuncMap{
			"add":  func(i, j int) int { return i + j },
			"sub":  func(i, j int) int { return i - j },
			"mult": func(i, j int) int { return i * j },
			"div":  func(i, j int) int { return i / j },
		})

	viewTemplates := []string{}
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(rt)
		if parseErr != nil {
			err = parseErr
			return
		}
		viewTemplates = append(viewTemplates, tname)
	}

	var bodySpec string
	for _, tname := range viewTemplates {
		bodySpec += (`{{ template "` + tname + `" . }}`)
	}

	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<title>A* path finding</title>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + location.host + "/ws");
				ws.onerror = function (event) {
					console.log('WebSocket error: ', event);
				};

				// The server pushes view updates: find these eles and update them.
				ws.onmessage = function (event) {
					const items = JSON.parse(event.data);
					for (const update of items) {
						const ele = document.getElementById(update.EleId);
						if (!ele) {
							continue;
						}
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value);
							}
						}
					}
				};

				function send(method, path) {
					fetch(path, { method: method }).then(function (resp) {
						if (!resp.ok) {
							resp.text().then(function (msg) { console.log(path, resp.status, msg); });
						}
					});
				}

				// Left button paints start, end, then barriers; right button erases.
				function onCell(event) {
					const rect = event.target;
					if (!rect.dataset || rect.dataset.row === undefined) {
						return;
					}
					const path = "/api/cells/" + rect.dataset.row + "/" + rect.dataset.col;
					if (event.buttons & 1) {
						send("POST", path);
					} else if (event.buttons & 2) {
						send("DELETE", path);
					}
				}

				window.addEventListener("load", function () {
					const grid = document.getElementById("grid");
					grid.addEventListener("mousedown", onCell);
					grid.addEventListener("mouseover", onCell);
				});

				document.addEventListener("keydown", function (event) {
					if (event.code === "Space") {
						event.preventDefault();
						send("POST", "/api/search");
					} else if (event.key === "Escape") {
						send("POST", "/api/search/cancel");
					} else if (event.key === "c") {
						send("POST", "/api/clear");
					}
				});
			</script>
		</head>
		<body>
		<div style="font-family: monospace;">
			left click: start, end, barriers &nbsp; right click: erase &nbsp;
			space: search &nbsp; esc: cancel &nbsp; c: clear
		</div>
		` + bodySpec + `
		</body></html>
	{{ end }}
	`

	_, err = rt.Parse(indexTemplate)
	return
}

// fanIn aggregates the views' ele-update channels into a single, batched channel.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(
		done,
		channerics.Merge(done, inputs...),
		rate)
}

// batchify collects updates and emits them at most once per rate, over-writing
// previously received values for the same ele-id so only the latest values are
// sent. When nobody is receiving the batch keeps accumulating, hence the source
// is always drained and upstream senders never block.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		order := []string{}
		ticker := channerics.NewTicker(done, rate)
		input := channerics.OrDone(done, source)
		for {
			select {
			case <-done:
				return
			case updates, ok := <-input:
				if !ok {
					return
				}
				for _, update := range updates {
					if _, seen := data[update.EleId]; !seen {
						order = append(order, update.EleId)
					}
					data[update.EleId] = update
				}
			case <-ticker:
				if len(data) == 0 {
					continue
				}
				select {
				case output <- orderedVals(data, order):
					data = map[string]fastview.EleUpdate{}
					order = order[:0]
				default:
				}
			}
		}
	}()

	return output
}

// returns the values of a map as a slice, in the order their keys were first seen
func orderedVals[T1 comparable, T2 any](mp map[T1]T2, order []T1) (sliced []T2) {
	sliced = make([]T2, 0, len(order))
	for _, k := range order {
		sliced = append(sliced, mp[k])
	}
	return
}
