package fastview

import (
	"context"
	"fmt"
	"html/template"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// testView renders each view-model as a single text update.
type testView struct {
	id      string
	updates chan []EleUpdate
}

func newTestView(id string) ViewBuilderFunc[string] {
	return func(done <-chan struct{}, vms <-chan string) ViewComponent {
		tv := &testView{id: id, updates: make(chan []EleUpdate)}
		go func() {
			defer close(tv.updates)
			for vm := range vms {
				select {
				case tv.updates <- []EleUpdate{{EleId: tv.id, Ops: []Op{{Key: TextContent, Value: vm}}}}:
				case <-done:
					return
				}
			}
		}()
		return tv
	}
}

func (tv *testView) Updates() <-chan []EleUpdate { return tv.updates }

func (tv *testView) Parse(t *template.Template) (string, error) {
	_, err := t.Parse(`{{ define "` + tv.id + `" }}<span id="` + tv.id + `"></span>{{ end }}`)
	return tv.id, err
}

func TestViewBuilder(t *testing.T) {
	Convey("Given a view builder", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		input := make(chan int)
		toText := func(i int) string { return fmt.Sprintf("v%d", i) }

		Convey("When no views were added", func() {
			_, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(input, toText).
				Build()
			So(err, ShouldEqual, ErrNoViews)
		})

		Convey("When no model was set", func() {
			_, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithView(newTestView("a")).
				Build()
			So(err, ShouldEqual, ErrNoModel)
		})

		Convey("When the model source is nil", func() {
			_, err := NewViewBuilder[int, string]().
				WithModel(nil, toText).
				WithView(newTestView("a")).
				Build()
			So(err, ShouldEqual, ErrNoModel)
		})

		Convey("When it builds several views", func() {
			views, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(input, toText).
				WithView(newTestView("a")).
				WithView(newTestView("b")).
				Build()
			So(err, ShouldBeNil)
			So(views, ShouldHaveLength, 2)

			Convey("Then every view receives each converted model", func() {
				go func() { input <- 7 }()

				// Broadcast may deliver to the views in either order.
				got := map[string]string{}
				for len(got) < 2 {
					select {
					case updates := <-views[0].Updates():
						got[updates[0].EleId] = updates[0].Ops[0].Value
					case updates := <-views[1].Updates():
						got[updates[0].EleId] = updates[0].Ops[0].Value
					}
				}
				So(got, ShouldResemble, map[string]string{"a": "v7", "b": "v7"})
			})

			Convey("Then the views keep their order and parse", func() {
				tmpl := template.New("root")
				name, err := views[1].Parse(tmpl)
				So(err, ShouldBeNil)
				So(name, ShouldEqual, "b")
				So(tmpl.Lookup("b"), ShouldNotBeNil)
			})
		})
	})
}
