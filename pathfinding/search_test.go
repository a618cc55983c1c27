package pathfinding

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"astarviz/models"

	. "github.com/smartystreets/goconvey/convey"
)

// mustLayout parses the layout and refreshes all neighbor lists.
func mustLayout(rows []string) (*models.Grid, *models.Cell, *models.Cell) {
	grid, start, end, err := models.ParseLayout(rows)
	So(err, ShouldBeNil)
	grid.UpdateAllNeighbors()
	return grid, start, end
}

// floodFill returns the 4-directional move distance from start to every cell
// reachable through non-barrier cells, independent of the neighbor lists.
func floodFill(grid *models.Grid, start models.Position) map[models.Position]int {
	dist := map[models.Position]int{start: 0}
	queue := []models.Position{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			next := models.Position{Row: p.Row + d[0], Col: p.Col + d[1]}
			c := grid.Cell(next.Row, next.Col)
			if c == nil || c.IsBarrier() {
				continue
			}
			if _, seen := dist[next]; !seen {
				dist[next] = dist[p] + 1
				queue = append(queue, next)
			}
		}
	}
	return dist
}

func adjacent(a, b models.Position) bool {
	return Manhattan(a, b) == 1
}

func countState(grid *models.Grid, state models.State) (n int) {
	grid.Visit(func(c *models.Cell) {
		if c.State() == state {
			n++
		}
	})
	return
}

// randomGrid builds a grid with random barriers and distinct random endpoints.
func randomGrid(rng *rand.Rand, size int, density float64) (*models.Grid, *models.Cell, *models.Cell) {
	grid, _ := models.NewGrid(size)
	start := grid.Cell(rng.Intn(size), rng.Intn(size))
	end := start
	for end == start {
		end = grid.Cell(rng.Intn(size), rng.Intn(size))
	}
	start.MakeStart()
	end.MakeEnd()
	grid.Visit(func(c *models.Cell) {
		if c != start && c != end && rng.Float64() < density {
			c.MakeBarrier()
		}
	})
	grid.UpdateAllNeighbors()
	return grid, start, end
}

func TestSearchScenarios(t *testing.T) {
	ctx := context.Background()

	Convey("When searching an open 5x5 grid corner to corner", t, func() {
		grid, _ := models.NewGrid(5)
		start, end := grid.Cell(0, 0), grid.Cell(4, 4)
		start.MakeStart()
		end.MakeEnd()
		grid.UpdateAllNeighbors()

		result, err := Search(ctx, grid, start, end, nil)
		So(err, ShouldBeNil)
		So(result.Found, ShouldBeTrue)
		So(result.Cost, ShouldEqual, 8)
		So(len(result.Path), ShouldEqual, 9)
		So(result.Path[0], ShouldResemble, start.Pos())
		So(result.Path[8], ShouldResemble, end.Pos())

		Convey("The path is marked and the endpoints restored", func() {
			So(start.State(), ShouldEqual, models.Start)
			So(end.State(), ShouldEqual, models.End)
			So(countState(grid, models.Path), ShouldEqual, 7)
			for _, p := range result.Path[1:8] {
				So(grid.Cell(p.Row, p.Col).State(), ShouldEqual, models.Path)
			}
		})
	})

	Convey("When the middle row of a 3x3 grid is a wall", t, func() {
		grid, start, end := mustLayout([]string{
			"S..",
			"###",
			"..E",
		})

		result, err := Search(ctx, grid, start, end, nil)
		So(err, ShouldBeNil)
		So(result.Found, ShouldBeFalse)
		So(result.Cancelled, ShouldBeFalse)
		So(result.Path, ShouldBeNil)

		Convey("The reachable side is closed and nothing is marked as path", func() {
			So(countState(grid, models.Path), ShouldEqual, 0)
			So(grid.Layout(), ShouldResemble, []string{
				"Sxx",
				"###",
				"..E",
			})
		})
	})

	Convey("When a single corridor winds around a filled interior", t, func() {
		layout := []string{
			"S....",
			"####.",
			".....",
			".####",
			"....E",
		}
		grid, start, end := mustLayout(layout)
		corridor := 0
		for _, row := range layout {
			for _, r := range row {
				if r != models.BARRIER {
					corridor++
				}
			}
		}

		result, err := Search(ctx, grid, start, end, nil)
		So(err, ShouldBeNil)
		So(result.Found, ShouldBeTrue)
		So(result.Cost, ShouldEqual, corridor-1)
		So(len(result.Path), ShouldEqual, corridor)
		So(grid.Layout(), ShouldResemble, []string{
			"S****",
			"####*",
			"*****",
			"*####",
			"****E",
		})
	})

	Convey("When start and end sit on one row of an open grid", t, func() {
		grid, _ := models.NewGrid(7)
		start, end := grid.Cell(3, 1), grid.Cell(3, 6)
		start.MakeStart()
		end.MakeEnd()
		grid.UpdateAllNeighbors()

		result, err := Search(ctx, grid, start, end, nil)
		So(err, ShouldBeNil)
		So(result.Cost, ShouldEqual, Manhattan(start.Pos(), end.Pos()))
		for _, p := range result.Path {
			So(p.Row, ShouldEqual, 3)
		}
	})

	Convey("When start and end sit on one column of an open grid", t, func() {
		grid, _ := models.NewGrid(7)
		start, end := grid.Cell(6, 2), grid.Cell(0, 2)
		start.MakeStart()
		end.MakeEnd()
		grid.UpdateAllNeighbors()

		result, err := Search(ctx, grid, start, end, nil)
		So(err, ShouldBeNil)
		So(result.Cost, ShouldEqual, 6)
		So(len(result.Path), ShouldEqual, 7)
	})
}

func TestSearchPreconditions(t *testing.T) {
	ctx := context.Background()

	Convey("When the search is misconfigured", t, func() {
		grid, _ := models.NewGrid(3)
		grid.UpdateAllNeighbors()
		calls := 0
		onStep := func() { calls++ }

		Convey("When start equals end", func() {
			c := grid.Cell(1, 1)
			_, err := Search(ctx, grid, c, c, onStep)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When an endpoint is missing", func() {
			_, err := Search(ctx, grid, nil, grid.Cell(0, 0), onStep)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
			_, err = Search(ctx, grid, grid.Cell(0, 0), nil, onStep)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When an endpoint belongs to another grid", func() {
			other, _ := models.NewGrid(5)
			_, err := Search(ctx, grid, grid.Cell(0, 0), other.Cell(4, 4), onStep)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the grid is nil", func() {
			_, err := Search(ctx, nil, grid.Cell(0, 0), grid.Cell(1, 1), onStep)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("No step is taken and no cell is marked", func() {
			c := grid.Cell(2, 2)
			_, _ = Search(ctx, grid, c, c, onStep)
			_, _ = Search(ctx, grid, nil, nil, onStep)
			So(calls, ShouldEqual, 0)
			So(countState(grid, models.Empty), ShouldEqual, 9)
		})
	})
}

func TestSearchCancellation(t *testing.T) {
	Convey("When the context is cancelled mid-search", t, func() {
		grid, _ := models.NewGrid(10)
		start, end := grid.Cell(0, 0), grid.Cell(9, 9)
		start.MakeStart()
		end.MakeEnd()
		grid.UpdateAllNeighbors()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		steps := 0
		result, err := Search(ctx, grid, start, end, func() {
			steps++
			if steps == 3 {
				cancel()
			}
		})

		So(err, ShouldBeNil)
		So(result.Cancelled, ShouldBeTrue)
		So(result.Found, ShouldBeFalse)
		So(result.Expanded, ShouldEqual, 3)
		So(countState(grid, models.Path), ShouldEqual, 0)
		So(countState(grid, models.Open), ShouldBeGreaterThan, 0)
	})

	Convey("When the context is already done", t, func() {
		grid, start, end := mustLayout([]string{"S.", ".E"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := Search(ctx, grid, start, end, nil)
		So(err, ShouldBeNil)
		So(result.Cancelled, ShouldBeTrue)
		So(result.Expanded, ShouldEqual, 0)
		So(grid.Layout(), ShouldResemble, []string{"S.", ".E"})
	})
}

func TestSearchCallbacks(t *testing.T) {
	Convey("When a path is found", t, func() {
		grid, start, end := mustLayout(models.DebugLayout)
		steps := 0
		result, err := Search(context.Background(), grid, start, end, func() { steps++ })

		So(err, ShouldBeNil)
		So(result.Found, ShouldBeTrue)
		Convey("onStep runs once per expansion and once per path cell", func() {
			So(steps, ShouldEqual, result.Expanded-1+result.Cost)
		})
	})
}

func TestSearchProperties(t *testing.T) {
	Convey("When searching random grids", t, func() {
		rng := rand.New(rand.NewSource(7))

		for trial := 0; trial < 60; trial++ {
			grid, start, end := randomGrid(rng, 8, 0.3)
			reachable := floodFill(grid, start.Pos())

			result, err := Search(context.Background(), grid, start, end, nil)
			So(err, ShouldBeNil)

			distance, ok := reachable[end.Pos()]
			So(result.Found, ShouldEqual, ok)
			if !result.Found {
				continue
			}

			// Optimal in edge count.
			So(result.Cost, ShouldEqual, distance)
			So(len(result.Path), ShouldEqual, result.Cost+1)

			// The came-from chain from end back to start has Cost links,
			// each between adjacent non-barrier cells.
			links := 0
			for p := end.Pos(); p != start.Pos(); links++ {
				prev, ok := result.CameFrom[p]
				So(ok, ShouldBeTrue)
				So(adjacent(p, prev), ShouldBeTrue)
				So(grid.Cell(prev.Row, prev.Col).IsBarrier(), ShouldBeFalse)
				p = prev
			}
			So(links, ShouldEqual, result.Cost)
		}
	})

	Convey("When the same grid is searched twice", t, func() {
		rows := []string{
			"S.......",
			".##.###.",
			"........",
			".#.##.#.",
			"........",
			"###.##..",
			"........",
			".......E",
		}
		first, start1, end1 := mustLayout(rows)
		second, start2, end2 := mustLayout(rows)

		r1, err1 := Search(context.Background(), first, start1, end1, nil)
		r2, err2 := Search(context.Background(), second, start2, end2, nil)
		So(err1, ShouldBeNil)
		So(err2, ShouldBeNil)

		So(r1.Path, ShouldResemble, r2.Path)
		So(r1.CameFrom, ShouldResemble, r2.CameFrom)
		So(r1.Expanded, ShouldEqual, r2.Expanded)
		So(first.Layout(), ShouldResemble, second.Layout())
	})
}
