package pathfinding

import (
	"container/heap"

	"astarviz/models"
)

// frontierItem is keyed by (fScore, order) only; cells are never compared.
type frontierItem struct {
	fScore int
	order  int
	cell   *models.Cell
}

// frontierQueue implements heap.Interface, ordered by f-score and then by
// insertion order, so equal f-scores pop first-in first-out.
type frontierQueue []frontierItem

func (q frontierQueue) Len() int { return len(q) }
func (q frontierQueue) Less(i, j int) bool {
	if q[i].fScore != q[j].fScore {
		return q[i].fScore < q[j].fScore
	}
	return q[i].order < q[j].order
}
func (q frontierQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontierQueue) Push(x any) {
	*q = append(*q, x.(frontierItem))
}

func (q *frontierQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = frontierItem{}
	*q = old[:n-1]
	return item
}

// frontier is the open set: the priority queue plus a membership set for
// constant-time "already pending" checks. The order counter only increases.
type frontier struct {
	queue   frontierQueue
	members map[models.Position]bool
	counter int
}

func newFrontier() *frontier {
	return &frontier{
		members: make(map[models.Position]bool),
	}
}

func (f *frontier) Len() int { return f.queue.Len() }

func (f *frontier) Contains(c *models.Cell) bool {
	return f.members[c.Pos()]
}

// Push adds the cell with the next insertion order.
func (f *frontier) Push(fScore int, c *models.Cell) {
	heap.Push(&f.queue, frontierItem{fScore: fScore, order: f.counter, cell: c})
	f.members[c.Pos()] = true
	f.counter++
}

// Pop removes and returns the cell with the lowest (fScore, order).
func (f *frontier) Pop() *models.Cell {
	item := heap.Pop(&f.queue).(frontierItem)
	delete(f.members, item.cell.Pos())
	return item.cell
}
