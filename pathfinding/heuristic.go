package pathfinding

import "astarviz/models"

// Manhattan returns |r1-r2| + |c1-c2|. With unit step costs and 4-directional
// movement it never overestimates and is consistent.
func Manhattan(a, b models.Position) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
