package pathfinding

// frontierItem is one open-set entry. Stale entries are left in the heap and
// skipped when popped.
type frontierItem struct {
	f     float64
	g     float64
	index int // row-major cell index
}

// frontier implements heap.Interface ordered by f-cost.
type frontier []frontierItem

func (h frontier) Len() int           { return len(h) }
func (h frontier) Less(i, j int) bool { return h[i].f < h[j].f }
func (h frontier) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *frontier) Push(x interface{}) {
	*h = append(*h, x.(frontierItem))
}

func (h *frontier) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}
