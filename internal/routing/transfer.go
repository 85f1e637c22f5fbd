package routing

import "container/heap"

// searchState is the visited-set key of the transfer-minimizing search: the same
// station reached while riding two different lines is two states.
type searchState struct {
	station string
	line    string
	hasLine bool
}

// queueItem links back to the item it was reached from, so a path is only
// materialized for the item that reaches the target.
type queueItem struct {
	transfers int
	hops      int
	seq       int
	state     searchState
	prev      *queueItem
}

// stateQueue orders items by (transfers, hops), then by push order.
type stateQueue []*queueItem

func (q stateQueue) Len() int { return len(q) }

func (q stateQueue) Less(i, j int) bool {
	if q[i].transfers != q[j].transfers {
		return q[i].transfers < q[j].transfers
	}
	if q[i].hops != q[j].hops {
		return q[i].hops < q[j].hops
	}
	return q[i].seq < q[j].seq
}

func (q stateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *stateQueue) Push(x any) { *q = append(*q, x.(*queueItem)) }

func (q *stateQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// ShortestPathMinTransfer returns a path from start to end that needs the fewest
// line changes, using the fewest edges among those. It returns nil if either
// station is missing from the graph or end cannot be reached.
//
// Boarding the first line is free. An edge without line metadata keeps the
// current line and costs no transfer.
func ShortestPathMinTransfer(g Graph, idx EdgeLines, start, end string) []string {
	if !g.HasStation(start) || !g.HasStation(end) {
		return nil
	}
	if start == end {
		return []string{start}
	}

	visited := make(map[searchState]struct{})
	seq := 0
	q := &stateQueue{{state: searchState{station: start}}}

	for q.Len() > 0 {
		item := heap.Pop(q).(*queueItem)
		if item.state.station == end {
			return item.path()
		}
		if _, done := visited[item.state]; done {
			continue
		}
		visited[item.state] = struct{}{}

		node := item.state.station
		for _, neighbor := range g[node] {
			if item.onPath(neighbor) {
				continue
			}

			next := searchState{station: neighbor, line: item.state.line, hasLine: item.state.hasLine}
			transfers := item.transfers
			lines := normalizedLineSet(idx.Lines(node, neighbor))
			if len(lines) > 0 && !(item.state.hasLine && containsLine(lines, item.state.line)) {
				if item.state.hasLine {
					transfers++
				}
				next.line = lines[0]
				next.hasLine = true
			}

			if _, done := visited[next]; done {
				continue
			}

			seq++
			heap.Push(q, &queueItem{
				transfers: transfers,
				hops:      item.hops + 1,
				seq:       seq,
				state:     next,
				prev:      item,
			})
		}
	}
	return nil
}

func (it *queueItem) onPath(station string) bool {
	for p := it; p != nil; p = p.prev {
		if p.state.station == station {
			return true
		}
	}
	return false
}

func (it *queueItem) path() []string {
	path := make([]string, 0, it.hops+1)
	for p := it; p != nil; p = p.prev {
		path = append(path, p.state.station)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
