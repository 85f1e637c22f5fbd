package routing

import "sort"

// Graph maps a station to its directly reachable neighbors, in published order.
// A station that is not a key has no outgoing edges.
type Graph map[string][]string

// HasStation reports whether name is a key of the graph.
func (g Graph) HasStation(name string) bool {
	_, ok := g[name]
	return ok
}

// Stations returns every station key in sorted order.
func (g Graph) Stations() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EdgeCount returns the number of distinct undirected edges in the graph.
func (g Graph) EdgeCount() int {
	seen := make(map[string]struct{})
	for a, neighbors := range g {
		for _, b := range neighbors {
			seen[EdgeKey(a, b)] = struct{}{}
		}
	}
	return len(seen)
}

// GraphFromLines builds a symmetric station graph from consecutive stations of the
// given records. Neighbors keep first-seen order.
func GraphFromLines(records []LineRecord) Graph {
	g := Graph{}
	linked := make(map[string]struct{})

	link := func(a, b string) {
		key := a + "\x00" + b
		if _, ok := linked[key]; ok {
			return
		}
		linked[key] = struct{}{}
		g[a] = append(g[a], b)
	}

	for _, rec := range records {
		for i, station := range rec.Stations {
			if _, ok := g[station]; !ok {
				g[station] = []string{}
			}
			if i == 0 {
				continue
			}
			prev := rec.Stations[i-1]
			if prev == station {
				continue
			}
			link(prev, station)
			link(station, prev)
		}
	}
	return g
}

// ShortestPath returns a path from start to end with the fewest edges, or nil if
// either station is missing from the graph or end cannot be reached.
// Neighbors are explored in adjacency order, so ties go to the earliest explored.
func ShortestPath(g Graph, start, end string) []string {
	if !g.HasStation(start) || !g.HasStation(end) {
		return nil
	}
	if start == end {
		return []string{start}
	}

	// parent doubles as the visited set
	parent := map[string]string{start: ""}
	queue := []string{start}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		for _, neighbor := range g[node] {
			if _, seen := parent[neighbor]; seen {
				continue
			}
			parent[neighbor] = node
			if neighbor == end {
				return walkBack(parent, start, end)
			}
			queue = append(queue, neighbor)
		}
	}
	return nil
}

func walkBack(parent map[string]string, start, end string) []string {
	var path []string
	for node := end; ; node = parent[node] {
		path = append(path, node)
		if node == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
