package network

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/you/metroroute/internal/routing"
)

// Network is one immutable snapshot of the station graph and its line index.
// A reload builds a new Network rather than changing an existing one.
type Network struct {
	ID        uuid.UUID
	Source    string
	LoadedAt  time.Time
	Graph     routing.Graph
	Lines     []routing.LineRecord
	EdgeLines routing.EdgeLines
}

// Stats summarizes a network snapshot
type Stats struct {
	Stations int
	Edges    int
	Lines    int
	Records  int
}

// Line groups the raw variants published for one normalized line name
type Line struct {
	Name     string
	Variants []string
}

// New indexes records and wraps them with graph into a new snapshot.
func New(graph routing.Graph, records []routing.LineRecord, source string) *Network {
	if graph == nil {
		graph = routing.Graph{}
	}
	return &Network{
		ID:        uuid.New(),
		Source:    source,
		LoadedAt:  time.Now().UTC(),
		Graph:     graph,
		Lines:     records,
		EdgeLines: routing.BuildEdgeLines(records),
	}
}

// Plan finds a route between two stations of this snapshot.
func (n *Network) Plan(start, end string, strategy routing.Strategy) (*routing.Route, error) {
	return routing.Plan(n.Graph, n.EdgeLines, start, end, strategy)
}

// HasStation reports whether the station is part of the graph
func (n *Network) HasStation(name string) bool {
	return n.Graph.HasStation(name)
}

// Stations returns all station names, sorted
func (n *Network) Stations() []string {
	return n.Graph.Stations()
}

// LineNames groups raw line names by their normalized name, sorted by name.
func (n *Network) LineNames() []Line {
	variants := make(map[string]map[string]struct{})
	for _, rec := range n.Lines {
		name, ok := routing.NormalizeLineName(rec.Name)
		if !ok || name == "" {
			continue
		}
		if variants[name] == nil {
			variants[name] = make(map[string]struct{})
		}
		variants[name][rec.Name] = struct{}{}
	}

	lines := make([]Line, 0, len(variants))
	for name, raw := range variants {
		l := Line{Name: name}
		for v := range raw {
			l.Variants = append(l.Variants, v)
		}
		sort.Strings(l.Variants)
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Name < lines[j].Name })
	return lines
}

// Stats counts stations, edges, normalized lines and raw records
func (n *Network) Stats() Stats {
	return Stats{
		Stations: len(n.Graph),
		Edges:    n.Graph.EdgeCount(),
		Lines:    len(n.LineNames()),
		Records:  len(n.Lines),
	}
}
