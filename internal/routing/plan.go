package routing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStationNotFound is returned by Plan when an endpoint is not in the graph.
	ErrStationNotFound = errors.New("station not found")
	// ErrNoRoute is returned by Plan when both endpoints exist but are not connected.
	ErrNoRoute = errors.New("no route found")
	// ErrUnknownStrategy is returned by ParseStrategy.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Strategy selects which search Plan runs.
type Strategy string

const (
	// StrategyStations minimizes the number of stops.
	StrategyStations Strategy = "stations"
	// StrategyLines minimizes line changes, then stops.
	StrategyLines Strategy = "lines"
)

// ParseStrategy maps a query value to a Strategy. An empty value means StrategyStations.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyStations:
		return StrategyStations, nil
	case StrategyLines:
		return StrategyLines, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Route is a found path annotated with its line segments.
type Route struct {
	Strategy  Strategy
	Path      []string
	Transfers int
	Segments  []Segment
}

// Stops returns the number of edges travelled.
func (r *Route) Stops() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}

// Plan finds a route with the given strategy and segments it.
func Plan(g Graph, idx EdgeLines, start, end string, strategy Strategy) (*Route, error) {
	for _, name := range []string{start, end} {
		if !g.HasStation(name) {
			return nil, fmt.Errorf("%w: %s", ErrStationNotFound, name)
		}
	}

	var path []string
	switch strategy {
	case StrategyLines:
		path = ShortestPathMinTransfer(g, idx, start, end)
	case StrategyStations, "":
		strategy = StrategyStations
		path = ShortestPath(g, start, end)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	if path == nil {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoRoute, start, end)
	}

	transfers, segments := CountTransfers(path, idx)
	return &Route{
		Strategy:  strategy,
		Path:      path,
		Transfers: transfers,
		Segments:  segments,
	}, nil
}
