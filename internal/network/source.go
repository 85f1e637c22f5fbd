package network

import (
	"context"
	"fmt"
	"log"

	"github.com/you/metroroute/internal/routing"
	"github.com/you/metroroute/internal/static/gtfs"
	"github.com/you/metroroute/internal/static/lines"
)

// Source loads the raw material of a network: the station graph and the
// published line station sequences.
type Source interface {
	Name() string
	Load(ctx context.Context) (routing.Graph, []routing.LineRecord, error)
}

// FileSource reads a stations adjacency file and a directory of line files.
// Without a stations file the graph is derived from the line files.
type FileSource struct {
	StationsFile string
	LinesDir     string
	Workers      int
}

func (s FileSource) Name() string { return "files:" + s.LinesDir }

func (s FileSource) Load(ctx context.Context) (routing.Graph, []routing.LineRecord, error) {
	records, stats, err := lines.LoadDir(ctx, s.LinesDir, s.Workers)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Loaded %d line records from %d files (%d files, %d records skipped)",
		stats.Records, stats.Files, stats.Skipped, stats.SkippedRecords)

	if s.StationsFile == "" {
		return routing.GraphFromLines(records), records, nil
	}

	graph, err := lines.LoadGraph(s.StationsFile)
	if err != nil {
		return nil, nil, err
	}
	return graph, records, nil
}

// GTFSSource derives a network from a GTFS static zip.
type GTFSSource struct {
	ZipPath string
}

func (s GTFSSource) Name() string { return "gtfs:" + s.ZipPath }

func (s GTFSSource) Load(ctx context.Context) (routing.Graph, []routing.LineRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	data, err := gtfs.Parse(s.ZipPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse gtfs feed: %w", err)
	}
	records := data.LineRecords()
	return routing.GraphFromLines(records), records, nil
}

// Load reads src and builds a new snapshot from it.
func Load(ctx context.Context, src Source) (*Network, error) {
	graph, records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load network from %s: %w", src.Name(), err)
	}
	return New(graph, records, src.Name()), nil
}
