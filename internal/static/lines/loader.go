package lines

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/you/metroroute/internal/routing"
)

// DefaultWorkers is used by LoadDir when workers <= 0.
const DefaultWorkers = 8

// lineFile is the published per-line file shape:
// {"data": {"busline_list": [{"name": "...", "stations": [{"name": "..."}]}]}}
// Entries are decoded one at a time so a malformed entry only loses itself.
type lineFile struct {
	Data struct {
		BuslineList []json.RawMessage `json:"busline_list"`
	} `json:"data"`
}

type lineEntry struct {
	Name     string `json:"name"`
	Stations []struct {
		Name string `json:"name"`
	} `json:"stations"`
}

// LoadStats summarizes a LoadDir run.
type LoadStats struct {
	Files          int
	Skipped        int
	SkippedRecords int
	Records        int
}

// LoadGraph reads a station adjacency file: a JSON object mapping each station
// to the ordered list of its neighbors.
func LoadGraph(path string) (routing.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stations file: %w", err)
	}

	var g routing.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse stations file %s: %w", path, err)
	}
	if g == nil {
		g = routing.Graph{}
	}
	return g, nil
}

// LoadDir reads every *.json line file in dir. Files that cannot be read or
// parsed are logged and skipped. Records come back in file name order.
func LoadDir(ctx context.Context, dir string, workers int) ([]routing.LineRecord, LoadStats, error) {
	var stats LoadStats

	if _, err := os.Stat(dir); err != nil {
		return nil, stats, fmt.Errorf("failed to open lines directory: %w", err)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, stats, fmt.Errorf("failed to list lines directory: %w", err)
	}
	sort.Strings(paths)
	stats.Files = len(paths)

	if workers <= 0 {
		workers = DefaultWorkers
	}

	perFile := make([][]routing.LineRecord, len(paths))
	var skipped, skippedRecords atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, bad, err := parseFile(path)
			if err != nil {
				log.Printf("Warning: skipping line file %s: %v", filepath.Base(path), err)
				skipped.Add(1)
				return nil
			}
			skippedRecords.Add(int64(bad))
			perFile[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	var records []routing.LineRecord
	for _, r := range perFile {
		records = append(records, r...)
	}
	stats.Skipped = int(skipped.Load())
	stats.SkippedRecords = int(skippedRecords.Load())
	stats.Records = len(records)

	return records, stats, nil
}

// parseFile returns the well-formed records of a line file and how many
// entries it had to skip. Only an unreadable file or invalid JSON is an error.
func parseFile(path string) ([]routing.LineRecord, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	var f lineFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, 0, fmt.Errorf("invalid json: %w", err)
	}

	skipped := 0
	records := make([]routing.LineRecord, 0, len(f.Data.BuslineList))
	for i, raw := range f.Data.BuslineList {
		var entry lineEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			log.Printf("Warning: skipping record %d in %s: %v", i, filepath.Base(path), err)
			skipped++
			continue
		}
		rec := routing.LineRecord{Name: entry.Name}
		for _, s := range entry.Stations {
			if s.Name != "" {
				rec.Stations = append(rec.Stations, s.Name)
			}
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}
