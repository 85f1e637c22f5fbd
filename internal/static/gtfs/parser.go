package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// ErrMissingFile is returned by Parse when a feed lacks a file the network needs.
var ErrMissingFile = errors.New("gtfs feed is missing a required file")

// requiredFiles are the feed files a network cannot be built without.
var requiredFiles = []string{"stops.txt", "trips.txt", "stop_times.txt"}

// Parse reads the parts of a GTFS zip needed to build a station network.
func Parse(zipPath string) (*Data, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	files := make(map[string]*zip.File)
	for _, f := range r.File {
		files[f.Name] = f
	}
	for _, name := range requiredFiles {
		if _, ok := files[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, name)
		}
	}

	data := &Data{}

	// routes.txt is optional; without it lines are named by route_id
	if f, ok := files["routes.txt"]; ok {
		err := eachRow(f, func(row fieldReader) {
			data.Routes = append(data.Routes, Route{
				RouteID:        row("route_id"),
				RouteShortName: row("route_short_name"),
				RouteLongName:  row("route_long_name"),
			})
		})
		if err != nil {
			log.Printf("Warning: failed to parse routes.txt: %v", err)
		}
	}

	err = eachRow(files["stops.txt"], func(row fieldReader) {
		// an empty location_type means a stop
		locType, _ := strconv.Atoi(row("location_type"))
		data.Stops = append(data.Stops, Stop{
			StopID:        row("stop_id"),
			StopName:      row("stop_name"),
			LocationType:  locType,
			ParentStation: row("parent_station"),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse stops.txt: %w", err)
	}

	err = eachRow(files["trips.txt"], func(row fieldReader) {
		data.Trips = append(data.Trips, Trip{
			RouteID:      row("route_id"),
			TripID:       row("trip_id"),
			TripHeadsign: row("trip_headsign"),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse trips.txt: %w", err)
	}

	err = eachRow(files["stop_times.txt"], func(row fieldReader) {
		seq, err := strconv.Atoi(row("stop_sequence"))
		if err != nil {
			return
		}
		data.StopTimes = append(data.StopTimes, StopTime{
			TripID:       row("trip_id"),
			StopID:       row("stop_id"),
			StopSequence: seq,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse stop_times.txt: %w", err)
	}

	log.Printf("GTFS parsed: %d routes, %d stops, %d trips, %d stop times",
		len(data.Routes), len(data.Stops), len(data.Trips), len(data.StopTimes))

	return data, nil
}

// fieldReader returns the trimmed value of a named column in the current row,
// or "" when the column is absent.
type fieldReader func(field string) string

// eachRow calls fn for every well-formed data row of a CSV file in the zip.
// Malformed rows are skipped.
func eachRow(f *zip.File, fn func(row fieldReader)) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return err
	}

	idx := makeIndex(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			continue
		}
		fn(func(field string) string {
			return getField(record, idx, field)
		})
	}
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int)
	for i, h := range header {
		// strip a UTF-8 BOM left on the first column by some exporters
		idx[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	return idx
}

func getField(record []string, idx map[string]int, field string) string {
	if i, ok := idx[field]; ok && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}
