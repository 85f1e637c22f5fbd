package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/you/metroroute/internal/network"
	"github.com/you/metroroute/internal/routing"
	"github.com/you/metroroute/internal/static/lines"
	"github.com/you/metroroute/repository"
)

// networkWriter is implemented by the SQLite and Postgres repositories
type networkWriter interface {
	Name() string
	EnsureSchema(ctx context.Context) error
	SaveNetwork(ctx context.Context, graph routing.Graph, records []routing.LineRecord, source string) (uuid.UUID, error)
}

func main() {
	// Command line flags
	stationsFile := flag.String("stations", "", "Stations adjacency JSON file (derived from line files if empty)")
	linesDir := flag.String("lines", "data/lines", "Directory containing line JSON files")
	gtfsZip := flag.String("gtfs", "", "GTFS static zip to import instead of line files")
	workers := flag.Int("workers", lines.DefaultWorkers, "Number of line files parsed concurrently")
	dbPath := flag.String("db", "data/network.db", "Path to SQLite database")
	databaseURL := flag.String("database-url", "", "Postgres connection string (overrides -db)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Import timeout")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var src network.Source
	if *gtfsZip != "" {
		src = network.GTFSSource{ZipPath: *gtfsZip}
	} else {
		src = network.FileSource{StationsFile: *stationsFile, LinesDir: *linesDir, Workers: *workers}
	}

	log.Printf("Reading network from %s...", src.Name())
	n, err := network.Load(ctx, src)
	if err != nil {
		log.Fatalf("Failed to read network: %v", err)
	}
	stats := n.Stats()
	log.Printf("Read %d stations, %d edges, %d lines (%d records)",
		stats.Stations, stats.Edges, stats.Lines, stats.Records)

	var repo networkWriter
	if *databaseURL != "" {
		pg, err := repository.NewPostgresNetworkRepository(ctx, *databaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pg.Close()
		repo = pg
	} else {
		sqliteDB, err := repository.NewSQLiteDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer sqliteDB.Close()
		repo = repository.NewSQLiteNetworkRepository(sqliteDB.GetDB(), *dbPath)
	}

	log.Printf("Connected to %s", repo.Name())

	// Ensure schema exists (creates tables if needed)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	importID, err := repo.SaveNetwork(ctx, n.Graph, n.Lines, src.Name())
	if err != nil {
		log.Fatalf("Failed to save network: %v", err)
	}

	log.Printf("Import %s complete!", importID)
}
