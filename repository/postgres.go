package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/you/metroroute/internal/routing"
)

// PostgresNetworkRepository stores the station network in Postgres
type PostgresNetworkRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresNetworkRepository connects to databaseURL and verifies the connection
func NewPostgresNetworkRepository(ctx context.Context, databaseURL string) (*PostgresNetworkRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresNetworkRepository{pool: pool}, nil
}

// Close releases the connection pool
func (r *PostgresNetworkRepository) Close() {
	r.pool.Close()
}

// Name identifies the repository as a network source
func (r *PostgresNetworkRepository) Name() string {
	cfg := r.pool.Config().ConnConfig
	return fmt.Sprintf("postgres:%s/%s", cfg.Host, cfg.Database)
}

// EnsureSchema creates tables if they don't exist
func (r *PostgresNetworkRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveNetwork replaces the stored network with graph and records in a single
// transaction and returns the id of the import.
func (r *PostgresNetworkRepository) SaveNetwork(
	ctx context.Context,
	graph routing.Graph,
	records []routing.LineRecord,
	source string,
) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE line_stations, lines, station_neighbors, stations, network_imports`); err != nil {
		return uuid.Nil, fmt.Errorf("failed to clear network tables: %w", err)
	}

	var stationRows, neighborRows, lineRows, lineStationRows [][]any
	for i, name := range graph.Stations() {
		stationRows = append(stationRows, []any{name, i})
		for j, neighbor := range graph[name] {
			neighborRows = append(neighborRows, []any{name, j, neighbor})
		}
	}
	for i, rec := range records {
		lineRows = append(lineRows, []any{i, rec.Name})
		for j, station := range rec.Stations {
			lineStationRows = append(lineStationRows, []any{i, j, station})
		}
	}

	copies := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"stations", []string{"name", "seq"}, stationRows},
		{"station_neighbors", []string{"station", "seq", "neighbor"}, neighborRows},
		{"lines", []string{"line_id", "name"}, lineRows},
		{"line_stations", []string{"line_id", "seq", "station"}, lineStationRows},
	}
	for _, c := range copies {
		if len(c.rows) == 0 {
			continue
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(c.rows)); err != nil {
			return uuid.Nil, fmt.Errorf("failed to copy %s: %w", c.table, err)
		}
	}

	importID := uuid.New()
	if _, err := tx.Exec(ctx,
		`INSERT INTO network_imports (import_id, source, imported_at) VALUES ($1, $2, $3)`,
		importID.String(), source, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to record import: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit network: %w", err)
	}
	return importID, nil
}

// Load reads the stored network. It returns ErrEmptyNetwork when nothing has
// been imported.
func (r *PostgresNetworkRepository) Load(ctx context.Context) (routing.Graph, []routing.LineRecord, error) {
	var imports int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM network_imports`).Scan(&imports); err != nil {
		return nil, nil, fmt.Errorf("failed to check network imports: %w", err)
	}
	if imports == 0 {
		return nil, nil, ErrEmptyNetwork
	}

	graph := routing.Graph{}

	rows, err := r.pool.Query(ctx, `SELECT name FROM stations ORDER BY seq`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query stations: %w", err)
	}
	err = collectStations(rows, graph)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT station, neighbor FROM station_neighbors ORDER BY station, seq`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query neighbors: %w", err)
	}
	err = collectNeighbors(rows, graph)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	rows, err = r.pool.Query(ctx, linesQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query lines: %w", err)
	}
	records, err := collectLines(rows)
	rows.Close()
	if err != nil {
		return nil, nil, err
	}

	return graph, records, nil
}
