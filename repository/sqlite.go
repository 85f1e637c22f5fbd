package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/you/metroroute/internal/routing"

	_ "modernc.org/sqlite"
)

// schemaSQL is shared by the SQLite and Postgres repositories.
//
//go:embed schema.sql
var schemaSQL string

// ErrEmptyNetwork is returned by Load when no network has been imported yet
var ErrEmptyNetwork = errors.New("no network imported")

// SQLiteDB wraps a SQL database connection for SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal=WAL&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *SQLiteDB) GetDB() *sql.DB {
	return s.db
}

// SQLiteNetworkRepository stores the station network in SQLite
type SQLiteNetworkRepository struct {
	db   *sql.DB
	path string
}

// NewSQLiteNetworkRepository creates a new SQLiteNetworkRepository
func NewSQLiteNetworkRepository(db *sql.DB, path string) *SQLiteNetworkRepository {
	return &SQLiteNetworkRepository{db: db, path: path}
}

// Name identifies the repository as a network source
func (r *SQLiteNetworkRepository) Name() string {
	return "sqlite:" + r.path
}

// EnsureSchema creates tables if they don't exist
func (r *SQLiteNetworkRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveNetwork replaces the stored network with graph and records in a single
// transaction and returns the id of the import.
func (r *SQLiteNetworkRepository) SaveNetwork(
	ctx context.Context,
	graph routing.Graph,
	records []routing.LineRecord,
	source string,
) (uuid.UUID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"line_stations", "lines", "station_neighbors", "stations", "network_imports"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return uuid.Nil, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	stationStmt, err := tx.PrepareContext(ctx, `INSERT INTO stations (name, seq) VALUES (?, ?)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to prepare station insert: %w", err)
	}
	defer stationStmt.Close()

	neighborStmt, err := tx.PrepareContext(ctx, `INSERT INTO station_neighbors (station, seq, neighbor) VALUES (?, ?, ?)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to prepare neighbor insert: %w", err)
	}
	defer neighborStmt.Close()

	for i, name := range graph.Stations() {
		if _, err := stationStmt.ExecContext(ctx, name, i); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert station %s: %w", name, err)
		}
		for j, neighbor := range graph[name] {
			if _, err := neighborStmt.ExecContext(ctx, name, j, neighbor); err != nil {
				return uuid.Nil, fmt.Errorf("failed to insert neighbor of %s: %w", name, err)
			}
		}
	}

	lineStmt, err := tx.PrepareContext(ctx, `INSERT INTO lines (line_id, name) VALUES (?, ?)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to prepare line insert: %w", err)
	}
	defer lineStmt.Close()

	lineStationStmt, err := tx.PrepareContext(ctx, `INSERT INTO line_stations (line_id, seq, station) VALUES (?, ?, ?)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to prepare line station insert: %w", err)
	}
	defer lineStationStmt.Close()

	for i, rec := range records {
		if _, err := lineStmt.ExecContext(ctx, i, rec.Name); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert line %s: %w", rec.Name, err)
		}
		for j, station := range rec.Stations {
			if _, err := lineStationStmt.ExecContext(ctx, i, j, station); err != nil {
				return uuid.Nil, fmt.Errorf("failed to insert station of line %s: %w", rec.Name, err)
			}
		}
	}

	importID := uuid.New()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO network_imports (import_id, source, imported_at) VALUES (?, ?, ?)`,
		importID.String(), source, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return uuid.Nil, fmt.Errorf("failed to record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit network: %w", err)
	}
	return importID, nil
}

// Load reads the stored network. It returns ErrEmptyNetwork when nothing has
// been imported.
func (r *SQLiteNetworkRepository) Load(ctx context.Context) (routing.Graph, []routing.LineRecord, error) {
	var imports int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM network_imports`).Scan(&imports); err != nil {
		return nil, nil, fmt.Errorf("failed to check network imports: %w", err)
	}
	if imports == 0 {
		return nil, nil, ErrEmptyNetwork
	}

	// rows are closed before the next query: the pool holds a single connection
	graph := routing.Graph{}

	stationRows, err := r.db.QueryContext(ctx, `SELECT name FROM stations ORDER BY seq`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query stations: %w", err)
	}
	err = collectStations(stationRows, graph)
	stationRows.Close()
	if err != nil {
		return nil, nil, err
	}

	neighborRows, err := r.db.QueryContext(ctx, `SELECT station, neighbor FROM station_neighbors ORDER BY station, seq`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query neighbors: %w", err)
	}
	err = collectNeighbors(neighborRows, graph)
	neighborRows.Close()
	if err != nil {
		return nil, nil, err
	}

	lineRows, err := r.db.QueryContext(ctx, linesQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query lines: %w", err)
	}
	records, err := collectLines(lineRows)
	lineRows.Close()
	if err != nil {
		return nil, nil, err
	}

	return graph, records, nil
}

// linesQuery returns one row per line station, ordered for collectLines.
// Lines without stations come back once with a NULL station.
const linesQuery = `
	SELECT l.line_id, l.name, ls.station
	FROM lines l
	LEFT JOIN line_stations ls ON ls.line_id = l.line_id
	ORDER BY l.line_id, ls.seq
`

// rowScanner is satisfied by both *sql.Rows and pgx.Rows
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectStations(rows rowScanner, graph routing.Graph) error {
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan station row: %w", err)
		}
		graph[name] = []string{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating station rows: %w", err)
	}
	return nil
}

func collectNeighbors(rows rowScanner, graph routing.Graph) error {
	for rows.Next() {
		var station, neighbor string
		if err := rows.Scan(&station, &neighbor); err != nil {
			return fmt.Errorf("failed to scan neighbor row: %w", err)
		}
		graph[station] = append(graph[station], neighbor)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating neighbor rows: %w", err)
	}
	return nil
}

func collectLines(rows rowScanner) ([]routing.LineRecord, error) {
	var records []routing.LineRecord
	lastID := -1
	for rows.Next() {
		var id int
		var name string
		var station sql.NullString
		if err := rows.Scan(&id, &name, &station); err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		if id != lastID {
			records = append(records, routing.LineRecord{Name: name})
			lastID = id
		}
		if station.Valid {
			rec := &records[len(records)-1]
			rec.Stations = append(rec.Stations, station.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}
	return records, nil
}
