package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/metroroute/internal/network"
	"github.com/you/metroroute/internal/routing"
)

func testGraph() routing.Graph {
	return routing.Graph{
		"Catalunya":         {"Passeig de Gracia", "Universitat"},
		"Passeig de Gracia": {"Catalunya", "Diagonal"},
		"Universitat":       {"Catalunya"},
		"Diagonal":          {"Passeig de Gracia"},
		"Isolated":          {},
	}
}

func testRecords() []routing.LineRecord {
	return []routing.LineRecord{
		{Name: "L3(Trinitat Nova)", Stations: []string{"Universitat", "Catalunya", "Passeig de Gracia", "Diagonal"}},
		{Name: "L3(Zona Universitària)", Stations: []string{"Diagonal", "Passeig de Gracia", "Catalunya", "Universitat"}},
		{Name: "Empty", Stations: nil},
	}
}

func setupSQLite(t *testing.T) *SQLiteNetworkRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network.db")

	sqliteDB, err := NewSQLiteDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { sqliteDB.Close() })

	repo := NewSQLiteNetworkRepository(sqliteDB.GetDB(), path)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestSQLiteNetworkRepository_RoundTrip(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	id, err := repo.SaveNetwork(ctx, testGraph(), testRecords(), "test")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	graph, records, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testGraph(), graph)
	assert.Equal(t, testRecords(), records)
}

func TestSQLiteNetworkRepository_Empty(t *testing.T) {
	repo := setupSQLite(t)

	_, _, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyNetwork)
}

func TestSQLiteNetworkRepository_SaveReplaces(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	_, err := repo.SaveNetwork(ctx, testGraph(), testRecords(), "first")
	require.NoError(t, err)

	smaller := routing.Graph{"X": {"Y"}, "Y": {"X"}}
	_, err = repo.SaveNetwork(ctx, smaller, []routing.LineRecord{{Name: "9", Stations: []string{"X", "Y"}}}, "second")
	require.NoError(t, err)

	graph, records, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller, graph)
	assert.Equal(t, []routing.LineRecord{{Name: "9", Stations: []string{"X", "Y"}}}, records)
}

func TestSQLiteNetworkRepository_AsSource(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	_, err := repo.SaveNetwork(ctx, testGraph(), testRecords(), "test")
	require.NoError(t, err)

	n, err := network.Load(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, repo.Name(), n.Source)

	route, err := n.Plan("Universitat", "Diagonal", routing.StrategyLines)
	require.NoError(t, err)
	assert.Equal(t, []string{"Universitat", "Catalunya", "Passeig de Gracia", "Diagonal"}, route.Path)
	assert.Equal(t, 0, route.Transfers)
	require.Len(t, route.Segments, 1)
	assert.Equal(t, "L3", route.Segments[0].Line)
}
