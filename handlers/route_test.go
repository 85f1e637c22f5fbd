package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/metroroute/internal/network"
	"github.com/you/metroroute/internal/routing"
	"github.com/you/metroroute/models"
)

// A-B-C on line 1, C-D on line 2, E isolated.
func testNetwork() *network.Network {
	graph := routing.Graph{
		"A": {"B"},
		"B": {"A", "C"},
		"C": {"B", "D"},
		"D": {"C"},
		"E": {},
	}
	records := []routing.LineRecord{
		{Name: "1(North)", Stations: []string{"A", "B", "C"}},
		{Name: "1(South)", Stations: []string{"C", "B", "A"}},
		{Name: "2", Stations: []string{"C", "D"}},
	}
	return network.New(graph, records, "test")
}

func newTestRouter(store *network.Store) http.Handler {
	routes := NewRouteHandler(store)
	health := NewHealthHandler(store)

	r := chi.NewRouter()
	r.Get("/health", health.GetHealth)
	r.Get("/api/v1/route", routes.GetRoute)
	r.Get("/api/v1/stations", routes.GetStations)
	r.Get("/api/v1/lines", routes.GetLines)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetRoute(t *testing.T) {
	n := testNetwork()
	router := newTestRouter(network.NewStore(n))

	rec := get(t, router, "/api/v1/route?start=A&end=D&strategy=lines")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.RouteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"A", "B", "C", "D"}, resp.Route)
	assert.Equal(t, 1, resp.Transfers)
	assert.Equal(t, 3, resp.Stops)
	assert.Equal(t, "lines", resp.Strategy)
	assert.Equal(t, n.ID.String(), resp.SnapshotID)
	assert.Equal(t, []models.Segment{
		{Line: "1", Start: "A", End: "C", Stations: []string{"A", "B", "C"}},
		{Line: "2", Start: "C", End: "D", Stations: []string{"C", "D"}},
	}, resp.Segments)
}

func TestGetRoute_DefaultStrategy(t *testing.T) {
	router := newTestRouter(network.NewStore(testNetwork()))

	rec := get(t, router, "/api/v1/route?start=B&end=B")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RouteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "stations", resp.Strategy)
	assert.Equal(t, []string{"B"}, resp.Route)
	assert.Equal(t, 0, resp.Transfers)
	assert.Equal(t, 0, resp.Stops)
	assert.NotNil(t, resp.Segments)
	assert.Empty(t, resp.Segments)
}

func TestGetRoute_Errors(t *testing.T) {
	router := newTestRouter(network.NewStore(testNetwork()))

	tests := []struct {
		name   string
		target string
		status int
		error  string
	}{
		{"missing end", "/api/v1/route?start=A", http.StatusBadRequest, "start and end query parameters are required"},
		{"blank start", "/api/v1/route?start=%20&end=A", http.StatusBadRequest, "start and end query parameters are required"},
		{"bad strategy", "/api/v1/route?start=A&end=D&strategy=fastest", http.StatusBadRequest, "Invalid strategy"},
		{"unknown start", "/api/v1/route?start=Z&end=D", http.StatusNotFound, "Station not found"},
		{"unknown end", "/api/v1/route?start=A&end=Z", http.StatusNotFound, "Station not found"},
		{"unreachable", "/api/v1/route?start=A&end=E", http.StatusBadRequest, "No route found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, tt.target)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.error, body["error"])
		})
	}
}

func TestGetRoute_NoRouteHasNullRoute(t *testing.T) {
	router := newTestRouter(network.NewStore(testNetwork()))

	rec := get(t, router, "/api/v1/route?start=A&end=E&strategy=lines")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No route found","route":null}`, rec.Body.String())
}

func TestGetRoute_UnknownStationDetails(t *testing.T) {
	router := newTestRouter(network.NewStore(testNetwork()))

	rec := get(t, router, "/api/v1/route?start=A&end=Z")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Z", resp.Details["station"])
}

func TestGetStationsAndLines(t *testing.T) {
	router := newTestRouter(network.NewStore(testNetwork()))

	rec := get(t, router, "/api/v1/stations")
	require.Equal(t, http.StatusOK, rec.Code)
	var stations models.StationsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stations))
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, stations.Stations)
	assert.Equal(t, 5, stations.Count)

	rec = get(t, router, "/api/v1/lines")
	require.Equal(t, http.StatusOK, rec.Code)
	var lines models.LinesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&lines))
	assert.Equal(t, 2, lines.Count)
	assert.Equal(t, []models.Line{
		{Name: "1", Variants: []string{"1(North)", "1(South)"}},
		{Name: "2", Variants: []string{"2"}},
	}, lines.Lines)
}

func TestNetworkNotLoaded(t *testing.T) {
	router := newTestRouter(network.NewStore(nil))

	for _, target := range []string{
		"/api/v1/route?start=A&end=B",
		"/api/v1/stations",
		"/api/v1/lines",
		"/health",
	} {
		rec := get(t, router, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestGetHealth(t *testing.T) {
	n := testNetwork()
	router := newTestRouter(network.NewStore(n))

	rec := get(t, router, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.StatusOK, resp.Status)
	require.NotNil(t, resp.Network)
	assert.Equal(t, n.ID.String(), resp.Network.SnapshotID)
	assert.Equal(t, "test", resp.Network.Source)
	assert.Equal(t, 5, resp.Network.Stations)
	assert.Equal(t, 3, resp.Network.Edges)
	assert.Equal(t, 2, resp.Network.Lines)
	assert.Equal(t, 3, resp.Network.Records)
}

// failingWriter accepts headers but fails every body write.
type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteJSON_LogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	w := failingWriter{httptest.NewRecorder()}
	writeJSON(w, http.StatusOK, models.StationsResponse{Stations: []string{"A"}, Count: 1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "Warning: failed to encode models.StationsResponse response")
	assert.Contains(t, buf.String(), "connection reset")
}
