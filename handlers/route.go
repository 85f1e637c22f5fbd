package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/you/metroroute/internal/network"
	"github.com/you/metroroute/internal/routing"
	"github.com/you/metroroute/models"
)

// NetworkProvider returns the network snapshot to serve, or nil before the
// first successful load.
type NetworkProvider interface {
	Current() *network.Network
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RouteHandler handles HTTP requests for route planning
type RouteHandler struct {
	networks NetworkProvider
}

// NewRouteHandler creates a new handler serving the given networks
func NewRouteHandler(networks NetworkProvider) *RouteHandler {
	return &RouteHandler{networks: networks}
}

// GetRoute handles GET /api/v1/route
// Query parameters: start, end, strategy (stations|lines, default stations)
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	net := h.networks.Current()
	if net == nil {
		writeNetworkUnavailable(w)
		return
	}

	query := r.URL.Query()
	start := strings.TrimSpace(query.Get("start"))
	end := strings.TrimSpace(query.Get("end"))
	if start == "" || end == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "start and end query parameters are required",
		})
		return
	}

	strategy, err := routing.ParseStrategy(query.Get("strategy"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "Invalid strategy",
			Details: map[string]interface{}{
				"strategy": query.Get("strategy"),
				"allowed":  []routing.Strategy{routing.StrategyStations, routing.StrategyLines},
			},
		})
		return
	}

	route, err := net.Plan(start, end, strategy)
	switch {
	case errors.Is(err, routing.ErrStationNotFound):
		missing := start
		if net.HasStation(start) {
			missing = end
		}
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: "Station not found",
			Details: map[string]interface{}{
				"station": missing,
			},
		})
		return
	case errors.Is(err, routing.ErrNoRoute):
		writeJSON(w, http.StatusBadRequest, models.NoRouteResponse{Error: "No route found"})
		return
	case err != nil:
		log.Printf("Warning: route %s -> %s failed: %v", start, end, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to plan route",
			Details: map[string]interface{}{
				"internal": err.Error(),
			},
		})
		return
	}

	segments := make([]models.Segment, 0, len(route.Segments))
	for _, seg := range route.Segments {
		segments = append(segments, models.Segment{
			Line:     seg.Line,
			Start:    seg.Start,
			End:      seg.End,
			Stations: seg.Stations,
		})
	}

	writeJSON(w, http.StatusOK, models.RouteResponse{
		Route:      route.Path,
		Transfers:  route.Transfers,
		Segments:   segments,
		Strategy:   string(route.Strategy),
		Stops:      route.Stops(),
		SnapshotID: net.ID.String(),
	})
}

// GetStations handles GET /api/v1/stations
// Returns every station name, sorted
func (h *RouteHandler) GetStations(w http.ResponseWriter, r *http.Request) {
	net := h.networks.Current()
	if net == nil {
		writeNetworkUnavailable(w)
		return
	}

	stations := net.Stations()
	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, models.StationsResponse{
		Stations: stations,
		Count:    len(stations),
	})
}

// GetLines handles GET /api/v1/lines
// Returns normalized line names with the raw names grouped under each
func (h *RouteHandler) GetLines(w http.ResponseWriter, r *http.Request) {
	net := h.networks.Current()
	if net == nil {
		writeNetworkUnavailable(w)
		return
	}

	names := net.LineNames()
	lines := make([]models.Line, 0, len(names))
	for _, l := range names {
		lines = append(lines, models.Line{Name: l.Name, Variants: l.Variants})
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	writeJSON(w, http.StatusOK, models.LinesResponse{
		Lines: lines,
		Count: len(lines),
	})
}

func writeNetworkUnavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
		Error: "Network not loaded",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to encode %T response: %v", v, err)
	}
}
