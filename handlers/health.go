package handlers

import (
	"net/http"
	"time"

	"github.com/you/metroroute/models"
)

// HealthHandler reports on the network snapshot being served
type HealthHandler struct {
	networks NetworkProvider
}

// NewHealthHandler creates a new handler for the given networks
func NewHealthHandler(networks NetworkProvider) *HealthHandler {
	return &HealthHandler{networks: networks}
}

// GetHealth handles GET /health
// Returns 503 until a network has been loaded
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	net := h.networks.Current()
	if net == nil {
		writeJSON(w, http.StatusServiceUnavailable, models.HealthResponse{
			Status:    models.StatusUnavailable,
			Timestamp: now,
		})
		return
	}

	stats := net.Stats()
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status: models.StatusOK,
		Network: &models.NetworkHealth{
			SnapshotID: net.ID.String(),
			Source:     net.Source,
			LoadedAt:   net.LoadedAt,
			AgeSeconds: int(now.Sub(net.LoadedAt).Seconds()),
			Stations:   stats.Stations,
			Edges:      stats.Edges,
			Lines:      stats.Lines,
			Records:    stats.Records,
		},
		Timestamp: now,
	})
}
