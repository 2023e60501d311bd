package handlers

import (
	"net/http"
)

// Stats handles GET /api/stats.
func (h *APIHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	people, relationships := tree.Graph.Stats()
	resp := StatsResponse{
		Tree:          tree.Name,
		People:        people,
		Relationships: relationships,
	}
	if tree.Writer != nil {
		resp.LastSave = tree.Writer.LastSave()
	}
	respondJSON(w, http.StatusOK, resp)
}

// Health handles GET /api/health. The endpoint is unauthenticated so load
// balancers can probe it; it reports degraded when the last snapshot write
// failed.
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Version: Version}

	tree, err := h.tree(r)
	if err == nil && tree.Writer != nil {
		if lastErr := tree.Writer.LastError(); lastErr != nil {
			resp.Status = "degraded"
			resp.PersistErr = lastErr.Error()
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
