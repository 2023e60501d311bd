package handlers

import (
	"fmt"
	"net/http"
)

// CheckConsistency handles GET /api/people/{id}/consistency - reports
// self-relationships, contradictory reciprocal pairs, and ancestry cycles
// around one person. Reporting only; nothing is repaired.
func (h *APIHandlers) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	id := extractID(r, "id")
	issues, err := tree.Graph.CheckConsistency(id)
	if err != nil {
		respondGraphError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ConsistencyResponse{PersonID: id, Issues: issues})
}

// FindDuplicates handles GET /api/duplicates - suspected duplicate person
// pairs by normalized name and compatible birth dates. Candidates only;
// merging is always an explicit separate call.
func (h *APIHandlers) FindDuplicates(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	respondJSON(w, http.StatusOK, DuplicatesResponse{Pairs: tree.Graph.FindDuplicates()})
}

// Merge handles POST /api/merge - folds one person into another, rewiring
// edges and removing the merged person.
func (h *APIHandlers) Merge(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	var req MergeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := tree.Graph.Merge(req.KeepID, req.RemoveID)
	if err != nil {
		respondGraphError(w, err)
		return
	}

	detail := fmt.Sprintf("removed %s (rewired %d, dropped %d)", result.RemovedID, result.EdgesRewired, result.EdgesDropped)
	h.audit(r, tree, "merge", result.KeptID, detail)
	h.broadcast(tree, "merge.completed", result)
	respondJSON(w, http.StatusOK, result)
}

// ListAudit handles GET /api/audit?limit=N - the most recent mutation audit
// entries, newest first.
func (h *APIHandlers) ListAudit(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 100)
	entries, err := tree.Store.ListAudit(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list audit entries", err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}
