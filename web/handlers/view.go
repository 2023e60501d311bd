package handlers

import (
	"net/http"
)

// View handles GET /api/view - the node/link projection consumed by the
// visualization client. With ?start={id} the projection covers only the
// subgraph reachable within ?depth hops; without it, the whole tree.
func (h *APIHandlers) View(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	depth, err := traversalDepth(r)
	if err != nil {
		respondGraphError(w, err)
		return
	}

	start := r.URL.Query().Get("start")
	result, err := tree.Graph.View(start, depth)
	if err != nil {
		respondGraphError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
