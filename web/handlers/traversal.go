package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/scrypster/lineage/internal/storage"
	"github.com/scrypster/lineage/pkg/types"
)

// defaultTraversalDepth applies when the caller omits the depth parameter.
const defaultTraversalDepth = 3

// traversalDepth reads the depth query parameter. A value that is present
// but not an integer is a validation error rather than a silent fallback.
func traversalDepth(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("depth")
	if raw == "" {
		return defaultTraversalDepth, nil
	}
	depth, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: depth %q is not an integer", storage.ErrValidation, raw)
	}
	return depth, nil
}

// respondTraversal writes a traversal result, downgrading a bounds overflow
// to a truncated-but-usable response when partial results exist.
func respondTraversal(w http.ResponseWriter, start string, depth int, people []*types.Person, err error) {
	if err != nil && !errors.Is(err, storage.ErrBoundsExceeded) {
		respondGraphError(w, err)
		return
	}

	if people == nil {
		people = []*types.Person{}
	}
	respondJSON(w, http.StatusOK, TraversalResponse{
		Start:     start,
		Depth:     depth,
		Count:     len(people),
		People:    people,
		Truncated: err != nil,
	})
}

// Ancestors handles GET /api/people/{id}/ancestors?depth=N.
func (h *APIHandlers) Ancestors(w http.ResponseWriter, r *http.Request) {
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

	id := extractID(r, "id")
	people, err := tree.Graph.Ancestors(id, depth)
	respondTraversal(w, id, depth, people, err)
}

// Descendants handles GET /api/people/{id}/descendants?depth=N.
func (h *APIHandlers) Descendants(w http.ResponseWriter, r *http.Request) {
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

	id := extractID(r, "id")
	people, err := tree.Graph.Descendants(id, depth)
	respondTraversal(w, id, depth, people, err)
}

// Siblings handles GET /api/people/{id}/siblings. Siblings are a fixed
// one-hop-up-one-hop-down walk, so no depth parameter applies.
func (h *APIHandlers) Siblings(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	id := extractID(r, "id")
	people, err := tree.Graph.Siblings(id)
	respondTraversal(w, id, 1, people, err)
}

// ExtendedFamily handles GET /api/people/{id}/extended-family?depth=N.
func (h *APIHandlers) ExtendedFamily(w http.ResponseWriter, r *http.Request) {
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

	id := extractID(r, "id")
	people, err := tree.Graph.ExtendedFamily(id, depth)
	respondTraversal(w, id, depth, people, err)
}

// Related handles GET /api/people/{id}/related?depth=N - reachability over
// every relationship type in both directions.
func (h *APIHandlers) Related(w http.ResponseWriter, r *http.Request) {
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

	id := extractID(r, "id")
	people, err := tree.Graph.Related(id, depth)
	respondTraversal(w, id, depth, people, err)
}

// Branch handles GET /api/people/{id}/branch?depth=N - the person plus their
// descendants in discovery order.
func (h *APIHandlers) Branch(w http.ResponseWriter, r *http.Request) {
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

	id := extractID(r, "id")
	people, err := tree.Graph.Branch(id, depth)
	respondTraversal(w, id, depth, people, err)
}

// PartialTree handles GET /api/people/{id}/tree?depth=N with optional
// ancestors_only / descendants_only direction flags. Setting both flags is
// rejected; setting neither returns both sides.
func (h *APIHandlers) PartialTree(w http.ResponseWriter, r *http.Request) {
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

	id := extractID(r, "id")
	onlyAncestors := r.URL.Query().Get("ancestors_only") == "true"
	onlyDescendants := r.URL.Query().Get("descendants_only") == "true"

	result, err := tree.Graph.PartialTree(id, depth, onlyAncestors, onlyDescendants)
	if err != nil {
		respondGraphError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, TreeResponse{Tree: result})
}
