package handlers

import (
	"net/http"

	"github.com/scrypster/lineage/internal/graph"
	"github.com/scrypster/lineage/pkg/types"
)

// ListRelationships handles GET /api/relationships.
func (h *APIHandlers) ListRelationships(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	respondJSON(w, http.StatusOK, tree.Graph.ListRelationships(listOptions(r)))
}

// CreateRelationship handles POST /api/relationships.
func (h *APIHandlers) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	var req RelationshipRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	rel, err := tree.Graph.AddRelationship(req.Person1ID, req.Person2ID, types.RelationshipType(req.Type), req.Attributes)
	if err != nil {
		respondGraphError(w, err)
		return
	}

	h.audit(r, tree, "relationship.create", rel.ID, string(rel.Type))
	h.broadcast(tree, "relationship.created", rel)
	respondJSON(w, http.StatusCreated, rel)
}

// GetRelationship handles GET /api/relationships/{id}.
func (h *APIHandlers) GetRelationship(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	rel, err := tree.Graph.GetRelationship(extractID(r, "id"))
	if err != nil {
		respondGraphError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rel)
}

// UpdateRelationship handles PUT /api/relationships/{id}.
func (h *APIHandlers) UpdateRelationship(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	var fields graph.RelationshipFields
	if err := decodeBody(r, &fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	id := extractID(r, "id")
	rel, err := tree.Graph.EditRelationship(id, fields)
	if err != nil {
		respondGraphError(w, err)
		return
	}

	h.audit(r, tree, "relationship.update", id, string(rel.Type))
	h.broadcast(tree, "relationship.updated", rel)
	respondJSON(w, http.StatusOK, rel)
}

// DeleteRelationship handles DELETE /api/relationships/{id}.
func (h *APIHandlers) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	id := extractID(r, "id")
	if err := tree.Graph.DeleteRelationship(id); err != nil {
		respondGraphError(w, err)
		return
	}

	h.audit(r, tree, "relationship.delete", id, "")
	h.broadcast(tree, "relationship.deleted", map[string]string{"id": id})
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// ListRelationshipTypes handles GET /api/relationship-types - the closed
// vocabulary with reciprocity info for each entry.
func (h *APIHandlers) ListRelationshipTypes(w http.ResponseWriter, r *http.Request) {
	infos := make([]RelationshipTypeInfo, 0, len(types.ValidRelationshipTypes))
	for _, t := range types.ValidRelationshipTypes {
		reciprocal, _ := types.Reciprocal(t)
		infos = append(infos, RelationshipTypeInfo{
			Type:       string(t),
			Symmetric:  types.IsSymmetric(t),
			Reciprocal: string(reciprocal),
		})
	}
	respondJSON(w, http.StatusOK, infos)
}
