package handlers

import (
	"net/http"

	"github.com/scrypster/lineage/internal/graph"
)

// ListPeople handles GET /api/people - list people with pagination and sorting.
func (h *APIHandlers) ListPeople(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	respondJSON(w, http.StatusOK, tree.Graph.ListPeople(listOptions(r)))
}

// CreatePerson handles POST /api/people.
func (h *APIHandlers) CreatePerson(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	var fields graph.PersonFields
	if err := decodeBody(r, &fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	person, err := tree.Graph.AddPerson(fields)
	if err != nil {
		respondGraphError(w, err)
		return
	}

	h.audit(r, tree, "person.create", person.ID, person.DisplayName())
	h.broadcast(tree, "person.created", person)
	respondJSON(w, http.StatusCreated, person)
}

// GetPerson handles GET /api/people/{id}.
func (h *APIHandlers) GetPerson(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	person, err := tree.Graph.GetPerson(extractID(r, "id"))
	if err != nil {
		respondGraphError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, person)
}

// UpdatePerson handles PUT /api/people/{id} - partial update, absent fields
// are left unchanged.
func (h *APIHandlers) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	var fields graph.PersonFields
	if err := decodeBody(r, &fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	id := extractID(r, "id")
	person, err := tree.Graph.EditPerson(id, fields)
	if err != nil {
		respondGraphError(w, err)
		return
	}

	h.audit(r, tree, "person.update", id, person.DisplayName())
	h.broadcast(tree, "person.updated", person)
	respondJSON(w, http.StatusOK, person)
}

// DeletePerson handles DELETE /api/people/{id}. All relationships touching
// the person are removed as well.
func (h *APIHandlers) DeletePerson(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tree", err)
		return
	}

	id := extractID(r, "id")
	if err := tree.Graph.DeletePerson(id); err != nil {
		respondGraphError(w, err)
		return
	}

	h.audit(r, tree, "person.delete", id, "")
	h.broadcast(tree, "person.deleted", map[string]string{"id": id})
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
