package handlers

import (
	"net/http"
)

// CreateArchive captures an immediate snapshot archive of the default tree.
func (h *APIHandlers) CreateArchive(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		respondError(w, http.StatusServiceUnavailable, "archiving is disabled", nil)
		return
	}

	result, err := h.archiver.ArchiveNow(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "archive failed", err)
		return
	}

	if tree, treeErr := h.manager.GetTree(r.Context(), ""); treeErr == nil {
		h.audit(r, tree, "archive.create", tree.Name, result.Path)
	}

	respondJSON(w, http.StatusCreated, result)
}

// ListArchives returns archive files for the default tree, newest first,
// along with the archiver's status.
func (h *APIHandlers) ListArchives(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		respondError(w, http.StatusServiceUnavailable, "archiving is disabled", nil)
		return
	}

	archives, err := h.archiver.ListArchives()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list archives", err)
		return
	}
	status, err := h.archiver.Status()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read archiver status", err)
		return
	}

	respondJSON(w, http.StatusOK, ArchivesResponse{
		Status:   status,
		Archives: archives,
	})
}
