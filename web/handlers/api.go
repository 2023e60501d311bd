package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/scrypster/lineage/internal/archive"
	"github.com/scrypster/lineage/internal/config"
	"github.com/scrypster/lineage/internal/connections"
	"github.com/scrypster/lineage/internal/storage"
	"github.com/scrypster/lineage/pkg/types"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// APIHandlers contains HTTP handlers for the REST API. Every handler resolves
// its target tree per request, so one server can expose multiple trees.
type APIHandlers struct {
	manager  *connections.Manager
	config   *config.Config
	hub      *WebSocketHub
	archiver *archive.Archiver
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(manager *connections.Manager, cfg *config.Config) *APIHandlers {
	return &APIHandlers{
		manager: manager,
		config:  cfg,
	}
}

// SetHub attaches the WebSocket hub used to broadcast mutation events.
func (h *APIHandlers) SetHub(hub *WebSocketHub) {
	h.hub = hub
}

// SetArchiver attaches the snapshot archiver exposed by the archive
// endpoints. Without one those endpoints report archiving as disabled.
func (h *APIHandlers) SetArchiver(a *archive.Archiver) {
	h.archiver = a
}

// tree resolves the target tree from the "tree" query parameter or the
// X-Tree header, falling back to the manager's default.
func (h *APIHandlers) tree(r *http.Request) (*connections.Tree, error) {
	name := r.URL.Query().Get("tree")
	if name == "" {
		name = r.Header.Get("X-Tree")
	}
	return h.manager.GetTree(r.Context(), name)
}

// actor returns the opaque identity recorded in the audit trail. The value
// comes from the X-Actor header and is never interpreted.
func actor(r *http.Request) string {
	if a := r.Header.Get("X-Actor"); a != "" {
		return a
	}
	return "anonymous"
}

// audit appends an audit entry for a committed mutation. Audit failures are
// logged by the store layer and never fail the request.
func (h *APIHandlers) audit(r *http.Request, tree *connections.Tree, action, subjectID, detail string) {
	_ = tree.Store.AppendAudit(r.Context(), types.AuditEntry{
		Actor:     actor(r),
		Action:    action,
		SubjectID: subjectID,
		Detail:    detail,
		At:        time.Now().UTC(),
	})
}

// broadcast publishes a mutation event to WebSocket clients, if a hub is attached.
func (h *APIHandlers) broadcast(tree *connections.Tree, eventType string, payload interface{}) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(Event{
		Type:      eventType,
		Tree:      tree.Name,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// listOptions builds normalized pagination options from query parameters.
func listOptions(r *http.Request) storage.ListOptions {
	opts := storage.ListOptions{
		Page:      parseInt(r.URL.Query().Get("page"), 1),
		Limit:     parseInt(r.URL.Query().Get("limit"), 20),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}
	opts.Normalize()
	return opts
}

// extractID extracts a path parameter from the request.
func extractID(r *http.Request, key string) string {
	return r.PathValue(key)
}

// parseInt parses an integer from a string, returning defaultValue if parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; nothing more to do.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}

// respondGraphError maps graph sentinel errors onto HTTP status codes.
func respondGraphError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrValidation):
		respondError(w, http.StatusBadRequest, "invalid input", err)
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found", err)
	case errors.Is(err, storage.ErrDuplicateEdge):
		respondError(w, http.StatusConflict, "duplicate relationship", err)
	case errors.Is(err, storage.ErrBoundsExceeded):
		respondError(w, http.StatusUnprocessableEntity, "traversal bounds exceeded", err)
	default:
		respondError(w, http.StatusInternalServerError, "internal error", err)
	}
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
