package handlers

import (
	"time"

	"github.com/scrypster/lineage/internal/archive"
	"github.com/scrypster/lineage/internal/graph"
	"github.com/scrypster/lineage/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RelationshipRequest is the payload for creating a relationship.
type RelationshipRequest struct {
	Person1ID  string            `json:"person1_id"`
	Person2ID  string            `json:"person2_id"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// TraversalResponse wraps one bounded traversal result. Truncated is set
// when the walk hit a node or edge ceiling and the results are partial.
type TraversalResponse struct {
	Start     string          `json:"start"`
	Depth     int             `json:"depth"`
	Count     int             `json:"count"`
	People    []*types.Person `json:"people"`
	Truncated bool            `json:"truncated,omitempty"`
}

// TreeResponse wraps a partial tree projection.
type TreeResponse struct {
	Tree      *graph.TreeResult `json:"tree"`
	Truncated bool              `json:"truncated,omitempty"`
}

// ConsistencyResponse reports the issues found around one person.
type ConsistencyResponse struct {
	PersonID string        `json:"person_id"`
	Issues   []graph.Issue `json:"issues"`
}

// DuplicatesResponse lists suspected duplicate person pairs.
type DuplicatesResponse struct {
	Pairs []graph.DuplicatePair `json:"pairs"`
}

// MergeRequest is the payload for merging two people.
type MergeRequest struct {
	KeepID   string `json:"keep_id"`
	RemoveID string `json:"remove_id"`
}

// RelationshipTypeInfo describes one vocabulary entry.
type RelationshipTypeInfo struct {
	Type       string `json:"type"`
	Symmetric  bool   `json:"symmetric"`
	Reciprocal string `json:"reciprocal"`
}

// StatsResponse is the response format for GET /api/stats.
type StatsResponse struct {
	Tree          string    `json:"tree"`
	People        int       `json:"people"`
	Relationships int       `json:"relationships"`
	LastSave      time.Time `json:"last_save,omitempty"`
}

// HealthResponse is the response format for GET /api/health.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	PersistErr string `json:"persist_error,omitempty"`
}

// ArchivesResponse lists snapshot archives plus the archiver's bookkeeping.
type ArchivesResponse struct {
	Status   *archive.Status `json:"status"`
	Archives []archive.Info  `json:"archives"`
}

// Event is broadcast to WebSocket clients after every committed mutation.
type Event struct {
	Type      string      `json:"type"` // e.g. "person.created", "merge.completed"
	Tree      string      `json:"tree"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
