package types

import "time"

// Snapshot is the full persistable state of one family graph. The storage
// backends save and load it atomically; persistence never sees partial
// mutations.
type Snapshot struct {
	People        []Person       `json:"people"`
	Relationships []Relationship `json:"relationships"`
	SavedAt       time.Time      `json:"saved_at"`
}

// AuditEntry records one mutation for audit purposes. Actor is an opaque
// identity string supplied by the caller; the core never interprets it.
type AuditEntry struct {
	ID        int64     `json:"id,omitempty"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`     // e.g. "person.create", "merge"
	SubjectID string    `json:"subject_id"` // person or relationship id
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}
