package types

import "time"

// Relationship represents a typed directed edge between two people.
//
// For asymmetric types, Person1 is the source of the semantic direction:
// "person1 is the <type> of person2" (a parent edge means person1 is the
// parent of person2). Symmetric types (spouse, sibling, cousin, partner)
// are direction-irrelevant by convention.
type Relationship struct {
	ID        string           `json:"id"`         // Unique identifier (format: rel:uuid8)
	Person1ID string           `json:"person1_id"` // Semantic source
	Person2ID string           `json:"person2_id"` // Semantic target
	Type      RelationshipType `json:"type"`

	// Attributes holds free-form edge data (marriage date, notes).
	Attributes map[string]string `json:"attributes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Involves reports whether the relationship references the given person on
// either side.
func (r *Relationship) Involves(personID string) bool {
	return r.Person1ID == personID || r.Person2ID == personID
}

// Other returns the opposite endpoint of the edge relative to personID.
// Returns an empty string if personID is on neither side.
func (r *Relationship) Other(personID string) string {
	switch personID {
	case r.Person1ID:
		return r.Person2ID
	case r.Person2ID:
		return r.Person1ID
	}
	return ""
}

// Clone returns a deep copy of the relationship.
func (r *Relationship) Clone() *Relationship {
	cp := *r
	if r.Attributes != nil {
		cp.Attributes = make(map[string]string, len(r.Attributes))
		for k, v := range r.Attributes {
			cp.Attributes[k] = v
		}
	}
	return &cp
}
