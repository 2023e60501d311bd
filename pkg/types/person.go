// Package types defines the core data structures for the Lineage genealogy
// system: people, typed relationships between them, the relationship-type
// vocabulary with its reciprocity table, and the snapshot/audit types shared
// by the storage backends.
package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted for vital dates.
const DateLayout = "2006-01-02"

// Person represents a single individual in a family tree.
// All fields except ID and FirstName are optional.
type Person struct {
	ID        string `json:"id"`         // Unique identifier (format: per:uuid8)
	FirstName string `json:"first_name"` // Given name, required
	LastName  string `json:"last_name,omitempty"`
	Nickname  string `json:"nickname,omitempty"`

	// Vital dates, ISO calendar dates (YYYY-MM-DD) when present.
	BirthDate string `json:"birth_date,omitempty"`
	DeathDate string `json:"death_date,omitempty"`

	// Gender is an open string; no enumeration is enforced.
	Gender string `json:"gender,omitempty"`

	// Attributes holds free-form key/value data (occupation, places, notes).
	Attributes map[string]string `json:"attributes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the person's fields. FirstName must be non-empty and any
// vital date present must parse as an ISO calendar date.
func (p *Person) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("first_name is required")
	}
	if err := ValidateDate(p.BirthDate); err != nil {
		return fmt.Errorf("birth_date: %w", err)
	}
	if err := ValidateDate(p.DeathDate); err != nil {
		return fmt.Errorf("death_date: %w", err)
	}
	return nil
}

// DisplayName returns the person's name for node/link projections:
// "First Last", falling back to the nickname when both name parts are empty.
func (p *Person) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		name = p.Nickname
	}
	return name
}

// Lifespan returns a "birth-death" year range for display, using only the
// parts that are present (e.g. "1902-1964", "1950-", "").
func (p *Person) Lifespan() string {
	birth := dateYear(p.BirthDate)
	death := dateYear(p.DeathDate)
	if birth == "" && death == "" {
		return ""
	}
	return birth + "-" + death
}

// NormalizedName returns the lowercased, whitespace-trimmed "first last" key
// used for duplicate detection.
func (p *Person) NormalizedName() string {
	first := strings.ToLower(strings.TrimSpace(p.FirstName))
	last := strings.ToLower(strings.TrimSpace(p.LastName))
	return first + " " + last
}

// Clone returns a deep copy of the person.
func (p *Person) Clone() *Person {
	cp := *p
	if p.Attributes != nil {
		cp.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			cp.Attributes[k] = v
		}
	}
	return &cp
}

// ValidateDate reports whether s is empty or a valid ISO calendar date.
func ValidateDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return nil
}

func dateYear(s string) string {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%04d", t.Year())
}
