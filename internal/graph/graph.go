// Package graph implements the family-relationship graph engine: an
// in-memory arena of people and typed directed relationship edges with an
// incrementally maintained adjacency index, bounded BFS traversals,
// consistency checking, duplicate detection and invariant-preserving merge,
// and the node/link view projection.
//
// A FamilyGraph is an explicit context object owned by its caller; there is
// no package-level graph state. Mutations are serialized by a single writer
// lock; traversals and other reads run concurrently under the read lock and
// never perform I/O.
package graph

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/lineage/internal/storage"
	"github.com/scrypster/lineage/pkg/types"
)

// tripleKey identifies a relationship by its (person1, person2, type)
// triple. The graph is a directed multigraph: the same ordered pair may
// carry multiple distinct types, but never the same type twice.
type tripleKey struct {
	p1, p2 string
	t      types.RelationshipType
}

// FamilyGraph owns the person and relationship arenas for one family tree.
type FamilyGraph struct {
	mu sync.RWMutex

	people        map[string]*types.Person
	relationships map[string]*types.Relationship

	// adjacency maps personID -> relationship IDs touching that person, in
	// insertion order. Maintained on every mutation so BFS levels are
	// O(edges touched) rather than O(all edges).
	adjacency map[string][]string

	// triples backs O(1) duplicate-edge detection.
	triples map[tripleKey]string

	bounds storage.Bounds

	commitHooks []func()
}

// New creates an empty graph with default traversal bounds.
func New() *FamilyGraph {
	return NewWithBounds(storage.Bounds{})
}

// NewWithBounds creates an empty graph with the given traversal bounds.
func NewWithBounds(b storage.Bounds) *FamilyGraph {
	b.Normalize()
	return &FamilyGraph{
		people:        make(map[string]*types.Person),
		relationships: make(map[string]*types.Relationship),
		adjacency:     make(map[string][]string),
		triples:       make(map[tripleKey]string),
		bounds:        b,
	}
}

// Load rebuilds a graph from a persisted snapshot, re-validating every
// invariant. A snapshot that violates referential integrity is rejected.
func Load(snap *types.Snapshot, b storage.Bounds) (*FamilyGraph, error) {
	g := NewWithBounds(b)
	if snap == nil {
		return g, nil
	}

	for i := range snap.People {
		p := snap.People[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: person %s: %v", storage.ErrValidation, p.ID, err)
		}
		if _, exists := g.people[p.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate person id %s", storage.ErrValidation, p.ID)
		}
		g.people[p.ID] = p.Clone()
	}

	for i := range snap.Relationships {
		r := snap.Relationships[i]
		if err := g.validateEdgeLocked(r.Person1ID, r.Person2ID, r.Type); err != nil {
			return nil, fmt.Errorf("relationship %s: %w", r.ID, err)
		}
		g.insertRelationshipLocked(r.Clone())
	}

	return g, nil
}

// OnCommit registers a hook invoked after every successful mutation, outside
// the writer lock. Register all hooks before the graph starts serving.
func (g *FamilyGraph) OnCommit(fn func()) {
	g.commitHooks = append(g.commitHooks, fn)
}

func (g *FamilyGraph) notifyCommit() {
	for _, fn := range g.commitHooks {
		fn()
	}
}

// PersonFields carries a partial person update. Nil pointer fields are left
// untouched; a non-nil Attributes map replaces the attribute set.
type PersonFields struct {
	FirstName  *string           `json:"first_name"`
	LastName   *string           `json:"last_name"`
	Nickname   *string           `json:"nickname"`
	BirthDate  *string           `json:"birth_date"`
	DeathDate  *string           `json:"death_date"`
	Gender     *string           `json:"gender"`
	Attributes map[string]string `json:"attributes"`
}

func (f *PersonFields) apply(p *types.Person) {
	if f.FirstName != nil {
		p.FirstName = *f.FirstName
	}
	if f.LastName != nil {
		p.LastName = *f.LastName
	}
	if f.Nickname != nil {
		p.Nickname = *f.Nickname
	}
	if f.BirthDate != nil {
		p.BirthDate = *f.BirthDate
	}
	if f.DeathDate != nil {
		p.DeathDate = *f.DeathDate
	}
	if f.Gender != nil {
		p.Gender = *f.Gender
	}
	if f.Attributes != nil {
		p.Attributes = f.Attributes
	}
}

// AddPerson creates a new person from the given fields.
func (g *FamilyGraph) AddPerson(fields PersonFields) (*types.Person, error) {
	now := time.Now().UTC()
	p := &types.Person{
		ID:        newID("per"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	fields.apply(p)

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}

	g.mu.Lock()
	g.people[p.ID] = p
	g.mu.Unlock()

	g.notifyCommit()
	return p.Clone(), nil
}

// EditPerson applies a partial update to an existing person, re-validating
// the result before it replaces the stored record.
func (g *FamilyGraph) EditPerson(id string, fields PersonFields) (*types.Person, error) {
	g.mu.Lock()
	existing, ok := g.people[id]
	if !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: person %s", storage.ErrNotFound, id)
	}

	updated := existing.Clone()
	fields.apply(updated)
	updated.UpdatedAt = time.Now().UTC()

	if err := updated.Validate(); err != nil {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", storage.ErrValidation, err)
	}

	g.people[id] = updated
	g.mu.Unlock()

	g.notifyCommit()
	return updated.Clone(), nil
}

// DeletePerson removes a person and, atomically with it, every relationship
// that references the person.
func (g *FamilyGraph) DeletePerson(id string) error {
	g.mu.Lock()
	if _, ok := g.people[id]; !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: person %s", storage.ErrNotFound, id)
	}

	// Cascade: copy the adjacency list first, removal mutates it.
	relIDs := append([]string(nil), g.adjacency[id]...)
	for _, relID := range relIDs {
		g.removeRelationshipLocked(relID)
	}

	delete(g.people, id)
	delete(g.adjacency, id)
	g.mu.Unlock()

	g.notifyCommit()
	return nil
}

// GetPerson returns a copy of the person with the given id.
func (g *FamilyGraph) GetPerson(id string) (*types.Person, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p, ok := g.people[id]
	if !ok {
		return nil, fmt.Errorf("%w: person %s", storage.ErrNotFound, id)
	}
	return p.Clone(), nil
}

// ListPeople returns a sorted, paginated page of people.
func (g *FamilyGraph) ListPeople(opts storage.ListOptions) storage.PaginatedResult[*types.Person] {
	opts.Normalize()

	g.mu.RLock()
	all := make([]*types.Person, 0, len(g.people))
	for _, p := range g.people {
		all = append(all, p.Clone())
	}
	g.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		switch opts.SortBy {
		case "updated_at":
			if !all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
				return all[i].UpdatedAt.Before(all[j].UpdatedAt)
			}
		case "last_name":
			if all[i].LastName != all[j].LastName {
				return all[i].LastName < all[j].LastName
			}
		default:
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.Before(all[j].CreatedAt)
			}
		}
		return all[i].ID < all[j].ID
	})
	if opts.SortOrder == "desc" {
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	}

	return paginate(all, opts)
}

// RelationshipFields carries a partial relationship update.
type RelationshipFields struct {
	Person1ID  *string                 `json:"person1_id"`
	Person2ID  *string                 `json:"person2_id"`
	Type       *types.RelationshipType `json:"type"`
	Attributes map[string]string       `json:"attributes"`
}

// AddRelationship creates a typed directed edge between two existing people.
// Validation happens before any mutation: the endpoints must differ, the
// type must be in the vocabulary, both people must exist, and the
// (person1, person2, type) triple must not already exist.
func (g *FamilyGraph) AddRelationship(person1ID, person2ID string, relType types.RelationshipType, attrs map[string]string) (*types.Relationship, error) {
	g.mu.Lock()
	if err := g.validateEdgeLocked(person1ID, person2ID, relType); err != nil {
		g.mu.Unlock()
		return nil, err
	}

	now := time.Now().UTC()
	r := &types.Relationship{
		ID:         newID("rel"),
		Person1ID:  person1ID,
		Person2ID:  person2ID,
		Type:       relType,
		Attributes: attrs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	g.insertRelationshipLocked(r)
	g.mu.Unlock()

	g.notifyCommit()
	return r.Clone(), nil
}

// EditRelationship applies a partial update to an existing relationship,
// re-validating every edge invariant against the updated endpoints and type.
func (g *FamilyGraph) EditRelationship(id string, fields RelationshipFields) (*types.Relationship, error) {
	g.mu.Lock()
	existing, ok := g.relationships[id]
	if !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: relationship %s", storage.ErrNotFound, id)
	}

	updated := existing.Clone()
	if fields.Person1ID != nil {
		updated.Person1ID = *fields.Person1ID
	}
	if fields.Person2ID != nil {
		updated.Person2ID = *fields.Person2ID
	}
	if fields.Type != nil {
		updated.Type = *fields.Type
	}
	if fields.Attributes != nil {
		updated.Attributes = fields.Attributes
	}
	updated.UpdatedAt = time.Now().UTC()

	newKey := tripleKey{updated.Person1ID, updated.Person2ID, updated.Type}
	oldKey := tripleKey{existing.Person1ID, existing.Person2ID, existing.Type}
	if newKey != oldKey {
		if err := g.validateEdgeLocked(updated.Person1ID, updated.Person2ID, updated.Type); err != nil {
			g.mu.Unlock()
			return nil, err
		}
		g.removeRelationshipLocked(id)
		g.insertRelationshipLocked(updated)
	} else {
		g.relationships[id] = updated
	}
	g.mu.Unlock()

	g.notifyCommit()
	return updated.Clone(), nil
}

// DeleteRelationship removes a single relationship.
func (g *FamilyGraph) DeleteRelationship(id string) error {
	g.mu.Lock()
	if _, ok := g.relationships[id]; !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: relationship %s", storage.ErrNotFound, id)
	}
	g.removeRelationshipLocked(id)
	g.mu.Unlock()

	g.notifyCommit()
	return nil
}

// GetRelationship returns a copy of the relationship with the given id.
func (g *FamilyGraph) GetRelationship(id string) (*types.Relationship, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, ok := g.relationships[id]
	if !ok {
		return nil, fmt.Errorf("%w: relationship %s", storage.ErrNotFound, id)
	}
	return r.Clone(), nil
}

// ListRelationships returns a sorted, paginated page of relationships.
func (g *FamilyGraph) ListRelationships(opts storage.ListOptions) storage.PaginatedResult[*types.Relationship] {
	opts.Normalize()

	g.mu.RLock()
	all := make([]*types.Relationship, 0, len(g.relationships))
	for _, r := range g.relationships {
		all = append(all, r.Clone())
	}
	g.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if opts.SortBy == "updated_at" {
			if !all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
				return all[i].UpdatedAt.Before(all[j].UpdatedAt)
			}
		} else if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if opts.SortOrder == "desc" {
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	}

	return paginate(all, opts)
}

// Stats returns the current person and relationship counts.
func (g *FamilyGraph) Stats() (people, relationships int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.people), len(g.relationships)
}

// Snapshot returns a deep copy of the full graph state, sorted by id so
// snapshots are deterministic.
func (g *FamilyGraph) Snapshot() *types.Snapshot {
	g.mu.RLock()
	snap := &types.Snapshot{
		People:        make([]types.Person, 0, len(g.people)),
		Relationships: make([]types.Relationship, 0, len(g.relationships)),
		SavedAt:       time.Now().UTC(),
	}
	for _, p := range g.people {
		snap.People = append(snap.People, *p.Clone())
	}
	for _, r := range g.relationships {
		snap.Relationships = append(snap.Relationships, *r.Clone())
	}
	g.mu.RUnlock()

	sort.Slice(snap.People, func(i, j int) bool { return snap.People[i].ID < snap.People[j].ID })
	sort.Slice(snap.Relationships, func(i, j int) bool { return snap.Relationships[i].ID < snap.Relationships[j].ID })
	return snap
}

// --- locked helpers ---

// validateEdgeLocked checks every relationship-creation invariant. Caller
// holds the lock (read or write).
func (g *FamilyGraph) validateEdgeLocked(person1ID, person2ID string, relType types.RelationshipType) error {
	if person1ID == person2ID {
		return fmt.Errorf("%w: self-relationship for person %s", storage.ErrValidation, person1ID)
	}
	if !types.IsValidRelationshipType(relType) {
		return fmt.Errorf("%w: unknown relationship type %q", storage.ErrValidation, relType)
	}
	if _, ok := g.people[person1ID]; !ok {
		return fmt.Errorf("%w: person %s", storage.ErrNotFound, person1ID)
	}
	if _, ok := g.people[person2ID]; !ok {
		return fmt.Errorf("%w: person %s", storage.ErrNotFound, person2ID)
	}
	if _, ok := g.triples[tripleKey{person1ID, person2ID, relType}]; ok {
		return fmt.Errorf("%w: (%s, %s, %s)", storage.ErrDuplicateEdge, person1ID, person2ID, relType)
	}
	return nil
}

func (g *FamilyGraph) insertRelationshipLocked(r *types.Relationship) {
	g.relationships[r.ID] = r
	g.adjacency[r.Person1ID] = append(g.adjacency[r.Person1ID], r.ID)
	g.adjacency[r.Person2ID] = append(g.adjacency[r.Person2ID], r.ID)
	g.triples[tripleKey{r.Person1ID, r.Person2ID, r.Type}] = r.ID
}

func (g *FamilyGraph) removeRelationshipLocked(relID string) {
	r, ok := g.relationships[relID]
	if !ok {
		return
	}
	delete(g.relationships, relID)
	delete(g.triples, tripleKey{r.Person1ID, r.Person2ID, r.Type})
	g.adjacency[r.Person1ID] = removeString(g.adjacency[r.Person1ID], relID)
	g.adjacency[r.Person2ID] = removeString(g.adjacency[r.Person2ID], relID)
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func paginate[T any](all []T, opts storage.ListOptions) storage.PaginatedResult[T] {
	total := len(all)
	start := opts.Offset()
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return storage.PaginatedResult[T]{
		Items:    all[start:end],
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  end < total,
	}
}

// newID generates a prefixed UUID identifier, e.g.
// "per:0195c9f0-5b7c-7d5e-9f1a-3c2b1a0d9e8f". Full UUIDs keep arena keys
// collision-free without an existence check on insert.
func newID(prefix string) string {
	return fmt.Sprintf("%s:%s", prefix, uuid.New().String())
}
