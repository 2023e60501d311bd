package graph

import (
	"fmt"

	"github.com/scrypster/lineage/internal/storage"
	"github.com/scrypster/lineage/pkg/types"
)

// TreeResult is the composite ancestors/descendants view around one person.
type TreeResult struct {
	Center      *types.Person   `json:"center"`
	Ancestors   []*types.Person `json:"ancestors"`
	Descendants []*types.Person `json:"descendants"`
}

// Ancestors walks breadth-first up the tree strictly along parent-typed
// edges where the subject is the child side, collecting every parent
// discovered within depth levels. depth 0 returns an empty result; an
// unknown starting id is ErrNotFound, never an empty result.
func (g *FamilyGraph) Ancestors(id string, depth int) ([]*types.Person, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bfsLocked(id, depth, g.parentsOfLocked)
}

// Descendants is the mirror of Ancestors: it walks parent edges where the
// subject is the parent side and collects the children.
func (g *FamilyGraph) Descendants(id string, depth int) ([]*types.Person, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bfsLocked(id, depth, g.childrenOfLocked)
}

// Siblings returns the union of the children of every direct parent of id,
// excluding id itself. Union semantics means full and half siblings are both
// included; no distinction is made between them.
func (g *FamilyGraph) Siblings(id string) ([]*types.Person, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.people[id]; !ok {
		return nil, fmt.Errorf("%w: person %s", storage.ErrNotFound, id)
	}

	seen := map[string]bool{id: true}
	siblings := make([]*types.Person, 0)
	for _, parentID := range g.parentsOfLocked(id) {
		for _, childID := range g.childrenOfLocked(parentID) {
			if seen[childID] {
				continue
			}
			seen[childID] = true
			siblings = append(siblings, g.people[childID].Clone())
		}
	}
	return siblings, nil
}

// ExtendedFamily walks ancestors exactly like Ancestors. The walk stays
// ancestor-only on purpose: collateral kin (aunts, uncles, cousins) are
// reachable through Related, and widening this walk would change the
// meaning of its depth parameter.
func (g *FamilyGraph) ExtendedFamily(id string, depth int) ([]*types.Person, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bfsLocked(id, depth, g.parentsOfLocked)
}

// Related is the most general traversal: BFS in both directions over all
// relationship types, collecting anyone transitively connected within depth
// hops. This is the query that surfaces spouses, siblings, in-laws and any
// other typed connection.
func (g *FamilyGraph) Related(id string, depth int) ([]*types.Person, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bfsLocked(id, depth, g.neighborsOfLocked)
}

// Branch walks strictly downward like Descendants but returns every visited
// person, the starting person included, in BFS discovery order.
func (g *FamilyGraph) Branch(id string, depth int) ([]*types.Person, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clamped, err := g.validateTraversalLocked(id, depth)
	if err != nil {
		return nil, err
	}
	if clamped == 0 {
		return []*types.Person{}, nil
	}

	below, err := g.bfsLocked(id, depth, g.childrenOfLocked)
	if err != nil {
		return nil, err
	}
	return append([]*types.Person{g.people[id].Clone()}, below...), nil
}

// PartialTree composes Ancestors and Descendants around a center person.
// Setting both restriction flags is a validation error, rejected before any
// traversal; setting neither returns both sides.
func (g *FamilyGraph) PartialTree(id string, depth int, onlyAncestors, onlyDescendants bool) (*TreeResult, error) {
	if onlyAncestors && onlyDescendants {
		return nil, fmt.Errorf("%w: only_ancestors and only_descendants are mutually exclusive", storage.ErrValidation)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, err := g.validateTraversalLocked(id, depth); err != nil {
		return nil, err
	}

	result := &TreeResult{
		Center:      g.people[id].Clone(),
		Ancestors:   []*types.Person{},
		Descendants: []*types.Person{},
	}

	if !onlyDescendants {
		ancestors, err := g.bfsLocked(id, depth, g.parentsOfLocked)
		if err != nil {
			return nil, err
		}
		result.Ancestors = ancestors
	}
	if !onlyAncestors {
		descendants, err := g.bfsLocked(id, depth, g.childrenOfLocked)
		if err != nil {
			return nil, err
		}
		result.Descendants = descendants
	}
	return result, nil
}

// --- locked traversal internals ---

func (g *FamilyGraph) validateTraversalLocked(id string, depth int) (int, error) {
	if depth < 0 {
		return 0, fmt.Errorf("%w: depth must be non-negative, got %d", storage.ErrValidation, depth)
	}
	if _, ok := g.people[id]; !ok {
		return 0, fmt.Errorf("%w: person %s", storage.ErrNotFound, id)
	}
	return g.bounds.ClampDepth(depth), nil
}

// bfsLocked performs a level-bounded breadth-first expansion from id along
// the given neighbor function, returning discovered people (start excluded)
// in discovery order. The visited set guarantees termination even when the
// underlying data contains a cycle.
func (g *FamilyGraph) bfsLocked(id string, depth int, neighbors func(string) []string) ([]*types.Person, error) {
	clamped, err := g.validateTraversalLocked(id, depth)
	if err != nil {
		return nil, err
	}

	result := make([]*types.Person, 0)
	if clamped == 0 {
		return result, nil
	}

	checker := newBoundsChecker(g.bounds)
	type queueItem struct {
		id    string
		level int
	}

	visited := map[string]bool{id: true}
	queue := []queueItem{{id, 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.level >= clamped {
			continue
		}

		for _, next := range neighbors(current.id) {
			if err := checker.recordEdge(); err != nil {
				return result, err
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if err := checker.recordNode(); err != nil {
				return result, err
			}
			result = append(result, g.people[next].Clone())
			queue = append(queue, queueItem{next, current.level + 1})
		}
	}

	return result, nil
}

// parentsOfLocked returns the people recorded as parents of id: parent
// edges where id is person2 (the child side).
func (g *FamilyGraph) parentsOfLocked(id string) []string {
	var parents []string
	for _, relID := range g.adjacency[id] {
		r := g.relationships[relID]
		if r.Type == types.RelParent && r.Person2ID == id {
			parents = append(parents, r.Person1ID)
		}
	}
	return parents
}

// childrenOfLocked walks parent edges backwards: parent edges where id is
// person1 yield the children on the person2 side.
func (g *FamilyGraph) childrenOfLocked(id string) []string {
	var children []string
	for _, relID := range g.adjacency[id] {
		r := g.relationships[relID]
		if r.Type == types.RelParent && r.Person1ID == id {
			children = append(children, r.Person2ID)
		}
	}
	return children
}

// neighborsOfLocked returns every person directly connected to id by any
// relationship type, in either direction.
func (g *FamilyGraph) neighborsOfLocked(id string) []string {
	var out []string
	for _, relID := range g.adjacency[id] {
		if other := g.relationships[relID].Other(id); other != "" {
			out = append(out, other)
		}
	}
	return out
}
