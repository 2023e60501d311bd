package graph

import (
	"fmt"
	"sort"

	"github.com/scrypster/lineage/internal/storage"
	"github.com/scrypster/lineage/pkg/types"
)

// IssueType categorizes a consistency finding.
type IssueType string

const (
	// IssueSelfRelationship flags an edge whose endpoints are the same
	// person. The mutation API rejects these, but loaded snapshots can
	// still contain them.
	IssueSelfRelationship IssueType = "self_relationship"

	// IssueContradictoryEdges flags a pair of edges storing both a type and
	// its exact reciprocal between the same two people. Reciprocity is
	// derived at read time; storing both directions is redundant at best
	// and contradictory at worst.
	IssueContradictoryEdges IssueType = "contradictory_edges"

	// IssueAncestryCycle flags a cycle through parent edges that would make
	// the person their own ancestor.
	IssueAncestryCycle IssueType = "ancestry_cycle"
)

// Issue is one consistency finding. The checker reports; it never corrects.
type Issue struct {
	Type            IssueType `json:"type"`
	PersonIDs       []string  `json:"person_ids"`
	RelationshipIDs []string  `json:"relationship_ids,omitempty"`
	Description     string    `json:"description"`
}

// DuplicatePair is a candidate duplicate-person pair for human review.
type DuplicatePair struct {
	Person1ID string `json:"person1_id"`
	Person2ID string `json:"person2_id"`
	Reason    string `json:"reason"`
}

// MergeResult reports what a merge rewrote and what it dropped.
type MergeResult struct {
	KeptID       string `json:"kept_id"`
	RemovedID    string `json:"removed_id"`
	EdgesRewired int    `json:"edges_rewired"`
	EdgesDropped int    `json:"edges_dropped"`
}

// CheckConsistency validates the local edge neighborhood of one person.
// Read-only; the graph is never mutated.
func (g *FamilyGraph) CheckConsistency(personID string) ([]Issue, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.people[personID]; !ok {
		return nil, fmt.Errorf("%w: person %s", storage.ErrNotFound, personID)
	}

	issues := []Issue{}

	for _, relID := range g.adjacency[personID] {
		r := g.relationships[relID]

		if r.Person1ID == r.Person2ID {
			issues = append(issues, Issue{
				Type:            IssueSelfRelationship,
				PersonIDs:       []string{r.Person1ID},
				RelationshipIDs: []string{r.ID},
				Description:     fmt.Sprintf("relationship %s relates person %s to themselves", r.ID, r.Person1ID),
			})
			continue
		}

		// An explicit reverse edge carrying the exact reciprocal type
		// duplicates what reciprocity derivation already provides.
		if inverse, defined := types.Reciprocal(r.Type); defined {
			if reverseID, ok := g.triples[tripleKey{r.Person2ID, r.Person1ID, inverse}]; ok && reverseID != r.ID {
				// Report each pair once, from the lexically smaller edge id.
				if r.ID < reverseID {
					issues = append(issues, Issue{
						Type:            IssueContradictoryEdges,
						PersonIDs:       []string{r.Person1ID, r.Person2ID},
						RelationshipIDs: []string{r.ID, reverseID},
						Description: fmt.Sprintf("edge %s (%s) and reverse edge %s (%s) store a reciprocal pair that should be derived, not duplicated",
							r.ID, r.Type, reverseID, inverse),
					})
				}
			}
		}
	}

	if cycle := g.findAncestryCycleLocked(personID); len(cycle) > 0 {
		issues = append(issues, Issue{
			Type:        IssueAncestryCycle,
			PersonIDs:   cycle,
			Description: fmt.Sprintf("person %s is reachable as their own ancestor through parent edges", personID),
		})
	}

	return issues, nil
}

// findAncestryCycleLocked walks parent edges upward from personID and
// reports the visited chain if personID itself is ever re-discovered.
func (g *FamilyGraph) findAncestryCycleLocked(personID string) []string {
	visited := map[string]bool{}
	queue := []string{personID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, parentID := range g.parentsOfLocked(current) {
			if parentID == personID {
				chain := make([]string, 0, len(visited)+1)
				chain = append(chain, personID)
				for id := range visited {
					chain = append(chain, id)
				}
				sort.Strings(chain[1:])
				return chain
			}
			if !visited[parentID] {
				visited[parentID] = true
				queue = append(queue, parentID)
			}
		}
	}
	return nil
}

// FindDuplicates detects candidate duplicate people across the whole graph:
// exact match on normalized first+last name, and on birth date when both
// records carry one. Candidates are returned for human review, never merged
// automatically.
func (g *FamilyGraph) FindDuplicates() []DuplicatePair {
	g.mu.RLock()
	defer g.mu.RUnlock()

	byName := make(map[string][]*types.Person)
	for _, p := range g.people {
		byName[p.NormalizedName()] = append(byName[p.NormalizedName()], p)
	}

	pairs := []DuplicatePair{}
	for name, group := range byName {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.BirthDate != "" && b.BirthDate != "" && a.BirthDate != b.BirthDate {
					continue
				}
				reason := fmt.Sprintf("same normalized name %q", name)
				if a.BirthDate != "" && a.BirthDate == b.BirthDate {
					reason += fmt.Sprintf(" and birth date %s", a.BirthDate)
				}
				pairs = append(pairs, DuplicatePair{Person1ID: a.ID, Person2ID: b.ID, Reason: reason})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Person1ID != pairs[j].Person1ID {
			return pairs[i].Person1ID < pairs[j].Person1ID
		}
		return pairs[i].Person2ID < pairs[j].Person2ID
	})
	return pairs
}

// Merge folds removeID into keepID: every relationship referencing removeID
// is rewritten to reference keepID, then removeID is deleted. Rewrites that
// would duplicate an existing triple on keepID, or relate keepID to itself,
// are dropped; existing edges on keepID take precedence. A second merge with
// the same removeID fails with ErrNotFound.
func (g *FamilyGraph) Merge(keepID, removeID string) (*MergeResult, error) {
	g.mu.Lock()
	if keepID == removeID {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot merge a person into themselves", storage.ErrValidation)
	}
	if _, ok := g.people[keepID]; !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: person %s", storage.ErrNotFound, keepID)
	}
	if _, ok := g.people[removeID]; !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: person %s", storage.ErrNotFound, removeID)
	}

	result := &MergeResult{KeptID: keepID, RemovedID: removeID}

	relIDs := append([]string(nil), g.adjacency[removeID]...)
	for _, relID := range relIDs {
		r := g.relationships[relID]

		rewritten := r.Clone()
		if rewritten.Person1ID == removeID {
			rewritten.Person1ID = keepID
		}
		if rewritten.Person2ID == removeID {
			rewritten.Person2ID = keepID
		}

		g.removeRelationshipLocked(relID)

		if rewritten.Person1ID == rewritten.Person2ID {
			result.EdgesDropped++
			continue
		}
		if _, exists := g.triples[tripleKey{rewritten.Person1ID, rewritten.Person2ID, rewritten.Type}]; exists {
			result.EdgesDropped++
			continue
		}

		g.insertRelationshipLocked(rewritten)
		result.EdgesRewired++
	}

	delete(g.people, removeID)
	delete(g.adjacency, removeID)
	g.mu.Unlock()

	g.notifyCommit()
	return result, nil
}
