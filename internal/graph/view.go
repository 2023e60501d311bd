package graph

import (
	"sort"

	"github.com/scrypster/lineage/pkg/types"
)

// ViewNode is one person in the visualization projection.
type ViewNode struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Lifespan string `json:"lifespan,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

// ViewLink is one canonicalized edge in the visualization projection.
type ViewLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// ViewResult is the node/link shape consumed by the visualization client.
type ViewResult struct {
	Nodes []ViewNode `json:"nodes"`
	Links []ViewLink `json:"links"`
}

// View projects the graph into nodes and links. With a non-empty startID the
// projection covers only the subgraph reachable from it within maxDepth hops
// over all relationship types; with an empty startID the whole graph is
// projected and maxDepth is ignored.
//
// Canonicalization: parent and child edges collapse into one parent_child
// link oriented parent to child, emitted at most once per (parent, child)
// pair even when both directional records exist. Symmetric types emit
// exactly one link per unordered pair.
func (g *FamilyGraph) View(startID string, maxDepth int) (*ViewResult, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var include map[string]bool
	if startID != "" {
		reachable, err := g.bfsLocked(startID, maxDepth, g.neighborsOfLocked)
		if err != nil {
			return nil, err
		}
		include = make(map[string]bool, len(reachable)+1)
		include[startID] = true
		for _, p := range reachable {
			include[p.ID] = true
		}
	}

	result := &ViewResult{Nodes: []ViewNode{}, Links: []ViewLink{}}

	for id, p := range g.people {
		if include != nil && !include[id] {
			continue
		}
		result.Nodes = append(result.Nodes, ViewNode{
			ID:       p.ID,
			Name:     p.DisplayName(),
			Lifespan: p.Lifespan(),
			Gender:   p.Gender,
		})
	}

	emitted := make(map[ViewLink]bool)
	for _, r := range g.relationships {
		if include != nil && (!include[r.Person1ID] || !include[r.Person2ID]) {
			continue
		}

		link := canonicalLink(r)
		if !emitted[link] {
			emitted[link] = true
			result.Links = append(result.Links, link)
		}
	}

	sort.Slice(result.Nodes, func(i, j int) bool { return result.Nodes[i].ID < result.Nodes[j].ID })
	sort.Slice(result.Links, func(i, j int) bool {
		a, b := result.Links[i], result.Links[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Type < b.Type
	})
	return result, nil
}

// canonicalLink maps a stored relationship record to its canonical link.
func canonicalLink(r *types.Relationship) ViewLink {
	switch {
	case r.Type == types.RelParent:
		return ViewLink{Source: r.Person1ID, Target: r.Person2ID, Type: types.ParentChildLink}
	case r.Type == types.RelChild:
		// A child edge is the same fact with the direction flipped.
		return ViewLink{Source: r.Person2ID, Target: r.Person1ID, Type: types.ParentChildLink}
	case types.IsSymmetric(r.Type):
		// One link per unordered pair: orient from the smaller id.
		source, target := r.Person1ID, r.Person2ID
		if target < source {
			source, target = target, source
		}
		return ViewLink{Source: source, Target: target, Type: string(r.Type)}
	default:
		return ViewLink{Source: r.Person1ID, Target: r.Person2ID, Type: string(r.Type)}
	}
}
