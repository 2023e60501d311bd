package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lineage/internal/storage"
	"github.com/scrypster/lineage/pkg/types"
)

func relate(t *testing.T, g *FamilyGraph, p1, p2 string, rt types.RelationshipType) *types.Relationship {
	t.Helper()
	r, err := g.AddRelationship(p1, p2, rt, nil)
	require.NoError(t, err)
	return r
}

func ids(people []*types.Person) []string {
	out := make([]string, 0, len(people))
	for _, p := range people {
		out = append(out, p.ID)
	}
	return out
}

// buildLine creates three generations: gp1 and gp2 are parents of mid, mid
// is the parent of child.
func buildLine(t *testing.T, g *FamilyGraph) (gp1, gp2, mid, child string) {
	t.Helper()
	gp1 = addPerson(t, g, "Grandma", "Line").ID
	gp2 = addPerson(t, g, "Grandpa", "Line").ID
	mid = addPerson(t, g, "Parent", "Line").ID
	child = addPerson(t, g, "Child", "Line").ID
	relate(t, g, gp1, mid, types.RelParent)
	relate(t, g, gp2, mid, types.RelParent)
	relate(t, g, mid, child, types.RelParent)
	return
}

func TestAncestors_DirectParents(t *testing.T) {
	g := New()
	gp1, gp2, mid, _ := buildLine(t, g)

	got, err := g.Ancestors(mid, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{gp1, gp2}, ids(got),
		"depth 1 returns exactly the direct parents as a set")
}

func TestAncestors_DepthBound(t *testing.T) {
	g := New()
	gp1, gp2, mid, child := buildLine(t, g)

	one, err := g.Ancestors(child, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{mid}, ids(one))

	two, err := g.Ancestors(child, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{mid, gp1, gp2}, ids(two))
}

func TestTraversal_DepthZeroIsEmpty(t *testing.T) {
	g := New()
	_, _, mid, child := buildLine(t, g)

	for name, fn := range map[string]func(string, int) ([]*types.Person, error){
		"ancestors":       g.Ancestors,
		"descendants":     g.Descendants,
		"extended_family": g.ExtendedFamily,
		"related":         g.Related,
		"branch":          g.Branch,
	} {
		got, err := fn(mid, 0)
		require.NoError(t, err, name)
		assert.Empty(t, got, "%s at depth 0 must be empty", name)
	}
	_ = child
}

func TestTraversal_UnknownStartIsNotFound(t *testing.T) {
	g := New()
	buildLine(t, g)

	_, err := g.Ancestors("per:ghost", 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// NotFound wins over the depth-0 shortcut: an unknown id is never
	// conflated with "found but empty".
	_, err = g.Descendants("per:ghost", 0)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = g.Siblings("per:ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTraversal_NegativeDepthRejected(t *testing.T) {
	g := New()
	_, _, mid, _ := buildLine(t, g)

	_, err := g.Ancestors(mid, -1)
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestDescendants_Mirror(t *testing.T) {
	g := New()
	gp1, _, mid, child := buildLine(t, g)

	got, err := g.Descendants(gp1, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{mid, child}, ids(got))
}

func TestSiblings_HalfSiblingsIncluded(t *testing.T) {
	g := New()
	p1 := addPerson(t, g, "Shared", "Parent").ID
	p2 := addPerson(t, g, "Other", "Parent").ID
	a := addPerson(t, g, "Alice", "Kid").ID
	b := addPerson(t, g, "Bob", "Kid").ID

	// A has parents {P1, P2}; B has parent {P1} only.
	relate(t, g, p1, a, types.RelParent)
	relate(t, g, p2, a, types.RelParent)
	relate(t, g, p1, b, types.RelParent)

	sibsOfA, err := g.Siblings(a)
	require.NoError(t, err)
	assert.Contains(t, ids(sibsOfA), b, "half sibling via union, not intersection")

	sibsOfB, err := g.Siblings(b)
	require.NoError(t, err)
	assert.Contains(t, ids(sibsOfB), a)
	assert.NotContains(t, ids(sibsOfB), b, "a person is not their own sibling")
}

func TestExtendedFamily_AncestorOnly(t *testing.T) {
	g := New()
	gp1, gp2, mid, child := buildLine(t, g)
	uncle := addPerson(t, g, "Uncle", "Line").ID
	relate(t, g, gp1, uncle, types.RelParent)

	got, err := g.ExtendedFamily(child, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{mid, gp1, gp2}, ids(got),
		"extended family walks ancestors only; collaterals are not included")
	_ = uncle
}

func TestRelated_AllTypesBothDirections(t *testing.T) {
	g := New()
	a := addPerson(t, g, "A", "").ID
	b := addPerson(t, g, "B", "").ID
	c := addPerson(t, g, "C", "").ID
	d := addPerson(t, g, "D", "").ID

	relate(t, g, a, b, types.RelParent)
	relate(t, g, b, c, types.RelSpouse)
	relate(t, g, d, c, types.RelGodparent)

	one, err := g.Related(b, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, c}, ids(one),
		"related surfaces every edge type, walked in both directions")

	three, err := g.Related(a, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b, c, d}, ids(three))
}

func TestBranch_DiscoveryOrder(t *testing.T) {
	g := New()
	root := addPerson(t, g, "Root", "").ID
	kid1 := addPerson(t, g, "Kid1", "").ID
	kid2 := addPerson(t, g, "Kid2", "").ID
	grand := addPerson(t, g, "Grand", "").ID

	relate(t, g, root, kid1, types.RelParent)
	relate(t, g, root, kid2, types.RelParent)
	relate(t, g, kid1, grand, types.RelParent)

	got, err := g.Branch(root, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{root, kid1, kid2, grand}, ids(got),
		"branch lists every visited person in BFS discovery order, root first")
}

func TestTraversal_CycleTerminates(t *testing.T) {
	g := New()
	a := addPerson(t, g, "A", "").ID
	b := addPerson(t, g, "B", "").ID
	c := addPerson(t, g, "C", "").ID

	// A parent-edge cycle is a data-entry error the algorithms must survive.
	relate(t, g, a, b, types.RelParent)
	relate(t, g, b, c, types.RelParent)
	relate(t, g, c, a, types.RelParent)

	got, err := g.Ancestors(a, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b, c}, ids(got))

	down, err := g.Descendants(a, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b, c}, ids(down))
}

func TestTraversal_NodeCeiling(t *testing.T) {
	g := NewWithBounds(storage.Bounds{MaxNodes: 3})
	root := addPerson(t, g, "Root", "").ID
	for i := 0; i < 6; i++ {
		kid := addPerson(t, g, "Kid", "").ID
		relate(t, g, root, kid, types.RelParent)
	}

	got, err := g.Descendants(root, 1)
	assert.ErrorIs(t, err, storage.ErrBoundsExceeded)
	assert.Len(t, got, 3, "partial results up to the ceiling are returned")
}

func TestTraversal_DepthCeilingClamped(t *testing.T) {
	g := NewWithBounds(storage.Bounds{MaxDepth: 2})
	gp1, _, mid, child := buildLine(t, g)
	ggp := addPerson(t, g, "Great", "Line").ID
	relate(t, g, ggp, gp1, types.RelParent)

	got, err := g.Ancestors(child, 99)
	require.NoError(t, err)
	assert.NotContains(t, ids(got), ggp, "depth is clamped to the configured ceiling")
	assert.Contains(t, ids(got), mid)
}

func TestPartialTree(t *testing.T) {
	g := New()
	gp1, gp2, mid, child := buildLine(t, g)

	both, err := g.PartialTree(mid, 2, false, false)
	require.NoError(t, err)
	assert.Equal(t, mid, both.Center.ID)
	assert.ElementsMatch(t, []string{gp1, gp2}, ids(both.Ancestors))
	assert.ElementsMatch(t, []string{child}, ids(both.Descendants))

	up, err := g.PartialTree(mid, 2, true, false)
	require.NoError(t, err)
	assert.NotEmpty(t, up.Ancestors)
	assert.Empty(t, up.Descendants)

	down, err := g.PartialTree(mid, 2, false, true)
	require.NoError(t, err)
	assert.Empty(t, down.Ancestors)
	assert.NotEmpty(t, down.Descendants)
}

func TestPartialTree_BothFlagsRejected(t *testing.T) {
	g := New()
	_, _, mid, _ := buildLine(t, g)

	_, err := g.PartialTree(mid, 2, true, true)
	assert.ErrorIs(t, err, storage.ErrValidation)

	// Rejected before traversal, even for an unknown id.
	_, err = g.PartialTree("per:ghost", 2, true, true)
	assert.ErrorIs(t, err, storage.ErrValidation)
}

// End-to-end walk through the mutation and traversal surface.
func TestLifecycleEndToEnd(t *testing.T) {
	g := New()
	p1 := addPerson(t, g, "P1", "").ID
	p2 := addPerson(t, g, "P2", "").ID

	relate(t, g, p1, p2, types.RelParent)

	down, err := g.Descendants(p1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{p2}, ids(down))

	up, err := g.Ancestors(p2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{p1}, ids(up))

	related, err := g.Related(p2, 1)
	require.NoError(t, err)
	assert.Contains(t, ids(related), p1)

	require.NoError(t, g.DeletePerson(p1))

	after, err := g.Ancestors(p2, 1)
	require.NoError(t, err)
	assert.Empty(t, after, "cascade removed the edge with the person")
}
