package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lineage/internal/storage"
	"github.com/scrypster/lineage/pkg/types"
)

func TestView_WholeGraph(t *testing.T) {
	g := New()
	a := addPerson(t, g, "A", "One").ID
	b := addPerson(t, g, "B", "Two").ID
	relate(t, g, a, b, types.RelParent)

	view, err := g.View("", 0)
	require.NoError(t, err)
	assert.Len(t, view.Nodes, 2)
	require.Len(t, view.Links, 1)
	assert.Equal(t, types.ParentChildLink, view.Links[0].Type)
	assert.Equal(t, a, view.Links[0].Source, "parent_child is oriented parent to child")
	assert.Equal(t, b, view.Links[0].Target)
}

func TestView_ParentChildCollapse(t *testing.T) {
	g := New()
	parent := addPerson(t, g, "Parent", "").ID
	child := addPerson(t, g, "Child", "").ID

	// The same fact stored as two directional records.
	relate(t, g, parent, child, types.RelParent)
	relate(t, g, child, parent, types.RelChild)

	view, err := g.View("", 0)
	require.NoError(t, err)
	require.Len(t, view.Links, 1, "parent and reverse child records collapse to one link")
	assert.Equal(t, ViewLink{Source: parent, Target: child, Type: types.ParentChildLink}, view.Links[0])
}

func TestView_SymmetricPairEmittedOnce(t *testing.T) {
	g := New()
	a := addPerson(t, g, "A", "").ID
	b := addPerson(t, g, "B", "").ID

	// Two underlying records for one symmetric fact.
	relate(t, g, a, b, types.RelSpouse)
	relate(t, g, b, a, types.RelSpouse)

	view, err := g.View("", 0)
	require.NoError(t, err)
	require.Len(t, view.Links, 1, "one link per unordered spouse pair")
	assert.Equal(t, "spouse", view.Links[0].Type)
}

func TestView_BoundedSubgraph(t *testing.T) {
	g := New()
	a := addPerson(t, g, "A", "").ID
	b := addPerson(t, g, "B", "").ID
	c := addPerson(t, g, "C", "").ID
	isolated := addPerson(t, g, "Island", "").ID

	relate(t, g, a, b, types.RelParent)
	relate(t, g, b, c, types.RelParent)

	view, err := g.View(a, 1)
	require.NoError(t, err)

	nodeIDs := make([]string, 0, len(view.Nodes))
	for _, n := range view.Nodes {
		nodeIDs = append(nodeIDs, n.ID)
	}
	assert.ElementsMatch(t, []string{a, b}, nodeIDs)
	assert.NotContains(t, nodeIDs, isolated)
	require.Len(t, view.Links, 1)
	assert.Equal(t, types.ParentChildLink, view.Links[0].Type)
}

func TestView_UnknownStart(t *testing.T) {
	g := New()
	_, err := g.View("per:ghost", 2)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestView_NodeDisplayFields(t *testing.T) {
	g := New()
	p, err := g.AddPerson(PersonFields{
		FirstName: strPtr("Ada"),
		LastName:  strPtr("Lovelace"),
		BirthDate: strPtr("1815-12-10"),
		DeathDate: strPtr("1852-11-27"),
		Gender:    strPtr("female"),
	})
	require.NoError(t, err)

	view, err := g.View("", 0)
	require.NoError(t, err)
	require.Len(t, view.Nodes, 1)
	assert.Equal(t, ViewNode{ID: p.ID, Name: "Ada Lovelace", Lifespan: "1815-1852", Gender: "female"}, view.Nodes[0])
}
