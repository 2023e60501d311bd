package types_test

import (
	"testing"

	"github.com/scrypster/lineage/pkg/types"
)

func TestIsValidRelationshipType_Vocabulary(t *testing.T) {
	for _, rt := range types.ValidRelationshipTypes {
		if !types.IsValidRelationshipType(rt) {
			t.Errorf("expected %q to be valid", rt)
		}
	}

	for _, rt := range []types.RelationshipType{"", "PARENT", "uncle", "friend_of"} {
		if types.IsValidRelationshipType(rt) {
			t.Errorf("expected %q to be invalid", rt)
		}
	}
}

func TestReciprocal_AsymmetricPairs(t *testing.T) {
	pairs := map[types.RelationshipType]types.RelationshipType{
		types.RelParent:      types.RelChild,
		types.RelChild:       types.RelParent,
		types.RelGrandparent: types.RelGrandchild,
		types.RelAuntUncle:   types.RelNephewNiece,
		types.RelGodparent:   types.RelGodchild,
		types.RelGuardian:    types.RelWard,
	}

	for forward, inverse := range pairs {
		got, defined := types.Reciprocal(forward)
		if !defined {
			t.Errorf("Reciprocal(%q): expected a defined reciprocal", forward)
		}
		if got != inverse {
			t.Errorf("Reciprocal(%q) = %q, want %q", forward, got, inverse)
		}
	}
}

// Reciprocal(Reciprocal(t)) == t must hold for every symmetric type.
func TestReciprocal_SymmetricInvolution(t *testing.T) {
	for _, rt := range []types.RelationshipType{types.RelSpouse, types.RelPartner, types.RelSibling, types.RelCousin} {
		if !types.IsSymmetric(rt) {
			t.Fatalf("expected %q to be symmetric", rt)
		}

		once, defined := types.Reciprocal(rt)
		if !defined {
			t.Fatalf("Reciprocal(%q): expected a defined reciprocal", rt)
		}
		twice, _ := types.Reciprocal(once)
		if twice != rt {
			t.Errorf("Reciprocal(Reciprocal(%q)) = %q, want %q", rt, twice, rt)
		}
	}
}

func TestReciprocal_UnknownTypeFallback(t *testing.T) {
	got, defined := types.Reciprocal("step_llama")
	if defined {
		t.Error("expected the fallback to be flagged as undefined")
	}
	if got != "step_llama" {
		t.Errorf("fallback should return the input unchanged, got %q", got)
	}
}

func TestReciprocal_Deterministic(t *testing.T) {
	for _, rt := range types.ValidRelationshipTypes {
		first, _ := types.Reciprocal(rt)
		for i := 0; i < 10; i++ {
			again, _ := types.Reciprocal(rt)
			if again != first {
				t.Fatalf("Reciprocal(%q) is not deterministic: %q vs %q", rt, first, again)
			}
		}
	}
}
