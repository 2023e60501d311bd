package types

import (
	"fmt"
	"sort"
)

// RelationshipType is a member of the closed relationship-type vocabulary.
type RelationshipType string

// Relationship type constants.
const (
	// Asymmetric types: person1 is the <type> of person2.
	RelParent      RelationshipType = "parent"
	RelChild       RelationshipType = "child"
	RelGrandparent RelationshipType = "grandparent"
	RelGrandchild  RelationshipType = "grandchild"
	RelAuntUncle   RelationshipType = "aunt_uncle"
	RelNephewNiece RelationshipType = "nephew_niece"
	RelGodparent   RelationshipType = "godparent"
	RelGodchild    RelationshipType = "godchild"
	RelGuardian    RelationshipType = "guardian"
	RelWard        RelationshipType = "ward"

	// Symmetric types: direction-irrelevant by convention.
	RelSpouse  RelationshipType = "spouse"
	RelPartner RelationshipType = "partner"
	RelSibling RelationshipType = "sibling"
	RelCousin  RelationshipType = "cousin"
)

// ParentChildLink is the canonical link type parent/child edges collapse
// into in node/link view projections, oriented parent to child.
const ParentChildLink = "parent_child"

// reciprocalTable maps each relationship type to its semantic inverse.
// Symmetric types map to themselves. Every member of the vocabulary appears
// as a key; checkReciprocityTable enforces that at init.
var reciprocalTable = map[RelationshipType]RelationshipType{
	RelParent:      RelChild,
	RelChild:       RelParent,
	RelGrandparent: RelGrandchild,
	RelGrandchild:  RelGrandparent,
	RelAuntUncle:   RelNephewNiece,
	RelNephewNiece: RelAuntUncle,
	RelGodparent:   RelGodchild,
	RelGodchild:    RelGodparent,
	RelGuardian:    RelWard,
	RelWard:        RelGuardian,
	RelSpouse:      RelSpouse,
	RelPartner:     RelPartner,
	RelSibling:     RelSibling,
	RelCousin:      RelCousin,
}

// reverseOverrides resolves reverse-scan lookups for types that appear as a
// value under more than one key. The table above has no such ambiguity
// today; the override table exists so that adding one never silently falls
// back to iteration order.
var reverseOverrides = map[RelationshipType]RelationshipType{}

// ValidRelationshipTypes lists the vocabulary in deterministic order.
var ValidRelationshipTypes = func() []RelationshipType {
	out := make([]RelationshipType, 0, len(reciprocalTable))
	for t := range reciprocalTable {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}()

func init() {
	if err := checkReciprocityTable(); err != nil {
		panic(err)
	}
}

// checkReciprocityTable validates the reciprocity table at construction
// time: every value must itself be a vocabulary member, and any value
// reachable from multiple keys must carry an explicit reverse override.
func checkReciprocityTable() error {
	keysByValue := make(map[RelationshipType][]RelationshipType)
	for k, v := range reciprocalTable {
		if _, ok := reciprocalTable[v]; !ok {
			return fmt.Errorf("reciprocity table: %q maps to unknown type %q", k, v)
		}
		keysByValue[v] = append(keysByValue[v], k)
	}
	for v, keys := range keysByValue {
		if len(keys) > 1 {
			if _, ok := reverseOverrides[v]; !ok {
				return fmt.Errorf("reciprocity table: %q is the inverse of %d types and has no reverse override", v, len(keys))
			}
		}
	}
	for v, k := range reverseOverrides {
		if reciprocalTable[k] != v {
			return fmt.Errorf("reverse override %q -> %q does not match the forward table", v, k)
		}
	}
	return nil
}

// IsValidRelationshipType reports whether t is a member of the vocabulary.
func IsValidRelationshipType(t RelationshipType) bool {
	_, ok := reciprocalTable[t]
	return ok
}

// IsSymmetric reports whether t is its own reciprocal.
func IsSymmetric(t RelationshipType) bool {
	return reciprocalTable[t] == t
}

// Reciprocal returns the semantic inverse of t.
//
// Lookup order: direct table hit; then reverse scan (the key whose value is
// t, with reverseOverrides deciding ambiguous cases and sorted key order
// otherwise); finally t itself with defined == false when no reciprocal is
// known. The boolean makes the fallback observable to callers.
func Reciprocal(t RelationshipType) (RelationshipType, bool) {
	if inv, ok := reciprocalTable[t]; ok {
		return inv, true
	}
	if k, ok := reverseOverrides[t]; ok {
		return k, true
	}
	for _, k := range ValidRelationshipTypes {
		if reciprocalTable[k] == t {
			return k, true
		}
	}
	return t, false
}
