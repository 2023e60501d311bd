package types_test

import (
	"testing"

	"github.com/scrypster/lineage/pkg/types"
)

func TestPersonValidate(t *testing.T) {
	tests := []struct {
		name    string
		person  types.Person
		wantErr bool
	}{
		{"minimal valid", types.Person{FirstName: "Ada"}, false},
		{"full valid", types.Person{FirstName: "Ada", LastName: "Lovelace", BirthDate: "1815-12-10", DeathDate: "1852-11-27"}, false},
		{"missing first name", types.Person{LastName: "Lovelace"}, true},
		{"whitespace first name", types.Person{FirstName: "   "}, true},
		{"bad birth date", types.Person{FirstName: "Ada", BirthDate: "Dec 10 1815"}, true},
		{"bad death date", types.Person{FirstName: "Ada", DeathDate: "1852-13-40"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.person.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPersonDisplayNameAndLifespan(t *testing.T) {
	p := types.Person{FirstName: "Ada", LastName: "Lovelace", BirthDate: "1815-12-10", DeathDate: "1852-11-27"}
	if got := p.DisplayName(); got != "Ada Lovelace" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := p.Lifespan(); got != "1815-1852" {
		t.Errorf("Lifespan() = %q", got)
	}

	living := types.Person{FirstName: "Grace", BirthDate: "1950-01-01"}
	if got := living.Lifespan(); got != "1950-" {
		t.Errorf("Lifespan() = %q", got)
	}

	unknown := types.Person{FirstName: "X"}
	if got := unknown.Lifespan(); got != "" {
		t.Errorf("Lifespan() = %q, want empty", got)
	}
}

func TestPersonNormalizedName(t *testing.T) {
	a := types.Person{FirstName: "  Ada ", LastName: "LOVELACE"}
	b := types.Person{FirstName: "ada", LastName: "lovelace"}
	if a.NormalizedName() != b.NormalizedName() {
		t.Errorf("normalized names differ: %q vs %q", a.NormalizedName(), b.NormalizedName())
	}
}

func TestRelationshipOther(t *testing.T) {
	r := types.Relationship{Person1ID: "per:a", Person2ID: "per:b", Type: types.RelParent}
	if got := r.Other("per:a"); got != "per:b" {
		t.Errorf("Other(per:a) = %q", got)
	}
	if got := r.Other("per:b"); got != "per:a" {
		t.Errorf("Other(per:b) = %q", got)
	}
	if got := r.Other("per:c"); got != "" {
		t.Errorf("Other(per:c) = %q, want empty", got)
	}
}
