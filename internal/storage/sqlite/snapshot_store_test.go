package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/scrypster/lineage/pkg/types"
)

// newTestStore creates an in-memory SQLite store for testing.
func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSnapshot(now time.Time) *types.Snapshot {
	return &types.Snapshot{
		People: []types.Person{
			{
				ID:        "per:aaaa1111",
				FirstName: "Ada",
				LastName:  "Lovelace",
				BirthDate: "1815-12-10",
				DeathDate: "1852-11-27",
				Gender:    "female",
				Attributes: map[string]string{
					"occupation": "mathematician",
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
			{
				ID:        "per:bbbb2222",
				FirstName: "Byron",
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		Relationships: []types.Relationship{
			{
				ID:        "rel:cccc3333",
				Person1ID: "per:bbbb2222",
				Person2ID: "per:aaaa1111",
				Type:      types.RelParent,
				Attributes: map[string]string{
					"note": "estranged",
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		SavedAt: now,
	}
}

func TestSaveAndLoadSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := store.SaveSnapshot(ctx, testSnapshot(now)); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	got, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}

	if len(got.People) != 2 {
		t.Fatalf("People: got %d, want 2", len(got.People))
	}
	ada := got.People[0]
	if ada.ID != "per:aaaa1111" {
		t.Errorf("People[0].ID: got %q, want %q", ada.ID, "per:aaaa1111")
	}
	if ada.LastName != "Lovelace" {
		t.Errorf("LastName: got %q, want %q", ada.LastName, "Lovelace")
	}
	if ada.BirthDate != "1815-12-10" {
		t.Errorf("BirthDate: got %q, want %q", ada.BirthDate, "1815-12-10")
	}
	if ada.Attributes["occupation"] != "mathematician" {
		t.Errorf("Attributes: got %v, want occupation=mathematician", ada.Attributes)
	}
	if !ada.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt: got %v, want %v", ada.CreatedAt, now)
	}

	byron := got.People[1]
	if byron.LastName != "" || byron.BirthDate != "" || byron.Attributes != nil {
		t.Errorf("empty fields did not round-trip as empty: %+v", byron)
	}

	if len(got.Relationships) != 1 {
		t.Fatalf("Relationships: got %d, want 1", len(got.Relationships))
	}
	rel := got.Relationships[0]
	if rel.Type != types.RelParent {
		t.Errorf("Type: got %q, want %q", rel.Type, types.RelParent)
	}
	if rel.Person1ID != "per:bbbb2222" || rel.Person2ID != "per:aaaa1111" {
		t.Errorf("endpoints: got %s -> %s", rel.Person1ID, rel.Person2ID)
	}
	if rel.Attributes["note"] != "estranged" {
		t.Errorf("Attributes: got %v, want note=estranged", rel.Attributes)
	}

	if !got.SavedAt.Equal(now) {
		t.Errorf("SavedAt: got %v, want %v", got.SavedAt, now)
	}
}

func TestLoadSnapshotEmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	got, err := store.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	if got.People == nil || len(got.People) != 0 {
		t.Errorf("People: got %v, want empty slice", got.People)
	}
	if got.Relationships == nil || len(got.Relationships) != 0 {
		t.Errorf("Relationships: got %v, want empty slice", got.Relationships)
	}
	if !got.SavedAt.IsZero() {
		t.Errorf("SavedAt: got %v, want zero", got.SavedAt)
	}
}

func TestSaveSnapshotReplacesPreviousState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := store.SaveSnapshot(ctx, testSnapshot(now)); err != nil {
		t.Fatalf("first SaveSnapshot() failed: %v", err)
	}

	later := now.Add(time.Minute)
	second := &types.Snapshot{
		People: []types.Person{
			{ID: "per:dddd4444", FirstName: "Grace", CreatedAt: later, UpdatedAt: later},
		},
		Relationships: []types.Relationship{},
		SavedAt:       later,
	}
	if err := store.SaveSnapshot(ctx, second); err != nil {
		t.Fatalf("second SaveSnapshot() failed: %v", err)
	}

	got, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	if len(got.People) != 1 || got.People[0].ID != "per:dddd4444" {
		t.Errorf("People: got %+v, want only per:dddd4444", got.People)
	}
	if len(got.Relationships) != 0 {
		t.Errorf("Relationships: got %d, want 0", len(got.Relationships))
	}
	if !got.SavedAt.Equal(later) {
		t.Errorf("SavedAt: got %v, want %v", got.SavedAt, later)
	}
}

func TestSaveSnapshotNilRejected(t *testing.T) {
	store := newTestStore(t)
	if err := store.SaveSnapshot(context.Background(), nil); err == nil {
		t.Fatal("SaveSnapshot(nil) succeeded, want error")
	}
}

func TestAuditAppendAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	entries := []types.AuditEntry{
		{Actor: "curator", Action: "person.create", SubjectID: "per:aaaa1111", At: now},
		{Actor: "curator", Action: "relationship.create", SubjectID: "rel:cccc3333", Detail: "parent", At: now.Add(time.Second)},
		{Actor: "batch", Action: "merge", SubjectID: "per:aaaa1111", At: now.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := store.AppendAudit(ctx, e); err != nil {
			t.Fatalf("AppendAudit() failed: %v", err)
		}
	}

	got, err := store.ListAudit(ctx, 2)
	if err != nil {
		t.Fatalf("ListAudit() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListAudit: got %d entries, want 2", len(got))
	}
	// Newest first.
	if got[0].Action != "merge" {
		t.Errorf("got[0].Action: got %q, want %q", got[0].Action, "merge")
	}
	if got[1].Action != "relationship.create" {
		t.Errorf("got[1].Action: got %q, want %q", got[1].Action, "relationship.create")
	}
	if got[1].Detail != "parent" {
		t.Errorf("got[1].Detail: got %q, want %q", got[1].Detail, "parent")
	}
	if got[0].ID <= got[1].ID {
		t.Errorf("ids not descending: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestAuditEntryTimeDefaulted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AppendAudit(ctx, types.AuditEntry{Actor: "curator", Action: "person.create"}); err != nil {
		t.Fatalf("AppendAudit() failed: %v", err)
	}

	got, err := store.ListAudit(ctx, 10)
	if err != nil {
		t.Fatalf("ListAudit() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListAudit: got %d entries, want 1", len(got))
	}
	if got[0].At.IsZero() {
		t.Error("At: got zero time, want defaulted timestamp")
	}
}
