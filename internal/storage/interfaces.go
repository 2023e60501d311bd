package storage

import (
	"context"

	"github.com/scrypster/lineage/pkg/types"
)

// SnapshotStore persists and restores the full state of one family graph,
// and records the audit trail of mutations against it.
//
// The graph engine never calls a store from inside a traversal; persistence
// is a side effect triggered after an in-memory mutation commits.
type SnapshotStore interface {
	// SaveSnapshot atomically replaces the stored state with snap.
	SaveSnapshot(ctx context.Context, snap *types.Snapshot) error

	// LoadSnapshot returns the stored state. A store with no saved snapshot
	// returns an empty snapshot, not an error.
	LoadSnapshot(ctx context.Context) (*types.Snapshot, error)

	// AppendAudit records one mutation audit entry.
	AppendAudit(ctx context.Context, entry types.AuditEntry) error

	// ListAudit returns the most recent audit entries, newest first.
	ListAudit(ctx context.Context, limit int) ([]types.AuditEntry, error)

	// Close releases the underlying database resources.
	Close() error
}
