// Package sqlite provides a SQLite implementation of the snapshot store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/lineage/internal/storage"
	"github.com/scrypster/lineage/pkg/types"
)

// SnapshotStore implements storage.SnapshotStore using SQLite.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore creates a new SQLite snapshot store with WAL self-healing.
// If the initial open fails due to stale WAL files (left behind by a crashed
// process), it verifies no other process holds them and retries once after
// removing the stale -shm/-wal files.
func NewSnapshotStore(dsn string) (*SnapshotStore, error) {
	store, err := openSnapshotStore(dsn)
	if err == nil {
		return store, nil
	}

	if !isRecoverableWALError(err) {
		return nil, err
	}

	dbPath := dbPathFromDSN(dsn)
	if dbPath == "" || dbPath == ":memory:" {
		return nil, err
	}

	if !isWALStale(dbPath) {
		return nil, err
	}

	removeStaleWAL(dbPath)

	store, retryErr := openSnapshotStore(dsn)
	if retryErr != nil {
		return nil, fmt.Errorf("failed after WAL recovery: %w (original: %v)", retryErr, err)
	}

	log.Printf("sqlite: recovered from stale WAL files for %s", dbPath)
	return store, nil
}

// openSnapshotStore opens a SQLite database, configures WAL mode, and creates the schema.
func openSnapshotStore(dsn string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	// WAL mode allows concurrent readers to proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Connections live for the lifetime of the store.

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout so that callers wait instead of getting an immediate
	// SQLITE_BUSY error when the connection is held by another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

// GetDB returns the underlying database connection.
func (s *SnapshotStore) GetDB() *sql.DB {
	return s.db
}

// SaveSnapshot atomically replaces the stored state with snap. The delete and
// re-insert run in one transaction; a reader never sees a partial snapshot.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap *types.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", storage.ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Relationships first so the people delete does not cascade mid-write.
	if _, err := tx.ExecContext(ctx, "DELETE FROM relationships"); err != nil {
		return fmt.Errorf("failed to clear relationships: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM people"); err != nil {
		return fmt.Errorf("failed to clear people: %w", err)
	}

	for i := range snap.People {
		p := &snap.People[i]
		attrs, err := marshalAttributes(p.Attributes)
		if err != nil {
			return fmt.Errorf("failed to marshal attributes for %s: %w", p.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO people (id, first_name, last_name, nickname, birth_date, death_date, gender, attributes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.FirstName, nullableString(p.LastName), nullableString(p.Nickname),
			nullableString(p.BirthDate), nullableString(p.DeathDate), nullableString(p.Gender),
			attrs, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person %s: %w", p.ID, err)
		}
	}

	for i := range snap.Relationships {
		r := &snap.Relationships[i]
		attrs, err := marshalAttributes(r.Attributes)
		if err != nil {
			return fmt.Errorf("failed to marshal attributes for %s: %w", r.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO relationships (id, person1_id, person2_id, type, attributes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Person1ID, r.Person2ID, string(r.Type), attrs, r.CreatedAt, r.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert relationship %s: %w", r.ID, err)
		}
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, saved_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at`,
		savedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record snapshot time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored state. A database with no saved snapshot
// yields an empty snapshot, not an error.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context) (*types.Snapshot, error) {
	snap := &types.Snapshot{
		People:        []types.Person{},
		Relationships: []types.Relationship{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, nickname, birth_date, death_date, gender, attributes, created_at, updated_at
		FROM people ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p          types.Person
			lastName   sql.NullString
			nickname   sql.NullString
			birthDate  sql.NullString
			deathDate  sql.NullString
			gender     sql.NullString
			attributes sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.FirstName, &lastName, &nickname, &birthDate, &deathDate, &gender, &attributes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		p.LastName = lastName.String
		p.Nickname = nickname.String
		p.BirthDate = birthDate.String
		p.DeathDate = deathDate.String
		p.Gender = gender.String
		if p.Attributes, err = unmarshalAttributes(attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attributes for %s: %w", p.ID, err)
		}
		snap.People = append(snap.People, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	relRows, err := s.db.QueryContext(ctx, `
		SELECT id, person1_id, person2_id, type, attributes, created_at, updated_at
		FROM relationships ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer relRows.Close()

	for relRows.Next() {
		var (
			r          types.Relationship
			relType    string
			attributes sql.NullString
		)
		if err := relRows.Scan(&r.ID, &r.Person1ID, &r.Person2ID, &relType, &attributes, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		r.Type = types.RelationshipType(relType)
		if r.Attributes, err = unmarshalAttributes(attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attributes for %s: %w", r.ID, err)
		}
		snap.Relationships = append(snap.Relationships, r)
	}
	if err := relRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relationships: %w", err)
	}

	var savedAt sql.NullTime
	err = s.db.QueryRowContext(ctx, "SELECT saved_at FROM snapshot_meta WHERE id = 1").Scan(&savedAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query snapshot time: %w", err)
	}
	if savedAt.Valid {
		snap.SavedAt = savedAt.Time
	}

	return snap, nil
}

// AppendAudit records one mutation audit entry.
func (s *SnapshotStore) AppendAudit(ctx context.Context, entry types.AuditEntry) error {
	at := entry.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (actor, action, subject_id, detail, at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.Actor, entry.Action, nullableString(entry.SubjectID), nullableString(entry.Detail), at,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the most recent audit entries, newest first.
func (s *SnapshotStore) ListAudit(ctx context.Context, limit int) ([]types.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor, action, subject_id, detail, at
		FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := []types.AuditEntry{}
	for rows.Next() {
		var (
			e         types.AuditEntry
			subjectID sql.NullString
			detail    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &subjectID, &detail, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.SubjectID = subjectID.String
		e.Detail = detail.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit log: %w", err)
	}
	return entries, nil
}

// Close closes the database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// marshalAttributes converts an attribute map to nullable JSON text.
func marshalAttributes(attrs map[string]string) (sql.NullString, error) {
	if len(attrs) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalAttributes parses nullable JSON text back into an attribute map.
func unmarshalAttributes(s sql.NullString) (map[string]string, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var attrs map[string]string
	if err := json.Unmarshal([]byte(s.String), &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// nullableString converts a string to sql.NullString.
// An empty string is treated as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// dbPathFromDSN extracts the filesystem path from a SQLite DSN.
// Handles bare paths ("/path/to/db.sqlite") and file: URIs ("file:/path/to/db.sqlite?mode=rwc").
// Returns empty string for in-memory databases or unparseable DSNs.
func dbPathFromDSN(dsn string) string {
	if dsn == ":memory:" || dsn == "" {
		return ""
	}

	if strings.HasPrefix(dsn, "file:") {
		u, err := url.Parse(dsn)
		if err != nil {
			return ""
		}
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == ":memory:" || path == "" {
			return ""
		}
		return path
	}

	return dsn
}

// isRecoverableWALError returns true if the error matches patterns caused by
// stale WAL files left behind after a crash (SIGKILL, OOM, etc.).
func isRecoverableWALError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "disk I/O error") ||
		strings.Contains(msg, "database is locked")
}

// isWALStale checks whether -shm/-wal files exist for the given database path
// AND no other process currently holds them open (via lsof).
// Returns false if lsof is unavailable (conservative: no deletion).
func isWALStale(dbPath string) bool {
	shmPath := dbPath + "-shm"
	walPath := dbPath + "-wal"

	if !fileExists(shmPath) && !fileExists(walPath) {
		return false
	}

	lsofPath, err := exec.LookPath("lsof")
	if err != nil {
		// lsof not available (e.g., Alpine Docker) — conservative fallback.
		return false
	}

	cmd := exec.Command(lsofPath, "-t", dbPath, shmPath, walPath)
	output, err := cmd.Output()
	if err != nil {
		// lsof returns exit code 1 when no files are open — that means stale.
		return true
	}

	return strings.TrimSpace(string(output)) == ""
}

// removeStaleWAL removes -shm and -wal files for the given database path.
func removeStaleWAL(dbPath string) {
	for _, suffix := range []string{"-shm", "-wal"} {
		path := dbPath + suffix
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("sqlite: failed to remove stale %s: %v", path, err)
		}
	}
}

// fileExists returns true if the path exists on disk.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
