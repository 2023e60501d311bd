// Package archive writes periodic point-in-time copies of a family tree to
// disk as compressed JSON snapshots, with tiered retention. Archives are
// engine-independent: they capture the in-memory graph, so the same files
// work whether the tree is backed by SQLite or PostgreSQL.
package archive

import (
	"time"

	"github.com/scrypster/lineage/pkg/types"
)

// SnapshotSource produces the current state of a tree. graph.FamilyGraph's
// Snapshot method satisfies this.
type SnapshotSource func() *types.Snapshot

// Config holds archiver configuration for one tree.
type Config struct {
	// Tree is the tree name, used in archive filenames.
	Tree string

	// Dir is the directory where archives are stored.
	Dir string

	// Interval is the duration between automated archives (default: 1 hour).
	Interval time.Duration

	// Retention defines how many archives to keep at each age tier.
	Retention RetentionPolicy
}

// RetentionPolicy defines how many archives to keep at each tier.
// Archives are categorized by age:
// - Hourly: less than 24 hours old
// - Daily: between 1-7 days old
// - Weekly: between 7-30 days old
// - Monthly: between 30-365 days old
// Anything older than a year is removed.
type RetentionPolicy struct {
	Hourly  int // default 24
	Daily   int // default 7
	Weekly  int // default 4
	Monthly int // default 12
}

// Info contains metadata about one archive file.
type Info struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

// Result describes a completed archive operation.
type Result struct {
	Path          string        `json:"path"`
	Duration      time.Duration `json:"duration"`
	Size          int64         `json:"size"`
	People        int           `json:"people"`
	Relationships int           `json:"relationships"`
}

// Status reports the archiver's current state.
type Status struct {
	Tree          string    `json:"tree"`
	Dir           string    `json:"dir"`
	LastArchive   time.Time `json:"last_archive"`
	NextArchive   time.Time `json:"next_archive"`
	TotalArchives int       `json:"total_archives"`
	DiskSpaceUsed int64     `json:"disk_space_used"`
}
