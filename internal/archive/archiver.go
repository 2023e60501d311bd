package archive

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Archiver periodically captures a tree's snapshot to the archive directory
// and prunes old archives per the retention policy.
type Archiver struct {
	tree      string
	dir       string
	interval  time.Duration
	retention RetentionPolicy
	source    SnapshotSource

	mu          sync.Mutex
	running     bool
	stopCh      chan struct{}
	lastArchive time.Time
	nextArchive time.Time
}

// NewArchiver creates an archiver for one tree. The source is called on
// every archive cycle to capture the current graph state.
func NewArchiver(config Config, source SnapshotSource) (*Archiver, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if source == nil {
		return nil, fmt.Errorf("snapshot source is required")
	}
	if config.Tree == "" {
		config.Tree = "default"
	}
	if config.Interval <= 0 {
		config.Interval = 1 * time.Hour
	}
	if config.Retention.Hourly == 0 {
		config.Retention.Hourly = 24
	}
	if config.Retention.Daily == 0 {
		config.Retention.Daily = 7
	}
	if config.Retention.Weekly == 0 {
		config.Retention.Weekly = 4
	}
	if config.Retention.Monthly == 0 {
		config.Retention.Monthly = 12
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	return &Archiver{
		tree:      config.Tree,
		dir:       config.Dir,
		interval:  config.Interval,
		retention: config.Retention,
		source:    source,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start runs the archive loop until the context is cancelled or Stop is
// called. It blocks, so run it in its own goroutine.
func (a *Archiver) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("archiver is already running")
	}
	a.running = true
	a.nextArchive = time.Now().Add(a.interval)
	a.mu.Unlock()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	log.Printf("Archiver started: tree=%s, interval=%v, dir=%s", a.tree, a.interval, a.dir)

	for {
		select {
		case <-ctx.Done():
			log.Println("Archiver stopping (context cancelled)")
			return ctx.Err()

		case <-a.stopCh:
			log.Println("Archiver stopping (stop requested)")
			return nil

		case <-ticker.C:
			result, err := a.ArchiveNow(ctx)
			if err != nil {
				log.Printf("Scheduled archive failed: %v", err)
			} else {
				log.Printf("Scheduled archive completed: path=%s, size=%d bytes, people=%d, relationships=%d",
					result.Path, result.Size, result.People, result.Relationships)
			}

			a.mu.Lock()
			a.nextArchive = time.Now().Add(a.interval)
			a.mu.Unlock()
		}
	}
}

// Stop stops the archive loop.
func (a *Archiver) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return fmt.Errorf("archiver is not running")
	}
	close(a.stopCh)
	a.running = false
	return nil
}

// ArchiveNow captures the tree immediately, verifies the written file, and
// applies the retention policy.
func (a *Archiver) ArchiveNow(ctx context.Context) (*Result, error) {
	start := time.Now()

	snap := a.source()
	if snap == nil {
		return nil, fmt.Errorf("snapshot source returned nothing")
	}

	// Microsecond timestamp keeps names unique under rapid manual archives.
	name := fmt.Sprintf("lineage-%s-%s%s", a.tree, start.Format("20060102-150405.000000"), archiveSuffix)
	path := filepath.Join(a.dir, name)

	if err := writeArchive(path, snap); err != nil {
		return nil, err
	}
	if err := verifyArchive(path); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("archive verification failed: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	a.mu.Lock()
	a.lastArchive = time.Now()
	a.mu.Unlock()

	if err := applyRetention(a.dir, a.retention); err != nil {
		log.Printf("Warning: failed to apply retention policy: %v", err)
		// Don't fail the archive operation due to retention errors
	}

	return &Result{
		Path:          path,
		Duration:      time.Since(start),
		Size:          info.Size(),
		People:        len(snap.People),
		Relationships: len(snap.Relationships),
	}, nil
}

// ListArchives lists all archives for this archiver's directory, newest
// first.
func (a *Archiver) ListArchives() ([]Info, error) {
	return listArchives(a.dir)
}

// Status reports the archiver's bookkeeping for the stats endpoint.
func (a *Archiver) Status() (*Status, error) {
	a.mu.Lock()
	last := a.lastArchive
	next := a.nextArchive
	a.mu.Unlock()

	archives, err := a.ListArchives()
	if err != nil {
		return nil, err
	}
	used, err := diskUsage(a.dir)
	if err != nil {
		return nil, err
	}

	return &Status{
		Tree:          a.tree,
		Dir:           a.dir,
		LastArchive:   last,
		NextArchive:   next,
		TotalArchives: len(archives),
		DiskSpaceUsed: used,
	}, nil
}
