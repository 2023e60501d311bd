// Package persist turns in-memory graph commits into durable snapshots.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/scrypster/lineage/internal/storage"
	"github.com/scrypster/lineage/pkg/types"
)

// ErrCircuitOpen is returned when the snapshot circuit breaker is open and
// writes are being rejected to let the backing store recover.
var ErrCircuitOpen = errors.New("snapshot circuit breaker is open")

// SnapshotSource produces the current full state to persist. The graph's
// Snapshot method satisfies this.
type SnapshotSource func() *types.Snapshot

// Config holds the writer configuration.
type Config struct {
	// Debounce is how long the writer waits after a mutation before
	// flushing, coalescing bursts into one write. Default: 2 seconds.
	Debounce time.Duration

	// MaxFailures is the number of consecutive failed writes required to
	// trip the circuit. Default: 3.
	MaxFailures uint32

	// BreakerTimeout is how long the circuit stays open before allowing a
	// trial write. Default: 30 seconds.
	BreakerTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = 2 * time.Second
	}
	if c.MaxFailures == 0 {
		c.MaxFailures = 3
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	return c
}

// Writer persists snapshots asynchronously. Mutations call MarkDirty; the
// writer coalesces bursts behind a debounce window and writes through a
// circuit breaker so a failing store cannot stall the request path.
type Writer struct {
	store   storage.SnapshotStore
	source  SnapshotSource
	config  Config
	breaker *gobreaker.CircuitBreaker

	dirty chan struct{}
	done  chan struct{}

	mu       sync.RWMutex
	lastErr  error
	lastSave time.Time

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewWriter creates a writer that persists snapshots from source into store.
// Call Start to begin the background loop.
func NewWriter(store storage.SnapshotStore, source SnapshotSource, config Config) *Writer {
	config = config.withDefaults()

	w := &Writer{
		store:  store,
		source: source,
		config: config,
		dirty:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	w.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "SnapshotWriter",
		MaxRequests: 1,
		Interval:    0, // Don't clear counts periodically
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("persist: %s circuit %s -> %s", name, from, to)
		},
	})

	return w
}

// Start launches the background write loop. Safe to call once.
func (w *Writer) Start() {
	w.startOnce.Do(func() {
		go w.loop()
	})
}

// MarkDirty signals that the graph changed and a snapshot should be written
// after the debounce window. Never blocks.
func (w *Writer) MarkDirty() {
	select {
	case w.dirty <- struct{}{}:
	default:
	}
}

// Flush writes a snapshot synchronously, bypassing the debounce but not the
// circuit breaker. Used at shutdown and by callers that need durability now.
func (w *Writer) Flush(ctx context.Context) error {
	return w.write(ctx)
}

// LastError returns the error from the most recent write attempt, or nil if
// it succeeded. Exposed for health reporting.
func (w *Writer) LastError() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastErr
}

// LastSave returns when the most recent successful write completed.
func (w *Writer) LastSave() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastSave
}

// Stop terminates the background loop and flushes one final snapshot. Safe
// to call more than once.
func (w *Writer) Stop(ctx context.Context) error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.write(ctx)
	})
	return err
}

func (w *Writer) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case <-w.dirty:
			// Restart the debounce window on every new mutation.
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.config.Debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			timer = nil
			if err := w.write(context.Background()); err != nil {
				log.Printf("persist: snapshot write failed: %v", err)
				// Retry after the debounce window unless the loop stops first.
				w.MarkDirty()
			}
		}
	}
}

// write captures a snapshot and saves it through the circuit breaker.
func (w *Writer) write(ctx context.Context) error {
	snap := w.source()

	_, err := w.breaker.Execute(func() (interface{}, error) {
		return nil, w.store.SaveSnapshot(ctx, snap)
	})

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = ErrCircuitOpen
		}
		w.lastErr = fmt.Errorf("%w: %v", storage.ErrPersistence, err)
		return w.lastErr
	}

	w.lastErr = nil
	w.lastSave = time.Now().UTC()
	return nil
}
