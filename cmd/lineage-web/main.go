package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrypster/lineage/internal/archive"
	"github.com/scrypster/lineage/internal/config"
	"github.com/scrypster/lineage/internal/connections"
	"github.com/scrypster/lineage/internal/persist"
	"github.com/scrypster/lineage/internal/server"
	"github.com/scrypster/lineage/internal/storage"
	"github.com/scrypster/lineage/internal/storage/postgres"
	"github.com/scrypster/lineage/internal/storage/sqlite"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to trees config file (default: config/trees.yaml)")
	flag.Parse()

	// If no config path specified, use default if it exists
	if *configPath == "" {
		defaultPath := "config/trees.yaml"
		if _, err := os.Stat(defaultPath); err == nil {
			*configPath = defaultPath
			log.Printf("Using trees config: %s", defaultPath)
		}
	}
	if *configPath == "" && os.Getenv("LINEAGE_TREES_CONFIG") != "" {
		*configPath = os.Getenv("LINEAGE_TREES_CONFIG")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	bounds := storage.Bounds{
		MaxDepth: cfg.Limits.MaxDepth,
		MaxNodes: cfg.Limits.MaxNodes,
		MaxEdges: cfg.Limits.MaxEdges,
	}
	persistCfg := persist.Config{
		Debounce:       cfg.Persist.Debounce,
		MaxFailures:    uint32(cfg.Persist.MaxFailures),
		BreakerTimeout: cfg.Persist.BreakerTimeout,
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager, ownedTree, err := buildManager(ctx, cfg, *configPath, bounds, persistCfg)
	if err != nil {
		log.Fatalf("Failed to initialize trees: %v", err)
	}

	archiver := startArchiver(ctx, cfg, manager)

	addr, _ := server.Start(ctx, cfg, manager, archiver)
	log.Printf("Lineage API running at http://%s", addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := manager.Close(shutdownCtx); err != nil {
		log.Printf("Error closing trees: %v", err)
	}
	if ownedTree != nil {
		if err := ownedTree.Writer.Stop(shutdownCtx); err != nil {
			log.Printf("Error flushing tree: %v", err)
		}
		if err := ownedTree.Store.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}

	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// startArchiver wires periodic snapshot archives for the default tree when
// an archive directory is configured. Returns nil when archiving is disabled.
func startArchiver(ctx context.Context, cfg *config.Config, manager *connections.Manager) *archive.Archiver {
	if cfg.Archive.Dir == "" {
		return nil
	}

	tree, err := manager.GetTree(ctx, "")
	if err != nil {
		log.Printf("Archiving disabled: failed to open default tree: %v", err)
		return nil
	}

	archiver, err := archive.NewArchiver(archive.Config{
		Tree:     tree.Name,
		Dir:      cfg.Archive.Dir,
		Interval: cfg.Archive.Interval,
	}, tree.Graph.Snapshot)
	if err != nil {
		log.Printf("Archiving disabled: %v", err)
		return nil
	}

	go func() {
		if err := archiver.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Archiver stopped: %v", err)
		}
	}()
	return archiver
}

// buildManager wires the tree manager from either a multi-tree config file
// or a single store described by the environment. When the store is opened
// here the assembled tree is returned so the caller can flush and close it
// on shutdown.
func buildManager(ctx context.Context, cfg *config.Config, configPath string, bounds storage.Bounds, persistCfg persist.Config) (*connections.Manager, *connections.Tree, error) {
	if configPath != "" {
		m, err := connections.NewManager(configPath, bounds, persistCfg)
		return m, nil, err
	}

	var (
		store storage.SnapshotStore
		err   error
	)
	switch cfg.Storage.StorageEngine {
	case "postgres":
		store, err = postgres.NewSnapshotStore(cfg.Storage.PostgresDSN)
	default:
		if mkErr := os.MkdirAll(cfg.Storage.DataPath, 0o755); mkErr != nil {
			return nil, nil, mkErr
		}
		store, err = sqlite.NewSnapshotStore(cfg.Storage.DataPath + "/lineage.db")
	}
	if err != nil {
		return nil, nil, err
	}

	tree, err := connections.AssembleTree(ctx, "default", store, bounds, persistCfg)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return connections.NewManagerWithTree(tree), tree, nil
}
