package archive

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"

	"github.com/scrypster/lineage/pkg/types"
)

// writeArchive writes a snapshot to path as gzipped JSON. The file is
// written to a temp name first and renamed so a crash never leaves a
// truncated archive behind.
func writeArchive(path string, snap *types.Snapshot) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	if err := enc.Encode(snap); err != nil {
		gz.Close()
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to flush archive: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync archive: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close archive: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// ReadArchive loads a snapshot back from an archive file, verifying that it
// decompresses and decodes cleanly.
func ReadArchive(path string) (*types.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	defer gz.Close()

	var snap types.Snapshot
	if err := json.NewDecoder(gz).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	return &snap, nil
}

// verifyArchive checks that an archive file round-trips.
func verifyArchive(path string) error {
	_, err := ReadArchive(path)
	return err
}
