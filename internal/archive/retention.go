package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const archiveSuffix = ".json.gz"

// listArchives lists all archive files in the directory, newest first.
func listArchives(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	var archives []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // Skip files we can't stat
		}

		archives = append(archives, Info{
			Path:      filepath.Join(dir, entry.Name()),
			Timestamp: info.ModTime(),
			Size:      info.Size(),
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Timestamp.After(archives[j].Timestamp)
	})

	return archives, nil
}

// applyRetention removes old archives according to the retention policy.
// It categorizes archives by age and keeps only the specified number in
// each tier.
func applyRetention(dir string, policy RetentionPolicy) error {
	archives, err := listArchives(dir)
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		return nil
	}

	now := time.Now()
	var toDelete []string

	var hourly, daily, weekly, monthly []Info
	for _, a := range archives {
		age := now.Sub(a.Timestamp)
		switch {
		case age < 24*time.Hour:
			hourly = append(hourly, a)
		case age < 7*24*time.Hour:
			daily = append(daily, a)
		case age < 30*24*time.Hour:
			weekly = append(weekly, a)
		case age < 365*24*time.Hour:
			monthly = append(monthly, a)
		default:
			// Archives older than 1 year are always deleted
			toDelete = append(toDelete, a.Path)
		}
	}

	keep := func(tier []Info, n int) {
		if len(tier) > n {
			for _, a := range tier[n:] {
				toDelete = append(toDelete, a.Path)
			}
		}
	}
	keep(hourly, policy.Hourly)
	keep(daily, policy.Daily)
	keep(weekly, policy.Weekly)
	keep(monthly, policy.Monthly)

	var lastErr error
	for _, path := range toDelete {
		if err := os.Remove(path); err != nil {
			lastErr = err
			// Continue deleting other archives even if one fails
		}
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete some archives: %w", lastErr)
	}
	return nil
}

// diskUsage totals the bytes used by all archives in the directory.
func diskUsage(dir string) (int64, error) {
	archives, err := listArchives(dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, a := range archives {
		total += a.Size
	}
	return total, nil
}
