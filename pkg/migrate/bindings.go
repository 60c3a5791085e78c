// Package migrate imports the legacy JSON bindings file into the SQLite
// store.
package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/tinyland-inc/beatclaw/pkg/store"
)

// Options controls a bindings import.
type Options struct {
	File   string // legacy JSON file: {"<qq>": "<player_id>", ...}
	DBPath string // destination bindings database
	DryRun bool
	Force  bool // overwrite bindings that already exist
}

// Result summarizes one import run.
type Result struct {
	BatchID  string
	Imported int
	Skipped  int
	Total    int
}

type legacyBinding struct {
	qq       int64
	playerID string
}

// Run imports the legacy bindings file. Existing bindings are skipped
// unless Force is set; DryRun reports without writing.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.File == "" {
		return nil, fmt.Errorf("bindings file is required")
	}
	if opts.DBPath == "" {
		return nil, fmt.Errorf("bindings database path is required")
	}

	entries, err := readLegacyFile(opts.File)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	result := &Result{BatchID: uuid.NewString(), Total: len(entries)}
	slog.Info("bindings import started",
		"batch_id", result.BatchID, "file", opts.File, "entries", len(entries), "dry_run", opts.DryRun)

	for _, entry := range entries {
		if !opts.Force {
			if _, err := st.Get(ctx, entry.qq); err == nil {
				result.Skipped++
				slog.Debug("binding exists, skipped", "batch_id", result.BatchID, "qq", entry.qq)
				continue
			}
		}
		if !opts.DryRun {
			if err := st.Put(ctx, entry.qq, entry.playerID); err != nil {
				return nil, fmt.Errorf("importing binding for %d: %w", entry.qq, err)
			}
		}
		result.Imported++
	}

	slog.Info("bindings import finished",
		"batch_id", result.BatchID, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// readLegacyFile parses the legacy map and returns its entries in sender
// order, so repeated runs process deterministically.
func readLegacyFile(path string) ([]legacyBinding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bindings file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	entries := make([]legacyBinding, 0, len(raw))
	for key, playerID := range raw {
		qq, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sender id %q in %s", key, path)
		}
		if playerID == "" {
			return nil, fmt.Errorf("empty player id for sender %s in %s", key, path)
		}
		entries = append(entries, legacyBinding{qq: qq, playerID: playerID})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].qq < entries[j].qq })
	return entries, nil
}

// PrintSummary writes the human-readable run report.
func PrintSummary(result *Result) {
	fmt.Printf("Imported %d of %d bindings (%d skipped)\n",
		result.Imported, result.Total, result.Skipped)
}
