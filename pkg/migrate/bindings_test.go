package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tinyland-inc/beatclaw/pkg/store"
)

func writeLegacyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindings.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing legacy file: %v", err)
	}
	return path
}

func TestRunImportsBindings(t *testing.T) {
	file := writeLegacyFile(t, `{"42": "100", "43": "200"}`)
	dbPath := filepath.Join(t.TempDir(), "bindings.db")

	result, err := Run(context.Background(), Options{File: file, DBPath: dbPath})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 0 || result.Total != 2 {
		t.Errorf("result = %+v", result)
	}
	if result.BatchID == "" {
		t.Error("batch id must be set")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	got, err := st.Get(context.Background(), 42)
	if err != nil || got != "100" {
		t.Errorf("Get(42) = %q, %v", got, err)
	}
}

func TestRunSkipsExistingUnlessForced(t *testing.T) {
	file := writeLegacyFile(t, `{"42": "new"}`)
	dbPath := filepath.Join(t.TempDir(), "bindings.db")
	ctx := context.Background()

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Put(ctx, 42, "old"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	st.Close()

	result, err := Run(ctx, Options{File: file, DBPath: dbPath})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 1 {
		t.Errorf("unforced result = %+v", result)
	}

	result, err = Run(ctx, Options{File: file, DBPath: dbPath, Force: true})
	if err != nil {
		t.Fatalf("forced Run: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("forced result = %+v", result)
	}

	st, err = store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	got, err := st.Get(ctx, 42)
	if err != nil || got != "new" {
		t.Errorf("Get(42) after force = %q, %v", got, err)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	file := writeLegacyFile(t, `{"42": "100"}`)
	dbPath := filepath.Join(t.TempDir(), "bindings.db")
	ctx := context.Background()

	result, err := Run(ctx, Options{File: file, DBPath: dbPath, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("dry-run must still count importable entries: %+v", result)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	n, err := st.Count(ctx)
	if err != nil || n != 0 {
		t.Errorf("dry run wrote %d bindings", n)
	}
}

func TestRunRejectsMalformedFiles(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bindings.db")
	ctx := context.Background()

	for name, content := range map[string]string{
		"bad json":        `{`,
		"non-numeric qq":  `{"abc": "100"}`,
		"empty player id": `{"42": ""}`,
	} {
		t.Run(name, func(t *testing.T) {
			file := writeLegacyFile(t, content)
			if _, err := Run(ctx, Options{File: file, DBPath: dbPath}); err == nil {
				t.Error("expected error")
			}
		})
	}
}
