package state

import (
	"path/filepath"
	"testing"

	"github.com/forgelint/forgelint/internal/testutil"
	"github.com/forgelint/forgelint/pkg/check"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	store := NewSQLiteStore(nil)
	if err := store.Open(path); err != nil {
		t.Fatalf("failed to open file store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate file store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	// Reopen and confirm the schema survives.
	store = NewSQLiteStore(nil)
	if err := store.Open(path); err != nil {
		t.Fatalf("failed to reopen file store: %v", err)
	}
	defer func() { _ = store.Close() }()

	version, err := store.GetMigrationVersion()
	if err != nil {
		t.Fatalf("failed to get migration version: %v", err)
	}
	if version != 1 {
		t.Errorf("expected migration version 1, got %d", version)
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	if err := store.Migrate(); err == nil {
		t.Error("expected error migrating unopened store")
	}
	if _, _, err := store.Get("src/A.sol", "h", "r"); err == nil {
		t.Error("expected error getting from unopened store")
	}
	if err := store.Put("src/A.sol", "h", "r", nil); err == nil {
		t.Error("expected error putting to unopened store")
	}
	if _, err := store.Prune(nil); err == nil {
		t.Error("expected error pruning unopened store")
	}
	if err := store.Close(); err != nil {
		t.Errorf("close of unopened store should not error: %v", err)
	}
}

func TestSQLiteStore_PutGet(t *testing.T) {
	store := setupTestStore(t)

	findings := []check.Finding{
		{Rule: "constant", Path: "src/Vault.sol", Line: 7, Message: "Constant 'cap' should be in CAPS_SNAKE_CASE"},
		{Rule: "src", Path: "src/Vault.sol", Line: 12, Message: "Function 'bump' should have underscore prefix"},
	}

	if err := store.Put("src/Vault.sol", "hash1", "rules1", findings); err != nil {
		t.Fatalf("failed to put result: %v", err)
	}

	got, ok, err := store.Get("src/Vault.sol", "hash1", "rules1")
	if err != nil {
		t.Fatalf("failed to get result: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(got))
	}
	if got[0].Rule != "constant" || got[0].Line != 7 || got[0].Path != "src/Vault.sol" {
		t.Errorf("unexpected first finding: %+v", got[0])
	}
	if got[1].Message != "Function 'bump' should have underscore prefix" {
		t.Errorf("unexpected second finding message: %q", got[1].Message)
	}
}

func TestSQLiteStore_GetCleanHit(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Put("src/Clean.sol", "hash1", "rules1", nil); err != nil {
		t.Fatalf("failed to put clean result: %v", err)
	}

	got, ok, err := store.Get("src/Clean.sol", "hash1", "rules1")
	if err != nil {
		t.Fatalf("failed to get clean result: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit for clean file")
	}
	if len(got) != 0 {
		t.Errorf("expected no findings, got %d", len(got))
	}
}

func TestSQLiteStore_GetMiss(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Put("src/Vault.sol", "hash1", "rules1", nil); err != nil {
		t.Fatalf("failed to put result: %v", err)
	}

	tests := []struct {
		name        string
		path        string
		contentHash string
		rulesHash   string
	}{
		{"unknown path", "src/Other.sol", "hash1", "rules1"},
		{"changed content", "src/Vault.sol", "hash2", "rules1"},
		{"changed rules", "src/Vault.sol", "hash1", "rules2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := store.Get(tt.path, tt.contentHash, tt.rulesHash)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Error("expected cache miss")
			}
		})
	}
}

func TestSQLiteStore_PutReplaces(t *testing.T) {
	store := setupTestStore(t)

	old := []check.Finding{
		{Rule: "test", Line: 3, Message: "old finding"},
		{Rule: "test", Line: 9, Message: "another old finding"},
	}
	if err := store.Put("test/Vault.t.sol", "hash1", "rules1", old); err != nil {
		t.Fatalf("failed to put initial result: %v", err)
	}

	replacement := []check.Finding{{Rule: "test", Line: 5, Message: "new finding"}}
	if err := store.Put("test/Vault.t.sol", "hash2", "rules1", replacement); err != nil {
		t.Fatalf("failed to replace result: %v", err)
	}

	// The old entry is gone along with its findings.
	if _, ok, _ := store.Get("test/Vault.t.sol", "hash1", "rules1"); ok {
		t.Error("expected old entry to be replaced")
	}

	got, ok, err := store.Get("test/Vault.t.sol", "hash2", "rules1")
	if err != nil {
		t.Fatalf("failed to get replacement: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit for replacement")
	}
	if len(got) != 1 || got[0].Message != "new finding" {
		t.Errorf("unexpected replacement findings: %+v", got)
	}
}

func TestSQLiteStore_Prune(t *testing.T) {
	store := setupTestStore(t)

	for _, path := range []string{"src/A.sol", "src/B.sol", "test/C.t.sol"} {
		if err := store.Put(path, "hash", "rules", nil); err != nil {
			t.Fatalf("failed to put %s: %v", path, err)
		}
	}

	deleted, err := store.Prune(map[string]bool{"src/A.sol": true, "test/C.t.sol": true})
	if err != nil {
		t.Fatalf("failed to prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned entry, got %d", deleted)
	}

	if _, ok, _ := store.Get("src/B.sol", "hash", "rules"); ok {
		t.Error("expected pruned entry to be gone")
	}
	if _, ok, _ := store.Get("src/A.sol", "hash", "rules"); !ok {
		t.Error("expected kept entry to survive pruning")
	}
}
