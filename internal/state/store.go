// Package state persists check results between runs using SQLite.
// Entries are keyed by file path, content hash and the rule-set
// fingerprint, so a file is re-checked whenever its content or the
// rule roster changes.
package state

import (
	"github.com/forgelint/forgelint/pkg/check"
)

// Store is the persistence boundary for the findings cache. The engine
// only reads and writes entries; opening and migrating the underlying
// database is the caller's concern.
type Store interface {
	// Get returns the cached findings for a file whose content hash and
	// rules fingerprint both match the stored entry. ok is false on a
	// miss; a hit with no findings returns an empty slice.
	Get(path, contentHash, rulesHash string) (findings []check.Finding, ok bool, err error)

	// Put replaces the cached entry for a file.
	Put(path, contentHash, rulesHash string, findings []check.Finding) error

	// Prune removes entries for paths absent from keep and returns the
	// number removed.
	Prune(keep map[string]bool) (int, error)

	// Close releases the underlying database.
	Close() error
}
