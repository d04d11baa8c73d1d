package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/forgelint/forgelint/pkg/check"
)

// Get retrieves the cached findings for a file. The entry only matches
// when both the content hash and the rules fingerprint are unchanged.
func (s *SQLiteStore) Get(path, contentHash, rulesHash string) ([]check.Finding, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("database not opened")
	}

	var id string
	err := s.db.QueryRow(
		`SELECT id FROM results WHERE path = ? AND content_hash = ? AND rules_hash = ?`,
		path, contentHash, rulesHash,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached result: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT rule, line, message FROM findings WHERE result_id = ? ORDER BY line, rule`,
		id,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	findings := []check.Finding{}
	for rows.Next() {
		f := check.Finding{Path: path}
		if err := rows.Scan(&f.Rule, &f.Line, &f.Message); err != nil {
			return nil, false, fmt.Errorf("failed to scan cached finding: %w", err)
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read cached findings: %w", err)
	}

	return findings, true, nil
}

// Put replaces the cached entry for a file with the given findings.
func (s *SQLiteStore) Put(path, contentHash, rulesHash string, findings []check.Finding) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Deleting the result row cascades to its findings.
	if _, err := tx.Exec(`DELETE FROM results WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to replace cached result: %w", err)
	}

	id := generateID()
	_, err = tx.Exec(
		`INSERT INTO results (id, path, content_hash, rules_hash, checked_at) VALUES (?, ?, ?, ?, ?)`,
		id, path, contentHash, rulesHash, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cached result: %w", err)
	}

	for _, f := range findings {
		_, err = tx.Exec(
			`INSERT INTO findings (result_id, rule, line, message) VALUES (?, ?, ?, ?)`,
			id, f.Rule, f.Line, f.Message,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cached finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Prune removes cache entries for files that no longer exist.
func (s *SQLiteStore) Prune(keep map[string]bool) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`SELECT path FROM results`)
	if err != nil {
		return 0, fmt.Errorf("failed to list cached paths: %w", err)
	}

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("failed to scan cached path: %w", err)
		}
		if !keep[path] {
			stale = append(stale, path)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("failed to list cached paths: %w", err)
	}

	deleted := 0
	for _, path := range stale {
		if _, err := s.db.Exec(`DELETE FROM results WHERE path = ?`, path); err != nil {
			return deleted, fmt.Errorf("failed to prune %s: %w", path, err)
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Debug("pruned stale cache entries", "count", deleted)
	}

	return deleted, nil
}
