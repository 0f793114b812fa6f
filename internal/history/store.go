// Package history persists scan snapshots to sqlite so repeated runs
// can be compared over time.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Snapshot is one persisted scan: global totals plus per-language rows.
type Snapshot struct {
	ID           string             `json:"id"`
	Label        string             `json:"label"`
	Timestamp    time.Time          `json:"timestamp"`
	Files        int64              `json:"files"`
	Lines        int64              `json:"lines"`
	Code         int64              `json:"code"`
	Comment      int64              `json:"comment"`
	Blank        int64              `json:"blank"`
	Shebang      int64              `json:"shebang"`
	Bytes        int64              `json:"bytes"`
	Unrecognized int64              `json:"unrecognized"`
	Skipped      int64              `json:"skipped"`
	Languages    []LanguageSnapshot `json:"languages,omitempty"`
}

type LanguageSnapshot struct {
	Name    string `json:"name"`
	Files   int64  `json:"files"`
	Lines   int64  `json:"lines"`
	Code    int64  `json:"code"`
	Comment int64  `json:"comment"`
	Blank   int64  `json:"blank"`
	Shebang int64  `json:"shebang"`
	Bytes   int64  `json:"bytes"`
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveSnapshot persists one scan under the given label and returns the
// stored snapshot with its generated id. keep > 0 prunes the label's
// series to the newest keep entries.
func (s *Store) SaveSnapshot(label string, snapshot Snapshot, keep int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	label = strings.TrimSpace(label)
	if label == "" {
		label = "default"
	}
	snapshot.Label = label
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	snapshot.ID = uuid.NewString()

	sort.Slice(snapshot.Languages, func(i, j int) bool {
		return snapshot.Languages[i].Name < snapshot.Languages[j].Name
	})

	err := s.withRetry("save snapshot", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
INSERT INTO snapshots (id, label, ts_utc, files, lines, code, comment, blank, shebang, bytes, unrecognized, skipped)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snapshot.ID,
			snapshot.Label,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.Files,
			snapshot.Lines,
			snapshot.Code,
			snapshot.Comment,
			snapshot.Blank,
			snapshot.Shebang,
			snapshot.Bytes,
			snapshot.Unrecognized,
			snapshot.Skipped,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
		for _, l := range snapshot.Languages {
			if _, err := tx.Exec(`
INSERT INTO snapshot_languages (snapshot_id, name, files, lines, code, comment, blank, shebang, bytes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				snapshot.ID, l.Name, l.Files, l.Lines, l.Code, l.Comment, l.Blank, l.Shebang, l.Bytes,
			); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		if keep > 0 {
			if _, err := tx.Exec(`
DELETE FROM snapshots WHERE label = ? AND id NOT IN (
  SELECT id FROM snapshots WHERE label = ? ORDER BY ts_utc DESC LIMIT ?
)`, label, label, keep); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}

// RecentSnapshots returns up to limit snapshots for the label, newest
// first, with their per-language rows attached.
func (s *Store) RecentSnapshots(label string, limit int) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	label = strings.TrimSpace(label)
	if label == "" {
		label = "default"
	}
	if limit <= 0 {
		limit = 10
	}

	var rows *sql.Rows
	err := s.withRetry("load snapshots", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT id, label, ts_utc, files, lines, code, comment, blank, shebang, bytes, unrecognized, skipped
FROM snapshots
WHERE label = ?
ORDER BY ts_utc DESC
LIMIT ?`, label, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var (
			snapshot Snapshot
			tsRaw    string
		)
		if err := rows.Scan(
			&snapshot.ID,
			&snapshot.Label,
			&tsRaw,
			&snapshot.Files,
			&snapshot.Lines,
			&snapshot.Code,
			&snapshot.Comment,
			&snapshot.Blank,
			&snapshot.Shebang,
			&snapshot.Bytes,
			&snapshot.Unrecognized,
			&snapshot.Skipped,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
		}
		snapshot.Timestamp = ts.UTC()
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	for i := range snapshots {
		languages, err := s.languagesFor(snapshots[i].ID)
		if err != nil {
			return nil, err
		}
		snapshots[i].Languages = languages
	}
	return snapshots, nil
}

func (s *Store) languagesFor(snapshotID string) ([]LanguageSnapshot, error) {
	rows, err := s.db.Query(`
SELECT name, files, lines, code, comment, blank, shebang, bytes
FROM snapshot_languages
WHERE snapshot_id = ?
ORDER BY name ASC`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot languages: %w", err)
	}
	defer rows.Close()

	var languages []LanguageSnapshot
	for rows.Next() {
		var l LanguageSnapshot
		if err := rows.Scan(&l.Name, &l.Files, &l.Lines, &l.Code, &l.Comment, &l.Blank, &l.Shebang, &l.Bytes); err != nil {
			return nil, fmt.Errorf("scan language row: %w", err)
		}
		languages = append(languages, l)
	}
	return languages, rows.Err()
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
