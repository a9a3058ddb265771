// Package sqlite persists named snapshots as one SQLite file per name.
package sqlite

import (
	"amity/internal/infra/persistence/buckets"
	"amity/pkg/domain"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.StateStore = (*Store)(nil)

// Store writes each snapshot to <dir>/<name>.db as JSON payloads in a
// state(bucket, payload) table.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, creating it when missing.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the database file used for name.
func (s *Store) Path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid state name %q", name)
	}
	if !strings.HasSuffix(name, ".db") {
		name += ".db"
	}
	return filepath.Join(s.dir, name), nil
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return db, nil
}

// Save replaces the snapshot stored under name.
func (s *Store) Save(ctx context.Context, name string, snapshot domain.Snapshot) (retErr error) {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	payloads, err := buckets.Encode(snapshot)
	if err != nil {
		return err
	}
	db, err := open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range buckets.Names {
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, payloads[bucket]); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load reads the snapshot stored under name. A missing database file yields
// domain.ErrStateNotFound; the file is never created by a load.
func (s *Store) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	path, err := s.Path(name)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Snapshot{}, fmt.Errorf("%w: %q", domain.ErrStateNotFound, name)
		}
		return domain.Snapshot{}, fmt.Errorf("stat %s: %w", path, err)
	}
	db, err := open(ctx, path)
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	payloads := make(map[string][]byte)
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return domain.Snapshot{}, fmt.Errorf("scan: %w", err)
		}
		payloads[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	if len(payloads) == 0 {
		return domain.Snapshot{}, fmt.Errorf("%w: %q", domain.ErrStateNotFound, name)
	}
	return buckets.Decode(payloads)
}

// Names lists the database files under the directory, without the .db
// suffix, in lexical order.
func (s *Store) Names(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".db"))
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op; connections are opened per call.
func (s *Store) Close() error { return nil }
