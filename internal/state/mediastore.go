package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// MediaStore is the persistent ledger of media upgrade attempts, backed
// by SQLite. A key recorded as succeeded is never re-downloaded on a
// later run; writes are transactional, so an abort cannot tear it.
type MediaStore struct {
	db *sql.DB
}

// OpenMediaStore opens (creating if needed) the store at path.
func OpenMediaStore(path string) (*MediaStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open media store: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS media_upgrades (
			key        TEXT PRIMARY KEY,
			remote_url TEXT NOT NULL,
			local_path TEXT NOT NULL,
			succeeded  INTEGER NOT NULL,
			bytes      INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_media_upgrades_succeeded ON media_upgrades(succeeded);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create media store schema: %w", err)
	}

	return &MediaStore{db: db}, nil
}

// Close closes the store.
func (s *MediaStore) Close() error {
	return s.db.Close()
}

// Succeeded reports whether key already has a successful upgrade on
// record.
func (s *MediaStore) Succeeded(ctx context.Context, key string) (bool, error) {
	var ok int
	err := s.db.QueryRowContext(ctx,
		`SELECT succeeded FROM media_upgrades WHERE key = ?`, key).Scan(&ok)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query media store: %w", err)
	}
	return ok == 1, nil
}

// Record upserts the outcome of an upgrade attempt.
func (s *MediaStore) Record(ctx context.Context, key, remoteURL, localPath string, succeeded bool, bytes int64) error {
	ok := 0
	if succeeded {
		ok = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_upgrades (key, remote_url, local_path, succeeded, bytes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			remote_url = excluded.remote_url,
			local_path = excluded.local_path,
			succeeded  = excluded.succeeded,
			bytes      = excluded.bytes,
			updated_at = excluded.updated_at
	`, key, remoteURL, localPath, ok, bytes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record media upgrade: %w", err)
	}
	return nil
}

// Stats returns how many keys are recorded and how many succeeded.
func (s *MediaStore) Stats(ctx context.Context) (total, succeeded int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(succeeded), 0) FROM media_upgrades`).Scan(&total, &succeeded)
	if err != nil {
		return 0, 0, fmt.Errorf("query media store stats: %w", err)
	}
	return total, succeeded, nil
}
