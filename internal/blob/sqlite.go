package blob

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// SQLiteStore keeps blobs in the blobs table.
type SQLiteStore struct {
	DB *sql.DB
	// BaseURL is prefixed to /api/images/{key}; empty yields relative URLs.
	BaseURL string
}

// NewSQLiteStore returns a store backed by db.
func NewSQLiteStore(db *sql.DB, baseURL string) *SQLiteStore {
	return &SQLiteStore{DB: db, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *SQLiteStore) Driver() Driver { return DriverSQLite }

// Put stores the blob, replacing any previous content under key.
func (s *SQLiteStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading blob data: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO blobs (key, data, mime) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET data = excluded.data, mime = excluded.mime`,
		key, data, contentType,
	)
	if err != nil {
		return fmt.Errorf("storing blob: %w", err)
	}
	return nil
}

// Get returns the blob content and MIME type.
func (s *SQLiteStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	var data []byte
	var mime string
	err := s.DB.QueryRowContext(ctx,
		`SELECT data, mime FROM blobs WHERE key = ?`, key,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting blob: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), mime, nil
}

// Delete removes the blob. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// URL returns the image route for key. It does not check that key exists.
func (s *SQLiteStore) URL(_ context.Context, key string) (string, error) {
	return s.BaseURL + "/api/images/" + url.PathEscape(key), nil
}
