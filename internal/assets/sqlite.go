package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"polyreact/core/errs"
)

// SQLiteStore keeps assets as BLOBs in a single-file database, so a model
// set can be shipped and versioned as one file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the asset database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS assets (
		name TEXT PRIMARY KEY,
		format TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		size INTEGER NOT NULL,
		data BLOB NOT NULL,
		imported_at DATETIME NOT NULL
	);`)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put inserts or replaces an asset.
func (s *SQLiteStore) Put(ctx context.Context, name, format string, data []byte) error {
	if name == "" {
		return errors.New("asset name is required")
	}
	if format == "" {
		format = FormatOf(name)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO assets (name, format, sha256, size, data, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		name, format, Digest(data), len(data), data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save asset %s: %w", name, err)
	}
	return nil
}

// Get returns the asset's bytes.
func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM assets WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", errs.ErrAssetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset %s: %w", name, err)
	}
	return data, nil
}

// Delete removes an asset; deleting a missing name is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE name = ?`, name)
	return err
}

// List returns asset metadata ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, format, size, sha256, imported_at FROM assets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()
	var out []Info
	for rows.Next() {
		var in Info
		if err := rows.Scan(&in.Name, &in.Format, &in.Size, &in.SHA256, &in.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
