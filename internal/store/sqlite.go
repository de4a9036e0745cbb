package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"blueforge/internal/asset"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists class and struct assets in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS packages (
			path TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS assets (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			data JSON NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_name ON assets(name)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// FindByPath answers a registry lookup from the index columns only; the
// asset payload is not deserialized.
func (s *SQLiteStore) FindByPath(ctx context.Context, path string) (*asset.SymbolRef, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, kind FROM assets WHERE path = ?`, path)

	var name, kind string
	if err := row.Scan(&name, &kind); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find asset %s: %w", path, err)
	}
	return &asset.SymbolRef{Kind: asset.RefKind(kind), Name: name, Path: path}, nil
}

func (s *SQLiteStore) LoadClass(ctx context.Context, path string) (*asset.ClassAsset, error) {
	data, err := s.loadData(ctx, path, string(asset.RefClass))
	if err != nil {
		return nil, err
	}
	var a asset.ClassAsset
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode class asset %s: %w", path, err)
	}
	return &a, nil
}

func (s *SQLiteStore) LoadStruct(ctx context.Context, path string) (*asset.StructAsset, error) {
	data, err := s.loadData(ctx, path, string(asset.RefStruct))
	if err != nil {
		return nil, err
	}
	var st asset.StructAsset
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to decode struct asset %s: %w", path, err)
	}
	return &st, nil
}

func (s *SQLiteStore) loadData(ctx context.Context, path, kind string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM assets WHERE path = ? AND kind = ?`, path, kind)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load asset %s: %w", path, err)
	}
	return data, nil
}

func (s *SQLiteStore) CreatePackage(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO packages(path) VALUES (?)`, path)
	if err != nil {
		return fmt.Errorf("failed to create package %s: %w", path, err)
	}
	return nil
}

func (s *SQLiteStore) SaveClass(ctx context.Context, a *asset.ClassAsset) error {
	if err := s.save(ctx, a.Path, a.Name, string(asset.RefClass), a); err != nil {
		return err
	}
	a.Modified = false
	return nil
}

func (s *SQLiteStore) SaveStruct(ctx context.Context, st *asset.StructAsset) error {
	return s.save(ctx, st.Path, st.Name, string(asset.RefStruct), st)
}

func (s *SQLiteStore) save(ctx context.Context, path, name, kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode asset %s: %w", path, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assets(path, name, kind, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET name = excluded.name, kind = excluded.kind, data = excluded.data`,
		path, name, kind, data)
	if err != nil {
		return fmt.Errorf("failed to save asset %s: %w", path, err)
	}
	return nil
}
