package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps diffs and world metadata in dir/world.db.
type SQLiteStore struct {
	db    *sql.DB
	codec *codec
	log   *slog.Logger
}

func OpenSQLiteStore(dir string, log *slog.Logger) (*SQLiteStore, error) {
	path := filepath.Join(dir, "world.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	c, err := newCodec()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, codec: c, log: log}, nil
}

func initSQLite(db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunk_diffs (
			chunk_index INTEGER PRIMARY KEY,
			payload BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init sqlite: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) reconcileMeta(ctx context.Context, want WorldMeta) (WorldMeta, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'world'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		b, err := marshalMeta(want)
		if err != nil {
			return WorldMeta{}, err
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('world', ?)`, string(b)); err != nil {
			return WorldMeta{}, fmt.Errorf("write world meta: %w", err)
		}
		s.log.Info("created world", "id", want.ID, "seed", want.Seed, "profile", want.Profile.Name)
		return want, nil
	}
	if err != nil {
		return WorldMeta{}, fmt.Errorf("read world meta: %w", err)
	}
	stored, err := unmarshalMeta([]byte(raw))
	if err != nil {
		return WorldMeta{}, err
	}
	if err := checkMeta(stored, want); err != nil {
		return WorldMeta{}, err
	}
	s.log.Info("opened world", "id", stored.ID, "seed", stored.Seed, "profile", stored.Profile.Name)
	return stored, nil
}

func (s *SQLiteStore) Load(ctx context.Context, index int) (ChunkDiff, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM chunk_diffs WHERE chunk_index = ?`, index).Scan(&payload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ChunkDiff{}, false, nil
	case err != nil:
		return ChunkDiff{}, false, fmt.Errorf("read chunk %d: %w", index, err)
	}
	d, err := s.codec.decode(payload)
	if err != nil {
		return ChunkDiff{}, false, fmt.Errorf("chunk %d: %w", index, err)
	}
	d.Index = index
	return d, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, d ChunkDiff) error {
	if d.Empty() {
		return s.Delete(ctx, d.Index)
	}
	payload, err := s.codec.encode(d)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO chunk_diffs (chunk_index, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(chunk_index) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		d.Index, payload, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save chunk %d: %w", d.Index, err)
	}
	s.log.Debug("saved chunk diff", "index", d.Index, "tiles", len(d.Tiles), "vegetation", len(d.Vegetation), "bytes", len(payload))
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, index int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunk_diffs WHERE chunk_index = ?`, index); err != nil {
		return fmt.Errorf("delete chunk %d: %w", index, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.codec.close()
	return s.db.Close()
}
