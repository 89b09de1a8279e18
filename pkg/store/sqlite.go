package store

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key   BLOB PRIMARY KEY,
	value BLOB NOT NULL
) WITHOUT ROWID;
`

// SQLiteConfig configures a SQLiteStore.
type SQLiteConfig struct {
	// Path is the database file. Required.
	Path string

	// PoolSize is the number of pooled connections. Defaults to
	// NumCPU, floored at 4.
	PoolSize int

	// Logger receives open/close events. Defaults to a discard logger.
	Logger *slog.Logger
}

// SQLiteStore is a ByteStore backed by a single SQLite table. It uses
// WAL journaling so blob-info writes during a manifest import never
// block concurrent readers.
type SQLiteStore struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// OpenSQLite opens (creating if needed) the database at cfg.Path.
// The caller must Close the store when done.
func OpenSQLite(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite store: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
		if poolSize < 4 {
			poolSize = 4
		}
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConn(conn)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite store: opening %s: %w", cfg.Path, err)
	}

	logger.Info("byte-store opened", "path", cfg.Path, "pool_size", poolSize)

	return &SQLiteStore{pool: pool, logger: logger, path: cfg.Path}, nil
}

func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlite store: %s: %w", pragma, err)
		}
	}
	return sqlitex.ExecuteScript(conn, kvSchema, nil)
}

// Get returns the value for key, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: take: %w", err)
	}
	defer s.pool.Put(conn)

	var value []byte
	found := false
	err = sqlitex.Execute(conn, `SELECT value FROM kv WHERE key = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite store: get: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

// Put stores value under key, overwriting any existing value.
func (s *SQLiteStore) Put(ctx context.Context, key, value []byte) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlite store: take: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		&sqlitex.ExecOptions{Args: []any{key, value}})
	if err != nil {
		return fmt.Errorf("sqlite store: put: %w", err)
	}
	return nil
}

// Has reports whether a value exists for key.
func (s *SQLiteStore) Has(ctx context.Context, key []byte) (bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, fmt.Errorf("sqlite store: take: %w", err)
	}
	defer s.pool.Put(conn)

	found := false
	err = sqlitex.Execute(conn, `SELECT 1 FROM kv WHERE key = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("sqlite store: has: %w", err)
	}
	return found, nil
}

// Close closes the connection pool. Blocks until all borrowed
// connections are returned.
func (s *SQLiteStore) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("sqlite store: closing %s: %w", s.path, err)
	}
	s.logger.Info("byte-store closed", "path", s.path)
	return nil
}
