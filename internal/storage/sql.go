package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/conneroisu/webbuilder/internal/errors"
)

// dialect holds the statements that differ between SQL backends.
type dialect struct {
	driver string
	create string
	get    string
	upsert string
	delete string
	keys   string
}

func newDialect(driver, table string) (dialect, error) {
	d := dialect{
		driver: driver,
		get:    "SELECT v FROM " + table + " WHERE k = ?",
		delete: "DELETE FROM " + table + " WHERE k = ?",
		keys:   "SELECT k FROM " + table + " ORDER BY k",
	}

	switch driver {
	case DriverSQLite:
		d.create = "CREATE TABLE IF NOT EXISTS " + table + ` (
    k TEXT PRIMARY KEY,
    v TEXT NOT NULL,
    updated_at INTEGER NOT NULL
)`
		d.upsert = "INSERT INTO " + table + ` (k, v, updated_at) VALUES (?, ?, ?)
ON CONFLICT (k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`
	case DriverPostgres:
		d.create = "CREATE TABLE IF NOT EXISTS " + table + ` (
    k TEXT PRIMARY KEY,
    v TEXT NOT NULL,
    updated_at BIGINT NOT NULL
)`
		d.get = "SELECT v FROM " + table + " WHERE k = $1"
		d.delete = "DELETE FROM " + table + " WHERE k = $1"
		d.upsert = "INSERT INTO " + table + ` (k, v, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = EXCLUDED.updated_at`
	case DriverMySQL:
		d.create = "CREATE TABLE IF NOT EXISTS " + table + ` (
    k VARCHAR(255) NOT NULL PRIMARY KEY,
    v LONGTEXT NOT NULL,
    updated_at BIGINT NOT NULL
) CHARACTER SET utf8mb4`
		d.upsert = "INSERT INTO " + table + ` (k, v, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = VALUES(updated_at)`
	default:
		return dialect{}, errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("driver %q is not a SQL backend", driver))
	}

	return d, nil
}

// SQL is a KV backed by a single table with columns k, v and updated_at.
type SQL struct {
	db *sql.DB
	d  dialect
}

// OpenSQL connects to the database and creates the table when it is missing.
// For sqlite the DSN is a file path (or :memory:) whose directory is created
// on demand.
func OpenSQL(ctx context.Context, driver, dsn, table string) (*SQL, error) {
	d, err := newDialect(driver, table)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, errors.NewStorageError("create database directory", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.NewStorageError("open "+driver, err)
	}

	if driver == DriverSQLite {
		// SQLite only supports one writer.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `
			PRAGMA journal_mode=WAL;
			PRAGMA busy_timeout=5000;
		`); err != nil {
			db.Close()
			return nil, errors.NewStorageError("configure sqlite", err)
		}
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(10 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.NewStorageError("connect "+driver, err)
	}

	if _, err := db.ExecContext(ctx, d.create); err != nil {
		db.Close()
		return nil, errors.NewStorageError("migrate "+driver, err)
	}

	return &SQL{db: db, d: d}, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.d.get, key).Scan(&v)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", notFound(key)
	}
	if err != nil {
		return "", errors.NewStorageError("get "+key, err)
	}

	return v, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.d.upsert, key, value, time.Now().UnixMilli()); err != nil {
		return errors.NewStorageError("set "+key, err)
	}

	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.d.delete, key); err != nil {
		return errors.NewStorageError("delete "+key, err)
	}

	return nil
}

// Keys filters in Go rather than with LIKE so that prefixes containing % or _
// need no dialect-specific escaping.
func (s *SQL) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.d.keys)
	if err != nil {
		return nil, errors.NewStorageError("list keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errors.NewStorageError("scan key", err)
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("list keys", err)
	}

	return keys, nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// Driver returns the database/sql driver name in use.
func (s *SQL) Driver() string { return s.d.driver }
