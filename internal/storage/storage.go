// Package storage provides the durable key-value store projects are saved in.
// The same small interface is served by an in-memory map, by SQL databases
// (SQLite, PostgreSQL, MySQL) and by MongoDB.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/webbuilder/internal/errors"
)

// ErrNotFound is matched by errors.Is for every lookup of a missing key.
var ErrNotFound = errors.NewNotFoundError(errors.CodeKeyNotFound, "key not found")

// KV is a string key-value store. Writes are last-writer-wins.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys lists the keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
)

// Drivers lists every supported driver.
func Drivers() []string {
	return []string{DriverMemory, DriverSQLite, DriverPostgres, DriverMySQL, DriverMongo}
}

// Config selects and addresses a backend.
type Config struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	// DSN is a file path for sqlite, a connection string for postgres and
	// mysql, and a mongodb:// URI for mongo.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
	// Database is only used by mongo.
	Database string `mapstructure:"database" yaml:"database"`
	// Collection names the table or collection holding the keys.
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// Validate checks that the configuration names a known driver and carries
// what that driver needs.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverSQLite, DriverPostgres, DriverMySQL, DriverMongo:
	default:
		return errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("unknown storage driver %q (want one of %s)", c.Driver, strings.Join(Drivers(), ", ")))
	}
	if strings.TrimSpace(c.DSN) == "" {
		return errors.NewConfigError(errors.CodeInvalidConfig, "storage dsn is required for driver "+c.Driver)
	}
	if !validIdent(c.Collection) {
		return errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("storage collection %q must be a plain identifier", c.Collection))
	}
	if c.Driver == DriverMongo && strings.TrimSpace(c.Database) == "" {
		return errors.NewConfigError(errors.CodeInvalidConfig, "storage database is required for driver mongo")
	}

	return nil
}

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg Config) (KV, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverMongo:
		return OpenMongo(ctx, cfg.DSN, cfg.Database, cfg.Collection)
	default:
		return OpenSQL(ctx, cfg.Driver, cfg.DSN, cfg.Collection)
	}
}

func validIdent(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}

func notFound(key string) error {
	return errors.NewNotFoundError(errors.CodeKeyNotFound, "key not found").WithContext("key", key)
}
