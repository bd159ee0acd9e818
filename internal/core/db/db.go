package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/seckatie/clipd/internal/logger"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// DefaultDSN is used when no connection string is configured.
const DefaultDSN = "sqlite:///clipd.db"

// ErrNotFound is returned when a clip id does not exist.
var ErrNotFound = errors.New("clip not found")

type DB struct {
	db             *sql.DB
	dialect        dialect
	now            func() time.Time
	logger         logger.Logger
	eventListeners map[EventKind][]EventListener
}

// Option customizes a DB at open time.
type Option func(*DB)

// WithLogger sets the logger used for migrations and event listener errors.
func WithLogger(l logger.Logger) Option {
	return func(db *DB) { db.logger = l }
}

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// Open connects to the database named by dsn. postgres:// and postgresql://
// URLs use the pgx driver; anything else is treated as a SQLite location
// (sqlite:///path, sqlite://path, file:..., :memory: or a plain path).
func Open(dsn string, opts ...Option) (*DB, error) {
	d, source, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(d.driverName(), source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if d == dialectSQLite {
		// One connection keeps :memory: databases shared and serializes writers.
		sqlDB.SetMaxOpenConns(1)
	}

	db := &DB{
		db:             sqlDB,
		dialect:        d,
		now:            time.Now,
		logger:         logger.Nop(),
		eventListeners: make(map[EventKind][]EventListener),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// NewSQLiteDB opens a SQLite database at path.
func NewSQLiteDB(path string, opts ...Option) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("failed to open database: empty path")
	}
	return Open(path, opts...)
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

func (d dialect) driverName() string {
	if d == dialectPostgres {
		return "pgx"
	}
	return "sqlite3"
}

// rebind rewrites ? placeholders into $1, $2, ... for Postgres.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func parseDSN(dsn string) (dialect, string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = DefaultDSN
	}

	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return dialectPostgres, dsn, nil
	case dsn == "sqlite://":
		return dialectSQLite, ":memory:", nil
	case strings.HasPrefix(dsn, "sqlite:///"):
		path := strings.TrimPrefix(dsn, "sqlite:///")
		if path == "" {
			return 0, "", fmt.Errorf("invalid database URL %q: missing path", dsn)
		}
		return dialectSQLite, path, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return dialectSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.Contains(dsn, "://"):
		scheme, _, _ := strings.Cut(dsn, "://")
		return 0, "", fmt.Errorf("unsupported database scheme %q", scheme)
	default:
		return dialectSQLite, dsn, nil
	}
}

func (db *DB) Migrate() error {
	_, err := db.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema migrations table: %w", err)
	}

	dir := "migrations/" + db.dialect.String()
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		migrations = append(migrations, entry.Name())
	}

	sort.Strings(migrations)

	for _, migration := range migrations {
		version := strings.TrimSuffix(migration, ".sql")

		var exists bool
		if err := db.db.QueryRow(db.dialect.rebind(`
		    SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = ?)
		`), version).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check if migration has been applied: %w", err)
		}
		if exists {
			db.logger.Debugf("Migration %s has already been applied, skipping", version)
			continue
		}

		content, err := migrationsFS.ReadFile(dir + "/" + migration)
		if err != nil {
			return fmt.Errorf("failed to read migration file: %w", err)
		}

		tx, err := db.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", version, err)
		}

		if _, err := tx.Exec(db.dialect.rebind(`
		    INSERT INTO schema_migrations (version) VALUES (?)
		`), version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to mark migration as applied: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		db.logger.Info("migration applied",
			logger.String("version", version),
			logger.String("dialect", db.dialect.String()))
	}

	return nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}

// timestamp returns the current time at storage precision.
func (db *DB) timestamp() time.Time {
	return db.now().UTC().Truncate(time.Microsecond)
}
