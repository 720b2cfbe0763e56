// Package storage opens the relational store behind every repository. The
// same schema and queries run on PostgreSQL and on an embedded SQLite file.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/storage/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const migrationTable = "schema_migrations"

// DB bundles the ORM handle used by repositories and an sqlx handle over the
// same pool for hand-written report queries.
type DB struct {
	Gorm    *gorm.DB
	SQL     *sqlx.DB
	Dialect Dialect
}

// Open connects to the database selected by cfg.Driver and verifies the
// connection.
func Open(cfg internal.DatabaseConfig) (*DB, error) {
	var (
		db  *DB
		err error
	)

	switch Dialect(cfg.Driver) {
	case DialectPostgres:
		db, err = openPostgres(cfg.GetDSN())
	case DialectSQLite:
		db, err = OpenSQLite(sqliteDSN(cfg.GetDSN()))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if db.Dialect == DialectPostgres {
		db.SQL.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SQL.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SQL.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SQL.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	ctx, cancel := internal.WithTimeout(context.Background(), 0)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func openPostgres(dsn string) (*DB, error) {
	const driver = "pgx"

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &DB{
		Gorm:    gormDB,
		SQL:     sqlx.NewDb(sqlDB, driver),
		Dialect: DialectPostgres,
	}, nil
}

// OpenSQLite opens an SQLite database. The pool is limited to a single
// connection: SQLite serializes writers anyway, and ":memory:" databases
// exist only on the connection that created them.
func OpenSQLite(dsn string) (*DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gormDB.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{
		Gorm:    gormDB,
		SQL:     sqlx.NewDb(sqlDB, "sqlite3"),
		Dialect: DialectSQLite,
	}, nil
}

// OpenMemory returns a migrated in-memory SQLite database.
func OpenMemory(ctx context.Context) (*DB, error) {
	db, err := OpenSQLite(":memory:")
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteDSN(source string) string {
	if source == ":memory:" || strings.Contains(source, "?") {
		return source
	}
	return source + "?_busy_timeout=5000"
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

func (d *DB) Ping(ctx context.Context) error {
	return d.SQL.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.SQL.Close()
}

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

func (d *DB) withGoose(fn func(dir string) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrationTable)
	goose.SetLogger(goose.NopLogger())

	dialect := "postgres"
	if d.Dialect == DialectSQLite {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	return fn(string(d.Dialect))
}

// Migrate applies every pending migration.
func (d *DB) Migrate(ctx context.Context) error {
	return d.withGoose(func(dir string) error {
		if err := goose.UpContext(ctx, d.SQL.DB, dir); err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		return nil
	})
}

// Rollback reverts the most recently applied migration.
func (d *DB) Rollback(ctx context.Context) error {
	return d.withGoose(func(dir string) error {
		if err := goose.DownContext(ctx, d.SQL.DB, dir); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		return nil
	})
}

// Version reports the current schema version.
func (d *DB) Version(ctx context.Context) (int64, error) {
	var version int64
	err := d.withGoose(func(string) error {
		v, err := goose.GetDBVersionContext(ctx, d.SQL.DB)
		version = v
		return err
	})
	return version, err
}

// IsUniqueViolation reports whether err came from a unique constraint or
// unique index, on either dialect.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// IsForeignKeyViolation reports whether err came from a missing referenced row.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint") ||
		strings.Contains(msg, "SQLSTATE 23503")
}
