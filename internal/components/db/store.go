package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cardstorm-backend/internal/components/db/migrations"
	"cardstorm-backend/internal/components/telemetry"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const report_store_migrate = "store.migrate"

// Store is an opened, migrated database.
type Store struct {
	DB      *sql.DB
	dialect Dialect
	tel     telemetry.API
}

// Open connects to the database described by config and applies every
// embedded migration that has not run yet.
func Open(ctx context.Context, config Config, tel telemetry.API) (*Store, error) {
	tel = telemetry.NewScopedAPI("db", tel)

	var (
		database *sql.DB
		dialect  Dialect
		err      error
	)
	switch config.driver() {
	case DriverSqlite:
		database, err = openSqlite(ctx, config.File)
		dialect = DialectSqlite
	case DriverLibsql:
		var dsn string
		dsn, err = config.libsqlDSN()
		if err != nil {
			return nil, err
		}
		database, err = sql.Open("libsql", dsn)
		dialect = DialectSqlite
	case DriverPostgres:
		var dsn string
		dsn, err = config.postgresDSN()
		if err != nil {
			return nil, err
		}
		database, err = sql.Open("pgx", dsn)
		dialect = DialectPostgres
	default:
		return nil, fmt.Errorf("unknown db driver %q", config.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", config.driver(), err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("ping %s: %w", config.driver(), err)
	}

	store := &Store{
		DB:      database,
		dialect: dialect,
		tel:     tel,
	}
	err = store.migrate()
	if err != nil {
		tel.ReportBroken(report_store_migrate, err)
		database.Close()
		return nil, err
	}
	return store, nil
}

func openSqlite(ctx context.Context, file string) (*sql.DB, error) {
	if file == "" {
		file = "cardstorm.db"
	}

	dsn := "file::memory:?_pragma=foreign_keys(1)"
	inMemory := file == ":memory:"
	if !inMemory {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, err
		}
		err = os.MkdirAll(filepath.Dir(abs), 0o750)
		if err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", filepath.ToSlash(abs))
	}

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite only allows a single writer, an in-memory database also only
	// exists for as long as its one connection does
	database.SetMaxOpenConns(1)
	database.SetConnMaxIdleTime(0)
	database.SetConnMaxLifetime(0)

	if !inMemory {
		_, err = database.ExecContext(ctx, "PRAGMA journal_mode=WAL")
		if err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}

func (s *Store) migrate() error {
	dir := "sqlite"
	if s.dialect == DialectPostgres {
		dir = "postgres"
	}
	source, err := iofs.New(migrations.Files, dir)
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	defer source.Close()

	var migrator *migrate.Migrate
	switch s.dialect {
	case DialectPostgres:
		driver, err := migratepgx.WithInstance(s.DB, &migratepgx.Config{})
		if err != nil {
			return fmt.Errorf("init migrate driver: %w", err)
		}
		migrator, err = migrate.NewWithInstance("iofs", source, "pgx5", driver)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
	default:
		driver, err := migratesqlite.WithInstance(s.DB, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("init migrate driver: %w", err)
		}
		migrator, err = migrate.NewWithInstance("iofs", source, "sqlite", driver)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
	}

	// migrator.Close() would close s.DB as well
	err = migrator.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Queries returns a Queries that runs on the connection pool.
func (s *Store) Queries() *Queries {
	return New(s.DB, s.dialect)
}

func (s *Store) Close() error {
	return s.DB.Close()
}
