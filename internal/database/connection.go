package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"eatopia/internal/apperr"
	"eatopia/internal/config"
	"eatopia/internal/logger"
)

// DB wraps the connection pool for the configured driver
type DB struct {
	SQL     *sql.DB
	dialect Dialect
	logger  *logger.Logger
}

// New connects to the configured database, retrying with a growing delay
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*DB, error) {
	dialect, err := DialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	var db *DB
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		db, err = Open(ctx, dialect, cfg.DatabaseURL(), log)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			waitTime := time.Duration(i+1) * 2 * time.Second
			log.Error("db_connection_failed",
				fmt.Sprintf("Failed to connect to database, retrying in %v", waitTime),
				"startup", err, nil)

			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return nil, fmt.Errorf("db connect canceled: %w", ctx.Err())
			}
		}
	}

	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %w", apperr.ErrDBConn, maxRetries, err)
	}

	if dialect.Name == config.DriverPostgres && cfg.Database.MaxConns > 0 {
		db.SQL.SetMaxOpenConns(cfg.Database.MaxConns)
		db.SQL.SetMaxIdleConns(cfg.Database.MaxConns / 2)
	}
	return db, nil
}

// Open makes a single connection attempt and verifies it with a ping
func Open(ctx context.Context, dialect Dialect, dsn string, log *logger.Logger) (*DB, error) {
	pool, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect.SingleWriter {
		pool.SetMaxOpenConns(1)
		pool.SetMaxIdleConns(1)
	} else {
		pool.SetConnMaxLifetime(time.Hour)
		pool.SetConnMaxIdleTime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		SQL:     pool,
		dialect: dialect,
		logger:  log,
	}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.SQL != nil {
		return db.SQL.Close()
	}
	return nil
}

// Ping tests the database connection
func (db *DB) Ping(ctx context.Context) error {
	return db.SQL.PingContext(ctx)
}

// Dialect returns the SQL dialect in use
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Acquire reserves one connection for the lifetime of a request. The caller
// must Close the returned gateway to give the connection back.
func (db *DB) Acquire(ctx context.Context) (*Gateway, error) {
	conn, err := db.SQL.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrDBConn, err)
	}
	return &Gateway{
		conn:    conn,
		dialect: db.dialect,
		logger:  db.logger,
	}, nil
}
