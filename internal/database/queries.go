package database

import (
	"fmt"

	"eatopia/internal/config"
)

// Dialect holds the statements that differ between the supported drivers.
// Item insertion takes (food_item, quantity, order_id) in both dialects.
type Dialect struct {
	Name         string
	DriverName   string
	SingleWriter bool

	CreateMigrationsTableSQL string
	RecordMigrationSQL       string
	AppliedMigrationsSQL     string

	NextOrderIDSQL         string
	AllocateOrderIDSQL     string
	InsertOrderItemSQL     string
	InsertOrderTrackingSQL string
	TotalOrderPriceSQL     string
	OrderStatusSQL         string
}

// Postgres keeps item pricing in the insert_order_item procedure and the
// get_total_order_price function. Saved orders draw ids from order_id_seq.
var Postgres = Dialect{
	Name:       config.DriverPostgres,
	DriverName: "pgx",

	CreateMigrationsTableSQL: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	RecordMigrationSQL:   `INSERT INTO schema_migrations (migration_name) VALUES ($1)`,
	AppliedMigrationsSQL: `SELECT migration_name FROM schema_migrations`,

	NextOrderIDSQL:         `SELECT COALESCE(MAX(order_id), 0) + 1 FROM orders`,
	AllocateOrderIDSQL:     `SELECT nextval('order_id_seq')`,
	InsertOrderItemSQL:     `CALL insert_order_item($1, $2, $3)`,
	InsertOrderTrackingSQL: `INSERT INTO order_tracking (order_id, status) VALUES ($1, $2)`,
	TotalOrderPriceSQL:     `SELECT get_total_order_price($1)::float8`,
	OrderStatusSQL:         `SELECT status FROM order_tracking WHERE order_id = $1`,
}

// SQLite has no procedures; the item insert resolves item_id and price inline
// and fails on the NOT NULL constraint when the food item is unknown. Ids are
// allocated as MAX+1, safe under the single writer connection.
var SQLite = Dialect{
	Name:         config.DriverSQLite,
	DriverName:   "sqlite3",
	SingleWriter: true,

	CreateMigrationsTableSQL: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			migration_name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	RecordMigrationSQL:   `INSERT INTO schema_migrations (migration_name) VALUES (?)`,
	AppliedMigrationsSQL: `SELECT migration_name FROM schema_migrations`,

	NextOrderIDSQL:     `SELECT COALESCE(MAX(order_id), 0) + 1 FROM orders`,
	AllocateOrderIDSQL: `SELECT COALESCE(MAX(order_id), 0) + 1 FROM orders`,
	InsertOrderItemSQL: `
		INSERT INTO orders (order_id, item_id, quantity, total_price)
		VALUES (
			?3,
			(SELECT item_id FROM food_items WHERE name = ?1 COLLATE NOCASE),
			?2,
			(SELECT price FROM food_items WHERE name = ?1 COLLATE NOCASE) * ?2
		)`,
	InsertOrderTrackingSQL: `INSERT INTO order_tracking (order_id, status) VALUES (?, ?)`,
	TotalOrderPriceSQL:     `SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE order_id = ?`,
	OrderStatusSQL:         `SELECT status FROM order_tracking WHERE order_id = ?`,
}

// DialectFor returns the dialect registered for a config driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return Postgres, nil
	case config.DriverSQLite:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver: %s", driver)
	}
}
