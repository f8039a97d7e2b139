package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eatopia/internal/logger"
	"eatopia/internal/models"
)

// createTestDB opens a migrated sqlite database in a temp dir.
func createTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(context.Background(), SQLite, "file:"+path+"?_foreign_keys=on", logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations(context.Background()))
	return db
}

func acquire(t *testing.T, db *DB) *Gateway {
	t.Helper()
	gw, err := db.Acquire(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })
	return gw
}

func countRows(t *testing.T, gw *Gateway, table string) int {
	t.Helper()
	var n int
	require.NoError(t, gw.conn.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := createTestDB(t)
	require.NoError(t, db.RunMigrations(context.Background()))
	assert.Equal(t, "sqlite3", db.Dialect().Name)

	gw := acquire(t, db)
	assert.Equal(t, 9, countRows(t, gw, "food_items"))
	assert.Equal(t, 2, countRows(t, gw, "schema_migrations"))
}

func TestEmbeddedMigrationsPerDialect(t *testing.T) {
	pg, err := getMigrationFiles(migrationsFS, "migrations/postgres")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_schema.sql", "002_procedures.sql", "003_menu.sql"}, pg)

	lite, err := getMigrationFiles(migrationsFS, "migrations/sqlite3")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_schema.sql", "002_menu.sql"}, lite)
}

func TestNextOrderIDStartsAtOne(t *testing.T) {
	gw := acquire(t, createTestDB(t))

	id, err := gw.NextOrderID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestNextOrderIDDoesNotReserve(t *testing.T) {
	ctx := context.Background()
	gw := acquire(t, createTestDB(t))

	for i := 0; i < 2; i++ {
		id, err := gw.NextOrderID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, id)
	}

	saved, err := gw.SaveOrder(ctx, models.NewOrder(models.OrderItem{Name: "Pizza", Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
}

func TestSaveOrderMixedCaseNames(t *testing.T) {
	ctx := context.Background()
	gw := acquire(t, createTestDB(t))

	order := models.NewOrder(models.OrderItem{Name: "Pizza", Quantity: 1})
	order.Merge(models.NewOrder(models.OrderItem{Name: "pizza", Quantity: 2}))

	id, err := gw.SaveOrder(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, gw, "orders"))

	total, err := gw.GetTotalOrderPrice(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 16.0, total, 0.001)
}

func TestSaveOrder(t *testing.T) {
	ctx := context.Background()
	gw := acquire(t, createTestDB(t))

	order := models.NewOrder(
		models.OrderItem{Name: "Pizza", Quantity: 2},
		models.OrderItem{Name: "mango lassi", Quantity: 1},
	)
	id, err := gw.SaveOrder(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	assert.Equal(t, 2, countRows(t, gw, "orders"))
	assert.Equal(t, 1, countRows(t, gw, "order_tracking"))

	status, ok, err := gw.GetOrderStatus(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "in progress", status)

	total, err := gw.GetTotalOrderPrice(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 21.0, total, 0.001)

	next, err := gw.NextOrderID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	second, err := gw.SaveOrder(ctx, models.NewOrder(models.OrderItem{Name: "Samosa", Quantity: 3}))
	require.NoError(t, err)
	assert.Equal(t, 2, second)
}

func TestSaveOrderRollsBackOnUnknownItem(t *testing.T) {
	ctx := context.Background()
	gw := acquire(t, createTestDB(t))

	order := models.NewOrder(
		models.OrderItem{Name: "Pizza", Quantity: 2},
		models.OrderItem{Name: "Sushi", Quantity: 1},
	)
	_, err := gw.SaveOrder(ctx, order)
	require.ErrorIs(t, err, ErrInsertItem)
	assert.Contains(t, err.Error(), `"Sushi"`)

	assert.Equal(t, 0, countRows(t, gw, "orders"))
	assert.Equal(t, 0, countRows(t, gw, "order_tracking"))

	next, err := gw.NextOrderID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestSaveOrderRejectsEmptyOrder(t *testing.T) {
	gw := acquire(t, createTestDB(t))

	_, err := gw.SaveOrder(context.Background(), models.Order{})
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestInsertOrderItem(t *testing.T) {
	ctx := context.Background()
	gw := acquire(t, createTestDB(t))

	require.NoError(t, gw.InsertOrderItem(ctx, "Vada Pav", 3, 7))
	assert.Equal(t, 1, countRows(t, gw, "orders"))

	err := gw.InsertOrderItem(ctx, "Burrito", 1, 7)
	assert.ErrorIs(t, err, ErrInsertItem)
	assert.Equal(t, 1, countRows(t, gw, "orders"))

	total, err := gw.GetTotalOrderPrice(ctx, 7)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, total, 0.001)
}

func TestInsertOrderTrackingAndStatus(t *testing.T) {
	ctx := context.Background()
	gw := acquire(t, createTestDB(t))

	require.NoError(t, gw.InsertOrderTracking(ctx, 40, "delivered"))

	status, ok, err := gw.GetOrderStatus(ctx, 40)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "delivered", status)

	_, ok, err = gw.GetOrderStatus(ctx, 41)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetTotalOrderPriceUnknownOrder(t *testing.T) {
	gw := acquire(t, createTestDB(t))

	total, err := gw.GetTotalOrderPrice(context.Background(), 999)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAcquireReleasesConnection(t *testing.T) {
	db := createTestDB(t)

	for i := 0; i < 3; i++ {
		gw, err := db.Acquire(context.Background())
		require.NoError(t, err)
		require.NoError(t, gw.Close())
	}
	require.NoError(t, db.Ping(context.Background()))
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "pgx", d.DriverName)

	d, err = DialectFor("sqlite3")
	require.NoError(t, err)
	assert.True(t, d.SingleWriter)

	_, err = DialectFor("mysql")
	assert.Error(t, err)
}
