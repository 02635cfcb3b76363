package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the database schema for the given dialect.
// Statements are idempotent so this runs on every startup.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == Postgres {
		pk = "BIGSERIAL PRIMARY KEY"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCustomersQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS customers (
		id %s,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		phone TEXT,
		status TEXT NOT NULL DEFAULT 'active'
	);
	`, pk)

	createAddressesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS addresses (
		id %s,
		customer_id BIGINT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		street TEXT NOT NULL,
		city TEXT,
		state TEXT,
		zip TEXT,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		is_primary INTEGER NOT NULL DEFAULT 0
	);
	`, pk)

	createServicesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS services (
		id %s,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_recurring INTEGER NOT NULL DEFAULT 0
	);
	`, pk)

	createAppointmentsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS appointments (
		id %s,
		customer_id BIGINT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		address_id BIGINT NOT NULL REFERENCES addresses(id),
		service_id BIGINT REFERENCES services(id),
		scheduled_date TEXT NOT NULL,
		scheduled_time TEXT,
		status TEXT NOT NULL DEFAULT 'scheduled'
	);
	`, pk)

	createRoutesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS routes (
		id %s,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		assigned_to BIGINT,
		status TEXT NOT NULL DEFAULT 'planned',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`, pk)

	// stop_order is deliberately not UNIQUE per route: positions are rewritten
	// row by row inside one transaction.
	createRouteStopsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS route_stops (
		id %s,
		route_id BIGINT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		appointment_id BIGINT NOT NULL REFERENCES appointments(id),
		stop_order INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT,
		completed_at TIMESTAMP
	);
	`, pk)

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_stops_route_order
	ON route_stops(route_id, stop_order);
	`

	statements := []string{
		createCustomersQuery,
		createAddressesQuery,
		createServicesQuery,
		createAppointmentsQuery,
		createRoutesQuery,
		createRouteStopsQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
