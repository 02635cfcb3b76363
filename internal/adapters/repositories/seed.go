package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type ServiceSeed struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	IsRecurring bool    `json:"is_recurring"`
}

type CustomerSeed struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Phone  string   `json:"phone"`
	Street string   `json:"street"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
	Time   string   `json:"time"`
}

// RouteSeed describes a demo route: customers with one appointment each,
// visited in StopOrder (indexes into Customers).
type RouteSeed struct {
	RouteName string         `json:"route_name"`
	Service   ServiceSeed    `json:"service"`
	Customers []CustomerSeed `json:"customers"`
	StopOrder []int          `json:"stop_order"`
}

// Populate the database with a demo route from a JSON file for the given date.
// Existing customers and an existing route of the same name/date are reused,
// so seeding twice is harmless. Returns the route id.
func SeedFromJSON(ctx context.Context, db *sql.DB, dialect Dialect, jsonPath, date string) (int64, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed route: read %q: %w", jsonPath, err)
	}

	var data RouteSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed route: parse json: %w", err)
	}

	if strings.TrimSpace(data.RouteName) == "" {
		return 0, errors.New("seed route: route_name cannot be empty")
	}
	for i, idx := range data.StopOrder {
		if idx < 0 || idx >= len(data.Customers) {
			return 0, fmt.Errorf("seed route: stop_order[%d]=%d out of range", i, idx)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	serviceID, err := seedService(ctx, tx, dialect, data.Service)
	if err != nil {
		return 0, err
	}

	appointmentIDs := make([]int64, 0, len(data.Customers))
	for i, c := range data.Customers {
		id, err := seedCustomerAppointment(ctx, tx, dialect, c, serviceID, date)
		if err != nil {
			return 0, fmt.Errorf("seed route: customer #%d: %w", i+1, err)
		}
		appointmentIDs = append(appointmentIDs, id)
	}

	var routeID int64
	err = tx.QueryRowContext(ctx,
		dialect.Rebind(`SELECT id FROM routes WHERE name = ? AND date = ?`),
		data.RouteName, date,
	).Scan(&routeID)
	switch {
	case err == nil:
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("seed route: commit tx: %w", err)
		}
		return routeID, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("seed route: lookup route: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		dialect.Rebind(`INSERT INTO routes (name, date, status) VALUES (?, ?, 'planned') RETURNING id`),
		data.RouteName, date,
	).Scan(&routeID)
	if err != nil {
		return 0, fmt.Errorf("seed route: insert route: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, dialect.Rebind(`
	INSERT INTO route_stops (route_id, appointment_id, stop_order, status)
	VALUES (?, ?, ?, 'pending')
	`))
	if err != nil {
		return 0, fmt.Errorf("seed route: prepare stop insert: %w", err)
	}
	defer stmt.Close()

	for i, idx := range data.StopOrder {
		if _, err := stmt.ExecContext(ctx, routeID, appointmentIDs[idx], i+1); err != nil {
			return 0, fmt.Errorf("seed route: insert stop #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed route: commit tx: %w", err)
	}

	return routeID, nil
}

func seedService(ctx context.Context, tx *sql.Tx, dialect Dialect, s ServiceSeed) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, dialect.Rebind(`SELECT id FROM services WHERE name = ?`), s.Name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("seed service: lookup: %w", err)
	}

	recurring := 0
	if s.IsRecurring {
		recurring = 1
	}
	err = tx.QueryRowContext(ctx, dialect.Rebind(`
	INSERT INTO services (name, description, price, is_recurring)
	VALUES (?, ?, ?, ?)
	RETURNING id
	`), s.Name, s.Description, s.Price, recurring).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("seed service: insert: %w", err)
	}
	return id, nil
}

func seedCustomerAppointment(
	ctx context.Context,
	tx *sql.Tx,
	dialect Dialect,
	c CustomerSeed,
	serviceID int64,
	date string,
) (int64, error) {
	var customerID, addressID int64
	err := tx.QueryRowContext(ctx, dialect.Rebind(`SELECT id FROM customers WHERE email = ?`), c.Email).Scan(&customerID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, dialect.Rebind(`
		INSERT INTO customers (name, email, phone, status)
		VALUES (?, ?, ?, 'active')
		RETURNING id
		`), c.Name, c.Email, c.Phone).Scan(&customerID)
		if err != nil {
			return 0, fmt.Errorf("insert customer: %w", err)
		}

		err = tx.QueryRowContext(ctx, dialect.Rebind(`
		INSERT INTO addresses (customer_id, street, city, state, zip, lat, lng, is_primary)
		VALUES (?, ?, 'Austin', 'TX', '78701', ?, ?, 1)
		RETURNING id
		`), customerID, c.Street, c.Lat, c.Lng).Scan(&addressID)
		if err != nil {
			return 0, fmt.Errorf("insert address: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("lookup customer: %w", err)
	default:
		err = tx.QueryRowContext(ctx,
			dialect.Rebind(`SELECT id FROM addresses WHERE customer_id = ? ORDER BY id LIMIT 1`),
			customerID,
		).Scan(&addressID)
		if err != nil {
			return 0, fmt.Errorf("lookup address: %w", err)
		}
	}

	var appointmentID int64
	err = tx.QueryRowContext(ctx,
		dialect.Rebind(`SELECT id FROM appointments WHERE customer_id = ? AND scheduled_date = ?`),
		customerID, date,
	).Scan(&appointmentID)
	if err == nil {
		return appointmentID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup appointment: %w", err)
	}

	err = tx.QueryRowContext(ctx, dialect.Rebind(`
	INSERT INTO appointments (customer_id, address_id, service_id, scheduled_date, scheduled_time, status)
	VALUES (?, ?, ?, ?, ?, 'scheduled')
	RETURNING id
	`), customerID, addressID, serviceID, date, c.Time).Scan(&appointmentID)
	if err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}

	return appointmentID, nil
}
