package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"trashperson-route-service/internal/domain"
	"trashperson-route-service/internal/platform/obs"
)

// SQL-backed implementation of the RouteRepository port.
// The same queries serve SQLite and PostgreSQL; Dialect rebinds placeholders.
type SQLRouteRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLRouteRepository(db *sql.DB, dialect Dialect) *SQLRouteRepository {
	return &SQLRouteRepository{DB: db, Dialect: dialect}
}

// Ping verifies the database connection is usable.
func (r *SQLRouteRepository) Ping(ctx context.Context) error {
	if r.DB == nil {
		return errors.New("sql route repository: DB is nil")
	}
	return r.DB.PingContext(ctx)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const stopSelect = `
	SELECT
		rs.id,
		rs.route_id,
		rs.appointment_id,
		ap.address_id,
		rs.stop_order,
		rs.status,
		rs.notes,
		rs.completed_at,
		a.lat,
		a.lng,
		COALESCE(ap.scheduled_time, ''),
		c.name,
		COALESCE(c.phone, ''),
		a.street,
		COALESCE(a.city, ''),
		COALESCE(a.state, ''),
		COALESCE(a.zip, ''),
		COALESCE(s.name, '')
	FROM route_stops rs
	JOIN appointments ap ON ap.id = rs.appointment_id
	JOIN customers c ON c.id = ap.customer_id
	JOIN addresses a ON a.id = ap.address_id
	LEFT JOIN services s ON s.id = ap.service_id
	WHERE rs.route_id = ?
	ORDER BY rs.stop_order, rs.id;
	`

// Return all routes matching the filter with stop aggregates.
func (r *SQLRouteRepository) ListRoutes(ctx context.Context, filter domain.RouteFilter) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "routes.ListRoutes")(&err)

	if r.DB == nil {
		return nil, errors.New("sql route repository: DB is nil")
	}

	var where strings.Builder
	args := make([]any, 0, 3)
	if filter.Date != "" {
		where.WriteString(" AND r.date = ?")
		args = append(args, filter.Date)
	}
	if filter.AssignedTo != nil {
		where.WriteString(" AND r.assigned_to = ?")
		args = append(args, *filter.AssignedTo)
	}
	if filter.Status != "" {
		where.WriteString(" AND r.status = ?")
		args = append(args, filter.Status)
	}

	query := fmt.Sprintf(`
	SELECT
		r.id,
		r.name,
		r.date,
		r.assigned_to,
		r.status,
		r.created_at,
		COUNT(rs.id),
		COALESCE(SUM(CASE WHEN rs.status = 'completed' THEN 1 ELSE 0 END), 0)
	FROM routes r
	LEFT JOIN route_stops rs ON rs.route_id = r.id
	WHERE 1=1%s
	GROUP BY r.id, r.name, r.date, r.assigned_to, r.status, r.created_at
	ORDER BY r.date DESC, r.name;
	`, where.String())

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 16)
	for rows.Next() {
		route, err := scanRoute(rows, true)
		if err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

// Return a single route with its ordered stops.
func (r *SQLRouteRepository) GetRoute(ctx context.Context, routeID int64) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "routes.GetRoute")(&err)

	if r.DB == nil {
		return nil, errors.New("sql route repository: DB is nil")
	}

	row := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`
	SELECT id, name, date, assigned_to, status, created_at
	FROM routes
	WHERE id = ?;
	`), routeID)

	route, err := scanRoute(row, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route %d: %w", routeID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %d: scan row: %w", routeID, err)
	}

	stops, err := r.queryStops(ctx, r.DB, routeID)
	if err != nil {
		return nil, fmt.Errorf("get route %d: %w", routeID, err)
	}
	route.Stops = stops

	return route, nil
}

// Insert a route and its initial stops in one transaction.
func (r *SQLRouteRepository) CreateRoute(
	ctx context.Context,
	route *domain.Route,
	appointmentIDs []int64,
) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "routes.CreateRoute")(&err)

	if r.DB == nil {
		return nil, errors.New("sql route repository: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create route: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.checkAppointments(ctx, tx, appointmentIDs); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	status := route.Status
	if status == "" {
		status = domain.RoutePlanned
	}

	var id int64
	var created nullTime
	err = tx.QueryRowContext(ctx, r.Dialect.Rebind(`
	INSERT INTO routes (name, date, assigned_to, status)
	VALUES (?, ?, ?, ?)
	RETURNING id, created_at;
	`), route.Name, route.Date, route.AssignedTo, status).Scan(&id, &created)
	if err != nil {
		return nil, fmt.Errorf("create route: insert route: %w", err)
	}

	stops, err := r.insertStops(ctx, tx, id, 1, appointmentIDs)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create route: commit: %w", err)
	}

	return &domain.Route{
		ID:         id,
		Name:       route.Name,
		Date:       route.Date,
		AssignedTo: route.AssignedTo,
		Status:     status,
		CreatedAt:  created.Time,
		Stops:      stops,
		StopCount:  len(stops),
	}, nil
}

// Append stops after the route's current max position.
func (r *SQLRouteRepository) AddStops(ctx context.Context, routeID int64, appointmentIDs []int64) (_ []domain.Stop, err error) {
	defer obs.Time(ctx, "routes.AddStops")(&err)

	if r.DB == nil {
		return nil, errors.New("sql route repository: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("add stops: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.routeExists(ctx, tx, routeID); err != nil {
		return nil, fmt.Errorf("add stops: %w", err)
	}

	if err := r.checkAppointments(ctx, tx, appointmentIDs); err != nil {
		return nil, fmt.Errorf("add stops: %w", err)
	}

	var maxOrder int
	err = tx.QueryRowContext(ctx, r.Dialect.Rebind(`
	SELECT COALESCE(MAX(stop_order), 0) FROM route_stops WHERE route_id = ?;
	`), routeID).Scan(&maxOrder)
	if err != nil {
		return nil, fmt.Errorf("add stops: max stop_order: %w", err)
	}

	stops, err := r.insertStops(ctx, tx, routeID, maxOrder+1, appointmentIDs)
	if err != nil {
		return nil, fmt.Errorf("add stops: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("add stops: commit: %w", err)
	}

	return stops, nil
}

// Return a route's stops in position order.
func (r *SQLRouteRepository) LoadRouteStops(ctx context.Context, routeID int64) (_ []domain.Stop, err error) {
	defer obs.Time(ctx, "routes.LoadRouteStops")(&err)

	if r.DB == nil {
		return nil, errors.New("sql route repository: DB is nil")
	}

	if err := r.routeExists(ctx, r.DB, routeID); err != nil {
		return nil, fmt.Errorf("load route stops: %w", err)
	}

	stops, err := r.queryStops(ctx, r.DB, routeID)
	if err != nil {
		return nil, fmt.Errorf("load route stops: %w", err)
	}
	return stops, nil
}

// Rewrite stop positions for a route atomically.
//
// The write fails with domain.ErrConflict when the positions do not cover exactly
// the route's current stops, so a concurrent add/delete cannot leave gaps.
func (r *SQLRouteRepository) SetStopPositions(
	ctx context.Context,
	routeID int64,
	positions []domain.StopPosition,
) (err error) {
	defer obs.Time(ctx, "routes.SetStopPositions")(&err)

	if r.DB == nil {
		return errors.New("sql route repository: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set stop positions: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	err = tx.QueryRowContext(ctx, r.Dialect.Rebind(`
	SELECT COUNT(*) FROM route_stops WHERE route_id = ?;
	`), routeID).Scan(&count)
	if err != nil {
		return fmt.Errorf("set stop positions: count stops: %w", err)
	}
	if count != len(positions) {
		return fmt.Errorf(
			"set stop positions: route %d has %d stops, got %d positions: %w",
			routeID, count, len(positions), domain.ErrConflict,
		)
	}

	stmt, err := tx.PrepareContext(ctx, r.Dialect.Rebind(`
	UPDATE route_stops SET stop_order = ? WHERE id = ? AND route_id = ?;
	`))
	if err != nil {
		return fmt.Errorf("set stop positions: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		res, err := stmt.ExecContext(ctx, p.Position, p.StopID, routeID)
		if err != nil {
			return fmt.Errorf("set stop positions stop_id=%d: %w", p.StopID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("set stop positions stop_id=%d: rows affected: %w", p.StopID, err)
		}
		if n != 1 {
			return fmt.Errorf("set stop positions stop_id=%d not on route %d: %w", p.StopID, routeID, domain.ErrConflict)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set stop positions: commit: %w", err)
	}

	return nil
}

// Apply status and/or notes to a stop. Completing a stop also completes its appointment.
func (r *SQLRouteRepository) UpdateStop(ctx context.Context, routeID, stopID int64, update domain.StopUpdate) (err error) {
	defer obs.Time(ctx, "routes.UpdateStop")(&err)

	if r.DB == nil {
		return errors.New("sql route repository: DB is nil")
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *update.Status)
		if *update.Status == domain.StopCompleted {
			sets = append(sets, "completed_at = CURRENT_TIMESTAMP")
		}
	}
	if update.HasNotes() {
		var notes any
		if update.Notes != nil {
			notes = *update.Notes
		}
		sets = append(sets, "notes = ?")
		args = append(args, notes)
	}
	if len(sets) == 0 {
		return &domain.ValidationError{Reason: "no updates provided"}
	}
	args = append(args, stopID, routeID)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update stop: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`UPDATE route_stops SET %s WHERE id = ? AND route_id = ?;`, strings.Join(sets, ", "))
	res, err := tx.ExecContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update stop %d: %w", stopID, err)
	}
	if err := expectRow(res, fmt.Sprintf("stop %d on route %d", stopID, routeID)); err != nil {
		return fmt.Errorf("update stop: %w", err)
	}

	if update.Status != nil && *update.Status == domain.StopCompleted {
		_, err := tx.ExecContext(ctx, r.Dialect.Rebind(`
		UPDATE appointments SET status = 'completed'
		WHERE id = (SELECT appointment_id FROM route_stops WHERE id = ?);
		`), stopID)
		if err != nil {
			return fmt.Errorf("update stop %d: complete appointment: %w", stopID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update stop: commit: %w", err)
	}

	return nil
}

func (r *SQLRouteRepository) UpdateRouteStatus(ctx context.Context, routeID int64, status string) error {
	if r.DB == nil {
		return errors.New("sql route repository: DB is nil")
	}

	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`UPDATE routes SET status = ? WHERE id = ?;`), status, routeID)
	if err != nil {
		return fmt.Errorf("update route status %d: %w", routeID, err)
	}
	if err := expectRow(res, fmt.Sprintf("route %d", routeID)); err != nil {
		return fmt.Errorf("update route status: %w", err)
	}
	return nil
}

func (r *SQLRouteRepository) DeleteRoute(ctx context.Context, routeID int64) (err error) {
	defer obs.Time(ctx, "routes.DeleteRoute")(&err)

	if r.DB == nil {
		return errors.New("sql route repository: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete route: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM route_stops WHERE route_id = ?;`), routeID); err != nil {
		return fmt.Errorf("delete route %d: delete stops: %w", routeID, err)
	}

	res, err := tx.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM routes WHERE id = ?;`), routeID)
	if err != nil {
		return fmt.Errorf("delete route %d: %w", routeID, err)
	}
	if err := expectRow(res, fmt.Sprintf("route %d", routeID)); err != nil {
		return fmt.Errorf("delete route: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete route: commit: %w", err)
	}
	return nil
}

// Store geocoded coordinates on addresses.
func (r *SQLRouteRepository) SetAddressLocations(ctx context.Context, locations map[int64]domain.Coordinates) error {
	if r.DB == nil {
		return errors.New("sql route repository: DB is nil")
	}

	if len(locations) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set address locations: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, r.Dialect.Rebind(`UPDATE addresses SET lat = ?, lng = ? WHERE id = ?;`))
	if err != nil {
		return fmt.Errorf("set address locations: db prepare: %w", err)
	}
	defer stmt.Close()

	for id, c := range locations {
		if _, err := stmt.ExecContext(ctx, c.Lat, c.Lon, id); err != nil {
			return fmt.Errorf("set address locations address_id=%d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set address locations: commit: %w", err)
	}
	return nil
}

func (r *SQLRouteRepository) routeExists(ctx context.Context, q querier, routeID int64) error {
	var one int
	err := q.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT 1 FROM routes WHERE id = ?;`), routeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("route %d: %w", routeID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("route %d: lookup: %w", routeID, err)
	}
	return nil
}

// checkAppointments rejects duplicate or unknown appointment ids before any insert.
func (r *SQLRouteRepository) checkAppointments(ctx context.Context, q querier, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return &domain.ValidationError{Reason: fmt.Sprintf("appointment %d listed more than once", id)}
		}
		seen[id] = struct{}{}
		args = append(args, id)
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM appointments WHERE id IN (%s);`, Placeholders(len(args)))
	var found int
	if err := q.QueryRowContext(ctx, r.Dialect.Rebind(query), args...).Scan(&found); err != nil {
		return fmt.Errorf("check appointments: %w", err)
	}
	if found != len(ids) {
		return &domain.ValidationError{Reason: fmt.Sprintf("%d of %d appointments do not exist", len(ids)-found, len(ids))}
	}
	return nil
}

func (r *SQLRouteRepository) insertStops(
	ctx context.Context,
	tx *sql.Tx,
	routeID int64,
	firstPosition int,
	appointmentIDs []int64,
) ([]domain.Stop, error) {
	stops := make([]domain.Stop, 0, len(appointmentIDs))
	if len(appointmentIDs) == 0 {
		return stops, nil
	}

	stmt, err := tx.PrepareContext(ctx, r.Dialect.Rebind(`
	INSERT INTO route_stops (route_id, appointment_id, stop_order, status)
	VALUES (?, ?, ?, 'pending')
	RETURNING id;
	`))
	if err != nil {
		return nil, fmt.Errorf("insert stops: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, apptID := range appointmentIDs {
		pos := firstPosition + i
		var id int64
		if err := stmt.QueryRowContext(ctx, routeID, apptID, pos).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert stop appointment_id=%d: %w", apptID, err)
		}
		stops = append(stops, domain.Stop{
			ID:            id,
			RouteID:       routeID,
			AppointmentID: apptID,
			Position:      pos,
			Status:        domain.StopPending,
		})
	}

	return stops, nil
}

func (r *SQLRouteRepository) queryStops(ctx context.Context, q querier, routeID int64) ([]domain.Stop, error) {
	rows, err := q.QueryContext(ctx, r.Dialect.Rebind(stopSelect), routeID)
	if err != nil {
		return nil, fmt.Errorf("query route_stops table: %w", err)
	}
	defer rows.Close()

	stops := make([]domain.Stop, 0, 16)
	for rows.Next() {
		var (
			s         domain.Stop
			notes     sql.NullString
			completed nullTime
			lat, lng  sql.NullFloat64
		)
		err := rows.Scan(
			&s.ID, &s.RouteID, &s.AppointmentID, &s.AddressID, &s.Position, &s.Status,
			&notes, &completed, &lat, &lng,
			&s.ScheduledTime, &s.CustomerName, &s.CustomerPhone,
			&s.Street, &s.City, &s.State, &s.Zip, &s.ServiceName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stop row: %w", err)
		}

		if notes.Valid {
			n := notes.String
			s.Notes = &n
		}
		if completed.Valid {
			t := completed.Time
			s.CompletedAt = &t
		}
		// Only both coordinates together count as geocoded.
		if lat.Valid && lng.Valid {
			s.Location = &domain.Coordinates{Lat: lat.Float64, Lon: lng.Float64}
		}

		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stop row iteration: %w", err)
	}

	return stops, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner, withCounts bool) (*domain.Route, error) {
	var (
		route    domain.Route
		assigned sql.NullInt64
		created  nullTime
	)

	dest := []any{&route.ID, &route.Name, &route.Date, &assigned, &route.Status, &created}
	if withCounts {
		dest = append(dest, &route.StopCount, &route.CompletedCount)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if assigned.Valid {
		a := assigned.Int64
		route.AssignedTo = &a
	}
	route.CreatedAt = created.Time

	return &route, nil
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

// nullTime scans TIMESTAMP columns from either driver. pgx yields time.Time;
// SQLite may hand back text depending on how the value was written.
type nullTime struct {
	Time  time.Time
	Valid bool
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func (n *nullTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = v, true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	}
	return fmt.Errorf("nullTime: unsupported type %T", value)
}

func (n *nullTime) parse(s string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("nullTime: cannot parse %q", s)
}
