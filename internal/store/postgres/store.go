package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/db"
	"github.com/example/seating-service/internal/models"
	"github.com/example/seating-service/internal/store"
)

// Store is the pgx-backed implementation of store.Store.
type Store struct {
	db *db.DB
}

func New(d *db.DB) *Store { return &Store{db: d} }

const tableCols = `id, restaurant_id, table_number, min_capacity, max_capacity, table_type,
is_active, section_id, x_position, y_position, width, height, shape, created_at, updated_at`

func scanTable(row db.Row) (models.Table, error) {
	var t models.Table
	err := row.Scan(
		&t.ID, &t.RestaurantID, &t.TableNumber, &t.MinCapacity, &t.MaxCapacity, &t.Type,
		&t.IsActive, &t.SectionID, &t.XPosition, &t.YPosition, &t.Width, &t.Height, &t.Shape,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (s *Store) ListTables(ctx context.Context, restaurantID uuid.UUID) ([]models.Table, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+tableCols+`
FROM restaurant_tables
WHERE restaurant_id=$1
ORDER BY table_number`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const bookingCols = `id, restaurant_id, user_id, guest_name, guest_email, guest_phone, status,
booking_time, party_size, turn_time_minutes, occasion, created_at, updated_at`

func scanBooking(row db.Row) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.RestaurantID, &b.UserID, &b.GuestName, &b.GuestEmail, &b.GuestPhone, &b.Status,
		&b.BookingTime, &b.PartySize, &b.TurnMinutes, &b.Occasion, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (s *Store) ListBookings(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]models.Booking, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+bookingCols+`
FROM bookings
WHERE restaurant_id=$1 AND booking_time >= $2 AND booking_time < $3
ORDER BY booking_time`, restaurantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Booking
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		b.Tables = []models.Table{}
		out = append(out, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	linked, err := s.tablesForBookings(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if ts, ok := linked[out[i].ID]; ok {
			out[i].Tables = ts
		}
	}
	return out, nil
}

func (s *Store) tablesForBookings(ctx context.Context, bookingIDs []uuid.UUID) (map[uuid.UUID][]models.Table, error) {
	rows, err := s.db.Query(ctx, `
SELECT bt.booking_id, t.id, t.restaurant_id, t.table_number, t.min_capacity, t.max_capacity,
       t.table_type, t.is_active, t.section_id, t.x_position, t.y_position, t.width, t.height,
       t.shape, t.created_at, t.updated_at
FROM booking_tables bt
JOIN restaurant_tables t ON t.id = bt.table_id
WHERE bt.booking_id = ANY($1)`, bookingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.Table)
	for rows.Next() {
		var bid uuid.UUID
		var t models.Table
		if err := rows.Scan(
			&bid, &t.ID, &t.RestaurantID, &t.TableNumber, &t.MinCapacity, &t.MaxCapacity,
			&t.Type, &t.IsActive, &t.SectionID, &t.XPosition, &t.YPosition, &t.Width, &t.Height,
			&t.Shape, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out[bid] = append(out[bid], t)
	}
	return out, rows.Err()
}

func (s *Store) ListCombinations(ctx context.Context, restaurantID uuid.UUID) ([]models.Combination, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, restaurant_id, table_a_id, table_b_id, combined_capacity
FROM table_combinations
WHERE restaurant_id=$1`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Combination
	for rows.Next() {
		var c models.Combination
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.TableAID, &c.TableBID, &c.CombinedCapacity); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, `
SELECT `+bookingCols+`
FROM bookings
WHERE id=$1`, id))
	if err != nil {
		return models.Booking{}, db.WrapNotFound(err)
	}
	b.Tables = []models.Table{}
	linked, err := s.tablesForBookings(ctx, []uuid.UUID{b.ID})
	if err != nil {
		return models.Booking{}, err
	}
	if ts, ok := linked[b.ID]; ok {
		b.Tables = ts
	}
	return b, nil
}

func setTablesTx(ctx context.Context, tx db.Tx, bookingID uuid.UUID, tableIDs []uuid.UUID) error {
	if err := tx.Exec(ctx, `DELETE FROM booking_tables WHERE booking_id=$1`, bookingID); err != nil {
		return err
	}
	for _, tid := range tableIDs {
		if err := tx.Exec(ctx, `INSERT INTO booking_tables(booking_id, table_id) VALUES ($1,$2)`, bookingID, tid); err != nil {
			return err
		}
	}
	return tx.Exec(ctx, `UPDATE bookings SET updated_at=now() WHERE id=$1`, bookingID)
}

func (s *Store) UpdateBookingTables(ctx context.Context, bookingID uuid.UUID, tableIDs []uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx db.Tx) error {
		return setTablesTx(ctx, tx, bookingID, tableIDs)
	})
}

// SwapBookingTables runs both reassignments in one transaction so a swap is
// never half applied.
func (s *Store) SwapBookingTables(ctx context.Context, aID uuid.UUID, aTables []uuid.UUID, bID uuid.UUID, bTables []uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx db.Tx) error {
		if err := setTablesTx(ctx, tx, aID, aTables); err != nil {
			return err
		}
		return setTablesTx(ctx, tx, bID, bTables)
	})
}

func (s *Store) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status models.BookingStatus) error {
	return s.db.Exec(ctx, `UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1`, bookingID, status)
}

func (s *Store) CreateBooking(ctx context.Context, draft models.BookingDraft) (models.Booking, error) {
	id := uuid.New()
	err := s.db.WithTx(ctx, func(tx db.Tx) error {
		turn := draft.TurnMinutes
		if turn <= 0 {
			turn = models.DefaultTurnMinutes
		}
		if err := tx.Exec(ctx, `
INSERT INTO bookings(id, restaurant_id, user_id, guest_name, guest_email, guest_phone, status,
                     booking_time, party_size, turn_time_minutes, occasion)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			id, draft.RestaurantID, draft.UserID, draft.GuestName, draft.GuestEmail, draft.GuestPhone,
			draft.Status, draft.BookingTime, draft.PartySize, turn, draft.Occasion,
		); err != nil {
			return err
		}
		return setTablesTx(ctx, tx, id, draft.TableIDs)
	})
	if err != nil {
		return models.Booking{}, err
	}
	return s.GetBooking(ctx, id)
}

// LookupCustomerFlags returns zero-value flags for customers with no record.
func (s *Store) LookupCustomerFlags(ctx context.Context, userID uuid.UUID) (models.CustomerFlags, error) {
	var f models.CustomerFlags
	err := s.db.QueryRow(ctx, `
SELECT user_id, vip_status, blacklisted, notes
FROM customers
WHERE user_id=$1`, userID).Scan(&f.UserID, &f.VIP, &f.Blacklisted, &f.Notes)
	if err != nil {
		if db.IsNotFound(err) {
			return models.CustomerFlags{UserID: userID}, nil
		}
		return models.CustomerFlags{}, err
	}
	return f, nil
}

func (s *Store) InsertOutboxEvent(ctx context.Context, ev store.OutboxEvent) error {
	return s.db.Exec(ctx, `
INSERT INTO notification_outbox(event_id, restaurant_id, event_type, payload)
VALUES ($1,$2,$3,$4)`, ev.EventID, ev.RestaurantID, ev.Type, ev.Payload)
}

func (s *Store) ListPendingOutbox(ctx context.Context, restaurantID uuid.UUID, limit int) ([]store.OutboxEvent, error) {
	rows, err := s.db.Query(ctx, `
SELECT event_id, restaurant_id, event_type, payload, status, attempts, created_at
FROM notification_outbox
WHERE restaurant_id=$1 AND status='pending'
ORDER BY created_at
LIMIT $2`, restaurantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.OutboxEvent
	for rows.Next() {
		var ev store.OutboxEvent
		if err := rows.Scan(&ev.EventID, &ev.RestaurantID, &ev.Type, &ev.Payload, &ev.Status, &ev.Attempts, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) MarkOutboxSent(ctx context.Context, eventID uuid.UUID) error {
	return s.db.Exec(ctx, `
UPDATE notification_outbox SET status='sent', sent_at=now(), attempts=attempts+1
WHERE event_id=$1`, eventID)
}

func (s *Store) MarkOutboxFailed(ctx context.Context, eventID uuid.UUID, reason string) error {
	return s.db.Exec(ctx, `
UPDATE notification_outbox SET attempts=attempts+1, last_error=$2,
       status = CASE WHEN attempts+1 >= 3 THEN 'failed' ELSE 'pending' END
WHERE event_id=$1`, eventID, reason)
}
