package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/models"
)

// ErrPartialApplied is returned by a Store whose SwapBookingTables could
// not keep both sides together. Transactional implementations never return
// it, but the interface does not promise a transactional backend.
var ErrPartialApplied = errors.New("swap partially applied")

type OutboxEvent struct {
	EventID      uuid.UUID       `json:"event_id"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	Status       string          `json:"status"`
	Attempts     int             `json:"attempts"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Store interface {
	ListTables(ctx context.Context, restaurantID uuid.UUID) ([]models.Table, error)
	ListBookings(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]models.Booking, error)
	ListCombinations(ctx context.Context, restaurantID uuid.UUID) ([]models.Combination, error)
	GetBooking(ctx context.Context, id uuid.UUID) (models.Booking, error)

	// UpdateBookingTables replaces a booking's table set; an empty slice
	// clears the assignment.
	UpdateBookingTables(ctx context.Context, bookingID uuid.UUID, tableIDs []uuid.UUID) error

	// SwapBookingTables applies both reassignments as one unit.
	SwapBookingTables(ctx context.Context, aID uuid.UUID, aTables []uuid.UUID, bID uuid.UUID, bTables []uuid.UUID) error

	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status models.BookingStatus) error
	CreateBooking(ctx context.Context, draft models.BookingDraft) (models.Booking, error)
	LookupCustomerFlags(ctx context.Context, userID uuid.UUID) (models.CustomerFlags, error)

	InsertOutboxEvent(ctx context.Context, ev OutboxEvent) error
	ListPendingOutbox(ctx context.Context, restaurantID uuid.UUID, limit int) ([]OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, eventID uuid.UUID) error
	MarkOutboxFailed(ctx context.Context, eventID uuid.UUID, reason string) error
}
