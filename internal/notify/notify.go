// Package notify is the displacement side-channel: seating actions that
// bump reservations record an outbox event, and a background dispatcher
// delivers them to a configured webhook.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/store"
)

const EventDisplacement = "booking.displaced"

type DisplacementPayload struct {
	BookingID          uuid.UUID   `json:"booking_id"`
	AffectedBookingIDs []uuid.UUID `json:"affected_booking_ids"`
	Reason             string      `json:"reason"`
	OccurredAt         time.Time   `json:"occurred_at"`
}

// Service writes events to the outbox. Callers treat it as fire and
// forget; delivery is the dispatcher's problem.
type Service struct {
	Store        store.Store
	RestaurantID uuid.UUID

	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Displacement(ctx context.Context, bookingID uuid.UUID, affected []uuid.UUID, reason string) error {
	payload, err := json.Marshal(DisplacementPayload{
		BookingID:          bookingID,
		AffectedBookingIDs: affected,
		Reason:             reason,
		OccurredAt:         s.now(),
	})
	if err != nil {
		return err
	}
	ev := store.OutboxEvent{
		EventID:      uuid.New(),
		RestaurantID: s.RestaurantID,
		Type:         EventDisplacement,
		Payload:      payload,
	}
	if err := s.Store.InsertOutboxEvent(ctx, ev); err != nil {
		return fmt.Errorf("outbox insert: %w", err)
	}
	return nil
}
