package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/models"
	"github.com/example/seating-service/internal/store"
)

type outboxFake struct {
	events []store.OutboxEvent
	sent   []uuid.UUID
	failed []uuid.UUID
}

func (f *outboxFake) ListTables(ctx context.Context, restaurantID uuid.UUID) ([]models.Table, error) {
	return nil, nil
}

func (f *outboxFake) ListBookings(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]models.Booking, error) {
	return nil, nil
}

func (f *outboxFake) ListCombinations(ctx context.Context, restaurantID uuid.UUID) ([]models.Combination, error) {
	return nil, nil
}

func (f *outboxFake) GetBooking(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	return models.Booking{}, nil
}

func (f *outboxFake) UpdateBookingTables(ctx context.Context, bookingID uuid.UUID, tableIDs []uuid.UUID) error {
	return nil
}

func (f *outboxFake) SwapBookingTables(ctx context.Context, aID uuid.UUID, aTables []uuid.UUID, bID uuid.UUID, bTables []uuid.UUID) error {
	return nil
}

func (f *outboxFake) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status models.BookingStatus) error {
	return nil
}

func (f *outboxFake) CreateBooking(ctx context.Context, draft models.BookingDraft) (models.Booking, error) {
	return models.Booking{}, nil
}

func (f *outboxFake) LookupCustomerFlags(ctx context.Context, userID uuid.UUID) (models.CustomerFlags, error) {
	return models.CustomerFlags{}, nil
}

func (f *outboxFake) InsertOutboxEvent(ctx context.Context, ev store.OutboxEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *outboxFake) ListPendingOutbox(ctx context.Context, restaurantID uuid.UUID, limit int) ([]store.OutboxEvent, error) {
	return f.events, nil
}

func (f *outboxFake) MarkOutboxSent(ctx context.Context, eventID uuid.UUID) error {
	f.sent = append(f.sent, eventID)
	return nil
}

func (f *outboxFake) MarkOutboxFailed(ctx context.Context, eventID uuid.UUID, reason string) error {
	f.failed = append(f.failed, eventID)
	return nil
}

func TestDisplacementWritesOutbox(t *testing.T) {
	f := &outboxFake{}
	s := &Service{Store: f, RestaurantID: uuid.New()}

	bid := uuid.New()
	affected := []uuid.UUID{uuid.New(), uuid.New()}
	if err := s.Displacement(context.Background(), bid, affected, "walk-in seated"); err != nil {
		t.Fatalf("Displacement: %v", err)
	}
	if len(f.events) != 1 {
		t.Fatalf("events=%d, want 1", len(f.events))
	}
	ev := f.events[0]
	if ev.Type != EventDisplacement {
		t.Fatalf("type=%q", ev.Type)
	}
	var p DisplacementPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.BookingID != bid || len(p.AffectedBookingIDs) != 2 || p.Reason != "walk-in seated" {
		t.Fatalf("payload=%+v", p)
	}
}

func TestDispatcherDelivers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := &outboxFake{}
	s := &Service{Store: f, RestaurantID: uuid.New()}
	_ = s.Displacement(context.Background(), uuid.New(), nil, "bump")

	d := &Dispatcher{Store: f, Sender: NewClient(srv.URL), RestaurantID: s.RestaurantID, Interval: time.Minute}
	d.tick(context.Background())

	if len(f.sent) != 1 || len(f.failed) != 0 {
		t.Fatalf("sent=%d failed=%d", len(f.sent), len(f.failed))
	}
}

func TestDispatcherMarksFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"nope"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	f := &outboxFake{}
	s := &Service{Store: f, RestaurantID: uuid.New()}
	_ = s.Displacement(context.Background(), uuid.New(), nil, "bump")

	d := &Dispatcher{Store: f, Sender: NewClient(srv.URL), RestaurantID: s.RestaurantID, Interval: time.Minute}
	d.tick(context.Background())

	if len(f.failed) != 1 || len(f.sent) != 0 {
		t.Fatalf("sent=%d failed=%d", len(f.sent), len(f.failed))
	}
}
