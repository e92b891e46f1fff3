package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/executor"
	"github.com/example/seating-service/internal/models"
	"github.com/example/seating-service/internal/store"
)

var testNow = time.Date(2025, 6, 14, 19, 0, 0, 0, time.UTC)

type fakeStore struct {
	tables   []models.Table
	bookings map[uuid.UUID]*models.Booking
}

func newFake(tables []models.Table, bookings ...*models.Booking) *fakeStore {
	f := &fakeStore{tables: tables, bookings: map[uuid.UUID]*models.Booking{}}
	for _, b := range bookings {
		f.bookings[b.ID] = b
	}
	return f
}

func (f *fakeStore) ListTables(ctx context.Context, restaurantID uuid.UUID) ([]models.Table, error) {
	return f.tables, nil
}

func (f *fakeStore) ListBookings(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeStore) ListCombinations(ctx context.Context, restaurantID uuid.UUID) ([]models.Combination, error) {
	return nil, nil
}

func (f *fakeStore) GetBooking(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return models.Booking{}, fmt.Errorf("booking not found")
	}
	return *b, nil
}

func (f *fakeStore) tableByID(id uuid.UUID) (models.Table, bool) {
	for _, t := range f.tables {
		if t.ID == id {
			return t, true
		}
	}
	return models.Table{}, false
}

func (f *fakeStore) UpdateBookingTables(ctx context.Context, bookingID uuid.UUID, tableIDs []uuid.UUID) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking not found")
	}
	b.Tables = nil
	for _, tid := range tableIDs {
		if t, ok := f.tableByID(tid); ok {
			b.Tables = append(b.Tables, t)
		}
	}
	return nil
}

func (f *fakeStore) SwapBookingTables(ctx context.Context, aID uuid.UUID, aTables []uuid.UUID, bID uuid.UUID, bTables []uuid.UUID) error {
	if err := f.UpdateBookingTables(ctx, aID, aTables); err != nil {
		return err
	}
	return f.UpdateBookingTables(ctx, bID, bTables)
}

func (f *fakeStore) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status models.BookingStatus) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking not found")
	}
	b.Status = status
	return nil
}

func (f *fakeStore) CreateBooking(ctx context.Context, draft models.BookingDraft) (models.Booking, error) {
	b := &models.Booking{
		ID:          uuid.New(),
		GuestName:   draft.GuestName,
		Status:      draft.Status,
		BookingTime: draft.BookingTime,
		PartySize:   draft.PartySize,
	}
	for _, tid := range draft.TableIDs {
		if t, ok := f.tableByID(tid); ok {
			b.Tables = append(b.Tables, t)
		}
	}
	f.bookings[b.ID] = b
	return *b, nil
}

func (f *fakeStore) LookupCustomerFlags(ctx context.Context, userID uuid.UUID) (models.CustomerFlags, error) {
	return models.CustomerFlags{UserID: userID}, nil
}

func (f *fakeStore) InsertOutboxEvent(ctx context.Context, ev store.OutboxEvent) error { return nil }

func (f *fakeStore) ListPendingOutbox(ctx context.Context, restaurantID uuid.UUID, limit int) ([]store.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeStore) MarkOutboxSent(ctx context.Context, eventID uuid.UUID) error { return nil }

func (f *fakeStore) MarkOutboxFailed(ctx context.Context, eventID uuid.UUID, reason string) error {
	return nil
}

type fakeNotifier struct {
	bookingID uuid.UUID
	affected  []uuid.UUID
	calls     int
}

func (n *fakeNotifier) Displacement(ctx context.Context, bookingID uuid.UUID, affected []uuid.UUID, reason string) error {
	n.bookingID = bookingID
	n.affected = affected
	n.calls++
	return nil
}

func mkTable(number string, maxCap int) models.Table {
	return models.Table{
		ID:          uuid.New(),
		TableNumber: number,
		MinCapacity: 1,
		MaxCapacity: maxCap,
		IsActive:    true,
	}
}

func newIntake(f *fakeStore) (*Intake, *fakeNotifier) {
	rid := uuid.New()
	nowFn := func() time.Time { return testNow }
	n := &fakeNotifier{}
	return &Intake{
		Store:        f,
		Exec:         &executor.Executor{Store: f, RestaurantID: rid, Now: nowFn},
		Notify:       n,
		RestaurantID: rid,
		Now:          nowFn,
	}, n
}

func TestWalkInClean(t *testing.T) {
	a := mkTable("A", 4)
	f := newFake([]models.Table{a})
	in, n := newIntake(f)

	b, rep, err := in.Create(context.Background(), Draft{GuestName: "Ada", PartySize: 2, TableIDs: []uuid.UUID{a.ID}}, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rep.RequiresConfirmation() {
		t.Fatalf("clean walk-in should not need confirmation: %v", rep.Reasons)
	}
	if b.Status != models.StatusArrived {
		t.Fatalf("status=%s, want arrived", b.Status)
	}
	if len(b.Tables) != 1 || b.Tables[0].ID != a.ID {
		t.Fatalf("tables=%v", b.Tables)
	}
	if n.calls != 0 {
		t.Fatal("no displacement, no notification")
	}
}

func TestWalkInConflictGating(t *testing.T) {
	a := mkTable("A", 4)
	upcoming := &models.Booking{ID: uuid.New(), GuestName: "Res", Status: models.StatusConfirmed,
		BookingTime: testNow.Add(60 * time.Minute), PartySize: 2, Tables: []models.Table{a}}
	f := newFake([]models.Table{a}, upcoming)
	in, n := newIntake(f)

	d := Draft{GuestName: "Walk", PartySize: 2, TableIDs: []uuid.UUID{a.ID}}
	_, rep, err := in.Create(context.Background(), d, false)
	if !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("want ErrConfirmRequired, got %v", err)
	}
	if len(rep.Displaced) != 1 || rep.Displaced[0].ID != upcoming.ID {
		t.Fatalf("report must list the displaced reservation: %v", rep.Displaced)
	}
	if len(rep.Reasons) == 0 || !strings.Contains(rep.Reasons[0], "Res") {
		t.Fatalf("reasons must name the displaced guest: %v", rep.Reasons)
	}
	if len(upcoming.Tables) != 1 {
		t.Fatal("nothing may be mutated before confirmation")
	}

	b, _, err := in.Create(context.Background(), d, true)
	if err != nil {
		t.Fatalf("confirmed Create: %v", err)
	}
	if len(upcoming.Tables) != 0 {
		t.Fatal("displaced reservation must be bumped on confirm")
	}
	if n.calls != 1 || n.bookingID != b.ID || len(n.affected) != 1 || n.affected[0] != upcoming.ID {
		t.Fatalf("displacement notification missing or wrong: %+v", n)
	}
}

func TestWalkInCapacityInsufficient(t *testing.T) {
	a := mkTable("A", 4)
	f := newFake([]models.Table{a})
	in, _ := newIntake(f)

	d := Draft{GuestName: "Big", PartySize: 6, TableIDs: []uuid.UUID{a.ID}}
	_, rep, err := in.Create(context.Background(), d, false)
	if !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("capacity-short walk-in must route through confirmation, got %v", err)
	}
	found := false
	for _, r := range rep.Reasons {
		if strings.Contains(r, "below party size") {
			found = true
		}
	}
	if !found {
		t.Fatalf("capacity reason missing: %v", rep.Reasons)
	}

	if _, _, err := in.Create(context.Background(), d, true); err != nil {
		t.Fatalf("confirmed capacity-short Create: %v", err)
	}
}

func TestWalkInMultiTableNeedsConfirm(t *testing.T) {
	a := mkTable("A", 2)
	b := mkTable("B", 2)
	f := newFake([]models.Table{a, b})
	in, _ := newIntake(f)

	d := Draft{GuestName: "Group", PartySize: 4, TableIDs: []uuid.UUID{a.ID, b.ID}}
	if _, _, err := in.Create(context.Background(), d, false); !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("multi-table selection must route through confirmation, got %v", err)
	}
}

func TestWalkInOccupiedTableRejected(t *testing.T) {
	a := mkTable("A", 4)
	occ := &models.Booking{ID: uuid.New(), GuestName: "Occ", Status: models.StatusSeated,
		BookingTime: testNow.Add(-30 * time.Minute), PartySize: 2, Tables: []models.Table{a}}
	f := newFake([]models.Table{a}, occ)
	in, _ := newIntake(f)

	d := Draft{GuestName: "Walk", PartySize: 2, TableIDs: []uuid.UUID{a.ID}}
	if _, _, err := in.Create(context.Background(), d, true); err == nil {
		t.Fatal("an occupied table is a hard error, not a confirmable conflict")
	}
}

func TestDraftValidation(t *testing.T) {
	cases := []Draft{
		{PartySize: 2, TableIDs: []uuid.UUID{uuid.New()}}, // no guest identity
		{GuestName: "X", PartySize: 0, TableIDs: []uuid.UUID{uuid.New()}},
		{GuestName: "X", PartySize: 2}, // no tables
	}
	in, _ := newIntake(newFake(nil))
	for i, d := range cases {
		if _, err := in.Check(context.Background(), d); err == nil {
			t.Fatalf("case %d: invalid draft must be rejected before any store call", i)
		}
	}
}

func TestWalkInSeat(t *testing.T) {
	a := mkTable("A", 4)
	f := newFake([]models.Table{a})
	in, _ := newIntake(f)

	b, _, err := in.Create(context.Background(), Draft{GuestName: "Ada", PartySize: 2, TableIDs: []uuid.UUID{a.ID}}, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := in.Seat(context.Background(), b.ID); err != nil {
		t.Fatalf("Seat: %v", err)
	}
	got, _ := f.GetBooking(context.Background(), b.ID)
	if got.Status != models.StatusSeated {
		t.Fatalf("status=%s, want seated", got.Status)
	}
}
