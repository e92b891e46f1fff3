// Package intake handles new walk-in requests: validation, conflict
// surfacing, and the confirmed create-and-seat path. A walk-in is never
// seated over a reservation without the conflict having been shown and
// explicitly accepted.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/executor"
	"github.com/example/seating-service/internal/models"
	"github.com/example/seating-service/internal/seating"
	"github.com/example/seating-service/internal/store"
)

// States of a walk-in draft. Drafting -> ConflictCheck -> Confirmed or
// Cancelled; a confirmed walk-in is then seated through the executor.
type State string

const (
	StateDrafting      State = "drafting"
	StateConflictCheck State = "conflict_check"
	StateConfirmed     State = "confirmed"
	StateCancelled     State = "cancelled"
	StateSeated        State = "seated"
)

// ErrConfirmRequired: the draft has conflicts (or an unusual selection) and
// must go through the explicit confirmation step.
var ErrConfirmRequired = errors.New("walk-in requires confirmation")

type Draft struct {
	UserID     *uuid.UUID  `json:"user_id,omitempty"`
	GuestName  string      `json:"guest_name"`
	GuestEmail string      `json:"guest_email,omitempty"`
	GuestPhone string      `json:"guest_phone,omitempty"`
	PartySize  int         `json:"party_size"`
	TableIDs   []uuid.UUID `json:"table_ids"`
	Occasion   string      `json:"occasion,omitempty"`
}

func (d Draft) Validate() error {
	if d.UserID == nil && strings.TrimSpace(d.GuestName) == "" {
		return fmt.Errorf("guest name or customer required")
	}
	if d.PartySize < 1 {
		return fmt.Errorf("party_size must be >= 1")
	}
	if len(d.TableIDs) == 0 {
		return fmt.Errorf("no tables selected")
	}
	return nil
}

// Report describes exactly what a confirmation would accept.
type Report struct {
	State     State            `json:"state"`
	Reasons   []string         `json:"reasons,omitempty"`
	Displaced []models.Booking `json:"displaced,omitempty"`
}

func (r Report) RequiresConfirmation() bool {
	return len(r.Reasons) > 0
}

// Notifier is the fire-and-forget displacement side-channel.
type Notifier interface {
	Displacement(ctx context.Context, bookingID uuid.UUID, affected []uuid.UUID, reason string) error
}

type Intake struct {
	Store        store.Store
	Exec         *executor.Executor
	Notify       Notifier
	RestaurantID uuid.UUID
	Lookahead    time.Duration

	Now func() time.Time
}

func (i *Intake) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Intake) lookahead() time.Duration {
	if i.Lookahead > 0 {
		return i.Lookahead
	}
	return seating.DefaultLookahead
}

// Check runs the conflict check for a draft without mutating anything.
func (i *Intake) Check(ctx context.Context, d Draft) (Report, error) {
	if err := d.Validate(); err != nil {
		return Report{}, err
	}

	now := i.now()
	tables, err := i.Store.ListTables(ctx, i.RestaurantID)
	if err != nil {
		return Report{}, fmt.Errorf("list tables: %w", err)
	}
	bookings, err := i.Store.ListBookings(ctx, i.RestaurantID, now.Add(-12*time.Hour), now.Add(i.lookahead()))
	if err != nil {
		return Report{}, fmt.Errorf("list bookings: %w", err)
	}
	idx := seating.BuildStatusIndex(tables, bookings, now, i.lookahead())

	rep := Report{State: StateConflictCheck}
	capacity := 0
	for _, tid := range d.TableIDs {
		st, ok := idx[tid]
		if !ok {
			return Report{}, fmt.Errorf("unknown table %s", tid)
		}
		if !st.Table.IsActive {
			return Report{}, fmt.Errorf("table %s is not active", st.Table.TableNumber)
		}
		capacity += st.Table.MaxCapacity
		if len(st.PresentBookings) > 0 {
			occ := st.PresentBookings[0]
			return Report{}, fmt.Errorf("table %s is occupied by %s", st.Table.TableNumber, occ.GuestLabel())
		}
		for _, fb := range st.UpcomingBookings {
			rep.Reasons = append(rep.Reasons,
				fmt.Sprintf("table %s is reserved by %s at %s",
					st.Table.TableNumber, fb.GuestLabel(), fb.BookingTime.Format("15:04")))
			rep.Displaced = append(rep.Displaced, fb)
		}
	}

	if capacity < d.PartySize {
		rep.Reasons = append(rep.Reasons,
			fmt.Sprintf("selected capacity %d is below party size %d", capacity, d.PartySize))
	}
	if len(d.TableIDs) > 1 {
		rep.Reasons = append(rep.Reasons,
			fmt.Sprintf("%d tables selected for one party", len(d.TableIDs)))
	}

	if !rep.RequiresConfirmation() {
		rep.State = StateConfirmed
	}
	return rep, nil
}

// Create runs the draft through the state machine. Drafts whose conflict
// check raised reasons are rejected with ErrConfirmRequired unless the
// caller passes confirmed=true; the report tells the caller what they would
// be accepting. On success the walk-in booking exists with status arrived
// and its tables attached, and any displaced reservations have been bumped.
func (i *Intake) Create(ctx context.Context, d Draft, confirmed bool) (models.Booking, Report, error) {
	rep, err := i.Check(ctx, d)
	if err != nil {
		return models.Booking{}, Report{}, err
	}
	if rep.RequiresConfirmation() && !confirmed {
		return models.Booking{}, rep, ErrConfirmRequired
	}

	// bump displaced reservations first, in the order they were reported
	for _, fb := range rep.Displaced {
		if err := i.Exec.Clear(ctx, fb.ID); err != nil {
			return models.Booking{}, rep, fmt.Errorf("bump %s: %w", fb.GuestLabel(), err)
		}
	}

	draft := models.BookingDraft{
		RestaurantID: i.RestaurantID,
		UserID:       d.UserID,
		GuestName:    strings.TrimSpace(d.GuestName),
		GuestEmail:   strings.TrimSpace(d.GuestEmail),
		GuestPhone:   strings.TrimSpace(d.GuestPhone),
		Status:       models.StatusArrived,
		BookingTime:  i.now(),
		PartySize:    d.PartySize,
		Occasion:     d.Occasion,
		TableIDs:     d.TableIDs,
	}
	if err := draft.Validate(); err != nil {
		return models.Booking{}, rep, err
	}

	b, err := i.Store.CreateBooking(ctx, draft)
	if err != nil {
		return models.Booking{}, rep, fmt.Errorf("create walk-in: %w", err)
	}
	rep.State = StateConfirmed

	if len(rep.Displaced) > 0 && i.Notify != nil {
		affected := make([]uuid.UUID, 0, len(rep.Displaced))
		for _, fb := range rep.Displaced {
			affected = append(affected, fb.ID)
		}
		// fire and forget; a failed notification never unwinds the seating
		if err := i.Notify.Displacement(ctx, b.ID, affected, "walk-in seated"); err != nil {
			log.Printf("intake: displacement notification failed: %v", err)
		}
	}

	return b, rep, nil
}

// Seat moves a confirmed walk-in onto its tables through the executor,
// which re-validates occupancy at call time.
func (i *Intake) Seat(ctx context.Context, bookingID uuid.UUID) error {
	return i.Exec.CheckIn(ctx, bookingID, nil)
}
