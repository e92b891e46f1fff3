// Package executor applies chosen seating strategies as store mutations.
// Occupancy is re-validated from a fresh snapshot at commit time; the index
// computed for option display is never trusted across the confirm gap.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/models"
	"github.com/example/seating-service/internal/seating"
	"github.com/example/seating-service/internal/store"
)

var (
	// ErrTablesConflict: a table became occupied between option
	// generation and commit. Recompute options and retry.
	ErrTablesConflict = errors.New("tables no longer available")

	// ErrSwapInconsistent: one half of a swap applied and the other did
	// not. Needs manual reconciliation, never silently swallowed.
	ErrSwapInconsistent = errors.New("swap left in inconsistent state")

	// ErrConfirmRequired: the request needs an explicit confirmation
	// (capacity below party size) before it may proceed.
	ErrConfirmRequired = errors.New("confirmation required")
)

type Executor struct {
	Store        store.Store
	RestaurantID uuid.UUID
	Lookahead    time.Duration

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Executor) lookahead() time.Duration {
	if e.Lookahead > 0 {
		return e.Lookahead
	}
	return seating.DefaultLookahead
}

// freshIndex re-reads the floor and derives occupancy at call time.
func (e *Executor) freshIndex(ctx context.Context) (seating.StatusIndex, error) {
	now := e.now()
	tables, err := e.Store.ListTables(ctx, e.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	bookings, err := e.Store.ListBookings(ctx, e.RestaurantID, now.Add(-12*time.Hour), now.Add(e.lookahead()))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return seating.BuildStatusIndex(tables, bookings, now, e.lookahead()), nil
}

// checkOccupancy fails with ErrTablesConflict if any of the tables is held
// by a physically-present booking other than b.
func checkOccupancy(idx seating.StatusIndex, tableIDs []uuid.UUID, b models.Booking) error {
	for _, tid := range tableIDs {
		st, ok := idx[tid]
		if !ok {
			continue
		}
		for _, occ := range st.PresentBookings {
			if occ.ID == b.ID {
				continue
			}
			return fmt.Errorf("table %s is occupied by %s: %w",
				st.Table.TableNumber, occ.GuestLabel(), ErrTablesConflict)
		}
	}
	return nil
}

// Assign attaches a table set to a booking. Capacity below party size is
// refused unless confirmed; occupancy is re-checked at commit time.
func (e *Executor) Assign(ctx context.Context, bookingID uuid.UUID, tableIDs []uuid.UUID, confirmed bool) error {
	if len(tableIDs) == 0 {
		return fmt.Errorf("no tables selected for booking %s", bookingID)
	}
	b, err := e.Store.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("booking %s: %w", bookingID, err)
	}

	idx, err := e.freshIndex(ctx)
	if err != nil {
		return err
	}

	capacity := 0
	for _, tid := range tableIDs {
		st, ok := idx[tid]
		if !ok {
			return fmt.Errorf("unknown table %s", tid)
		}
		if !st.Table.IsActive {
			return fmt.Errorf("table %s is not active", st.Table.TableNumber)
		}
		capacity += st.Table.MaxCapacity
	}
	if capacity < b.PartySize && !confirmed {
		return fmt.Errorf("capacity %d below party size %d for %s: %w",
			capacity, b.PartySize, b.GuestLabel(), ErrConfirmRequired)
	}

	if err := checkOccupancy(idx, tableIDs, b); err != nil {
		return err
	}

	if err := e.Store.UpdateBookingTables(ctx, bookingID, tableIDs); err != nil {
		return fmt.Errorf("assign tables to %s: %w", b.GuestLabel(), err)
	}
	return nil
}

// Clear detaches all tables from a booking (a bump). Only allowed from
// statuses the transition table permits bumping.
func (e *Executor) Clear(ctx context.Context, bookingID uuid.UUID) error {
	b, err := e.Store.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("booking %s: %w", bookingID, err)
	}
	if !models.ValidTransition(models.ActionBump, b.Status) {
		return fmt.Errorf("cannot bump %s while %s", b.GuestLabel(), b.Status)
	}
	if err := e.Store.UpdateBookingTables(ctx, bookingID, nil); err != nil {
		return fmt.Errorf("clear tables for %s: %w", b.GuestLabel(), err)
	}
	return nil
}

// Swap exchanges the table sets of two bookings. Both sides go through the
// store as one unit; a partial application surfaces as ErrSwapInconsistent.
func (e *Executor) Swap(ctx context.Context, aID, bID uuid.UUID) error {
	a, err := e.Store.GetBooking(ctx, aID)
	if err != nil {
		return fmt.Errorf("booking %s: %w", aID, err)
	}
	b, err := e.Store.GetBooking(ctx, bID)
	if err != nil {
		return fmt.Errorf("booking %s: %w", bID, err)
	}
	if len(a.Tables) == 0 || len(b.Tables) == 0 {
		return fmt.Errorf("swap between %s and %s requires both to hold tables", a.GuestLabel(), b.GuestLabel())
	}

	idx, err := e.freshIndex(ctx)
	if err != nil {
		return err
	}
	// each side must be clear of third parties at commit time
	for _, occ := range idx.Occupants(a.TableIDs(), a.ID) {
		if occ.ID != b.ID {
			return fmt.Errorf("%s's tables are held by %s: %w", a.GuestLabel(), occ.GuestLabel(), ErrTablesConflict)
		}
	}
	for _, occ := range idx.Occupants(b.TableIDs(), b.ID) {
		if occ.ID != a.ID {
			return fmt.Errorf("%s's tables are held by %s: %w", b.GuestLabel(), occ.GuestLabel(), ErrTablesConflict)
		}
	}

	err = e.Store.SwapBookingTables(ctx, aID, b.TableIDs(), bID, a.TableIDs())
	if err != nil {
		if errors.Is(err, store.ErrPartialApplied) {
			return fmt.Errorf("swap between %s and %s: %w", a.GuestLabel(), b.GuestLabel(), ErrSwapInconsistent)
		}
		return fmt.Errorf("swap between %s and %s: %w", a.GuestLabel(), b.GuestLabel(), err)
	}
	return nil
}

// CheckIn seats a booking on the given tables, re-validating occupancy at
// call time rather than trusting a previously computed index.
func (e *Executor) CheckIn(ctx context.Context, bookingID uuid.UUID, tableIDs []uuid.UUID) error {
	b, err := e.Store.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("booking %s: %w", bookingID, err)
	}
	next, ok := models.StatusAfter(models.ActionSeat, b.Status)
	if !ok {
		return fmt.Errorf("%s cannot be seated from status %s", b.GuestLabel(), b.Status)
	}
	if len(tableIDs) == 0 {
		tableIDs = b.TableIDs()
	}
	if len(tableIDs) == 0 {
		return fmt.Errorf("no tables selected for %s", b.GuestLabel())
	}

	idx, err := e.freshIndex(ctx)
	if err != nil {
		return err
	}
	if err := checkOccupancy(idx, tableIDs, b); err != nil {
		return err
	}

	if err := e.Store.UpdateBookingTables(ctx, bookingID, tableIDs); err != nil {
		return fmt.Errorf("assign tables to %s: %w", b.GuestLabel(), err)
	}
	if err := e.Store.UpdateBookingStatus(ctx, bookingID, next); err != nil {
		return fmt.Errorf("seat %s: %w", b.GuestLabel(), err)
	}
	return nil
}
