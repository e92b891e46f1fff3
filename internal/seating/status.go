package seating

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/models"
)

// TableStatus is the derived occupancy view for one table.
type TableStatus struct {
	Table            models.Table    `json:"table"`
	IsOccupied       bool            `json:"is_occupied"`
	OccupyingBooking *models.Booking `json:"occupying_booking,omitempty"`

	// PresentBookings lists every physically-present booking referencing
	// the table. Under the occupancy invariant there is at most one, but
	// conflict checks must see transient overlaps rather than mask them.
	PresentBookings []models.Booking `json:"present_bookings,omitempty"`

	UpcomingBookings []models.Booking `json:"upcoming_bookings"`
	NextAvailable    *time.Time       `json:"next_available,omitempty"`
}

type StatusIndex map[uuid.UUID]TableStatus

// BuildStatusIndex derives per-table occupancy from a snapshot. A table is
// occupied iff a booking in a physically-present status references it.
// Upcoming bookings are confirmed, in the future, and within the lookahead
// window, sorted ascending by time.
func BuildStatusIndex(tables []models.Table, bookings []models.Booking, now time.Time, lookahead time.Duration) StatusIndex {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	horizon := now.Add(lookahead)

	idx := make(StatusIndex, len(tables))
	for _, t := range tables {
		idx[t.ID] = TableStatus{Table: t, UpcomingBookings: []models.Booking{}}
	}

	for i := range bookings {
		b := bookings[i]
		for _, tid := range b.TableIDs() {
			st, ok := idx[tid]
			if !ok {
				continue
			}
			switch {
			case b.IsPresent():
				st.IsOccupied = true
				st.PresentBookings = append(st.PresentBookings, b)
				if st.OccupyingBooking == nil {
					cp := b
					st.OccupyingBooking = &cp
				}
			case b.Status == models.StatusConfirmed &&
				b.BookingTime.After(now) && !b.BookingTime.After(horizon):
				st.UpcomingBookings = append(st.UpcomingBookings, b)
			}
			idx[tid] = st
		}
	}

	for id, st := range idx {
		sort.Slice(st.UpcomingBookings, func(i, j int) bool {
			return st.UpcomingBookings[i].BookingTime.Before(st.UpcomingBookings[j].BookingTime)
		})
		switch {
		case st.OccupyingBooking != nil:
			at := st.OccupyingBooking.DepartsAt()
			st.NextAvailable = &at
		case len(st.UpcomingBookings) > 0:
			at := st.UpcomingBookings[0].BookingTime
			st.NextAvailable = &at
		}
		idx[id] = st
	}

	return idx
}

// Occupants returns the distinct physically-present bookings holding any of
// the given tables, excluding the booking with id skip.
func (idx StatusIndex) Occupants(tableIDs []uuid.UUID, skip uuid.UUID) []models.Booking {
	seen := make(map[uuid.UUID]bool)
	var out []models.Booking
	for _, tid := range tableIDs {
		st, ok := idx[tid]
		if !ok {
			continue
		}
		for _, b := range st.PresentBookings {
			if b.ID == skip || seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			out = append(out, b)
		}
	}
	return out
}

// Upcoming returns distinct upcoming bookings across the given tables,
// excluding skip, ascending by booking time.
func (idx StatusIndex) Upcoming(tableIDs []uuid.UUID, skip uuid.UUID) []models.Booking {
	seen := make(map[uuid.UUID]bool)
	var out []models.Booking
	for _, tid := range tableIDs {
		st, ok := idx[tid]
		if !ok {
			continue
		}
		for _, b := range st.UpcomingBookings {
			if b.ID == skip || seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingTime.Before(out[j].BookingTime) })
	return out
}
