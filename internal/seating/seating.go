// Package seating holds the table-assignment core: derived occupancy
// indices, booking queues, and ranked reassignment options. Everything in
// this package is a pure function of a floor snapshot and a clock value;
// mutations happen elsewhere, against the store.
package seating

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/models"
)

const (
	DefaultLookahead = 120 * time.Minute
	DefaultUrgency   = 15 * time.Minute

	// MaxOptions caps exhaustive enumeration across the whole floor.
	MaxOptions = 10
)

// Snapshot is a point-in-time view of the floor, fetched from the store.
type Snapshot struct {
	Tables       []models.Table
	Bookings     []models.Booking
	Combinations []models.Combination
	Flags        map[uuid.UUID]models.CustomerFlags
	Now          time.Time

	Lookahead time.Duration
	Urgency   time.Duration
}

func (s Snapshot) lookahead() time.Duration {
	if s.Lookahead > 0 {
		return s.Lookahead
	}
	return DefaultLookahead
}

func (s Snapshot) urgency() time.Duration {
	if s.Urgency > 0 {
		return s.Urgency
	}
	return DefaultUrgency
}

func (s Snapshot) tableByID(id uuid.UUID) (models.Table, bool) {
	for _, t := range s.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return models.Table{}, false
}
