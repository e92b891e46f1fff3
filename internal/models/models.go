package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TableType string

const (
	TableBooth    TableType = "booth"
	TableWindow   TableType = "window"
	TablePatio    TableType = "patio"
	TableStandard TableType = "standard"
	TableBar      TableType = "bar"
	TablePrivate  TableType = "private"
)

type Table struct {
	ID           uuid.UUID  `json:"id"`
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	TableNumber  string     `json:"table_number"`
	MinCapacity  int        `json:"min_capacity"`
	MaxCapacity  int        `json:"max_capacity"`
	Type         TableType  `json:"table_type"`
	IsActive     bool       `json:"is_active"`
	SectionID    *uuid.UUID `json:"section_id,omitempty"`

	// Floor-plan geometry; display only, ignored by assignment logic.
	XPosition float64 `json:"x_position"`
	YPosition float64 `json:"y_position"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Shape     string  `json:"shape"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Booking struct {
	ID           uuid.UUID     `json:"id"`
	RestaurantID uuid.UUID     `json:"restaurant_id"`
	UserID       *uuid.UUID    `json:"user_id,omitempty"`
	GuestName    string        `json:"guest_name,omitempty"`
	GuestEmail   string        `json:"guest_email,omitempty"`
	GuestPhone   string        `json:"guest_phone,omitempty"`
	Status       BookingStatus `json:"status"`
	BookingTime  time.Time     `json:"booking_time"`
	PartySize    int           `json:"party_size"`
	TurnMinutes  int           `json:"turn_time_minutes"`
	Occasion     string        `json:"occasion,omitempty"`
	Tables       []Table       `json:"tables"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

const DefaultTurnMinutes = 120

func (b Booking) TurnTime() time.Duration {
	m := b.TurnMinutes
	if m <= 0 {
		m = DefaultTurnMinutes
	}
	return time.Duration(m) * time.Minute
}

// DepartsAt estimates when the party frees its tables.
func (b Booking) DepartsAt() time.Time {
	return b.BookingTime.Add(b.TurnTime())
}

func (b Booking) IsPresent() bool {
	return b.Status.Present()
}

func (b Booking) TableIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Tables))
	for _, t := range b.Tables {
		ids = append(ids, t.ID)
	}
	return ids
}

func (b Booking) TableCapacity() int {
	total := 0
	for _, t := range b.Tables {
		total += t.MaxCapacity
	}
	return total
}

// GuestLabel is the name shown to staff: guest name if present, else a
// short form of the registered user id.
func (b Booking) GuestLabel() string {
	if b.GuestName != "" {
		return b.GuestName
	}
	if b.UserID != nil {
		return "guest " + b.UserID.String()[:8]
	}
	return "walk-in"
}

type Combination struct {
	ID               uuid.UUID `json:"id"`
	RestaurantID     uuid.UUID `json:"restaurant_id"`
	TableAID         uuid.UUID `json:"table_a_id"`
	TableBID         uuid.UUID `json:"table_b_id"`
	CombinedCapacity int       `json:"combined_capacity"`
}

type CustomerFlags struct {
	UserID      uuid.UUID `json:"user_id"`
	VIP         bool      `json:"vip_status"`
	Blacklisted bool      `json:"blacklisted"`
	Notes       string    `json:"notes,omitempty"`
}

// BookingDraft is the input for creating a booking (walk-in or reservation).
type BookingDraft struct {
	RestaurantID uuid.UUID
	UserID       *uuid.UUID
	GuestName    string
	GuestEmail   string
	GuestPhone   string
	Status       BookingStatus
	BookingTime  time.Time
	PartySize    int
	TurnMinutes  int
	Occasion     string
	TableIDs     []uuid.UUID
}

func (d BookingDraft) Validate() error {
	if d.RestaurantID == uuid.Nil {
		return fmt.Errorf("restaurant_id required")
	}
	if d.UserID == nil && strings.TrimSpace(d.GuestName) == "" {
		return fmt.Errorf("guest name or user_id required")
	}
	if d.PartySize < 1 {
		return fmt.Errorf("party_size must be >= 1")
	}
	if d.BookingTime.IsZero() {
		return fmt.Errorf("booking_time required")
	}
	if !ValidStatus(d.Status) {
		return fmt.Errorf("invalid status %q", d.Status)
	}
	return nil
}
