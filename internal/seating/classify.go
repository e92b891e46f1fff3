package seating

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/models"
)

type Shift string

const (
	ShiftMorning   Shift = "morning"    // [06,11)
	ShiftLunch     Shift = "lunch"      // [11,16)
	ShiftDinner    Shift = "dinner"     // [16,22)
	ShiftLateNight Shift = "late_night" // [22,06)
)

type Urgency string

const (
	UrgencyLate     Urgency = "late"
	UrgencyCurrent  Urgency = "current"
	UrgencyUpcoming Urgency = "upcoming"
)

// Classification partitions the booking list into the queues the host
// stand works from. Buckets are views over the same snapshot; a confirmed
// booking lands in exactly one shift bucket and one urgency bucket.
type Classification struct {
	WaitingForSeating []models.Booking           `json:"waiting_for_seating"`
	ActiveDining      []models.Booking           `json:"active_dining"`
	ByShift           map[Shift][]models.Booking `json:"arrivals_by_shift"`
	ByUrgency         map[Urgency][]models.Booking `json:"arrivals_by_urgency"`
	VIPArrivals       []models.Booking           `json:"vip_arrivals"`
	NeedingTables     []models.Booking           `json:"needing_tables"`
}

// ShiftOf buckets a local hour of day.
func ShiftOf(t time.Time) Shift {
	switch h := t.Hour(); {
	case h >= 6 && h < 11:
		return ShiftMorning
	case h >= 11 && h < 16:
		return ShiftLunch
	case h >= 16 && h < 22:
		return ShiftDinner
	default:
		return ShiftLateNight
	}
}

// UrgencyOf buckets a booking time relative to now: late below -window,
// current within +/-window, upcoming above it.
func UrgencyOf(bookingTime, now time.Time, window time.Duration) Urgency {
	if window <= 0 {
		window = DefaultUrgency
	}
	d := bookingTime.Sub(now)
	switch {
	case d < -window:
		return UrgencyLate
	case d > window:
		return UrgencyUpcoming
	default:
		return UrgencyCurrent
	}
}

func Classify(bookings []models.Booking, now time.Time, flags map[uuid.UUID]models.CustomerFlags, urgencyWindow time.Duration) Classification {
	c := Classification{
		ByShift:   make(map[Shift][]models.Booking),
		ByUrgency: make(map[Urgency][]models.Booking),
	}

	for _, b := range bookings {
		switch {
		case b.Status == models.StatusArrived:
			c.WaitingForSeating = append(c.WaitingForSeating, b)
		case b.Status.Present():
			// seated or further along
			c.ActiveDining = append(c.ActiveDining, b)
		case b.Status == models.StatusConfirmed:
			c.ByShift[ShiftOf(b.BookingTime)] = append(c.ByShift[ShiftOf(b.BookingTime)], b)
			u := UrgencyOf(b.BookingTime, now, urgencyWindow)
			c.ByUrgency[u] = append(c.ByUrgency[u], b)
			if b.UserID != nil {
				if f, ok := flags[*b.UserID]; ok && f.VIP {
					c.VIPArrivals = append(c.VIPArrivals, b)
				}
			}
			if len(b.Tables) == 0 {
				c.NeedingTables = append(c.NeedingTables, b)
			}
		}
	}

	sort.Slice(c.WaitingForSeating, func(i, j int) bool {
		return c.WaitingForSeating[i].BookingTime.Before(c.WaitingForSeating[j].BookingTime)
	})
	sort.SliceStable(c.ActiveDining, func(i, j int) bool {
		ri, rj := c.ActiveDining[i].Status.ProgressionRank(), c.ActiveDining[j].Status.ProgressionRank()
		if ri != rj {
			return ri < rj
		}
		return c.ActiveDining[i].BookingTime.Before(c.ActiveDining[j].BookingTime)
	})
	for k := range c.ByShift {
		byTime(c.ByShift[k])
	}
	for k := range c.ByUrgency {
		byTime(c.ByUrgency[k])
	}
	byTime(c.VIPArrivals)
	byTime(c.NeedingTables)

	return c
}

func byTime(bs []models.Booking) {
	sort.Slice(bs, func(i, j int) bool { return bs[i].BookingTime.Before(bs[j].BookingTime) })
}
