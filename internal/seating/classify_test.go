package seating

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/models"
)

func TestShiftOf(t *testing.T) {
	cases := []struct {
		hour int
		want Shift
	}{
		{6, ShiftMorning}, {10, ShiftMorning},
		{11, ShiftLunch}, {15, ShiftLunch},
		{16, ShiftDinner}, {21, ShiftDinner},
		{22, ShiftLateNight}, {2, ShiftLateNight}, {5, ShiftLateNight},
	}
	for _, tt := range cases {
		at := time.Date(2025, 6, 14, tt.hour, 30, 0, 0, time.UTC)
		if got := ShiftOf(at); got != tt.want {
			t.Fatalf("ShiftOf(hour=%d)=%q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestUrgencyOf(t *testing.T) {
	cases := []struct {
		offset time.Duration
		want   Urgency
	}{
		{-16 * time.Minute, UrgencyLate},
		{-15 * time.Minute, UrgencyCurrent},
		{0, UrgencyCurrent},
		{15 * time.Minute, UrgencyCurrent},
		{16 * time.Minute, UrgencyUpcoming},
	}
	for _, tt := range cases {
		if got := UrgencyOf(now.Add(tt.offset), now, DefaultUrgency); got != tt.want {
			t.Fatalf("UrgencyOf(%v)=%q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestClassifyPartition(t *testing.T) {
	var confirmed []models.Booking
	offsets := []time.Duration{-2 * time.Hour, -20 * time.Minute, -5 * time.Minute,
		10 * time.Minute, 30 * time.Minute, 4 * time.Hour}
	for _, off := range offsets {
		confirmed = append(confirmed, mkBooking("g", models.StatusConfirmed, now.Add(off), 2))
	}

	c := Classify(confirmed, now, nil, DefaultUrgency)

	shiftTotal := 0
	for _, bs := range c.ByShift {
		shiftTotal += len(bs)
	}
	urgencyTotal := 0
	for _, bs := range c.ByUrgency {
		urgencyTotal += len(bs)
	}
	if shiftTotal != len(confirmed) || urgencyTotal != len(confirmed) {
		t.Fatalf("each confirmed booking must land in exactly one shift (%d) and one urgency (%d) bucket, want %d",
			shiftTotal, urgencyTotal, len(confirmed))
	}
}

func TestClassifyQueues(t *testing.T) {
	ta := mkTable("1", 4)
	waiting := mkBooking("Waiting", models.StatusArrived, now.Add(-5*time.Minute), 2)
	paying := mkBooking("Paying", models.StatusPayment, now.Add(-2*time.Hour), 2, ta)
	eating := mkBooking("Eating", models.StatusSeated, now.Add(-30*time.Minute), 2, ta)
	needs := mkBooking("Needs", models.StatusConfirmed, now.Add(30*time.Minute), 2)
	done := mkBooking("Done", models.StatusCompleted, now.Add(-3*time.Hour), 2)

	c := Classify([]models.Booking{waiting, paying, eating, needs, done}, now, nil, DefaultUrgency)

	if len(c.WaitingForSeating) != 1 || c.WaitingForSeating[0].ID != waiting.ID {
		t.Fatalf("waiting=%v", c.WaitingForSeating)
	}
	if len(c.ActiveDining) != 2 {
		t.Fatalf("active dining=%v", c.ActiveDining)
	}
	// progression order: seated before payment
	if c.ActiveDining[0].ID != eating.ID || c.ActiveDining[1].ID != paying.ID {
		t.Fatal("active dining must sort by status progression")
	}
	if len(c.NeedingTables) != 1 || c.NeedingTables[0].ID != needs.ID {
		t.Fatalf("needing tables=%v", c.NeedingTables)
	}
}

func TestClassifyVIP(t *testing.T) {
	vipID := uuid.New()
	regularID := uuid.New()
	vip := mkBooking("", models.StatusConfirmed, now.Add(20*time.Minute), 2)
	vip.UserID = &vipID
	regular := mkBooking("", models.StatusConfirmed, now.Add(20*time.Minute), 2)
	regular.UserID = &regularID

	flags := map[uuid.UUID]models.CustomerFlags{
		vipID:     {UserID: vipID, VIP: true},
		regularID: {UserID: regularID},
	}
	c := Classify([]models.Booking{vip, regular}, now, flags, DefaultUrgency)
	if len(c.VIPArrivals) != 1 || c.VIPArrivals[0].ID != vip.ID {
		t.Fatalf("vip arrivals=%v", c.VIPArrivals)
	}
}
