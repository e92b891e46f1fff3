package models

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		action string
		from   BookingStatus
		valid  bool
	}{
		{ActionCheckIn, StatusConfirmed, true},
		{ActionCheckIn, StatusArrived, false},
		{ActionSeat, StatusConfirmed, true},
		{ActionSeat, StatusArrived, true},
		{ActionSeat, StatusSeated, false},
		{ActionOrder, StatusSeated, true},
		{ActionOrder, StatusArrived, false},
		{ActionServeCourse, StatusOrdered, true},
		{ActionServeCourse, StatusDessert, false},
		{ActionRequestBill, StatusDessert, true},
		{ActionRequestBill, StatusSeated, false},
		{ActionComplete, StatusPayment, true},
		{ActionComplete, StatusDessert, false},
		{ActionCancel, StatusConfirmed, true},
		{ActionCancel, StatusSeated, false},
		{ActionNoShow, StatusConfirmed, true},
		{ActionNoShow, StatusArrived, false},
		{ActionBump, StatusSeated, true},
		{ActionBump, StatusOrdered, false},
		{"unknown", StatusConfirmed, false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.action, tt.from); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.action, tt.from, got, tt.valid)
		}
	}
}

func TestStatusAfterCourseProgression(t *testing.T) {
	steps := []struct {
		from, want BookingStatus
	}{
		{StatusOrdered, StatusAppetizers},
		{StatusAppetizers, StatusMainCourse},
		{StatusMainCourse, StatusDessert},
	}
	for _, s := range steps {
		got, ok := StatusAfter(ActionServeCourse, s.from)
		if !ok || got != s.want {
			t.Fatalf("StatusAfter(serve_course, %q)=%q,%v want %q", s.from, got, ok, s.want)
		}
	}
	if _, ok := StatusAfter(ActionServeCourse, StatusDessert); ok {
		t.Fatal("serve_course from dessert should be rejected")
	}
}

func TestPresentStatuses(t *testing.T) {
	present := []BookingStatus{
		StatusArrived, StatusSeated, StatusOrdered,
		StatusAppetizers, StatusMainCourse, StatusDessert, StatusPayment,
	}
	for _, s := range present {
		if !s.Present() {
			t.Fatalf("%q should be physically present", s)
		}
	}
	absent := []BookingStatus{StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}
	for _, s := range absent {
		if s.Present() {
			t.Fatalf("%q should not be physically present", s)
		}
	}
}

func TestPastSeating(t *testing.T) {
	if StatusSeated.PastSeating() || StatusArrived.PastSeating() {
		t.Fatal("arrived/seated are not past seating")
	}
	for _, s := range []BookingStatus{StatusOrdered, StatusMainCourse, StatusPayment} {
		if !s.PastSeating() {
			t.Fatalf("%q should be past seating", s)
		}
	}
}
