package models

type BookingStatus string

const (
	StatusConfirmed  BookingStatus = "confirmed"
	StatusArrived    BookingStatus = "arrived"
	StatusSeated     BookingStatus = "seated"
	StatusOrdered    BookingStatus = "ordered"
	StatusAppetizers BookingStatus = "appetizers"
	StatusMainCourse BookingStatus = "main_course"
	StatusDessert    BookingStatus = "dessert"
	StatusPayment    BookingStatus = "payment"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// progression orders the in-house statuses from just-arrived to paying.
// Used for sorting the active-dining queue and for deciding whether a
// party is far enough into service that bumping it is off the table.
var progression = map[BookingStatus]int{
	StatusArrived:    0,
	StatusSeated:     1,
	StatusOrdered:    2,
	StatusAppetizers: 3,
	StatusMainCourse: 4,
	StatusDessert:    5,
	StatusPayment:    6,
}

// Present reports whether guests in this status physically occupy their
// tables.
func (s BookingStatus) Present() bool {
	_, ok := progression[s]
	return ok
}

// ProgressionRank returns the status position in the service progression,
// or -1 for statuses outside it (confirmed, completed, cancelled, no_show).
func (s BookingStatus) ProgressionRank() int {
	r, ok := progression[s]
	if !ok {
		return -1
	}
	return r
}

// PastSeating reports whether service has progressed beyond simply being
// seated: the kitchen is involved or the bill is out, so the party cannot
// be moved without real disruption.
func (s BookingStatus) PastSeating() bool {
	return s.ProgressionRank() > progression[StatusSeated]
}

var allStatuses = map[BookingStatus]bool{
	StatusConfirmed:  true,
	StatusArrived:    true,
	StatusSeated:     true,
	StatusOrdered:    true,
	StatusAppetizers: true,
	StatusMainCourse: true,
	StatusDessert:    true,
	StatusPayment:    true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusNoShow:     true,
}

func ValidStatus(s BookingStatus) bool {
	return allStatuses[s]
}
