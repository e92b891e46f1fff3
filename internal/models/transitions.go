package models

// Actions staff can take on a booking. Each maps to the statuses it is
// allowed from.
const (
	ActionCheckIn     = "check_in"
	ActionSeat        = "seat"
	ActionOrder       = "order"
	ActionServeCourse = "serve_course"
	ActionRequestBill = "request_bill"
	ActionComplete    = "complete"
	ActionCancel      = "cancel"
	ActionNoShow      = "no_show"
	ActionBump        = "bump"
)

var transitionMap = map[string][]BookingStatus{
	ActionCheckIn:     {StatusConfirmed},
	ActionSeat:        {StatusConfirmed, StatusArrived},
	ActionOrder:       {StatusSeated},
	ActionServeCourse: {StatusOrdered, StatusAppetizers, StatusMainCourse},
	ActionRequestBill: {StatusOrdered, StatusAppetizers, StatusMainCourse, StatusDessert},
	ActionComplete:    {StatusPayment},
	ActionCancel:      {StatusConfirmed, StatusArrived},
	ActionNoShow:      {StatusConfirmed},
	ActionBump:        {StatusConfirmed, StatusArrived, StatusSeated},
}

func ValidTransition(action string, from BookingStatus) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == from {
			return true
		}
	}
	return false
}

// StatusAfter returns the status a booking lands in after an action.
// serve_course steps through the meal substates one at a time.
func StatusAfter(action string, from BookingStatus) (BookingStatus, bool) {
	if !ValidTransition(action, from) {
		return "", false
	}
	switch action {
	case ActionCheckIn:
		return StatusArrived, true
	case ActionSeat:
		return StatusSeated, true
	case ActionOrder:
		return StatusOrdered, true
	case ActionServeCourse:
		switch from {
		case StatusOrdered:
			return StatusAppetizers, true
		case StatusAppetizers:
			return StatusMainCourse, true
		default:
			return StatusDessert, true
		}
	case ActionRequestBill:
		return StatusPayment, true
	case ActionComplete:
		return StatusCompleted, true
	case ActionCancel:
		return StatusCancelled, true
	case ActionNoShow:
		return StatusNoShow, true
	case ActionBump:
		// Bumping clears tables but leaves the party in its current status.
		return from, true
	}
	return "", false
}
