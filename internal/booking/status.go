package booking

import "fmt"

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusStillOut  Status = "still_out"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusWaiting, StatusStillOut, StatusConfirmed, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// Active bookings block the requester from submitting another one.
func (s Status) Active() bool {
	return s == StatusWaiting || s == StatusStillOut
}

func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected
}

// Transitions are one-directional; nothing ever returns to waiting.
var allowedTransitions = map[Status]map[Status]bool{
	StatusWaiting:   {StatusStillOut: true, StatusConfirmed: true, StatusRejected: true},
	StatusStillOut:  {StatusConfirmed: true},
	StatusConfirmed: {},
	StatusRejected:  {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}
