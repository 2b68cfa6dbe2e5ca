package slot

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("slot not found")

// Slot blocks a lab for a weekly time range. Slots never interact with
// outing bookings.
type Slot struct {
	ID        string    `json:"id"`
	Lab       string    `json:"lab"`
	DayIndex  int       `json:"dayIndex"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Reason    string    `json:"reason,omitempty"`
	LockedBy  string    `json:"lockedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateRequest struct {
	Lab       string `json:"lab" validate:"required,max=80"`
	DayIndex  *int   `json:"dayIndex" validate:"required,min=0,max=6"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
	Reason    string `json:"reason" validate:"max=300"`
}

// Validate checks what struct tags cannot: the range must be non-empty.
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Lab) == "" {
		return errors.New("lab is required")
	}
	if r.DayIndex == nil || *r.DayIndex < 0 || *r.DayIndex > 6 {
		return errors.New("dayIndex must be between 0 and 6")
	}
	if r.StartTime >= r.EndTime {
		return errors.New("startTime must be before endTime")
	}
	return nil
}
