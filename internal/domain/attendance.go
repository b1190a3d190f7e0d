package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus is derived from the most recent visit row for an identity,
// never stored directly.
type AttendanceStatus string

const (
	// StatusNever means the identity has no visit rows at all.
	StatusNever AttendanceStatus = "NEVER"
	// StatusCheckedIn means the most recent row is still open.
	StatusCheckedIn AttendanceStatus = "CHECKED_IN"
	// StatusCheckedOut means the most recent row has been closed.
	StatusCheckedOut AttendanceStatus = "CHECKED_OUT"
)

// AttendanceRow is one lounge visit. A row with a nil CheckoutTime is "open";
// an identity has at most one open row at any time.
type AttendanceRow struct {
	ID           uuid.UUID  `json:"id"`
	Identity     string     `json:"identity"`
	CheckinTime  time.Time  `json:"checkin_time"`
	CheckoutTime *time.Time `json:"checkout_time,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Open reports whether the visit has not been checked out yet.
func (r *AttendanceRow) Open() bool {
	return r.CheckoutTime == nil
}

// Status derives the attendance status from the row. A nil row means the
// identity was never seen.
func (r *AttendanceRow) Status() AttendanceStatus {
	if r == nil {
		return StatusNever
	}
	if r.Open() {
		return StatusCheckedIn
	}
	return StatusCheckedOut
}

// AttendanceEvent is the outcome of resolving an accepted (or rejected) match
// against the attendance state machine.
type AttendanceEvent string

const (
	EventCheckIn  AttendanceEvent = "CHECK_IN"
	EventCheckOut AttendanceEvent = "CHECK_OUT"
	EventDenied   AttendanceEvent = "DENIED"
	// EventRecentCheckin is a display-only no-op: the identity checked in so
	// recently that a re-recognition is treated as the same physical visit.
	EventRecentCheckin AttendanceEvent = "CHECKED_IN_RECENTLY"
)

// Resolution is the display payload produced by one attendance transition.
type Resolution struct {
	Event     AttendanceEvent `json:"event"`
	Identity  string          `json:"identity,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Row       *AttendanceRow  `json:"row,omitempty"`
}
