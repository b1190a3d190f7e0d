package ws

import (
	"time"
)

type EventType string

const (
	EventAccessGranted EventType = "access.granted"
	EventAccessDenied  EventType = "access.denied"
	EventCheckIn       EventType = "attendance.check_in"
	EventCheckOut      EventType = "attendance.check_out"
	EventRecentCheckin EventType = "attendance.recent_check_in"
	EventFaceEnrolled  EventType = "face.enrolled"
	EventFaceDeleted   EventType = "face.deleted"
)

type Event struct {
	KioskID   string      `json:"-"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
