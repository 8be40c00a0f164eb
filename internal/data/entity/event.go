package entity

import "time"

type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

type Event struct {
	Base
	Name        string      `db:"name"`
	Venue       string      `db:"venue"`
	Date        time.Time   `db:"date"`
	OrganizerID int64       `db:"organizer_id"`
	Status      EventStatus `db:"status"`
}
