package entity

import "time"

// CheckIn is append-only; one row per first successful scan
type CheckIn struct {
	BaseSimple
	StaffID   int64     `db:"staff_id"`
	BookingID int64     `db:"booking_id"`
	Timestamp time.Time `db:"timestamp"`
}

// CheckInDetail is a check-in joined with its booking for event listings
type CheckInDetail struct {
	CheckIn
	BookingReference string       `db:"booking_reference"`
	TicketID         string       `db:"ticket_id"`
	TicketStatus     TicketStatus `db:"ticket_status"`
	CustomerID       int64        `db:"customer_id"`
	CustomerName     string       `db:"customer_name"`
	TotalSeats       int          `db:"total_seats"`
}
