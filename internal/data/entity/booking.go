package entity

import "time"

type TicketStatus string

const (
	TicketStatusValid     TicketStatus = "valid"
	TicketStatusScanned   TicketStatus = "scanned"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Booking struct {
	Base
	CustomerID       int64         `db:"customer_id"`
	EventID          int64         `db:"event_id"`
	TotalSeats       int           `db:"total_seats"`
	Amount           float64       `db:"amount"`
	BookingReference string        `db:"booking_reference"`
	TicketID         string        `db:"ticket_id"`
	TicketStatus     TicketStatus  `db:"ticket_status"`
	PaymentStatus    PaymentStatus `db:"payment_status"`
	TransactionID    *string       `db:"transaction_id"`
	PaidAt           *time.Time    `db:"paid_at"`

	// Seats is filled by queries that join booking_seats
	Seats []*Seat `db:"-"`
}

func (b *Booking) SeatLabels() []string {
	labels := make([]string, 0, len(b.Seats))
	for _, seat := range b.Seats {
		labels = append(labels, seat.SeatLabel)
	}
	return labels
}
