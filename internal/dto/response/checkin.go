package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type ScanStatus string

const (
	ScanValid          ScanStatus = "valid"
	ScanAlreadyScanned ScanStatus = "already_scanned"
	ScanAlreadyUsed    ScanStatus = "already_used"
	ScanInvalid        ScanStatus = "invalid"
)

type ScanResponse struct {
	Status  ScanStatus     `json:"status"`
	Message string         `json:"message"`
	Booking *TicketBooking `json:"booking,omitempty"`

	// Found is false when the ticket id matched no booking
	Found bool `json:"-"`
}

type TicketBooking struct {
	ID               int64                `json:"id"`
	EventID          int64                `json:"eventId"`
	EventName        string               `json:"eventName,omitempty"`
	BookingReference string               `json:"bookingReference"`
	CustomerName     string               `json:"customerName,omitempty"`
	TotalSeats       int                  `json:"totalSeats"`
	Seats            []string             `json:"seats,omitempty"`
	Amount           float64              `json:"amount"`
	TicketStatus     entity.TicketStatus  `json:"ticketStatus"`
	PaymentStatus    entity.PaymentStatus `json:"paymentStatus"`
	ScannedAt        *time.Time           `json:"scannedAt,omitempty"`
	ScannedBy        *int64               `json:"scannedBy,omitempty"`
}

type TicketStatusResponse struct {
	TicketID         string               `json:"ticketId"`
	BookingReference string               `json:"bookingReference"`
	EventID          int64                `json:"eventId"`
	EventName        string               `json:"eventName,omitempty"`
	EventDate        *time.Time           `json:"eventDate,omitempty"`
	Venue            string               `json:"venue,omitempty"`
	TotalSeats       int                  `json:"totalSeats"`
	Amount           float64              `json:"amount"`
	TicketStatus     entity.TicketStatus  `json:"ticketStatus"`
	PaymentStatus    entity.PaymentStatus `json:"paymentStatus"`
	ScannedAt        *time.Time           `json:"scannedAt,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
}

type CheckInResponse struct {
	ID               int64               `json:"id"`
	BookingID        int64               `json:"bookingId"`
	StaffID          int64               `json:"staffId"`
	Timestamp        time.Time           `json:"timestamp"`
	BookingReference string              `json:"bookingReference"`
	TicketID         string              `json:"ticketId"`
	TicketStatus     entity.TicketStatus `json:"ticketStatus"`
	CustomerID       int64               `json:"customerId"`
	CustomerName     string              `json:"customerName,omitempty"`
	TotalSeats       int                 `json:"totalSeats"`
}

type EventCheckInsResponse struct {
	EventID  int64             `json:"eventId"`
	Total    int               `json:"total"`
	CheckIns []CheckInResponse `json:"checkIns"`
}

// TicketBookingFrom fills the scan payload; event and customer may be nil
func TicketBookingFrom(booking *entity.Booking, event *entity.Event, customer *entity.User, first *entity.CheckIn) *TicketBooking {
	tb := &TicketBooking{
		ID:               booking.ID,
		EventID:          booking.EventID,
		BookingReference: booking.BookingReference,
		TotalSeats:       booking.TotalSeats,
		Seats:            booking.SeatLabels(),
		Amount:           booking.Amount,
		TicketStatus:     booking.TicketStatus,
		PaymentStatus:    booking.PaymentStatus,
	}
	if len(tb.Seats) == 0 {
		tb.Seats = nil
	}
	if event != nil {
		tb.EventName = event.Name
	}
	if customer != nil {
		tb.CustomerName = customer.Name
	}
	if first != nil {
		scannedAt, scannedBy := first.Timestamp, first.StaffID
		tb.ScannedAt = &scannedAt
		tb.ScannedBy = &scannedBy
	}
	return tb
}

func CheckInToResponse(d *entity.CheckInDetail) CheckInResponse {
	return CheckInResponse{
		ID:               d.ID,
		BookingID:        d.BookingID,
		StaffID:          d.StaffID,
		Timestamp:        d.Timestamp,
		BookingReference: d.BookingReference,
		TicketID:         d.TicketID,
		TicketStatus:     d.TicketStatus,
		CustomerID:       d.CustomerID,
		CustomerName:     d.CustomerName,
		TotalSeats:       d.TotalSeats,
	}
}
