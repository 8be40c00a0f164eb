package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type BookingResponse struct {
	ID               int64                `json:"id"`
	CustomerID       int64                `json:"customerId"`
	EventID          int64                `json:"eventId"`
	TotalSeats       int                  `json:"totalSeats"`
	Amount           float64              `json:"amount"`
	BookingReference string               `json:"bookingReference"`
	TicketID         string               `json:"ticketId"`
	TicketStatus     entity.TicketStatus  `json:"ticketStatus"`
	PaymentStatus    entity.PaymentStatus `json:"paymentStatus"`
	TransactionID    *string              `json:"transactionId,omitempty"`
	PaidAt           *time.Time           `json:"paidAt,omitempty"`
	Seats            []string             `json:"seats"`
	QRCode           string               `json:"qrCode,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

type PaymentResponse struct {
	BookingID     int64                `json:"bookingId"`
	PaymentStatus entity.PaymentStatus `json:"paymentStatus"`
	Amount        float64              `json:"amount"`
	TransactionID *string              `json:"transactionId,omitempty"`
	PaidAt        *time.Time           `json:"paidAt,omitempty"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:               booking.ID,
		CustomerID:       booking.CustomerID,
		EventID:          booking.EventID,
		TotalSeats:       booking.TotalSeats,
		Amount:           booking.Amount,
		BookingReference: booking.BookingReference,
		TicketID:         booking.TicketID,
		TicketStatus:     booking.TicketStatus,
		PaymentStatus:    booking.PaymentStatus,
		TransactionID:    booking.TransactionID,
		PaidAt:           booking.PaidAt,
		Seats:            booking.SeatLabels(),
		CreatedAt:        booking.CreatedAt,
		UpdatedAt:        booking.UpdatedAt,
	}
}

func PaymentToResponse(booking *entity.Booking) PaymentResponse {
	return PaymentResponse{
		BookingID:     booking.ID,
		PaymentStatus: booking.PaymentStatus,
		Amount:        booking.Amount,
		TransactionID: booking.TransactionID,
		PaidAt:        booking.PaidAt,
	}
}
