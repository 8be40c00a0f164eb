package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type SeatResponse struct {
	ID        int64             `json:"id"`
	EventID   int64             `json:"eventId"`
	SeatLabel string            `json:"seatLabel"`
	Section   *string           `json:"section,omitempty"`
	Price     *float64          `json:"price,omitempty"`
	Status    entity.SeatStatus `json:"status"`
	LockedBy  *int64            `json:"lockedBy,omitempty"`
	LockedAt  *time.Time        `json:"lockedAt,omitempty"`
}

type SeatMapResponse struct {
	EventID   int64          `json:"eventId"`
	Total     int            `json:"total"`
	Available int            `json:"available"`
	Seats     []SeatResponse `json:"seats"`
}

type BookedSeatsResponse struct {
	EventID     int64    `json:"eventId"`
	BookedSeats []string `json:"bookedSeats"`
}

// SeatToResponse renders the seat with status as its visible state. Lock
// details are dropped unless the seat is shown as locked.
func SeatToResponse(seat *entity.Seat, status entity.SeatStatus) SeatResponse {
	resp := SeatResponse{
		ID:        seat.ID,
		EventID:   seat.EventID,
		SeatLabel: seat.SeatLabel,
		Section:   seat.Section,
		Price:     seat.Price,
		Status:    status,
	}
	if status == entity.SeatStatusLocked {
		resp.LockedBy = seat.LockedBy
		resp.LockedAt = seat.LockedAt
	}
	return resp
}
