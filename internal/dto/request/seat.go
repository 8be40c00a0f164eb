package request

type LockSeatRequest struct {
	SeatID  int64 `json:"seatId" validate:"required,gt=0"`
	EventID int64 `json:"eventId" validate:"required,gt=0"`
}

type UnlockSeatRequest struct {
	SeatID int64 `json:"seatId" validate:"required,gt=0"`
}
