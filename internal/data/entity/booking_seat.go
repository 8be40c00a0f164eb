package entity

type BookingSeat struct {
	BaseSimple
	BookingID int64 `db:"booking_id"`
	SeatID    int64 `db:"seat_id"`
}
