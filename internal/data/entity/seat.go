package entity

import "time"

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusLocked    SeatStatus = "locked"
	SeatStatusSold      SeatStatus = "sold"
	SeatStatusCheckedIn SeatStatus = "checked_in"
)

// Seat is unique on (event_id, seat_label). LockedBy and LockedAt are set
// only while Status is locked.
type Seat struct {
	Base
	EventID   int64      `db:"event_id"`
	SeatLabel string     `db:"seat_label"` // A1, A2, B1, etc.
	Section   *string    `db:"section"`
	Price     *float64   `db:"price"`
	Status    SeatStatus `db:"status"`
	LockedBy  *int64     `db:"locked_by"`
	LockedAt  *time.Time `db:"locked_at"`
}

// LockExpired reports whether a locked seat has outlived ttl at now
func (s *Seat) LockExpired(now time.Time, ttl time.Duration) bool {
	return s.Status == SeatStatusLocked && s.LockedAt != nil && now.Sub(*s.LockedAt) > ttl
}

// EffectiveStatus treats an expired lock as available
func (s *Seat) EffectiveStatus(now time.Time, ttl time.Duration) SeatStatus {
	if s.LockExpired(now, ttl) {
		return SeatStatusAvailable
	}
	return s.Status
}
