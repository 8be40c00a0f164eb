package repository

import (
	"context"

	"event-ticketing/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	db  database.PgxIface
	log *zap.Logger

	User        UserRepository
	Event       EventRepository
	Seat        SeatRepository
	Booking     BookingRepository
	BookingSeat BookingSeatRepository
	CheckIn     CheckInRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := bind(db, log)
	repo.db = db
	return repo
}

func bind(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		log:         log,
		User:        NewUserRepository(q, log),
		Event:       NewEventRepository(q, log),
		Seat:        NewSeatRepository(q, log),
		Booking:     NewBookingRepository(q, log),
		BookingSeat: NewBookingSeatRepository(q, log),
		CheckIn:     NewCheckInRepository(q, log),
	}
}

// Transaction runs fn with every repository bound to one transaction.
// Calling it on a repository that is already transactional reuses that
// transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return database.WithTx(ctx, r.db, func(q database.Querier) error {
		return fn(bind(q, r.log))
	})
}
