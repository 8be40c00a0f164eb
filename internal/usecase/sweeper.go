package usecase

import (
	"context"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/notify"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type SweepResult struct {
	ReleasedLocks  int
	FailedBookings int
	ReleasedSeats  int
}

// Sweeper physically releases what lazy expiry already ignores: seat holds
// past their TTL and pending bookings nobody paid for.
type Sweeper struct {
	repo       *repository.Repository
	deps       Dependencies
	lockTTL    time.Duration
	pendingTTL time.Duration
	interval   time.Duration
	log        *zap.Logger
}

func NewSweeper(repo *repository.Repository, config utils.BookingConfig, deps Dependencies, log *zap.Logger) *Sweeper {
	return &Sweeper{
		repo:       repo,
		deps:       deps.withDefaults(),
		lockTTL:    config.SeatLockTTL,
		pendingTTL: config.PendingTTL,
		interval:   config.SweepInterval,
		log:        log.With(zap.String("service", "sweeper")),
	}
}

// Run sweeps on every tick until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("Sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.log.Error("Sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := s.deps.Now()

	eventIDs, err := s.repo.Seat.ReleaseExpiredLocks(ctx, now.Add(-s.lockTTL))
	if err != nil {
		return result, err
	}
	result.ReleasedLocks = len(eventIDs)

	var failed []*entity.Booking
	if s.pendingTTL > 0 {
		err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			var err error
			failed, err = tx.Booking.FailStalePending(ctx, now.Add(-s.pendingTTL))
			if err != nil || len(failed) == 0 {
				return err
			}

			ids := make([]int64, len(failed))
			for i, b := range failed {
				ids[i] = b.ID
			}
			seatsByBooking, err := tx.BookingSeat.FindSeatsByBookingIDs(ctx, ids)
			if err != nil {
				return err
			}

			var seatIDs []int64
			for _, b := range failed {
				// cancelled bookings gave their seats back when they were cancelled
				if b.TicketStatus == entity.TicketStatusCancelled {
					continue
				}
				b.Seats = seatsByBooking[b.ID]
				for _, seat := range b.Seats {
					seatIDs = append(seatIDs, seat.ID)
				}
			}
			released, err := tx.Seat.Release(ctx, seatIDs)
			result.ReleasedSeats = int(released)
			return err
		})
		if err != nil {
			return result, err
		}
	}
	result.FailedBookings = len(failed)

	for _, b := range failed {
		eventIDs = append(eventIDs, b.EventID)
	}
	if err := s.deps.Cache.Invalidate(ctx, eventIDs...); err != nil {
		s.log.Warn("Seat cache invalidation failed", zap.Error(err))
	}
	for _, b := range failed {
		if err := s.deps.Notifier.Publish(ctx, bookingEvent(notify.EventBookingReleased, b, "payment timeout", now)); err != nil {
			s.log.Warn("Failed to publish booking event", zap.Int64("booking_id", b.ID), zap.Error(err))
		}
	}

	s.deps.Metrics.SweepReleased("lock", result.ReleasedLocks)
	s.deps.Metrics.SweepReleased("pending_booking", result.FailedBookings)

	if result.ReleasedLocks > 0 || result.FailedBookings > 0 {
		s.log.Info("Sweep released stale holds",
			zap.Int("locks", result.ReleasedLocks),
			zap.Int("bookings", result.FailedBookings),
			zap.Int("seats", result.ReleasedSeats),
		)
	}
	return result, nil
}
