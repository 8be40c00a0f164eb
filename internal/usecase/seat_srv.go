package usecase

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/pkg/apperror"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type SeatService interface {
	ListSeats(ctx context.Context, eventID int64) (*response.SeatMapResponse, error)
	ListBookedSeats(ctx context.Context, eventID int64) (*response.BookedSeatsResponse, error)
	LockSeat(ctx context.Context, caller Caller, req *request.LockSeatRequest) (*response.SeatResponse, error)
	UnlockSeat(ctx context.Context, caller Caller, req *request.UnlockSeatRequest) (*response.SeatResponse, error)
}

type seatService struct {
	repo *repository.Repository
	deps Dependencies
	ttl  time.Duration
	log  *zap.Logger
}

func NewSeatService(repo *repository.Repository, config utils.BookingConfig, deps Dependencies, log *zap.Logger) SeatService {
	return &seatService{
		repo: repo,
		deps: deps.withDefaults(),
		ttl:  config.SeatLockTTL,
		log:  log.With(zap.String("service", "seat")),
	}
}

func (s *seatService) ListSeats(ctx context.Context, eventID int64) (*response.SeatMapResponse, error) {
	if eventID <= 0 {
		return nil, apperror.Validation("invalid event id", nil)
	}

	var seats []*entity.Seat
	found, err := s.deps.Cache.Get(ctx, eventID, &seats)
	if err != nil {
		s.log.Warn("Seat cache read failed", zap.Int64("event_id", eventID), zap.Error(err))
	}

	if !found {
		event, err := s.repo.Event.FindByID(ctx, eventID)
		if err != nil {
			return nil, toAppError("list seats", err)
		}
		if event == nil {
			return nil, apperror.NotFound("event")
		}

		seats, err = s.repo.Seat.FindByEventID(ctx, eventID)
		if err != nil {
			return nil, toAppError("list seats", err)
		}

		if len(seats) > 0 {
			if err := s.deps.Cache.Set(ctx, eventID, seats); err != nil {
				s.log.Warn("Seat cache write failed", zap.Int64("event_id", eventID), zap.Error(err))
			}
		}
	}

	if len(seats) == 0 {
		return nil, &apperror.Error{
			Kind:    apperror.KindNotFound,
			Code:    "SEATS_NOT_FOUND",
			Message: "no seats found for this event",
		}
	}

	// lock expiry is applied at read time so cached maps never show a stale hold
	now := s.deps.Now()
	resp := &response.SeatMapResponse{
		EventID: eventID,
		Total:   len(seats),
		Seats:   make([]response.SeatResponse, 0, len(seats)),
	}
	for _, seat := range seats {
		status := seat.EffectiveStatus(now, s.ttl)
		if status == entity.SeatStatusAvailable {
			resp.Available++
		}
		resp.Seats = append(resp.Seats, response.SeatToResponse(seat, status))
	}

	return resp, nil
}

func (s *seatService) ListBookedSeats(ctx context.Context, eventID int64) (*response.BookedSeatsResponse, error) {
	if eventID <= 0 {
		return nil, apperror.Validation("invalid event id", nil)
	}

	labels, err := s.repo.Seat.FindBookedLabels(ctx, eventID)
	if err != nil {
		return nil, toAppError("list booked seats", err)
	}

	return &response.BookedSeatsResponse{EventID: eventID, BookedSeats: labels}, nil
}

func (s *seatService) LockSeat(ctx context.Context, caller Caller, req *request.LockSeatRequest) (*response.SeatResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Lock seat validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed", errs)
	}

	if err := Authorize(caller, ActionLockSeat, 0); err != nil {
		return nil, err
	}

	now := s.deps.Now()
	seat, err := s.repo.Seat.Lock(ctx, req.SeatID, req.EventID, caller.ID, now, now.Add(-s.ttl))
	if err != nil {
		return nil, toAppError("lock seat", err)
	}
	s.deps.Metrics.SeatTransition("lock", seat != nil)

	if seat == nil {
		current, err := s.repo.Seat.FindByID(ctx, req.SeatID)
		if err != nil {
			return nil, toAppError("lock seat", err)
		}
		if current == nil || current.EventID != req.EventID {
			return nil, apperror.NotFound("seat")
		}

		s.log.Info("Seat lock rejected",
			zap.Int64("seat_id", req.SeatID),
			zap.String("status", string(current.Status)),
			zap.Int64("customer_id", caller.ID),
		)
		appErr := apperror.InvalidState("SEAT_UNAVAILABLE",
			fmt.Sprintf("seat %s is %s", current.SeatLabel, current.EffectiveStatus(now, s.ttl)))
		appErr.Details = map[string]string{"seat": current.SeatLabel}
		return nil, appErr
	}

	s.invalidate(ctx, seat.EventID)

	s.log.Info("Seat locked",
		zap.Int64("seat_id", seat.ID),
		zap.Int64("customer_id", caller.ID),
	)

	resp := response.SeatToResponse(seat, seat.Status)
	return &resp, nil
}

func (s *seatService) UnlockSeat(ctx context.Context, caller Caller, req *request.UnlockSeatRequest) (*response.SeatResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Unlock seat validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed", errs)
	}

	// the hold is claimed as the caller's own; the update guard checks the holder
	if err := Authorize(caller, ActionUnlockSeat, caller.ID); err != nil {
		return nil, err
	}

	var holder *int64
	if !caller.IsAdmin() {
		holder = &caller.ID
	}

	seat, err := s.repo.Seat.Unlock(ctx, req.SeatID, holder)
	if err != nil {
		return nil, toAppError("unlock seat", err)
	}
	s.deps.Metrics.SeatTransition("unlock", seat != nil)

	if seat == nil {
		current, err := s.repo.Seat.FindByID(ctx, req.SeatID)
		if err != nil {
			return nil, toAppError("unlock seat", err)
		}
		if current == nil {
			return nil, apperror.NotFound("seat")
		}
		if current.Status != entity.SeatStatusLocked {
			return nil, apperror.InvalidState("SEAT_NOT_LOCKED", "seat is not locked")
		}

		var lockedBy int64
		if current.LockedBy != nil {
			lockedBy = *current.LockedBy
		}
		if err := Authorize(caller, ActionUnlockSeat, lockedBy); err != nil {
			return nil, err
		}
		// the holder matched on re-read, so the lock changed hands in between
		return nil, apperror.Conflict("SEAT_LOCK_CHANGED", "seat lock changed, retry")
	}

	s.invalidate(ctx, seat.EventID)

	s.log.Info("Seat unlocked",
		zap.Int64("seat_id", seat.ID),
		zap.Int64("caller_id", caller.ID),
	)

	resp := response.SeatToResponse(seat, seat.Status)
	return &resp, nil
}

func (s *seatService) invalidate(ctx context.Context, eventIDs ...int64) {
	if err := s.deps.Cache.Invalidate(ctx, eventIDs...); err != nil {
		s.log.Warn("Seat cache invalidation failed", zap.Int64s("event_ids", eventIDs), zap.Error(err))
	}
}
