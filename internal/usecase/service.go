package usecase

import (
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Seat    SeatService
	Booking BookingService
	CheckIn CheckInService
	Sweeper *Sweeper
}

func NewService(repo *repository.Repository, config *utils.Config, deps Dependencies, log *zap.Logger) *Service {
	deps = deps.withDefaults()
	return &Service{
		Seat:    NewSeatService(repo, config.Booking, deps, log),
		Booking: NewBookingService(repo, config.Booking, deps, log),
		CheckIn: NewCheckInService(repo, deps, log),
		Sweeper: NewSweeper(repo, config.Booking, deps, log),
	}
}
