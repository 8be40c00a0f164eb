package usecase

import (
	"context"
	"strings"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/pkg/apperror"
	"event-ticketing/pkg/notify"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type CheckInService interface {
	ScanTicket(ctx context.Context, caller Caller, req *request.ScanTicketRequest) (*response.ScanResponse, error)
	GetTicketStatus(ctx context.Context, ticketID string) (*response.TicketStatusResponse, error)
	GetEventCheckIns(ctx context.Context, caller Caller, eventID int64) (*response.EventCheckInsResponse, error)
	MarkTicketUsed(ctx context.Context, caller Caller, ticketID string) (*response.TicketStatusResponse, error)
}

type checkInService struct {
	repo *repository.Repository
	deps Dependencies
	log  *zap.Logger
}

func NewCheckInService(repo *repository.Repository, deps Dependencies, log *zap.Logger) CheckInService {
	return &checkInService{
		repo: repo,
		deps: deps.withDefaults(),
		log:  log.With(zap.String("service", "checkin")),
	}
}

// ScanTicket admits a ticket once. Only the valid -> scanned transition writes:
// it records the check-in and moves the booking's seats to checked_in. Every
// later scan of the same ticket reports the first check-in without touching state.
func (s *checkInService) ScanTicket(ctx context.Context, caller Caller, req *request.ScanTicketRequest) (*response.ScanResponse, error) {
	req.TicketID = strings.TrimSpace(req.TicketID)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("validation failed", errs)
	}

	if err := Authorize(caller, ActionScanTicket, 0); err != nil {
		return nil, err
	}

	var (
		booking *entity.Booking
		first   *entity.CheckIn
		status  response.ScanStatus
	)

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		booking, err = tx.Booking.MarkScanned(ctx, req.TicketID)
		if err != nil {
			return err
		}

		if booking != nil {
			first = &entity.CheckIn{
				StaffID:   caller.ID,
				BookingID: booking.ID,
				Timestamp: s.deps.Now(),
			}
			if err := tx.CheckIn.Create(ctx, first); err != nil {
				return err
			}

			booking.Seats, err = tx.BookingSeat.FindSeatsByBookingID(ctx, booking.ID)
			if err != nil {
				return err
			}
			ids := make([]int64, len(booking.Seats))
			for i, seat := range booking.Seats {
				ids[i] = seat.ID
			}
			if _, err := tx.Seat.CheckIn(ctx, ids); err != nil {
				return err
			}
			status = response.ScanValid
			return nil
		}

		booking, err = tx.Booking.FindByTicketID(ctx, req.TicketID)
		if err != nil {
			return err
		}
		if booking == nil {
			status = response.ScanInvalid
			return nil
		}

		switch booking.TicketStatus {
		case entity.TicketStatusScanned:
			status = response.ScanAlreadyScanned
			first, err = tx.CheckIn.FindFirstByBookingID(ctx, booking.ID)
			return err
		case entity.TicketStatusUsed, entity.TicketStatusCancelled:
			status = response.ScanAlreadyUsed
		default:
			// valid but unpaid
			status = response.ScanInvalid
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to scan ticket", zap.Error(err), zap.String("ticket_id", req.TicketID))
		return nil, toAppError("scan ticket", err)
	}

	s.deps.Metrics.ScanOutcome(string(status))

	if booking == nil {
		s.log.Warn("Scan of unknown ticket",
			zap.String("ticket_id", req.TicketID),
			zap.Int64("staff_id", caller.ID),
		)
		return &response.ScanResponse{
			Status:  response.ScanInvalid,
			Message: "Invalid ticket ID - ticket not found",
		}, nil
	}

	event, customer := s.describe(ctx, booking)
	resp := &response.ScanResponse{
		Status:  status,
		Found:   true,
		Booking: response.TicketBookingFrom(booking, event, customer, first),
	}

	switch status {
	case response.ScanValid:
		resp.Message = "Ticket validated and scanned successfully"
		if err := s.deps.Cache.Invalidate(ctx, booking.EventID); err != nil {
			s.log.Warn("Seat cache invalidation failed", zap.Int64("event_id", booking.EventID), zap.Error(err))
		}
		s.publish(ctx, booking)
		s.log.Info("Ticket scanned",
			zap.String("ticket_id", booking.TicketID),
			zap.Int64("booking_id", booking.ID),
			zap.Int64("staff_id", caller.ID),
		)
	case response.ScanAlreadyScanned:
		resp.Message = "Ticket already scanned"
	case response.ScanAlreadyUsed:
		resp.Message = "Ticket already " + string(booking.TicketStatus)
	default:
		resp.Message = "Ticket payment is " + string(booking.PaymentStatus)
	}

	return resp, nil
}

func (s *checkInService) GetTicketStatus(ctx context.Context, ticketID string) (*response.TicketStatusResponse, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, apperror.Validation("ticket id is required", nil)
	}

	booking, err := s.repo.Booking.FindByTicketID(ctx, ticketID)
	if err != nil {
		return nil, toAppError("get ticket status", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("ticket")
	}

	return s.ticketStatus(ctx, booking)
}

func (s *checkInService) MarkTicketUsed(ctx context.Context, caller Caller, ticketID string) (*response.TicketStatusResponse, error) {
	if err := Authorize(caller, ActionMarkTicketUsed, 0); err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByTicketID(ctx, strings.TrimSpace(ticketID))
	if err != nil {
		return nil, toAppError("mark ticket used", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("ticket")
	}

	ok, err := s.repo.Booking.UpdateTicketStatus(ctx, booking.ID,
		[]entity.TicketStatus{entity.TicketStatusScanned}, entity.TicketStatusUsed)
	if err != nil {
		return nil, toAppError("mark ticket used", err)
	}
	if !ok {
		return nil, apperror.Conflict("TICKET_NOT_SCANNED",
			"only a scanned ticket can be marked used, ticket is "+string(booking.TicketStatus))
	}
	booking.TicketStatus = entity.TicketStatusUsed

	s.log.Info("Ticket marked used",
		zap.String("ticket_id", booking.TicketID),
		zap.Int64("staff_id", caller.ID),
	)

	return s.ticketStatus(ctx, booking)
}

func (s *checkInService) GetEventCheckIns(ctx context.Context, caller Caller, eventID int64) (*response.EventCheckInsResponse, error) {
	if err := Authorize(caller, ActionListEventCheckIns, 0); err != nil {
		return nil, err
	}

	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return nil, toAppError("list check-ins", err)
	}
	if event == nil {
		return nil, apperror.NotFound("event")
	}

	details, err := s.repo.CheckIn.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, toAppError("list check-ins", err)
	}

	resp := &response.EventCheckInsResponse{
		EventID:  eventID,
		Total:    len(details),
		CheckIns: make([]response.CheckInResponse, 0, len(details)),
	}
	for _, d := range details {
		resp.CheckIns = append(resp.CheckIns, response.CheckInToResponse(d))
	}
	return resp, nil
}

func (s *checkInService) ticketStatus(ctx context.Context, booking *entity.Booking) (*response.TicketStatusResponse, error) {
	resp := &response.TicketStatusResponse{
		TicketID:         booking.TicketID,
		BookingReference: booking.BookingReference,
		EventID:          booking.EventID,
		TotalSeats:       booking.TotalSeats,
		Amount:           booking.Amount,
		TicketStatus:     booking.TicketStatus,
		PaymentStatus:    booking.PaymentStatus,
		CreatedAt:        booking.CreatedAt,
	}

	event, err := s.repo.Event.FindByID(ctx, booking.EventID)
	if err != nil {
		return nil, toAppError("get ticket status", err)
	}
	if event != nil {
		date := event.Date
		resp.EventName = event.Name
		resp.EventDate = &date
		resp.Venue = event.Venue
	}

	if booking.TicketStatus != entity.TicketStatusValid {
		first, err := s.repo.CheckIn.FindFirstByBookingID(ctx, booking.ID)
		if err != nil {
			return nil, toAppError("get ticket status", err)
		}
		if first != nil {
			scannedAt := first.Timestamp
			resp.ScannedAt = &scannedAt
		}
	}

	return resp, nil
}

// describe loads display names for the scan payload; lookups are best effort
func (s *checkInService) describe(ctx context.Context, booking *entity.Booking) (*entity.Event, *entity.User) {
	event, err := s.repo.Event.FindByID(ctx, booking.EventID)
	if err != nil {
		s.log.Warn("Failed to load event for scan", zap.Int64("event_id", booking.EventID), zap.Error(err))
	}
	customer, err := s.repo.User.FindByID(ctx, booking.CustomerID)
	if err != nil {
		s.log.Warn("Failed to load customer for scan", zap.Int64("customer_id", booking.CustomerID), zap.Error(err))
	}
	return event, customer
}

func (s *checkInService) publish(ctx context.Context, booking *entity.Booking) {
	if err := s.deps.Notifier.Publish(ctx, bookingEvent(notify.EventTicketScanned, booking, "", s.deps.Now())); err != nil {
		s.log.Warn("Failed to publish scan event", zap.Int64("booking_id", booking.ID), zap.Error(err))
	}
}
