package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/pkg/apperror"
	"event-ticketing/pkg/notify"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

// maxCodeAttempts bounds regeneration of bookingReference/ticketId on collision
const maxCodeAttempts = 5

type BookingService interface {
	CreateBooking(ctx context.Context, caller Caller, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBookingByID(ctx context.Context, caller Caller, bookingID int64) (*response.BookingResponse, error)
	GetCustomerBookings(ctx context.Context, caller Caller, customerID int64, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetAllBookings(ctx context.Context, caller Caller, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// Payment
	ProcessPayment(ctx context.Context, caller Caller, req *request.ProcessPaymentRequest) (*response.PaymentResponse, error)

	DeleteBooking(ctx context.Context, caller Caller, bookingID int64) error
	CancelBooking(ctx context.Context, caller Caller, bookingID int64) (*response.BookingResponse, error)
}

type bookingService struct {
	repo   *repository.Repository
	deps   Dependencies
	config utils.BookingConfig
	log    *zap.Logger
}

func NewBookingService(repo *repository.Repository, config utils.BookingConfig, deps Dependencies, log *zap.Logger) BookingService {
	return &bookingService{
		repo:   repo,
		deps:   deps.withDefaults(),
		config: config,
		log:    log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, caller Caller, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed", errs)
	}
	if len(req.Seats) == 0 && req.NumberOfSeats == 0 {
		return nil, apperror.Validation("validation failed", map[string]string{
			"Seats": "Provide seats or numberOfSeats",
		})
	}
	if dup := firstDuplicate(req.Seats); dup != "" {
		return nil, apperror.Validation("validation failed", map[string]string{
			"Seats": fmt.Sprintf("Seat %s is listed more than once", dup),
		})
	}

	if err := Authorize(caller, ActionCreateBooking, req.CustomerID); err != nil {
		return nil, err
	}

	customer, err := s.repo.User.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, toAppError("create booking", err)
	}
	if customer == nil {
		return nil, apperror.NotFound("customer")
	}

	event, err := s.repo.Event.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, toAppError("create booking", err)
	}
	if event == nil {
		return nil, apperror.NotFound("event")
	}

	now := s.deps.Now()
	lockCutoff := now.Add(-s.config.SeatLockTTL)

	var booking *entity.Booking
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		seats, err := s.selectSeats(ctx, tx, req, lockCutoff)
		if err != nil {
			return err
		}

		// seats arrive ordered by id so concurrent multi-seat claims lock rows in the same order
		claimed := make([]*entity.Seat, 0, len(seats))
		for _, seat := range seats {
			sold, err := tx.Seat.Sell(ctx, seat.ID, req.CustomerID, lockCutoff)
			if err != nil {
				return err
			}
			s.deps.Metrics.SeatTransition("sell", sold != nil)
			if sold == nil {
				return apperror.SeatUnavailable(seat.SeatLabel)
			}
			claimed = append(claimed, sold)
		}

		booking = &entity.Booking{
			CustomerID:    req.CustomerID,
			EventID:       req.EventID,
			TotalSeats:    len(claimed),
			Amount:        s.amountFor(claimed, req.TotalAmount),
			TicketStatus:  entity.TicketStatusValid,
			PaymentStatus: entity.PaymentStatusPending,
			Seats:         claimed,
		}
		if err := s.insertWithUniqueCodes(ctx, tx, booking, now); err != nil {
			return err
		}

		seatIDs := make([]int64, len(claimed))
		for i, seat := range claimed {
			seatIDs[i] = seat.ID
		}
		return tx.BookingSeat.CreateBatch(ctx, booking.ID, seatIDs)
	})
	if err != nil {
		s.deps.Metrics.BookingOutcome(string(apperror.KindOf(err)))
		if apperror.KindOf(err) == apperror.KindPersistence {
			s.log.Error("Failed to create booking",
				zap.Error(err),
				zap.Int64("customer_id", req.CustomerID),
				zap.Int64("event_id", req.EventID),
			)
		} else {
			s.log.Info("Booking rejected",
				zap.Error(err),
				zap.Int64("customer_id", req.CustomerID),
				zap.Int64("event_id", req.EventID),
			)
		}
		return nil, toAppError("create booking", err)
	}

	s.deps.Metrics.BookingOutcome("created")
	s.invalidate(ctx, booking.EventID)
	s.publish(ctx, notify.EventBookingCreated, booking, "")

	s.log.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.String("booking_reference", booking.BookingReference),
		zap.Strings("seats", booking.SeatLabels()),
	)

	if s.config.CaptureOnCreation {
		settled, err := s.settle(ctx, booking.ID, booking.Amount)
		if err != nil {
			// the booking stays pending and can be paid later
			s.log.Warn("Capture on creation failed", zap.Int64("booking_id", booking.ID), zap.Error(err))
		} else {
			booking = settled
		}
	}

	resp := response.BookingToResponse(booking)
	qr, err := s.deps.Coder.TicketURL(booking.TicketID, booking.BookingReference, booking.EventID)
	if err != nil {
		s.log.Warn("Failed to build ticket QR code", zap.Int64("booking_id", booking.ID), zap.Error(err))
	}
	resp.QRCode = qr

	return &resp, nil
}

func (s *bookingService) selectSeats(ctx context.Context, tx *repository.Repository, req *request.CreateBookingRequest, lockCutoff time.Time) ([]*entity.Seat, error) {
	if len(req.Seats) == 0 {
		seats, err := tx.Seat.PickAvailable(ctx, req.EventID, req.NumberOfSeats, lockCutoff)
		if err != nil {
			return nil, err
		}
		if len(seats) < req.NumberOfSeats {
			return nil, &apperror.Error{
				Kind:    apperror.KindSeatUnavailable,
				Code:    "INSUFFICIENT_SEATS",
				Message: fmt.Sprintf("only %d seats are available", len(seats)),
				Details: map[string]int{"requested": req.NumberOfSeats, "available": len(seats)},
			}
		}
		return seats, nil
	}

	seats, err := tx.Seat.FindByLabels(ctx, req.EventID, req.Seats)
	if err != nil {
		return nil, err
	}
	if len(seats) != len(req.Seats) {
		known := make(map[string]struct{}, len(seats))
		for _, seat := range seats {
			known[seat.SeatLabel] = struct{}{}
		}
		for _, label := range req.Seats {
			if _, ok := known[label]; !ok {
				appErr := apperror.NotFound("seat")
				appErr.Message = fmt.Sprintf("seat %s not found", label)
				appErr.Details = map[string]string{"seat": label}
				return nil, appErr
			}
		}
	}
	return seats, nil
}

// amountFor uses the requested total when given, otherwise each seat's price
// with the flat rate standing in for unpriced seats
func (s *bookingService) amountFor(seats []*entity.Seat, requested *float64) float64 {
	if requested != nil {
		return *requested
	}
	var total float64
	for _, seat := range seats {
		if seat.Price != nil {
			total += *seat.Price
		} else {
			total += s.config.FlatSeatPrice
		}
	}
	return math.Round(total*100) / 100
}

func (s *bookingService) insertWithUniqueCodes(ctx context.Context, tx *repository.Repository, booking *entity.Booking, now time.Time) error {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		booking.BookingReference = utils.GenerateBookingReference(now)
		booking.TicketID = utils.GenerateTicketID()

		created, err := tx.Booking.Create(ctx, booking)
		if err != nil {
			return err
		}
		if created {
			return nil
		}
	}
	return fmt.Errorf("generate unique booking codes after %d attempts", maxCodeAttempts)
}

func (s *bookingService) GetBookingByID(ctx context.Context, caller Caller, bookingID int64) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, toAppError("get booking", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("booking")
	}

	if err := Authorize(caller, ActionViewBooking, booking.CustomerID); err != nil {
		s.log.Warn("Booking access denied",
			zap.Int64("booking_id", bookingID),
			zap.Int64("caller_id", caller.ID),
		)
		return nil, err
	}

	booking.Seats, err = s.repo.BookingSeat.FindSeatsByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, toAppError("get booking", err)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetCustomerBookings(ctx context.Context, caller Caller, customerID int64, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if err := Authorize(caller, ActionListOwnBookings, customerID); err != nil {
		return nil, err
	}

	total, err := s.repo.Booking.CountByCustomerID(ctx, customerID)
	if err != nil {
		return nil, toAppError("list bookings", err)
	}

	bookings, err := s.repo.Booking.FindByCustomerID(ctx, customerID, req.Limit(), req.Offset())
	if err != nil {
		return nil, toAppError("list bookings", err)
	}

	return s.page(ctx, bookings, req, total)
}

func (s *bookingService) GetAllBookings(ctx context.Context, caller Caller, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if err := Authorize(caller, ActionListAllBookings, 0); err != nil {
		return nil, err
	}

	total, err := s.repo.Booking.CountAll(ctx)
	if err != nil {
		return nil, toAppError("list bookings", err)
	}

	bookings, err := s.repo.Booking.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, toAppError("list bookings", err)
	}

	return s.page(ctx, bookings, req, total)
}

func (s *bookingService) page(ctx context.Context, bookings []*entity.Booking, req *request.PaginatedRequest, total int64) (*response.PaginatedResponse[response.BookingResponse], error) {
	ids := make([]int64, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}

	seatsByBooking, err := s.repo.BookingSeat.FindSeatsByBookingIDs(ctx, ids)
	if err != nil {
		return nil, toAppError("list bookings", err)
	}

	data := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		b.Seats = seatsByBooking[b.ID]
		data = append(data, response.BookingToResponse(b))
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

func (s *bookingService) ProcessPayment(ctx context.Context, caller Caller, req *request.ProcessPaymentRequest) (*response.PaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Process payment validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed", errs)
	}

	booking, err := s.repo.Booking.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, toAppError("process payment", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("booking")
	}
	if err := Authorize(caller, ActionPayBooking, booking.CustomerID); err != nil {
		return nil, err
	}
	if math.Abs(booking.Amount-req.Amount) > 0.005 {
		return nil, apperror.Validation("amount does not match booking amount", map[string]float64{
			"expected": booking.Amount,
			"received": req.Amount,
		})
	}

	settled, err := s.settle(ctx, booking.ID, req.Amount)
	if err != nil {
		return nil, err
	}

	resp := response.PaymentToResponse(settled)
	if settled.PaymentStatus == entity.PaymentStatusFailed {
		return nil, &apperror.Error{
			Kind:    apperror.KindValidation,
			Code:    "PAYMENT_DECLINED",
			Message: "payment declined, the seats have been released",
			Details: resp,
		}
	}
	return &resp, nil
}

// settle charges a pending booking while holding its row lock. A decline
// fails the booking and releases its seats in the same transaction.
func (s *bookingService) settle(ctx context.Context, bookingID int64, amount float64) (*entity.Booking, error) {
	var booking *entity.Booking
	var reason string

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		booking, err = tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperror.NotFound("booking")
		}
		if booking.PaymentStatus != entity.PaymentStatusPending {
			return apperror.Conflict("PAYMENT_ALREADY_PROCESSED",
				fmt.Sprintf("booking payment is already %s", booking.PaymentStatus))
		}
		if booking.TicketStatus != entity.TicketStatusValid {
			return apperror.Conflict("BOOKING_CANCELLED",
				fmt.Sprintf("booking ticket is %s and cannot be paid", booking.TicketStatus))
		}

		result, err := s.deps.Payment.Charge(ctx, booking.ID, amount)
		if err != nil {
			return fmt.Errorf("charge booking %d: %w", booking.ID, err)
		}

		now := s.deps.Now()
		if result.Approved {
			txID := result.TransactionID
			booking.PaymentStatus = entity.PaymentStatusCompleted
			booking.TransactionID = &txID
			booking.PaidAt = &now
			return tx.Booking.UpdatePayment(ctx, booking.ID, booking.PaymentStatus, booking.TransactionID, booking.PaidAt)
		}

		reason = result.Reason
		if err := tx.Booking.UpdatePayment(ctx, booking.ID, entity.PaymentStatusFailed, nil, nil); err != nil {
			return err
		}
		if err := s.releaseSeats(ctx, tx, booking); err != nil {
			return err
		}
		booking.PaymentStatus = entity.PaymentStatusFailed
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindPersistence {
			s.log.Error("Failed to process payment", zap.Error(err), zap.Int64("booking_id", bookingID))
		}
		return nil, toAppError("process payment", err)
	}

	if booking.PaymentStatus == entity.PaymentStatusCompleted {
		s.log.Info("Payment completed",
			zap.Int64("booking_id", booking.ID),
			zap.String("transaction_id", *booking.TransactionID),
		)
		s.publish(ctx, notify.EventBookingPaid, booking, "")
	} else {
		s.log.Info("Payment declined, seats released",
			zap.Int64("booking_id", booking.ID),
			zap.String("reason", reason),
		)
		s.invalidate(ctx, booking.EventID)
		s.publish(ctx, notify.EventBookingReleased, booking, "payment declined")
	}

	return booking, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, caller Caller, bookingID int64) error {
	var booking *entity.Booking

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		booking, err = tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperror.NotFound("booking")
		}
		if err := Authorize(caller, ActionDeleteBooking, booking.CustomerID); err != nil {
			return err
		}
		if booking.TicketStatus == entity.TicketStatusScanned || booking.TicketStatus == entity.TicketStatusUsed {
			return apperror.Conflict("TICKET_ALREADY_SCANNED", "a checked-in booking cannot be deleted")
		}
		if booking.TicketStatus == entity.TicketStatusCancelled {
			// a ticket cancelled after its scan still owns check-in records
			first, err := tx.CheckIn.FindFirstByBookingID(ctx, booking.ID)
			if err != nil {
				return err
			}
			if first != nil {
				return apperror.Conflict("TICKET_ALREADY_SCANNED", "a checked-in booking cannot be deleted")
			}
		}

		if err := s.releaseSeats(ctx, tx, booking); err != nil {
			return err
		}
		return tx.Booking.Delete(ctx, booking.ID)
	})
	if err != nil {
		return toAppError("delete booking", err)
	}

	s.invalidate(ctx, booking.EventID)
	s.publish(ctx, notify.EventBookingReleased, booking, "booking deleted")

	s.log.Info("Booking deleted",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("caller_id", caller.ID),
	)
	return nil
}

func (s *bookingService) CancelBooking(ctx context.Context, caller Caller, bookingID int64) (*response.BookingResponse, error) {
	if err := Authorize(caller, ActionCancelBooking, 0); err != nil {
		return nil, err
	}

	var booking *entity.Booking
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		booking, err = tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperror.NotFound("booking")
		}

		// release before the status flips: releaseSeats skips cancelled bookings
		if err := s.releaseSeats(ctx, tx, booking); err != nil {
			return err
		}

		ok, err := tx.Booking.UpdateTicketStatus(ctx, booking.ID,
			[]entity.TicketStatus{entity.TicketStatusValid, entity.TicketStatusScanned},
			entity.TicketStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("TICKET_NOT_CANCELLABLE",
				fmt.Sprintf("ticket is already %s", booking.TicketStatus))
		}
		booking.TicketStatus = entity.TicketStatusCancelled
		return nil
	})
	if err != nil {
		return nil, toAppError("cancel booking", err)
	}

	s.invalidate(ctx, booking.EventID)
	s.publish(ctx, notify.EventBookingReleased, booking, "booking cancelled")

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// releaseSeats returns a booking's sold seats to available. Only bookings that
// still hold their seats are touched: a failed or cancelled booking released
// them already and they may since belong to someone else.
func (s *bookingService) releaseSeats(ctx context.Context, tx *repository.Repository, booking *entity.Booking) error {
	seats, err := tx.BookingSeat.FindSeatsByBookingID(ctx, booking.ID)
	if err != nil {
		return err
	}
	booking.Seats = seats

	if !holdsSeats(booking) {
		return nil
	}

	ids := make([]int64, len(seats))
	for i, seat := range seats {
		ids[i] = seat.ID
	}
	released, err := tx.Seat.Release(ctx, ids)
	if err != nil {
		return err
	}
	s.deps.Metrics.SeatTransition("release", released > 0)
	return nil
}

func holdsSeats(b *entity.Booking) bool {
	return b.PaymentStatus != entity.PaymentStatusFailed && b.TicketStatus != entity.TicketStatusCancelled
}

func (s *bookingService) invalidate(ctx context.Context, eventIDs ...int64) {
	if err := s.deps.Cache.Invalidate(ctx, eventIDs...); err != nil {
		s.log.Warn("Seat cache invalidation failed", zap.Int64s("event_ids", eventIDs), zap.Error(err))
	}
}

func (s *bookingService) publish(ctx context.Context, kind string, booking *entity.Booking, reason string) {
	err := s.deps.Notifier.Publish(ctx, bookingEvent(kind, booking, reason, s.deps.Now()))
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("Failed to publish booking event",
			zap.String("type", kind),
			zap.Int64("booking_id", booking.ID),
			zap.Error(err),
		)
	}
}

func bookingEvent(kind string, b *entity.Booking, reason string, at time.Time) notify.BookingEvent {
	return notify.BookingEvent{
		Type:             kind,
		BookingID:        b.ID,
		CustomerID:       b.CustomerID,
		EventID:          b.EventID,
		BookingReference: b.BookingReference,
		TicketID:         b.TicketID,
		Seats:            b.SeatLabels(),
		Amount:           b.Amount,
		PaymentStatus:    string(b.PaymentStatus),
		TicketStatus:     string(b.TicketStatus),
		Reason:           reason,
		OccurredAt:       at.UTC(),
	}
}

func firstDuplicate(labels []string) string {
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			return label
		}
		seen[label] = struct{}{}
	}
	return ""
}
