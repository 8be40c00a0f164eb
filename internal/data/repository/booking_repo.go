package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// Create inserts the booking and reports false when bookingReference or
	// ticketId already exists, leaving the transaction usable for a retry.
	Create(ctx context.Context, booking *entity.Booking) (bool, error)
	FindByID(ctx context.Context, id int64) (*entity.Booking, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*entity.Booking, error)
	FindByTicketID(ctx context.Context, ticketID string) (*entity.Booking, error)
	FindByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]*entity.Booking, error)
	CountByCustomerID(ctx context.Context, customerID int64) (int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error)
	CountAll(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error

	// Status transitions
	UpdatePayment(ctx context.Context, id int64, status entity.PaymentStatus, transactionID *string, paidAt *time.Time) error
	MarkScanned(ctx context.Context, ticketID string) (*entity.Booking, error)
	UpdateTicketStatus(ctx context.Context, id int64, from []entity.TicketStatus, to entity.TicketStatus) (bool, error)
	FailStalePending(ctx context.Context, createdBefore time.Time) ([]*entity.Booking, error)
}

const bookingColumns = `id, customer_id, event_id, total_seats, amount, booking_reference, ticket_id,
	ticket_status, payment_status, transaction_id, paid_at, created_at, updated_at`

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.CustomerID,
		&booking.EventID,
		&booking.TotalSeats,
		&booking.Amount,
		&booking.BookingReference,
		&booking.TicketID,
		&booking.TicketStatus,
		&booking.PaymentStatus,
		&booking.TransactionID,
		&booking.PaidAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func collectBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	defer rows.Close()

	bookings := []*entity.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) (bool, error) {
	query := `
		INSERT INTO bookings (customer_id, event_id, total_seats, amount, booking_reference, ticket_id,
		                      ticket_status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		booking.CustomerID,
		booking.EventID,
		booking.TotalSeats,
		booking.Amount,
		booking.BookingReference,
		booking.TicketID,
		booking.TicketStatus,
		booking.PaymentStatus,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		r.log.Warn("Booking code collision",
			zap.String("booking_reference", booking.BookingReference),
			zap.String("ticket_id", booking.TicketID),
		)
		return false, nil
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_reference", booking.BookingReference),
			zap.Int64("customer_id", booking.CustomerID),
		)
		return false, fmt.Errorf("create booking %s: %w", booking.BookingReference, err)
	}

	return true, nil
}

func (r *bookingRepository) findOne(ctx context.Context, what string, query string, arg any) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by "+what,
			zap.Error(err),
			zap.Any(what, arg),
		)
		return nil, fmt.Errorf("find booking by %s %v: %w", what, arg, err)
	}
	return booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id int64) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.findOne(ctx, "id", query, id)
}

// FindByIDForUpdate row-locks the booking until the surrounding transaction ends
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, "id", query, id)
}

func (r *bookingRepository) FindByTicketID(ctx context.Context, ticketID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ticket_id = $1`
	return r.findOne(ctx, "ticket_id", query, ticketID)
}

func (r *bookingRepository) FindByCustomerID(ctx context.Context, customerID int64, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by customer ID",
			zap.Error(err),
			zap.Int64("customer_id", customerID),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by customer %d: %w", customerID, err)
	}

	return collectBookings(rows)
}

func (r *bookingRepository) CountByCustomerID(ctx context.Context, customerID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE customer_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, customerID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by customer ID",
			zap.Error(err),
			zap.Int64("customer_id", customerID),
		)
		return 0, fmt.Errorf("count bookings by customer %d: %w", customerID, err)
	}

	return count, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find all bookings",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all bookings: %w", err)
	}

	return collectBookings(rows)
}

func (r *bookingRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

// Delete removes the booking; booking_seats rows cascade
func (r *bookingRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.Int64("booking_id", id),
		)
		return fmt.Errorf("delete booking %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete booking %d: %w", id, pgx.ErrNoRows)
	}

	return nil
}

// UpdatePayment moves a pending booking with a valid ticket to status. The
// guard makes a second settlement, or one racing a cancel, fail instead of
// overwriting the booking.
func (r *bookingRepository) UpdatePayment(ctx context.Context, id int64, status entity.PaymentStatus, transactionID *string, paidAt *time.Time) error {
	query := `
		UPDATE bookings
		SET payment_status = $2, transaction_id = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $1 AND payment_status = 'pending' AND ticket_status = 'valid'
	`

	result, err := r.db.Exec(ctx, query, id, status, transactionID, paidAt)
	if err != nil {
		r.log.Error("Failed to update booking payment",
			zap.Error(err),
			zap.Int64("booking_id", id),
			zap.String("payment_status", string(status)),
		)
		return fmt.Errorf("update payment for booking %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update payment for booking %d: %w", id, pgx.ErrNoRows)
	}

	return nil
}

// MarkScanned flips a paid, valid ticket to scanned. nil means the ticket was
// unknown or not in a scannable state.
func (r *bookingRepository) MarkScanned(ctx context.Context, ticketID string) (*entity.Booking, error) {
	query := `
		UPDATE bookings
		SET ticket_status = 'scanned', updated_at = NOW()
		WHERE ticket_id = $1 AND ticket_status = 'valid' AND payment_status = 'completed'
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.db.QueryRow(ctx, query, ticketID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to mark ticket scanned",
			zap.Error(err),
			zap.String("ticket_id", ticketID),
		)
		return nil, fmt.Errorf("mark ticket %s scanned: %w", ticketID, err)
	}

	return booking, nil
}

func (r *bookingRepository) UpdateTicketStatus(ctx context.Context, id int64, from []entity.TicketStatus, to entity.TicketStatus) (bool, error) {
	fromValues := make([]string, len(from))
	for i, status := range from {
		fromValues[i] = string(status)
	}

	query := `
		UPDATE bookings
		SET ticket_status = $2, updated_at = NOW()
		WHERE id = $1 AND ticket_status = ANY($3)
	`

	result, err := r.db.Exec(ctx, query, id, to, fromValues)
	if err != nil {
		r.log.Error("Failed to update ticket status",
			zap.Error(err),
			zap.Int64("booking_id", id),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("update ticket status for booking %d: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}

// FailStalePending marks abandoned pending bookings failed and returns them
func (r *bookingRepository) FailStalePending(ctx context.Context, createdBefore time.Time) ([]*entity.Booking, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'failed', updated_at = NOW()
		WHERE payment_status = 'pending' AND created_at < $1
		RETURNING ` + bookingColumns

	rows, err := r.db.Query(ctx, query, createdBefore)
	if err != nil {
		r.log.Error("Failed to fail stale pending bookings", zap.Error(err))
		return nil, fmt.Errorf("fail stale pending bookings: %w", err)
	}

	return collectBookings(rows)
}
