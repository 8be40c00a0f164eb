package repository

import (
	"context"
	"errors"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CheckInRepository interface {
	Create(ctx context.Context, checkIn *entity.CheckIn) error
	FindFirstByBookingID(ctx context.Context, bookingID int64) (*entity.CheckIn, error)
	FindByEventID(ctx context.Context, eventID int64) ([]*entity.CheckInDetail, error)
}

type checkInRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewCheckInRepository(db database.Querier, log *zap.Logger) CheckInRepository {
	return &checkInRepository{
		db:  db,
		log: log.With(zap.String("repository", "checkin")),
	}
}

func (r *checkInRepository) Create(ctx context.Context, checkIn *entity.CheckIn) error {
	query := `
		INSERT INTO checkins (staff_id, booking_id, timestamp)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, checkIn.StaffID, checkIn.BookingID, checkIn.Timestamp).
		Scan(&checkIn.ID, &checkIn.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create check-in",
			zap.Error(err),
			zap.Int64("booking_id", checkIn.BookingID),
			zap.Int64("staff_id", checkIn.StaffID),
		)
		return fmt.Errorf("create check-in for booking %d: %w", checkIn.BookingID, err)
	}

	return nil
}

func (r *checkInRepository) FindFirstByBookingID(ctx context.Context, bookingID int64) (*entity.CheckIn, error) {
	query := `
		SELECT id, staff_id, booking_id, timestamp, created_at
		FROM checkins
		WHERE booking_id = $1
		ORDER BY timestamp, id
		LIMIT 1
	`

	var checkIn entity.CheckIn
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&checkIn.ID,
		&checkIn.StaffID,
		&checkIn.BookingID,
		&checkIn.Timestamp,
		&checkIn.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find check-in by booking ID",
			zap.Error(err),
			zap.Int64("booking_id", bookingID),
		)
		return nil, fmt.Errorf("find check-in for booking %d: %w", bookingID, err)
	}

	return &checkIn, nil
}

func (r *checkInRepository) FindByEventID(ctx context.Context, eventID int64) ([]*entity.CheckInDetail, error) {
	query := `
		SELECT c.id, c.staff_id, c.booking_id, c.timestamp, c.created_at,
		       b.booking_reference, b.ticket_id, b.ticket_status, b.customer_id,
		       COALESCE(u.name, ''), b.total_seats
		FROM checkins c
		JOIN bookings b ON b.id = c.booking_id
		LEFT JOIN users u ON u.id = b.customer_id
		WHERE b.event_id = $1
		ORDER BY c.timestamp DESC
	`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to find check-ins by event ID",
			zap.Error(err),
			zap.Int64("event_id", eventID),
		)
		return nil, fmt.Errorf("find check-ins for event %d: %w", eventID, err)
	}
	defer rows.Close()

	details := []*entity.CheckInDetail{}
	for rows.Next() {
		var d entity.CheckInDetail
		err := rows.Scan(
			&d.ID,
			&d.StaffID,
			&d.BookingID,
			&d.Timestamp,
			&d.CreatedAt,
			&d.BookingReference,
			&d.TicketID,
			&d.TicketStatus,
			&d.CustomerID,
			&d.CustomerName,
			&d.TotalSeats,
		)
		if err != nil {
			return nil, fmt.Errorf("scan check-in row: %w", err)
		}
		details = append(details, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check-in rows: %w", err)
	}

	return details, nil
}
