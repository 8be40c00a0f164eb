package repository

import (
	"context"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"go.uber.org/zap"
)

type BookingSeatRepository interface {
	CreateBatch(ctx context.Context, bookingID int64, seatIDs []int64) error
	FindSeatsByBookingID(ctx context.Context, bookingID int64) ([]*entity.Seat, error)
	FindSeatsByBookingIDs(ctx context.Context, bookingIDs []int64) (map[int64][]*entity.Seat, error)
}

type bookingSeatRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingSeatRepository(db database.Querier, log *zap.Logger) BookingSeatRepository {
	return &bookingSeatRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking_seat")),
	}
}

func (r *bookingSeatRepository) CreateBatch(ctx context.Context, bookingID int64, seatIDs []int64) error {
	if len(seatIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO booking_seats (booking_id, seat_id)
		SELECT $1, unnest($2::bigint[])
	`

	result, err := r.db.Exec(ctx, query, bookingID, seatIDs)
	if err != nil {
		r.log.Error("Failed to create booking seats",
			zap.Error(err),
			zap.Int64("booking_id", bookingID),
			zap.Int64s("seat_ids", seatIDs),
		)
		return fmt.Errorf("create booking seats for booking %d: %w", bookingID, err)
	}

	if result.RowsAffected() != int64(len(seatIDs)) {
		return fmt.Errorf("create booking seats for booking %d: inserted %d of %d",
			bookingID, result.RowsAffected(), len(seatIDs))
	}

	return nil
}

func (r *bookingSeatRepository) FindSeatsByBookingID(ctx context.Context, bookingID int64) ([]*entity.Seat, error) {
	query := `
		SELECT s.id, s.event_id, s.seat_label, s.section, s.price, s.status, s.locked_by, s.locked_at,
		       s.created_at, s.updated_at
		FROM booking_seats bs
		JOIN seats s ON s.id = bs.seat_id
		WHERE bs.booking_id = $1
		ORDER BY s.seat_label
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find seats by booking ID",
			zap.Error(err),
			zap.Int64("booking_id", bookingID),
		)
		return nil, fmt.Errorf("find seats for booking %d: %w", bookingID, err)
	}

	return collectSeats(rows)
}

func (r *bookingSeatRepository) FindSeatsByBookingIDs(ctx context.Context, bookingIDs []int64) (map[int64][]*entity.Seat, error) {
	result := make(map[int64][]*entity.Seat, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT bs.booking_id, s.id, s.event_id, s.seat_label, s.section, s.price, s.status, s.locked_by,
		       s.locked_at, s.created_at, s.updated_at
		FROM booking_seats bs
		JOIN seats s ON s.id = bs.seat_id
		WHERE bs.booking_id = ANY($1)
		ORDER BY bs.booking_id, s.seat_label
	`

	rows, err := r.db.Query(ctx, query, bookingIDs)
	if err != nil {
		r.log.Error("Failed to find seats by booking IDs",
			zap.Error(err),
			zap.Int("booking_count", len(bookingIDs)),
		)
		return nil, fmt.Errorf("find seats for %d bookings: %w", len(bookingIDs), err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID int64
		var seat entity.Seat
		err := rows.Scan(
			&bookingID,
			&seat.ID,
			&seat.EventID,
			&seat.SeatLabel,
			&seat.Section,
			&seat.Price,
			&seat.Status,
			&seat.LockedBy,
			&seat.LockedAt,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking seat row: %w", err)
		}
		result[bookingID] = append(result[bookingID], &seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking seat rows: %w", err)
	}

	return result, nil
}
