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

// Every state change below is a conditional UPDATE on the seat row. A nil
// seat (or zero count) from a transition means the guard did not hold.
type SeatRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Seat, error)
	FindByEventID(ctx context.Context, eventID int64) ([]*entity.Seat, error)
	FindByLabels(ctx context.Context, eventID int64, labels []string) ([]*entity.Seat, error)
	FindBookedLabels(ctx context.Context, eventID int64) ([]string, error)
	PickAvailable(ctx context.Context, eventID int64, count int, lockCutoff time.Time) ([]*entity.Seat, error)
	CreateBatch(ctx context.Context, seats []*entity.Seat) error

	// Transitions
	Lock(ctx context.Context, seatID, eventID, customerID int64, now, lockCutoff time.Time) (*entity.Seat, error)
	Unlock(ctx context.Context, seatID int64, holderID *int64) (*entity.Seat, error)
	Sell(ctx context.Context, seatID, customerID int64, lockCutoff time.Time) (*entity.Seat, error)
	Release(ctx context.Context, seatIDs []int64) (int64, error)
	CheckIn(ctx context.Context, seatIDs []int64) (int64, error)
	ReleaseExpiredLocks(ctx context.Context, lockCutoff time.Time) ([]int64, error)
}

const seatColumns = `id, event_id, seat_label, section, price, status, locked_by, locked_at, created_at, updated_at`

type seatRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewSeatRepository(db database.Querier, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

func scanSeat(row pgx.Row) (*entity.Seat, error) {
	var seat entity.Seat
	err := row.Scan(
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
		return nil, err
	}
	return &seat, nil
}

func collectSeats(rows pgx.Rows) ([]*entity.Seat, error) {
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seat rows: %w", err)
	}
	return seats, nil
}

// transition runs a conditional UPDATE ... RETURNING and maps "no row" to nil
func (r *seatRepository) transition(ctx context.Context, name string, seatID int64, query string, args ...any) (*entity.Seat, error) {
	seat, err := scanSeat(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		r.log.Debug("Seat transition guard failed",
			zap.String("transition", name),
			zap.Int64("seat_id", seatID),
		)
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to "+name+" seat",
			zap.Error(err),
			zap.Int64("seat_id", seatID),
		)
		return nil, fmt.Errorf("%s seat %d: %w", name, seatID, err)
	}
	return seat, nil
}

func (r *seatRepository) FindByID(ctx context.Context, id int64) (*entity.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`

	seat, err := scanSeat(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find seat by ID",
			zap.Error(err),
			zap.Int64("seat_id", id),
		)
		return nil, fmt.Errorf("find seat %d: %w", id, err)
	}

	return seat, nil
}

func (r *seatRepository) FindByEventID(ctx context.Context, eventID int64) ([]*entity.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE event_id = $1
		ORDER BY seat_label
	`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to find seats by event ID",
			zap.Error(err),
			zap.Int64("event_id", eventID),
		)
		return nil, fmt.Errorf("find seats for event %d: %w", eventID, err)
	}

	return collectSeats(rows)
}

func (r *seatRepository) FindByLabels(ctx context.Context, eventID int64, labels []string) ([]*entity.Seat, error) {
	if len(labels) == 0 {
		return []*entity.Seat{}, nil
	}

	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE event_id = $1 AND seat_label = ANY($2)
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, eventID, labels)
	if err != nil {
		r.log.Error("Failed to find seats by labels",
			zap.Error(err),
			zap.Int64("event_id", eventID),
			zap.Strings("labels", labels),
		)
		return nil, fmt.Errorf("find seats by labels for event %d: %w", eventID, err)
	}

	return collectSeats(rows)
}

func (r *seatRepository) FindBookedLabels(ctx context.Context, eventID int64) ([]string, error) {
	query := `
		SELECT seat_label
		FROM seats
		WHERE event_id = $1 AND status IN ('sold', 'checked_in')
		ORDER BY seat_label
	`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to find booked seats",
			zap.Error(err),
			zap.Int64("event_id", eventID),
		)
		return nil, fmt.Errorf("find booked seats for event %d: %w", eventID, err)
	}
	defer rows.Close()

	labels := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan booked seat label: %w", err)
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booked seat labels: %w", err)
	}

	return labels, nil
}

// PickAvailable row-locks up to count claimable seats. SKIP LOCKED keeps two
// concurrent auto-selections from queueing behind each other on the same rows.
func (r *seatRepository) PickAvailable(ctx context.Context, eventID int64, count int, lockCutoff time.Time) ([]*entity.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE event_id = $1
		  AND (status = 'available' OR (status = 'locked' AND locked_at < $2))
		ORDER BY seat_label
		LIMIT $3
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.db.Query(ctx, query, eventID, lockCutoff, count)
	if err != nil {
		r.log.Error("Failed to pick available seats",
			zap.Error(err),
			zap.Int64("event_id", eventID),
			zap.Int("count", count),
		)
		return nil, fmt.Errorf("pick %d available seats for event %d: %w", count, eventID, err)
	}

	return collectSeats(rows)
}

func (r *seatRepository) CreateBatch(ctx context.Context, seats []*entity.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// Build batch insert
	query := `INSERT INTO seats (event_id, seat_label, section, price, status) VALUES `
	args := []interface{}{}

	for i, seat := range seats {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, 'available')", i*4+1, i*4+2, i*4+3, i*4+4)
		args = append(args, seat.EventID, seat.SeatLabel, seat.Section, seat.Price)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.log.Error("Failed to create batch seats",
			zap.Error(err),
			zap.Int("count", len(seats)),
		)
		return fmt.Errorf("create %d seats: %w", len(seats), err)
	}

	return nil
}

// Lock: available, or locked with an expired hold, becomes locked by customerID
func (r *seatRepository) Lock(ctx context.Context, seatID, eventID, customerID int64, now, lockCutoff time.Time) (*entity.Seat, error) {
	query := `
		UPDATE seats
		SET status = 'locked', locked_by = $3, locked_at = $4, updated_at = $4
		WHERE id = $1 AND event_id = $2
		  AND (status = 'available' OR (status = 'locked' AND locked_at < $5))
		RETURNING ` + seatColumns

	return r.transition(ctx, "lock", seatID, query, seatID, eventID, customerID, now, lockCutoff)
}

// Unlock releases a held seat. A nil holderID releases regardless of holder.
func (r *seatRepository) Unlock(ctx context.Context, seatID int64, holderID *int64) (*entity.Seat, error) {
	query := `
		UPDATE seats
		SET status = 'available', locked_by = NULL, locked_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'locked'
		  AND ($2::bigint IS NULL OR locked_by = $2)
		RETURNING ` + seatColumns

	return r.transition(ctx, "unlock", seatID, query, seatID, holderID)
}

// Sell claims a seat for customerID. Allowed from available, from a lock held
// by customerID, or from anyone's expired lock.
func (r *seatRepository) Sell(ctx context.Context, seatID, customerID int64, lockCutoff time.Time) (*entity.Seat, error) {
	query := `
		UPDATE seats
		SET status = 'sold', locked_by = NULL, locked_at = NULL, updated_at = NOW()
		WHERE id = $1
		  AND (status = 'available'
		       OR (status = 'locked' AND (locked_by = $2 OR locked_at < $3)))
		RETURNING ` + seatColumns

	return r.transition(ctx, "sell", seatID, query, seatID, customerID, lockCutoff)
}

// Release returns booked seats to available. Checked-in seats are included so
// a cancelled ticket never leaves its seats behind.
func (r *seatRepository) Release(ctx context.Context, seatIDs []int64) (int64, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE seats
		SET status = 'available', locked_by = NULL, locked_at = NULL, updated_at = NOW()
		WHERE id = ANY($1) AND status IN ('sold', 'checked_in')
	`

	result, err := r.db.Exec(ctx, query, seatIDs)
	if err != nil {
		r.log.Error("Failed to release seats",
			zap.Error(err),
			zap.Int64s("seat_ids", seatIDs),
		)
		return 0, fmt.Errorf("release %d seats: %w", len(seatIDs), err)
	}

	return result.RowsAffected(), nil
}

func (r *seatRepository) CheckIn(ctx context.Context, seatIDs []int64) (int64, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}

	query := `UPDATE seats SET status = 'checked_in', updated_at = NOW() WHERE id = ANY($1) AND status = 'sold'`

	result, err := r.db.Exec(ctx, query, seatIDs)
	if err != nil {
		r.log.Error("Failed to check in seats",
			zap.Error(err),
			zap.Int64s("seat_ids", seatIDs),
		)
		return 0, fmt.Errorf("check in %d seats: %w", len(seatIDs), err)
	}

	return result.RowsAffected(), nil
}

// ReleaseExpiredLocks returns the event id of every seat it released
func (r *seatRepository) ReleaseExpiredLocks(ctx context.Context, lockCutoff time.Time) ([]int64, error) {
	query := `
		UPDATE seats
		SET status = 'available', locked_by = NULL, locked_at = NULL, updated_at = NOW()
		WHERE status = 'locked' AND locked_at < $1
		RETURNING event_id
	`

	rows, err := r.db.Query(ctx, query, lockCutoff)
	if err != nil {
		r.log.Error("Failed to release expired locks", zap.Error(err))
		return nil, fmt.Errorf("release expired seat locks: %w", err)
	}
	defer rows.Close()

	var eventIDs []int64
	for rows.Next() {
		var eventID int64
		if err := rows.Scan(&eventID); err != nil {
			return nil, fmt.Errorf("scan released seat event: %w", err)
		}
		eventIDs = append(eventIDs, eventID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate released seats: %w", err)
	}

	return eventIDs, nil
}
