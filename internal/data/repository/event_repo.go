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

// EventRepository is read-only here; event CRUD lives with the organizer tooling
type EventRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Event, error)
}

type eventRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewEventRepository(db database.Querier, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

func (r *eventRepository) FindByID(ctx context.Context, id int64) (*entity.Event, error) {
	query := `
		SELECT id, name, venue, date, organizer_id, status, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	var event entity.Event
	err := r.db.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Venue,
		&event.Date,
		&event.OrganizerID,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.Int64("event_id", id),
		)
		return nil, fmt.Errorf("find event %d: %w", id, err)
	}

	return &event, nil
}
