package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	Upcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Event, error)
	FindByTitle(ctx context.Context, userID uuid.UUID, title string) (*Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO calendar_events
			(id, user_id, title, start_time, end_time, location, participants, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		event.ID, event.UserID, event.Title, event.StartTime, event.EndTime,
		event.Location, strings.Join(event.Participants, ","), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (r *postgresRepository) Upcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Event, error) {
	query := `
		SELECT id, user_id, title, start_time, end_time, COALESCE(location, ''), COALESCE(participants, ''), created_at
		FROM calendar_events
		WHERE user_id = $1 AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *event)
	}
	return out, rows.Err()
}

func (r *postgresRepository) FindByTitle(ctx context.Context, userID uuid.UUID, title string) (*Event, error) {
	query := `
		SELECT id, user_id, title, start_time, end_time, COALESCE(location, ''), COALESCE(participants, ''), created_at
		FROM calendar_events
		WHERE user_id = $1 AND lower(title) = lower($2)
		ORDER BY start_time
		LIMIT 1`

	row := r.pool.QueryRow(ctx, query, userID, title)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying event by title: %w", err)
	}
	return event, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*Event, error) {
	event := &Event{}
	var participants string
	err := row.Scan(&event.ID, &event.UserID, &event.Title, &event.StartTime,
		&event.EndTime, &event.Location, &participants, &event.CreatedAt)
	if err != nil {
		return nil, err
	}
	if participants != "" {
		event.Participants = strings.Split(participants, ",")
	}
	return event, nil
}
