package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DueReminder is a due row joined with the owner's chat id for delivery.
type DueReminder struct {
	Reminder
	ChatID int64
}

type Repository interface {
	Create(ctx context.Context, reminder *Reminder) error
	Upcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Reminder, error)
	Due(ctx context.Context, now time.Time) ([]DueReminder, error)
	Reschedule(ctx context.Context, id uuid.UUID, next time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, reminder *Reminder) error {
	query := `
		INSERT INTO reminders
			(id, user_id, message, scheduled_at, recurring, frequency, interval_minutes, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		reminder.ID, reminder.UserID, reminder.Message, reminder.ScheduledAt,
		reminder.Recurring, string(reminder.Frequency), reminder.IntervalMinutes,
		reminder.Active, reminder.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting reminder: %w", err)
	}
	return nil
}

func (r *postgresRepository) Upcoming(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Reminder, error) {
	query := `
		SELECT id, user_id, message, scheduled_at, recurring, frequency, interval_minutes, active, created_at
		FROM reminders
		WHERE user_id = $1 AND active AND scheduled_at >= $2 AND scheduled_at <= $3
		ORDER BY scheduled_at`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming reminders: %w", err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.ID, &rem.UserID, &rem.Message, &rem.ScheduledAt,
			&rem.Recurring, &rem.Frequency, &rem.IntervalMinutes, &rem.Active, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Due(ctx context.Context, now time.Time) ([]DueReminder, error) {
	query := `
		SELECT r.id, r.user_id, r.message, r.scheduled_at, r.recurring, r.frequency,
		       r.interval_minutes, r.active, r.created_at, u.chat_id
		FROM reminders r JOIN users u ON u.id = r.user_id
		WHERE r.active AND r.scheduled_at <= $1
		ORDER BY r.scheduled_at`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("querying due reminders: %w", err)
	}
	defer rows.Close()

	var out []DueReminder
	for rows.Next() {
		var due DueReminder
		if err := rows.Scan(&due.ID, &due.UserID, &due.Message, &due.ScheduledAt,
			&due.Recurring, &due.Frequency, &due.IntervalMinutes, &due.Active,
			&due.CreatedAt, &due.ChatID); err != nil {
			return nil, fmt.Errorf("scanning due reminder: %w", err)
		}
		out = append(out, due)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Reschedule(ctx context.Context, id uuid.UUID, next time.Time) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE reminders SET scheduled_at = $2 WHERE id = $1`, id, next); err != nil {
		return fmt.Errorf("rescheduling reminder: %w", err)
	}
	return nil
}

func (r *postgresRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE reminders SET active = false WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deactivating reminder: %w", err)
	}
	return nil
}
