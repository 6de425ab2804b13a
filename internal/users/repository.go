package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Upsert(ctx context.Context, user *User) error
	GetByChatID(ctx context.Context, chatID int64) (*User, error)
	SetNotionToken(ctx context.Context, chatID int64, encryptedToken, workspace string) error
	ClearNotionToken(ctx context.Context, chatID int64) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, chat_id, first_name, username, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chat_id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    username = EXCLUDED.username,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.ChatID, user.FirstName, user.Username, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByChatID(ctx context.Context, chatID int64) (*User, error) {
	query := `
		SELECT id, chat_id, first_name, username,
		       COALESCE(notion_token, ''), COALESCE(notion_workspace, ''),
		       created_at, updated_at
		FROM users WHERE chat_id = $1`

	user := &User{}
	err := r.pool.QueryRow(ctx, query, chatID).Scan(
		&user.ID, &user.ChatID, &user.FirstName, &user.Username,
		&user.NotionToken, &user.NotionWorkspace, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user by chat id: %w", err)
	}
	return user, nil
}

func (r *postgresRepository) SetNotionToken(ctx context.Context, chatID int64, encryptedToken, workspace string) error {
	query := `
		UPDATE users
		SET notion_token = $2, notion_workspace = $3, updated_at = now()
		WHERE chat_id = $1`

	tag, err := r.pool.Exec(ctx, query, chatID, encryptedToken, workspace)
	if err != nil {
		return fmt.Errorf("storing notion token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no user with chat id %d", chatID)
	}
	return nil
}

func (r *postgresRepository) ClearNotionToken(ctx context.Context, chatID int64) error {
	query := `
		UPDATE users
		SET notion_token = NULL, notion_workspace = NULL, updated_at = now()
		WHERE chat_id = $1`

	if _, err := r.pool.Exec(ctx, query, chatID); err != nil {
		return fmt.Errorf("clearing notion token: %w", err)
	}
	return nil
}
