package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pbash-js/Pai/internal/auth"
)

type Service struct {
	repo      Repository
	encryptor *auth.Encryptor
}

func NewService(repo Repository, encryptor *auth.Encryptor) *Service {
	return &Service{repo: repo, encryptor: encryptor}
}

// Ensure records the sender of an incoming message, creating the user on first
// contact and refreshing the profile fields on every message after that.
func (s *Service) Ensure(ctx context.Context, chatID int64, firstName, username string) (*User, error) {
	now := time.Now()
	user := &User{
		ID:        uuid.New(),
		ChatID:    chatID,
		FirstName: firstName,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, err
	}
	// Re-read so the caller sees the persisted row, including Notion link state.
	stored, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("user for chat %d missing after upsert", chatID)
	}
	return stored, nil
}

func (s *Service) GetByChatID(ctx context.Context, chatID int64) (*User, error) {
	return s.repo.GetByChatID(ctx, chatID)
}

// LinkNotion encrypts the OAuth access token and stores it against the chat.
func (s *Service) LinkNotion(ctx context.Context, chatID int64, accessToken, workspace string) error {
	encrypted, err := s.encryptor.Encrypt(accessToken)
	if err != nil {
		return fmt.Errorf("encrypting notion token: %w", err)
	}
	return s.repo.SetNotionToken(ctx, chatID, encrypted, workspace)
}

// NotionToken returns the decrypted Notion access token for the chat.
// Returns an empty string when the chat has not linked Notion.
func (s *Service) NotionToken(ctx context.Context, chatID int64) (string, error) {
	user, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return "", err
	}
	if !user.NotionLinked() {
		return "", nil
	}
	token, err := s.encryptor.Decrypt(user.NotionToken)
	if err != nil {
		return "", fmt.Errorf("decrypting notion token: %w", err)
	}
	return token, nil
}

func (s *Service) UnlinkNotion(ctx context.Context, chatID int64) error {
	return s.repo.ClearNotionToken(ctx, chatID)
}
