package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StateClaims binds an OAuth callback to the chat that started the flow.
type StateClaims struct {
	ChatID string `json:"cid"`
	jwt.RegisteredClaims
}

// StateTokens signs and validates the OAuth state parameter so the callback
// cannot be replayed against a different chat.
type StateTokens struct {
	secret []byte
	expiry time.Duration
}

func NewStateTokens(secret string, expiry time.Duration) *StateTokens {
	return &StateTokens{secret: []byte(secret), expiry: expiry}
}

func (s *StateTokens) Generate(chatID int64) (string, error) {
	now := time.Now()
	claims := StateClaims{
		ChatID: strconv.FormatInt(chatID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "pai",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing state token: %w", err)
	}
	return signed, nil
}

func (s *StateTokens) Validate(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &StateClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parsing state token: %w", err)
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid state token claims")
	}
	chatID, err := strconv.ParseInt(claims.ChatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id in state token: %w", err)
	}
	return chatID, nil
}
