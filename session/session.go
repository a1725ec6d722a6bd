package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrExpiredSession = errors.New("session expired")
)

const DefaultDuration = 24 * time.Hour

// Session is an issued bearer token. Nothing about it is stored server side.
type Session struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Verifier turns a bearer token back into the user it was issued for.
type Verifier interface {
	Verify(token string) (uuid.UUID, error)
}
