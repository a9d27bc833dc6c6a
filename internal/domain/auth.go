package domain

import (
	"context"
	"time"
)

// Operator is a person allowed to run and maintain the machine.
type Operator struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session represents an active operator session.
type Session struct {
	Token      string
	OperatorID int64
	UserAgent  string
	IP         string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// OperatorRepository defines the port for operator persistence. Lookups
// return nil, nil when the operator does not exist.
type OperatorRepository interface {
	GetByUsername(ctx context.Context, username string) (*Operator, error)
	GetByID(ctx context.Context, id int64) (*Operator, error)
	Create(ctx context.Context, username, passwordHash string) (*Operator, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the port for session persistence. GetByToken
// returns nil, nil for unknown tokens.
type SessionRepository interface {
	Create(ctx context.Context, operatorID int64, token, userAgent, ip string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
