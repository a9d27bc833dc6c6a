package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"espresso/internal/domain"
)

// GetByUsername retrieves an operator by username.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	var o domain.Operator
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM operators WHERE username = $1",
		username,
	).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID retrieves an operator by ID.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.Operator, error) {
	var o domain.Operator
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM operators WHERE id = $1",
		id,
	).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create creates a new operator.
func (d *DB) Create(ctx context.Context, username, passwordHash string) (*domain.Operator, error) {
	var o domain.Operator
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO operators (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id, username, password_hash, created_at",
		username, passwordHash, time.Now().UTC(),
	).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Count returns the total number of operators.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM operators").Scan(&count)
	return count, err
}

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, operatorID int64, token, userAgent, ip string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions (operator_id, token, user_agent, ip, expires_at, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		operatorID, token, userAgent, ip, expiresAt.UTC(), time.Now().UTC(),
	)
	return err
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT token, operator_id, user_agent, ip, expires_at, created_at FROM sessions WHERE token = $1",
		token,
	).Scan(&s.Token, &s.OperatorID, &s.UserAgent, &s.IP, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token)
	return err
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1", time.Now().UTC())
	return err
}
