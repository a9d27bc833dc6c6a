// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"time"

	"espresso/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrOperatorNotFound indicates that the operator does not exist.
	ErrOperatorNotFound = errors.New("operator not found")
	// ErrOperatorsExist indicates the initial operator has already been created.
	ErrOperatorsExist = errors.New("operators already exist")
	// ErrInvalidOperator indicates an empty username or password.
	ErrInvalidOperator = errors.New("username and password are required")
)

// AuthService handles operator authentication and session management.
type AuthService struct {
	operators domain.OperatorRepository
	sessions  domain.SessionRepository
}

// NewAuthService creates a new authentication service.
func NewAuthService(operators domain.OperatorRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		operators: operators,
		sessions:  sessions,
	}
}

// Login authenticates an operator and creates a session.
func (s *AuthService) Login(ctx context.Context, username, password, userAgent, ip string) (string, error) {
	op, err := s.operators.GetByUsername(ctx, username)
	if err != nil || op == nil || op.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.createSession(ctx, op.ID, userAgent, ip)
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks if a session token is valid and matches the user agent.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.Operator, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	if !ConstantTimeCompare(session.UserAgent, userAgent) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	op, err := s.operators.GetByID(ctx, session.OperatorID)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, ErrOperatorNotFound
	}
	return op, nil
}

// CreateInitialOperator creates the first operator if none exist.
func (s *AuthService) CreateInitialOperator(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidOperator
	}

	count, err := s.operators.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrOperatorsExist
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.operators.Create(ctx, username, string(hash))
	return err
}

// ValidateForwardAuth resolves the operator named by a trusted forward-auth
// proxy header, provisioning it on first sight.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, remoteUser string) (*domain.Operator, error) {
	if remoteUser == "" {
		return nil, errors.New("no remote user header")
	}
	return s.provision(ctx, remoteUser)
}

// LoginWithOperator creates a session for an operator already authenticated
// elsewhere (e.g. via SSO).
func (s *AuthService) LoginWithOperator(ctx context.Context, username, userAgent, ip string) (string, error) {
	op, err := s.provision(ctx, username)
	if err != nil {
		return "", err
	}
	return s.createSession(ctx, op.ID, userAgent, ip)
}

// PurgeExpiredSessions removes every expired session.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

// provision returns the named operator, creating it without a password
// hash when missing. Such operators can only sign in through SSO.
func (s *AuthService) provision(ctx context.Context, username string) (*domain.Operator, error) {
	op, err := s.operators.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if op != nil {
		return op, nil
	}

	op, err = s.operators.Create(ctx, username, "")
	if err != nil {
		// Lost a race against a concurrent provision of the same name.
		op, err = s.operators.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if op == nil {
			return nil, ErrOperatorNotFound
		}
	}
	return op, nil
}

func (s *AuthService) createSession(ctx context.Context, operatorID int64, userAgent, ip string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(sessionTTL)
	if err := s.sessions.Create(ctx, operatorID, token, userAgent, ip, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
