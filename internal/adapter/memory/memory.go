// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"espresso/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu        sync.Mutex
	snapshot  *domain.Snapshot
	events    []domain.MachineEvent
	operators []*domain.Operator
	sessions  map[string]*domain.Session

	eventIDCounter    int64
	operatorIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.SnapshotRepository = (*DB)(nil)
var _ domain.EventRepository = (*DB)(nil)
var _ domain.OperatorRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- SnapshotRepository ---

// LoadSnapshot returns a copy of the stored snapshot, or nil if none was saved.
func (db *DB) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.snapshot == nil {
		return nil, nil
	}
	s := *db.snapshot
	return &s, nil
}

// SaveSnapshot replaces the stored snapshot.
func (db *DB) SaveSnapshot(ctx context.Context, s domain.Snapshot) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	s.UpdatedAt = s.UpdatedAt.UTC()
	db.snapshot = &s
	return nil
}

// --- EventRepository ---

// AddEvent appends a machine event and returns its ID.
func (db *DB) AddEvent(ctx context.Context, e domain.MachineEvent) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.eventIDCounter++
	e.ID = db.eventIDCounter
	e.CreatedAt = e.CreatedAt.UTC()
	db.events = append(db.events, e)
	return e.ID, nil
}

// ListRecentEvents lists the most recent machine events.
func (db *DB) ListRecentEvents(ctx context.Context, limit int) ([]domain.MachineEvent, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.MachineEvent, len(db.events))
	copy(result, db.events)

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ProductionForLocalDay aggregates the events of the given local day.
func (db *DB) ProductionForLocalDay(ctx context.Context, localDay string) (domain.DailyProduction, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	dayStart, err := time.ParseInLocation("2006-01-02", localDay, time.Local)
	if err != nil {
		return domain.DailyProduction{}, err
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	p := domain.DailyProduction{Day: localDay}
	for _, e := range db.events {
		if e.CreatedAt.Before(dayStart.UTC()) || !e.CreatedAt.Before(dayEnd.UTC()) {
			continue
		}
		switch e.Kind {
		case domain.EventEspresso:
			p.Espressos++
			p.Litres += e.WaterLitres
		case domain.EventDoubleEspresso:
			p.DoubleEspressos++
			p.Litres += e.WaterLitres
		case domain.EventDescale:
			p.Descales++
		}
	}
	return p, nil
}

// --- OperatorRepository ---

// GetByUsername retrieves an operator by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, o := range db.operators {
		if o.Username == username {
			return o, nil
		}
	}
	return nil, nil
}

// GetByID retrieves an operator by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.Operator, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, o := range db.operators {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

// Create creates a new operator.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.Operator, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, o := range db.operators {
		if o.Username == username {
			return nil, errors.New("operator already exists")
		}
	}

	db.operatorIDCounter++
	o := &domain.Operator{
		ID:           db.operatorIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.operators = append(db.operators, o)
	return o, nil
}

// Count returns the total number of operators.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.operators), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, operatorID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:      token,
		OperatorID: operatorID,
		UserAgent:  userAgent,
		IP:         ip,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
