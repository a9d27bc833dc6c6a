package app_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"espresso/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockSnapshotRepo struct {
	mu     sync.Mutex
	loadFn func(ctx context.Context) (*domain.Snapshot, error)
	saveFn func(ctx context.Context, s domain.Snapshot) error
	saved  []domain.Snapshot
}

func (m *mockSnapshotRepo) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx)
	}
	return nil, nil
}

func (m *mockSnapshotRepo) SaveSnapshot(ctx context.Context, s domain.Snapshot) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, s)
	return nil
}

func (m *mockSnapshotRepo) last() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[len(m.saved)-1]
}

type mockEventRepo struct {
	mu     sync.Mutex
	addFn  func(ctx context.Context, e domain.MachineEvent) (int64, error)
	listFn func(ctx context.Context, limit int) ([]domain.MachineEvent, error)
	dayFn  func(ctx context.Context, localDay string) (domain.DailyProduction, error)
	added  []domain.MachineEvent
}

func (m *mockEventRepo) AddEvent(ctx context.Context, e domain.MachineEvent) (int64, error) {
	if m.addFn != nil {
		return m.addFn(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, e)
	return int64(len(m.added)), nil
}

func (m *mockEventRepo) ListRecentEvents(ctx context.Context, limit int) ([]domain.MachineEvent, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockEventRepo) ProductionForLocalDay(ctx context.Context, localDay string) (domain.DailyProduction, error) {
	if m.dayFn != nil {
		return m.dayFn(ctx, localDay)
	}
	return domain.DailyProduction{Day: localDay}, nil
}

func (m *mockEventRepo) kinds() []domain.EventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventKind, 0, len(m.added))
	for _, e := range m.added {
		out = append(out, e.Kind)
	}
	return out
}

type mockOperatorRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.Operator, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.Operator, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.Operator, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockOperatorRepo) GetByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockOperatorRepo) GetByID(ctx context.Context, id int64) (*domain.Operator, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockOperatorRepo) Create(ctx context.Context, username, passwordHash string) (*domain.Operator, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.Operator{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockOperatorRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, operatorID int64, token, userAgent, ip string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, operatorID int64, token, userAgent, ip string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, operatorID, token, userAgent, ip, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}
