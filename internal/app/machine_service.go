package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"espresso/internal/domain"
)

// ErrUnknownSize indicates a brew size other than single or double.
var ErrUnknownSize = errors.New("size must be \"single\" or \"double\"")

// Size selects the espresso portion.
type Size string

const (
	SizeSingle Size = "single"
	SizeDouble Size = "double"
)

// Capacities sets the container sizes of a freshly built machine.
type Capacities struct {
	WaterLitres float64
	BeanSpoons  int
}

// MachineStatus is the display text plus the readings behind it.
type MachineStatus struct {
	Status         string  `json:"status"`
	Water          float64 `json:"water"`
	WaterCapacity  float64 `json:"waterCapacity"`
	Beans          int     `json:"beans"`
	BeansCapacity  int     `json:"beansCapacity"`
	NeedsDescaling bool    `json:"needsDescaling"`
	ProducedLitres float64 `json:"producedLitres"`
}

// MachineService runs the espresso machine use cases. It serialises access
// to the machine and persists its state after every mutation.
type MachineService struct {
	mu        sync.Mutex
	machine   *domain.EspressoMachine
	snapshots domain.SnapshotRepository
	events    domain.EventRepository
	log       *slog.Logger
	now       func() time.Time
}

// NewMachineService restores the machine from the latest snapshot, or
// builds an empty one with the given capacities when none is stored.
func NewMachineService(ctx context.Context, snapshots domain.SnapshotRepository, events domain.EventRepository, caps Capacities, logger *slog.Logger) (*MachineService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	snap, err := snapshots.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load machine snapshot: %w", err)
	}

	var m *domain.EspressoMachine
	if snap != nil {
		m, err = domain.RestoreEspressoMachine(*snap)
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "machine restored",
			slog.Float64("water", m.Water()),
			slog.Int("beans", m.Beans()),
			slog.Bool("needs_descaling", m.NeedsDescaling()))
	} else {
		m = domain.NewEspressoMachine(
			domain.NewWaterContainer(caps.WaterLitres),
			domain.NewBeansContainer(caps.BeanSpoons),
		)
		logger.InfoContext(ctx, "machine created",
			slog.Float64("water_capacity", caps.WaterLitres),
			slog.Int("beans_capacity", caps.BeanSpoons))
	}

	return &MachineService{
		machine:   m,
		snapshots: snapshots,
		events:    events,
		log:       logger,
		now:       time.Now,
	}, nil
}

// Status returns the current machine status.
func (s *MachineService) Status(_ context.Context) MachineStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// Brew makes an espresso of the given size and returns the litres produced
// by the machine so far.
func (s *MachineService) Brew(ctx context.Context, operatorID int64, size Size) (float64, error) {
	var (
		brew  func(*domain.EspressoMachine) (float64, error)
		kind  domain.EventKind
		water float64
		beans int
	)
	switch size {
	case SizeSingle:
		brew, kind, water, beans = (*domain.EspressoMachine).MakeEspresso, domain.EventEspresso, domain.SingleWater, domain.SingleBeans
	case SizeDouble:
		brew, kind, water, beans = (*domain.EspressoMachine).MakeDoubleEspresso, domain.EventDoubleEspresso, domain.DoubleWater, domain.DoubleBeans
	default:
		return 0, ErrUnknownSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	produced, err := brew(s.machine)
	// A failed brew may still have advanced the production counter.
	if saveErr := s.saveLocked(ctx); saveErr != nil {
		return 0, saveErr
	}
	if err != nil {
		s.log.WarnContext(ctx, "brew rejected",
			slog.String("size", string(size)),
			slog.String("error", err.Error()),
			slog.String("status", s.machine.Status()))
		return 0, err
	}

	if err := s.recordLocked(ctx, operatorID, kind, water, beans); err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "espresso brewed",
		slog.String("size", string(size)),
		slog.Float64("produced_litres", produced),
		slog.Bool("needs_descaling", s.machine.NeedsDescaling()))
	return produced, nil
}

// Descale runs the descaling cycle.
func (s *MachineService) Descale(ctx context.Context, operatorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.Descale(); err != nil {
		s.log.WarnContext(ctx, "descale rejected", slog.String("error", err.Error()))
		return err
	}
	if err := s.saveLocked(ctx); err != nil {
		return err
	}
	if err := s.recordLocked(ctx, operatorID, domain.EventDescale, domain.DescaleWaterCost, 0); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "machine descaled", slog.Float64("water", s.machine.Water()))
	return nil
}

// AddWater fills the water tank.
func (s *MachineService) AddWater(ctx context.Context, operatorID int64, litres float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.AddWater(litres); err != nil {
		s.log.WarnContext(ctx, "add water rejected",
			slog.Float64("litres", litres),
			slog.String("error", err.Error()))
		return s.machine.Water(), err
	}
	if err := s.saveLocked(ctx); err != nil {
		return 0, err
	}
	if err := s.recordLocked(ctx, operatorID, domain.EventAddWater, litres, 0); err != nil {
		return 0, err
	}
	return s.machine.Water(), nil
}

// AddBeans fills the bean hopper.
func (s *MachineService) AddBeans(ctx context.Context, operatorID int64, spoons int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.AddBeans(spoons); err != nil {
		s.log.WarnContext(ctx, "add beans rejected",
			slog.Int("spoons", spoons),
			slog.String("error", err.Error()))
		return s.machine.Beans(), err
	}
	if err := s.saveLocked(ctx); err != nil {
		return 0, err
	}
	if err := s.recordLocked(ctx, operatorID, domain.EventAddBeans, 0, spoons); err != nil {
		return 0, err
	}
	return s.machine.Beans(), nil
}

// UseWater drains water from the tank, e.g. before cleaning it.
func (s *MachineService) UseWater(ctx context.Context, litres float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.UseWater(litres); err != nil {
		return s.machine.Water(), err
	}
	return s.machine.Water(), s.saveLocked(ctx)
}

// UseBeans empties beans from the hopper.
func (s *MachineService) UseBeans(ctx context.Context, spoons int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.UseBeans(spoons); err != nil {
		return s.machine.Beans(), err
	}
	return s.machine.Beans(), s.saveLocked(ctx)
}

// ListRecent returns the most recent machine events up to limit.
func (s *MachineService) ListRecent(ctx context.Context, limit int) ([]domain.MachineEvent, error) {
	return s.events.ListRecentEvents(ctx, limit)
}

func (s *MachineService) statusLocked() MachineStatus {
	m := s.machine
	return MachineStatus{
		Status:         m.Status(),
		Water:          m.Water(),
		WaterCapacity:  m.WaterTank().Capacity(),
		Beans:          m.Beans(),
		BeansCapacity:  m.BeanHopper().Capacity(),
		NeedsDescaling: m.NeedsDescaling(),
		ProducedLitres: m.ProducedLitres(),
	}
}

func (s *MachineService) saveLocked(ctx context.Context) error {
	snap := s.machine.Snapshot()
	snap.UpdatedAt = s.now().UTC()
	if err := s.snapshots.SaveSnapshot(ctx, snap); err != nil {
		s.log.ErrorContext(ctx, "save machine snapshot", slog.String("error", err.Error()))
		return fmt.Errorf("save machine snapshot: %w", err)
	}
	return nil
}

func (s *MachineService) recordLocked(ctx context.Context, operatorID int64, kind domain.EventKind, water float64, beans int) error {
	_, err := s.events.AddEvent(ctx, domain.MachineEvent{
		OperatorID:  operatorID,
		Kind:        kind,
		WaterLitres: water,
		BeanSpoons:  beans,
		CreatedAt:   s.now(),
	})
	if err != nil {
		s.log.ErrorContext(ctx, "record machine event",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		return fmt.Errorf("record %s event: %w", kind, err)
	}
	return nil
}
