package domain

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Snapshot is the persistable state of an EspressoMachine.
type Snapshot struct {
	Water          float64   `json:"water"`
	WaterCapacity  float64   `json:"waterCapacity"`
	Beans          int       `json:"beans"`
	BeansCapacity  int       `json:"beansCapacity"`
	ProducedMl     int64     `json:"producedMl"`
	NeedsDescaling bool      `json:"needsDescaling"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SnapshotRepository is the port for machine state persistence.
type SnapshotRepository interface {
	// LoadSnapshot returns nil, nil when no state has been saved yet.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, s Snapshot) error
}

// Snapshot captures the machine state. UpdatedAt is left for the caller to set.
func (m *EspressoMachine) Snapshot() Snapshot {
	return Snapshot{
		Water:          m.water.Water(),
		WaterCapacity:  m.water.Capacity(),
		Beans:          m.beans.Beans(),
		BeansCapacity:  m.beans.Capacity(),
		ProducedMl:     m.producedMl,
		NeedsDescaling: m.needsDescaling,
	}
}

// RestoreEspressoMachine rebuilds a machine from a snapshot with fresh containers.
func RestoreEspressoMachine(s Snapshot) (*EspressoMachine, error) {
	switch {
	case math.IsNaN(s.Water) || s.Water < 0 || s.Water > s.WaterCapacity:
		return nil, fmt.Errorf("%w: water %v outside [0, %v]", ErrInvalidSnapshot, s.Water, s.WaterCapacity)
	case s.Beans < 0 || s.Beans > s.BeansCapacity:
		return nil, fmt.Errorf("%w: beans %d outside [0, %d]", ErrInvalidSnapshot, s.Beans, s.BeansCapacity)
	case s.ProducedMl < 0:
		return nil, fmt.Errorf("%w: negative production counter %d", ErrInvalidSnapshot, s.ProducedMl)
	}

	water := NewWaterContainer(s.WaterCapacity)
	if err := water.AddWater(s.Water); err != nil {
		return nil, err
	}
	beans := NewBeansContainer(s.BeansCapacity)
	if err := beans.AddBeans(s.Beans); err != nil {
		return nil, err
	}

	m := NewEspressoMachine(water, beans)
	m.producedMl = s.ProducedMl
	m.needsDescaling = s.NeedsDescaling
	return m, nil
}
