// Package domain contains the core business entities and interfaces.
package domain

import "math"

// Quantity is the numeric type a Container holds: litres are fractional,
// spoons are whole.
type Quantity interface {
	~int | ~float64
}

// Container is a capacity-bounded quantity holder. Add and Consume are
// all-or-nothing: when a check fails the amount is left unchanged.
type Container[T Quantity] struct {
	amount   T
	capacity T
}

// NewContainer creates an empty container. A negative capacity is treated as zero.
func NewContainer[T Quantity](capacity T) *Container[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Container[T]{capacity: capacity}
}

// Add increases the amount, failing with ErrContainerFull if it would exceed capacity.
func (c *Container[T]) Add(amount T) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	if c.amount+amount > c.capacity {
		return ErrContainerFull
	}
	c.amount += amount
	return nil
}

// Consume decreases the amount, failing with ErrInsufficientQuantity if it would go negative.
func (c *Container[T]) Consume(amount T) error {
	if !validAmount(amount) {
		return ErrInvalidAmount
	}
	if c.amount-amount < 0 {
		return ErrInsufficientQuantity
	}
	c.amount -= amount
	return nil
}

// Quantity returns the current amount.
func (c *Container[T]) Quantity() T {
	return c.amount
}

// Capacity returns the fixed capacity.
func (c *Container[T]) Capacity() T {
	return c.capacity
}

func validAmount[T Quantity](amount T) bool {
	if math.IsNaN(float64(amount)) {
		return false
	}
	return amount >= 0
}

// WaterTank is the water side of the machine, measured in litres.
type WaterTank interface {
	AddWater(litres float64) error
	UseWater(litres float64) error
	Water() float64
	Capacity() float64
}

// BeanHopper is the beans side of the machine, measured in spoons.
type BeanHopper interface {
	AddBeans(spoons int) error
	UseBeans(spoons int) error
	Beans() int
	Capacity() int
}

// WaterContainer holds water in litres.
type WaterContainer struct {
	c *Container[float64]
}

// NewWaterContainer creates an empty water container.
func NewWaterContainer(capacity float64) *WaterContainer {
	return &WaterContainer{c: NewContainer(capacity)}
}

func (w *WaterContainer) AddWater(litres float64) error { return w.c.Add(litres) }
func (w *WaterContainer) UseWater(litres float64) error { return w.c.Consume(litres) }
func (w *WaterContainer) Water() float64                { return w.c.Quantity() }
func (w *WaterContainer) Capacity() float64             { return w.c.Capacity() }

// BeansContainer holds coffee beans in spoons.
type BeansContainer struct {
	c *Container[int]
}

// NewBeansContainer creates an empty beans container.
func NewBeansContainer(capacity int) *BeansContainer {
	return &BeansContainer{c: NewContainer(capacity)}
}

func (b *BeansContainer) AddBeans(spoons int) error { return b.c.Add(spoons) }
func (b *BeansContainer) UseBeans(spoons int) error { return b.c.Consume(spoons) }
func (b *BeansContainer) Beans() int                { return b.c.Quantity() }
func (b *BeansContainer) Capacity() int             { return b.c.Capacity() }

var (
	_ WaterTank  = (*WaterContainer)(nil)
	_ BeanHopper = (*BeansContainer)(nil)
)
