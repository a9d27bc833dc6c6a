package domain

import (
	"math"
	"strconv"
)

// Portion sizes and maintenance constants. Water is in litres, beans in spoons.
const (
	SingleWater = 0.05
	SingleBeans = 1
	DoubleWater = 0.10
	DoubleBeans = 2

	// DescaleThreshold is the production volume, in litres, after which the
	// machine must be descaled.
	DescaleThreshold = 5.0
	// DescaleWaterCost is the water consumed by one descale.
	DescaleWaterCost = 1.0

	millilitresPerLitre = 1000
	descaleThresholdMl  = int64(DescaleThreshold * millilitresPerLitre)
)

// Status texts shown on the machine display.
const (
	StatusAddWater         = "Add water"
	StatusDescaleNeeded    = "Descale needed"
	StatusAddBeansAndWater = "Add beans and water"
	StatusAddBeans         = "Add beans"
	espressosLeftSuffix    = " Espressos left"
)

// EspressoMachine makes espresso from a water tank and a bean hopper and
// requires descaling after every DescaleThreshold litres produced.
//
// The machine is not safe for concurrent use; callers serialise access.
type EspressoMachine struct {
	water          WaterTank
	beans          BeanHopper
	producedMl     int64
	needsDescaling bool
}

// NewEspressoMachine creates a machine around the given containers.
func NewEspressoMachine(water WaterTank, beans BeanHopper) *EspressoMachine {
	return &EspressoMachine{water: water, beans: beans}
}

// MakeEspresso brews a single espresso and returns the total litres
// produced by the machine so far.
func (m *EspressoMachine) MakeEspresso() (float64, error) {
	return m.produce(SingleWater, SingleBeans)
}

// MakeDoubleEspresso brews a double espresso and returns the total litres
// produced by the machine so far.
func (m *EspressoMachine) MakeDoubleEspresso() (float64, error) {
	return m.produce(DoubleWater, DoubleBeans)
}

// produce runs the shared brewing sequence. The production counter and the
// descale flag are updated before ingredient availability is checked, so a
// call failing with ErrNoBeans or ErrNoWater still counts towards the
// descale threshold.
func (m *EspressoMachine) produce(water float64, beans int) (float64, error) {
	if m.needsDescaling {
		return 0, ErrDescaleNeeded
	}

	before := m.producedMl
	after := before + int64(math.Round(water*millilitresPerLitre))
	if before/descaleThresholdMl < after/descaleThresholdMl {
		m.needsDescaling = true
	}
	m.producedMl = after

	if m.beans.Beans()-beans < 0 {
		return 0, ErrNoBeans
	}
	if m.water.Water()-water < 0 {
		return 0, ErrNoWater
	}

	if err := m.water.UseWater(water); err != nil {
		return 0, err
	}
	if err := m.beans.UseBeans(beans); err != nil {
		return 0, err
	}
	return m.ProducedLitres(), nil
}

// Descale clears the descale flag and uses DescaleWaterCost litres of water.
func (m *EspressoMachine) Descale() error {
	if m.water.Water()-DescaleWaterCost < 0 {
		return ErrNoWater
	}
	m.needsDescaling = false
	return m.water.UseWater(DescaleWaterCost)
}

// NeedsDescaling reports whether coffee production is blocked until a descale.
func (m *EspressoMachine) NeedsDescaling() bool {
	return m.needsDescaling
}

// ProducedLitres returns the cumulative volume of coffee produced.
func (m *EspressoMachine) ProducedLitres() float64 {
	return float64(m.producedMl) / millilitresPerLitre
}

func (m *EspressoMachine) espressosLeft() int {
	return min(m.Beans(), int(math.Floor(m.Water()/SingleWater)))
}

// Status returns the text for the machine display. Running out of water
// for a pending descale takes precedence over the descale itself.
func (m *EspressoMachine) Status() string {
	water, beans := m.Water(), m.Beans()

	if m.needsDescaling {
		if water < DescaleWaterCost {
			return StatusAddWater
		}
		return StatusDescaleNeeded
	}
	if water <= 0 && beans <= 0 {
		return StatusAddBeansAndWater
	}
	if beans <= 0 {
		return StatusAddBeans
	}
	if water <= 0 {
		return StatusAddWater
	}
	return strconv.Itoa(m.espressosLeft()) + espressosLeftSuffix
}

// AddWater pours litres into the water tank.
func (m *EspressoMachine) AddWater(litres float64) error {
	return m.water.AddWater(litres)
}

// UseWater drains litres from the water tank.
func (m *EspressoMachine) UseWater(litres float64) error {
	return m.water.UseWater(litres)
}

// Water returns the litres left in the water tank.
func (m *EspressoMachine) Water() float64 {
	return m.water.Water()
}

// AddBeans fills the bean hopper with spoons of beans.
func (m *EspressoMachine) AddBeans(spoons int) error {
	return m.beans.AddBeans(spoons)
}

// UseBeans takes spoons of beans from the hopper.
func (m *EspressoMachine) UseBeans(spoons int) error {
	return m.beans.UseBeans(spoons)
}

// Beans returns the spoons left in the bean hopper.
func (m *EspressoMachine) Beans() int {
	return m.beans.Beans()
}

func (m *EspressoMachine) WaterTank() WaterTank       { return m.water }
func (m *EspressoMachine) SetWaterTank(t WaterTank)   { m.water = t }
func (m *EspressoMachine) BeanHopper() BeanHopper     { return m.beans }
func (m *EspressoMachine) SetBeanHopper(h BeanHopper) { m.beans = h }
