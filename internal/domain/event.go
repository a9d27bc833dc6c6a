package domain

import (
	"context"
	"time"
)

// EventKind names an operation recorded in the machine log.
type EventKind string

const (
	EventEspresso       EventKind = "espresso"
	EventDoubleEspresso EventKind = "double_espresso"
	EventDescale        EventKind = "descale"
	EventAddWater       EventKind = "add_water"
	EventAddBeans       EventKind = "add_beans"
)

// MachineEvent is a single successful operation on the machine.
type MachineEvent struct {
	ID          int64     `json:"id"`
	OperatorID  int64     `json:"operatorId"`
	Kind        EventKind `json:"kind"`
	WaterLitres float64   `json:"waterLitres"`
	BeanSpoons  int       `json:"beanSpoons"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DailyProduction aggregates the events of one local calendar day.
type DailyProduction struct {
	Day             string  `json:"day"`
	Litres          float64 `json:"litres"`
	Espressos       int     `json:"espressos"`
	DoubleEspressos int     `json:"doubleEspressos"`
	Descales        int     `json:"descales"`
}

// EventRepository is the port for the machine event log.
type EventRepository interface {
	AddEvent(ctx context.Context, e MachineEvent) (int64, error)
	ListRecentEvents(ctx context.Context, limit int) ([]MachineEvent, error)
	ProductionForLocalDay(ctx context.Context, localDay string) (DailyProduction, error)
}
