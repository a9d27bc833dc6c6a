package app

import (
	"context"
	"time"

	"espresso/internal/domain"
)

const maxReportDays = 366

// ProductionService builds production reports from the machine event log.
type ProductionService struct {
	events domain.EventRepository
	now    func() time.Time
}

// NewProductionService creates a ProductionService backed by the given repository.
func NewProductionService(events domain.EventRepository) *ProductionService {
	return &ProductionService{events: events, now: time.Now}
}

// DayPoint is a single data point returned by GetDaily.
type DayPoint struct {
	Day             string  `json:"day"`
	Litres          float64 `json:"litres"`
	Espressos       int     `json:"espressos"`
	DoubleEspressos int     `json:"doubleEspressos"`
	Descales        int     `json:"descales"`
}

// GetDaily returns per-day production for the last days days, oldest first.
// days is clamped to [1, 366].
func (s *ProductionService) GetDaily(ctx context.Context, days int) ([]DayPoint, error) {
	days = max(1, min(days, maxReportDays))

	today := s.now().In(time.Local)
	points := make([]DayPoint, 0, days)

	for i := days - 1; i >= 0; i-- {
		dayStr := today.AddDate(0, 0, -i).Format("2006-01-02")

		p, err := s.events.ProductionForLocalDay(ctx, dayStr)
		if err != nil {
			return nil, err
		}
		points = append(points, DayPoint{
			Day:             dayStr,
			Litres:          p.Litres,
			Espressos:       p.Espressos,
			DoubleEspressos: p.DoubleEspressos,
			Descales:        p.Descales,
		})
	}
	return points, nil
}
