package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"espresso/internal/app"
	"espresso/internal/domain"
)

func TestGetDaily_Success(t *testing.T) {
	t.Parallel()

	var days []string
	events := &mockEventRepo{
		dayFn: func(_ context.Context, localDay string) (domain.DailyProduction, error) {
			days = append(days, localDay)
			return domain.DailyProduction{Day: localDay, Litres: 0.25, Espressos: 3, DoubleEspressos: 1}, nil
		},
	}

	svc := app.NewProductionService(events)
	points, err := svc.GetDaily(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	for i, p := range points {
		assert.Equal(t, days[i], p.Day)
		assert.Equal(t, 0.25, p.Litres)
		assert.Equal(t, 3, p.Espressos)
		assert.Equal(t, 1, p.DoubleEspressos)
	}
	assert.Less(t, points[0].Day, points[2].Day, "points must be oldest first")
}

func TestGetDaily_ClampsDays(t *testing.T) {
	t.Parallel()

	svc := app.NewProductionService(&mockEventRepo{})

	points, err := svc.GetDaily(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, points, 366)

	points, err = svc.GetDaily(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestGetDaily_RepoError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	events := &mockEventRepo{
		dayFn: func(_ context.Context, _ string) (domain.DailyProduction, error) {
			return domain.DailyProduction{}, boom
		},
	}

	_, err := app.NewProductionService(events).GetDaily(context.Background(), 7)
	assert.ErrorIs(t, err, boom)
}
