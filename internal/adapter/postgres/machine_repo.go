package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"espresso/internal/domain"
)

// LoadSnapshot returns the persisted machine state, or nil if none was saved.
func (d *DB) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	var s domain.Snapshot
	err := d.sql.QueryRowContext(ctx,
		"SELECT water, water_capacity, beans, beans_capacity, produced_ml, needs_descaling, updated_at FROM machine_snapshot WHERE id = 1;",
	).Scan(&s.Water, &s.WaterCapacity, &s.Beans, &s.BeansCapacity, &s.ProducedMl, &s.NeedsDescaling, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSnapshot upserts the single machine state row.
func (d *DB) SaveSnapshot(ctx context.Context, s domain.Snapshot) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO machine_snapshot (id, water, water_capacity, beans, beans_capacity, produced_ml, needs_descaling, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			water = EXCLUDED.water,
			water_capacity = EXCLUDED.water_capacity,
			beans = EXCLUDED.beans,
			beans_capacity = EXCLUDED.beans_capacity,
			produced_ml = EXCLUDED.produced_ml,
			needs_descaling = EXCLUDED.needs_descaling,
			updated_at = EXCLUDED.updated_at;`,
		s.Water, s.WaterCapacity, s.Beans, s.BeansCapacity, s.ProducedMl, s.NeedsDescaling, s.UpdatedAt.UTC(),
	)
	return err
}

// AddEvent inserts a machine event.
func (d *DB) AddEvent(ctx context.Context, e domain.MachineEvent) (int64, error) {
	var operatorID sql.NullInt64
	if e.OperatorID != 0 {
		operatorID = sql.NullInt64{Int64: e.OperatorID, Valid: true}
	}

	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO machine_events(operator_id, kind, water_litres, bean_spoons, created_at) VALUES($1, $2, $3, $4, $5) RETURNING id;",
		operatorID, string(e.Kind), e.WaterLitres, e.BeanSpoons, e.CreatedAt.UTC(),
	).Scan(&id)
	return id, err
}

// ListRecentEvents returns the most recent machine events up to limit.
func (d *DB) ListRecentEvents(ctx context.Context, limit int) ([]domain.MachineEvent, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, operator_id, kind, water_litres, bean_spoons, created_at FROM machine_events ORDER BY created_at DESC, id DESC LIMIT $1;", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.MachineEvent, 0, limit)
	for rows.Next() {
		var (
			e          domain.MachineEvent
			kind       string
			operatorID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &operatorID, &kind, &e.WaterLitres, &e.BeanSpoons, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = domain.EventKind(kind)
		e.OperatorID = operatorID.Int64
		out = append(out, e)
	}
	return out, rows.Err()
}

// ProductionForLocalDay aggregates the events of a local calendar day.
func (d *DB) ProductionForLocalDay(ctx context.Context, localDay string) (domain.DailyProduction, error) {
	p := domain.DailyProduction{Day: localDay}

	dayStart, err := time.ParseInLocation("2006-01-02", localDay, time.Local)
	if err != nil {
		return p, err
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	err = d.sql.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(water_litres) FILTER (WHERE kind IN ('espresso', 'double_espresso')), 0),
			COUNT(*) FILTER (WHERE kind = 'espresso'),
			COUNT(*) FILTER (WHERE kind = 'double_espresso'),
			COUNT(*) FILTER (WHERE kind = 'descale')
		FROM machine_events WHERE created_at >= $1 AND created_at < $2;`,
		dayStart.UTC(), dayEnd.UTC(),
	).Scan(&p.Litres, &p.Espressos, &p.DoubleEspressos, &p.Descales)
	return p, err
}
