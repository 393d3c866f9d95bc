package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

const slotColumns = `id, staff_id, kind, weekday, start_minute, end_minute,
	start_time, end_time, created_at, updated_at`

type AvailabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

func (r *AvailabilityRepository) Create(ctx context.Context, s *model.AvailabilitySlot) error {
	weekday, startMin, endMin, start, end := slotArgs(s)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO availability_slots
			(id, staff_id, kind, weekday, start_minute, end_minute, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.ID, s.StaffID, string(s.Kind), weekday, startMin, endMin, start, end, s.CreatedAt, s.UpdatedAt)
	return translate("insert availability slot", err)
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id ids.ID) (*model.AvailabilitySlot, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+slotColumns+` FROM availability_slots WHERE id = $1`, id)
	s, err := scanSlot(row)
	if err != nil {
		return nil, translate("get availability slot", err)
	}
	return s, nil
}

func (r *AvailabilityRepository) ListByStaff(ctx context.Context, staffID ids.ID, window *interval.Interval) ([]model.AvailabilitySlot, error) {
	q := `SELECT ` + slotColumns + ` FROM availability_slots WHERE staff_id = $1`
	args := []any{staffID}
	if window != nil {
		q += ` AND (kind = 'weekly' OR (start_time < $3 AND end_time > $2))`
		args = append(args, window.Start, window.End)
	}
	q += ` ORDER BY kind DESC, weekday ASC NULLS LAST, start_minute ASC NULLS LAST, start_time ASC NULLS LAST, id ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, translate("list availability slots", err)
	}
	defer rows.Close()

	out := []model.AvailabilitySlot{}
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability slot: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability slots: %w", err)
	}
	return out, nil
}

func (r *AvailabilityRepository) Update(ctx context.Context, s *model.AvailabilitySlot) error {
	weekday, startMin, endMin, start, end := slotArgs(s)
	tag, err := r.pool.Exec(ctx, `
		UPDATE availability_slots
		SET kind = $2, weekday = $3, start_minute = $4, end_minute = $5,
			start_time = $6, end_time = $7, updated_at = $8
		WHERE id = $1
	`, s.ID, string(s.Kind), weekday, startMin, endMin, start, end, s.UpdatedAt)
	if err != nil {
		return translate("update availability slot", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id ids.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM availability_slots WHERE id = $1`, id)
	if err != nil {
		return translate("delete availability slot", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// slotArgs returns the nullable column values for a slot of either kind.
func slotArgs(s *model.AvailabilitySlot) (weekday, startMin, endMin *int, start, end *time.Time) {
	if s.Kind == model.SlotWeekly {
		wd := int(s.Weekday)
		return &wd, &s.StartMinute, &s.EndMinute, nil, nil
	}
	return nil, nil, nil, &s.StartTime, &s.EndTime
}

func scanSlot(row pgx.Row) (*model.AvailabilitySlot, error) {
	var (
		s                 model.AvailabilitySlot
		kind              string
		weekday           *int16
		startMin, endMin  *int32
		startTime, endTim *time.Time
	)
	if err := row.Scan(
		&s.ID,
		&s.StaffID,
		&kind,
		&weekday,
		&startMin,
		&endMin,
		&startTime,
		&endTim,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.Kind = model.SlotKind(kind)
	if weekday != nil {
		s.Weekday = time.Weekday(*weekday)
	}
	if startMin != nil {
		s.StartMinute = int(*startMin)
	}
	if endMin != nil {
		s.EndMinute = int(*endMin)
	}
	if startTime != nil {
		s.StartTime = *startTime
	}
	if endTim != nil {
		s.EndTime = *endTim
	}
	return &s, nil
}
