package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

const appointmentColumns = `id, customer_id, clinic_id, service_id, staff_id,
	start_time, end_time, status, canceled_at, completed_at, created_at, updated_at`

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments
			(id, customer_id, clinic_id, service_id, staff_id, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID, a.CustomerID, a.ClinicID, a.ServiceID, a.StaffID,
		a.StartTime, a.EndTime, string(a.Status), a.CreatedAt, a.UpdatedAt)
	return translate("insert appointment", err)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id ids.ID) (*model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if err != nil {
		return nil, translate("get appointment", err)
	}
	return a, nil
}

func (r *AppointmentRepository) FindOverlapping(ctx context.Context, staffID ids.ID, iv interval.Interval, exclude *ids.ID) ([]model.Appointment, error) {
	q := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE staff_id = $1
			AND status <> 'canceled'
			AND start_time < $3
			AND end_time > $2`
	args := []any{staffID, iv.Start, iv.End}
	if exclude != nil {
		q += ` AND id <> $4`
		args = append(args, *exclude)
	}
	q += ` ORDER BY start_time ASC, id ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, translate("find overlapping", err)
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) UpdateSchedule(ctx context.Context, id, staffID ids.ID, iv interval.Interval, at time.Time) (*model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET staff_id = $2, start_time = $3, end_time = $4, updated_at = $5
		WHERE id = $1 AND status = 'booked'
		RETURNING `+appointmentColumns,
		id, staffID, iv.Start, iv.End, at)
	a, err := scanAppointment(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translate("update schedule", err)
	}
	return nil, r.missOrPrecondition(ctx, id)
}

func (r *AppointmentRepository) TransitionStatus(ctx context.Context, id ids.ID, from, to model.Status, at time.Time) (*model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3::text,
			updated_at = $4,
			canceled_at = CASE WHEN $3::text = 'canceled' THEN $4 ELSE canceled_at END,
			completed_at = CASE WHEN $3::text = 'completed' THEN $4 ELSE completed_at END
		WHERE id = $1 AND status = $2::text
		RETURNING `+appointmentColumns,
		id, string(from), string(to), at)
	a, err := scanAppointment(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translate("transition status", err)
	}
	return nil, r.missOrPrecondition(ctx, id)
}

func (r *AppointmentRepository) List(ctx context.Context, f repo.AppointmentFilter) ([]model.Appointment, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.StaffID != nil {
		add("staff_id = $%d", *f.StaffID)
	}
	if f.CustomerID != nil {
		add("customer_id = $%d", *f.CustomerID)
	}
	if f.ClinicID != nil {
		add("clinic_id = $%d", *f.ClinicID)
	}
	if f.Status != nil {
		add("status = $%d", string(*f.Status))
	}
	if f.From != nil {
		add("start_time >= $%d", *f.From)
	}
	if f.To != nil {
		add("start_time < $%d", *f.To)
	}

	skip, limit := f.Page()

	q := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit, skip)
	q += fmt.Sprintf(` ORDER BY start_time ASC, id ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, translate("list appointments", err)
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) missOrPrecondition(ctx context.Context, id ids.ID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return translate("check appointment", err)
	}
	if !exists {
		return repo.ErrNotFound
	}
	return repo.ErrPrecondition
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var (
		a      model.Appointment
		status string
	)
	if err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.ClinicID,
		&a.ServiceID,
		&a.StaffID,
		&a.StartTime,
		&a.EndTime,
		&status,
		&a.CanceledAt,
		&a.CompletedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Status = model.Status(status)
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return out, nil
}
