package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
)

type Directory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

func (d *Directory) User(ctx context.Context, id ids.ID) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := d.pool.QueryRow(ctx, `SELECT id, email, role FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &role)
	if err != nil {
		return nil, translate("get user", err)
	}
	u.Role = model.Role(role)
	return &u, nil
}

func (d *Directory) Customer(ctx context.Context, id ids.ID) (*model.Customer, error) {
	var c model.Customer
	err := d.pool.QueryRow(ctx, `SELECT id, user_id, name FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.UserID, &c.Name)
	if err != nil {
		return nil, translate("get customer", err)
	}
	return &c, nil
}

func (d *Directory) Clinic(ctx context.Context, id ids.ID) (*model.Clinic, error) {
	var c model.Clinic
	err := d.pool.QueryRow(ctx, `SELECT id, owner_id, name FROM clinics WHERE id = $1`, id).
		Scan(&c.ID, &c.OwnerID, &c.Name)
	if err != nil {
		return nil, translate("get clinic", err)
	}
	return &c, nil
}

func (d *Directory) Service(ctx context.Context, id ids.ID) (*model.Service, error) {
	var s model.Service
	err := d.pool.QueryRow(ctx, `
		SELECT id, clinic_id, name, duration_minutes, price FROM services WHERE id = $1
	`, id).Scan(&s.ID, &s.ClinicID, &s.Name, &s.DurationMinutes, &s.Price)
	if err != nil {
		return nil, translate("get service", err)
	}
	return &s, nil
}

func (d *Directory) Staff(ctx context.Context, id ids.ID) (*model.Staff, error) {
	var s model.Staff
	err := d.pool.QueryRow(ctx, `SELECT id, user_id, clinic_id, name FROM staff WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.ClinicID, &s.Name)
	if err != nil {
		return nil, translate("get staff", err)
	}

	rows, err := d.pool.Query(ctx, `SELECT service_id FROM staff_services WHERE staff_id = $1 ORDER BY service_id`, id)
	if err != nil {
		return nil, translate("list staff services", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sid ids.ID
		if err := rows.Scan(&sid); err != nil {
			return nil, fmt.Errorf("scan staff service: %w", err)
		}
		s.ServiceIDs = append(s.ServiceIDs, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff services: %w", err)
	}
	return &s, nil
}
