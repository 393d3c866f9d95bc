// Package postgres implements the repo interfaces on PostgreSQL through pgx.
// The appointments_no_overlap exclusion constraint rejects overlapping
// non-canceled appointments even if a writer bypasses the staff lock.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alijeyrad/clinicbook/internal/repo"
)

func NewStore(pool *pgxpool.Pool) repo.Store {
	return repo.Store{
		Appointments: NewAppointmentRepository(pool),
		Availability: NewAvailabilityRepository(pool),
		Directory:    NewDirectory(pool),
	}
}
