package memory

import (
	"context"
	"sync"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
)

// Directory holds reference entities. The Put methods exist for seeding.
type Directory struct {
	mu        sync.RWMutex
	users     map[ids.ID]model.User
	customers map[ids.ID]model.Customer
	clinics   map[ids.ID]model.Clinic
	services  map[ids.ID]model.Service
	staff     map[ids.ID]model.Staff
}

func NewDirectory() *Directory {
	return &Directory{
		users:     make(map[ids.ID]model.User),
		customers: make(map[ids.ID]model.Customer),
		clinics:   make(map[ids.ID]model.Clinic),
		services:  make(map[ids.ID]model.Service),
		staff:     make(map[ids.ID]model.Staff),
	}
}

func (d *Directory) PutUser(u model.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *Directory) PutCustomer(c model.Customer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.customers[c.ID] = c
}

func (d *Directory) PutClinic(c model.Clinic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clinics[c.ID] = c
}

func (d *Directory) PutService(s model.Service) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.services[s.ID] = s
}

func (d *Directory) PutStaff(s model.Staff) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.staff[s.ID] = s
}

func (d *Directory) User(_ context.Context, id ids.ID) (*model.User, error) {
	return lookup(&d.mu, d.users, id)
}

func (d *Directory) Customer(_ context.Context, id ids.ID) (*model.Customer, error) {
	return lookup(&d.mu, d.customers, id)
}

func (d *Directory) Clinic(_ context.Context, id ids.ID) (*model.Clinic, error) {
	return lookup(&d.mu, d.clinics, id)
}

func (d *Directory) Service(_ context.Context, id ids.ID) (*model.Service, error) {
	return lookup(&d.mu, d.services, id)
}

func (d *Directory) Staff(_ context.Context, id ids.ID) (*model.Staff, error) {
	return lookup(&d.mu, d.staff, id)
}

func lookup[T any](mu *sync.RWMutex, m map[ids.ID]T, id ids.ID) (*T, error) {
	mu.RLock()
	defer mu.RUnlock()

	v, ok := m[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &v, nil
}
