package model

import "github.com/Alijeyrad/clinicbook/pkg/ids"

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleClinicManager Role = "clinic_manager"
	RoleStaff         Role = "staff"
	RoleCustomer      Role = "customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClinicManager, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID    ids.ID `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Customer struct {
	ID     ids.ID `json:"id"`
	UserID ids.ID `json:"user_id"`
	Name   string `json:"name"`
}

type Clinic struct {
	ID      ids.ID `json:"id"`
	OwnerID ids.ID `json:"owner_id"`
	Name    string `json:"name"`
}

type Service struct {
	ID              ids.ID `json:"id"`
	ClinicID        ids.ID `json:"clinic_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Price           int64  `json:"price"`
}

type Staff struct {
	ID         ids.ID   `json:"id"`
	UserID     ids.ID   `json:"user_id"`
	ClinicID   ids.ID   `json:"clinic_id"`
	Name       string   `json:"name"`
	ServiceIDs []ids.ID `json:"service_ids"`
}

func (s Staff) Provides(serviceID ids.ID) bool {
	return ids.Contains(s.ServiceIDs, serviceID)
}
