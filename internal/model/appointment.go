package model

import (
	"time"

	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

type Status string

const (
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Terminal statuses admit no further transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// CanTransitionTo encodes booked -> completed | canceled.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusBooked && (next == StatusCompleted || next == StatusCanceled)
}

type Appointment struct {
	ID         ids.ID `json:"id"`
	CustomerID ids.ID `json:"customer_id"`
	ClinicID   ids.ID `json:"clinic_id"`
	ServiceID  ids.ID `json:"service_id"`
	StaffID    ids.ID `json:"staff_id"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    Status    `json:"status"`

	CanceledAt  *time.Time `json:"canceled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (a Appointment) Interval() interval.Interval {
	return interval.Interval{Start: a.StartTime, End: a.EndTime}
}

// Blocking reports whether the appointment occupies its staff member's time.
func (a Appointment) Blocking() bool {
	return a.Status != StatusCanceled
}

// AppointmentDetail is an appointment together with the directory records it
// references.
type AppointmentDetail struct {
	Appointment
	Customer Customer `json:"customer"`
	Clinic   Clinic   `json:"clinic"`
	Service  Service  `json:"service"`
	Staff    Staff    `json:"staff"`
}
