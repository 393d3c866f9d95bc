// Package events announces appointment lifecycle changes to other services.
// Publishing is best effort: a failed publish is logged by the caller and
// never rolls back or fails the booking that produced it.
package events

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/clinicbook/pkg/ids"
)

type Type string

const (
	AppointmentBooked      Type = "booked"
	AppointmentRescheduled Type = "rescheduled"
	AppointmentReassigned  Type = "reassigned"
	AppointmentCanceled    Type = "canceled"
	AppointmentCompleted   Type = "completed"
)

// SubjectPrefix is the NATS subject root; the full subject is
// booking.appointment.<type>.<staff_id>.
const SubjectPrefix = "booking.appointment"

type Event struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	AppointmentID ids.ID    `json:"appointment_id"`
	StaffID       ids.ID    `json:"staff_id"`
	CustomerID    ids.ID    `json:"customer_id"`
	ClinicID      ids.ID    `json:"clinic_id"`
	Start         time.Time `json:"start_time"`
	End           time.Time `json:"end_time"`
	Status        string    `json:"status"`
	// PreviousStaffID is set on reassignment.
	PreviousStaffID *ids.ID   `json:"previous_staff_id,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Subject returns the NATS subject for e.
func (e Event) Subject() string {
	return SubjectPrefix + "." + string(e.Type) + "." + e.StaffID.String()
}

func (e Event) Marshal() ([]byte, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory; tests use it as a Publisher.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []Type {
	events := r.Events()
	out := make([]Type, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}
