package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/service/appointment"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

func pathID(c fiber.Ctx, name string) (ids.ID, bool) {
	id, err := ids.Parse(c.Params(name))
	if err != nil || id.IsZero() {
		return ids.Nil, false
	}
	return id, true
}

// parseTime accepts RFC 3339; an empty string yields nil.
func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// listQuery is the query string shared by the appointment list endpoints.
type listQuery struct {
	Status string `query:"status"`
	From   string `query:"from"`
	To     string `query:"to"`
	Skip   int    `query:"skip"`
	Limit  int    `query:"limit"`
}

func (q listQuery) filter() (appointment.ListFilter, string) {
	f := appointment.ListFilter{Skip: q.Skip, Limit: q.Limit}
	if q.Status != "" {
		st := model.Status(q.Status)
		f.Status = &st
	}
	var err error
	if f.From, err = parseTime(q.From); err != nil {
		return f, "invalid from"
	}
	if f.To, err = parseTime(q.To); err != nil {
		return f, "invalid to"
	}
	return f, ""
}

// searchQuery filters GET /appointments.
type searchQuery struct {
	CustomerID string `query:"customer_id"`
	StaffID    string `query:"staff_id"`
	ClinicID   string `query:"clinic_id"`
	Status     string `query:"status"`
	From       string `query:"from"`
	To         string `query:"to"`
	Skip       int    `query:"skip"`
	Limit      int    `query:"limit"`
}

func (q searchQuery) filter() (appointment.SearchFilter, string) {
	lf, msg := listQuery{Status: q.Status, From: q.From, To: q.To, Skip: q.Skip, Limit: q.Limit}.filter()
	if msg != "" {
		return appointment.SearchFilter{}, msg
	}
	f := appointment.SearchFilter{ListFilter: lf}
	var valid bool
	if f.CustomerID, valid = optionalID(q.CustomerID); !valid {
		return f, "invalid customer_id"
	}
	if f.StaffID, valid = optionalID(q.StaffID); !valid {
		return f, "invalid staff_id"
	}
	if f.ClinicID, valid = optionalID(q.ClinicID); !valid {
		return f, "invalid clinic_id"
	}
	return f, ""
}

// optionalID parses s; an empty string yields nil.
func optionalID(s string) (*ids.ID, bool) {
	if s == "" {
		return nil, true
	}
	id, err := ids.Parse(s)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// windowQuery is an optional [from, to) range.
type windowQuery struct {
	From string `query:"from"`
	To   string `query:"to"`
}

// window returns nil when neither bound is given. Both are required otherwise.
func (q windowQuery) window() (*interval.Interval, string) {
	if q.From == "" && q.To == "" {
		return nil, ""
	}
	from, err := parseTime(q.From)
	if err != nil || from == nil {
		return nil, "invalid from"
	}
	to, err := parseTime(q.To)
	if err != nil || to == nil {
		return nil, "invalid to"
	}
	iv, err := interval.New(*from, *to)
	if err != nil {
		return nil, "from must be before to"
	}
	return &iv, ""
}
