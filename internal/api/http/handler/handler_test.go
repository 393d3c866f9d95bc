package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo/memory"
	"github.com/Alijeyrad/clinicbook/internal/service/appointment"
	"github.com/Alijeyrad/clinicbook/internal/service/availability"
	"github.com/Alijeyrad/clinicbook/internal/service/scheduling"
	"github.com/Alijeyrad/clinicbook/pkg/apperr"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/lock"
)

// 2024-01-01 is a Monday.
func monday(h, m int) time.Time {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
}

type testAPI struct {
	app    *fiber.App
	locker lock.Locker

	customer, clinic, service, staff ids.ID
}

func newTestAPI(t *testing.T, wait time.Duration) *testAPI {
	t.Helper()

	store, dir := memory.NewStore()
	api := &testAPI{customer: ids.New(), clinic: ids.New(), service: ids.New(), staff: ids.New()}
	dir.PutCustomer(model.Customer{ID: api.customer, UserID: ids.New()})
	dir.PutClinic(model.Clinic{ID: api.clinic, OwnerID: ids.New()})
	dir.PutService(model.Service{ID: api.service, ClinicID: api.clinic, DurationMinutes: 60})
	dir.PutStaff(model.Staff{ID: api.staff, UserID: ids.New(), ClinicID: api.clinic, ServiceIDs: []ids.ID{api.service}})

	api.locker = lock.NewMemoryLocker(wait)
	clock := func() time.Time { return monday(0, 0) }
	avail := availability.New(store.Availability, store.Directory, api.locker, time.UTC)
	detector := scheduling.New(store.Appointments, store.Availability, avail, scheduling.WithClock(clock))
	appts := appointment.New(store.Appointments, store.Directory, detector, api.locker, appointment.WithClock(clock))

	ah := NewAppointmentHandler(appts)
	sh := NewAvailabilityHandler(avail, detector, 30*time.Minute)

	app := fiber.New()
	app.Post("/appointments", ah.Create)
	app.Get("/appointments", ah.Search)
	app.Get("/appointments/:id", ah.Get)
	app.Get("/appointments/:id/detail", ah.GetDetailed)
	app.Patch("/appointments/:id/reschedule", ah.Reschedule)
	app.Patch("/appointments/:id/reassign", ah.Reassign)
	app.Patch("/appointments/:id/cancel", ah.Cancel)
	app.Patch("/appointments/:id/complete", ah.Complete)
	app.Get("/staff/:id/appointments", ah.ListByStaff)
	app.Post("/staff/:id/slots", sh.CreateSlot)
	app.Get("/staff/:id/slots", sh.ListSlots)
	app.Get("/staff/:id/free-times", sh.FreeTimes)
	app.Get("/slots/:id", sh.GetSlot)
	app.Patch("/slots/:id", sh.UpdateSlot)
	app.Delete("/slots/:id", sh.DeleteSlot)
	api.app = app

	resp, _ := api.do(t, http.MethodPost, "/staff/"+api.staff.String()+"/slots", fiber.Map{
		"kind": "weekly", "weekday": 1, "start_minute": 9 * 60, "end_minute": 17 * 60,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := a.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func (a *testAPI) book(t *testing.T, from, to time.Time) (*http.Response, map[string]any) {
	return a.do(t, http.MethodPost, "/appointments", fiber.Map{
		"customer_id": a.customer,
		"clinic_id":   a.clinic,
		"service_id":  a.service,
		"staff_id":    a.staff,
		"start_time":  from,
		"end_time":    to,
	})
}

func dataID(t *testing.T, body map[string]any) string {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.InvalidInterval, fiber.StatusBadRequest},
		{apperr.InvalidReference, fiber.StatusBadRequest},
		{apperr.NotFound, fiber.StatusNotFound},
		{apperr.Conflict, fiber.StatusConflict},
		{apperr.OutsideAvailability, fiber.StatusUnprocessableEntity},
		{apperr.InvalidTransition, fiber.StatusConflict},
		{apperr.Busy, fiber.StatusServiceUnavailable},
		{apperr.PermissionDenied, fiber.StatusForbidden},
		{apperr.Internal, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.kind))
		})
	}
}

func TestBookingFlow(t *testing.T) {
	api := newTestAPI(t, time.Second)

	resp, body := api.book(t, monday(10, 0), monday(11, 0))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	first := dataID(t, body)

	resp, body = api.book(t, monday(10, 30), monday(11, 30))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", body["kind"])
	assert.Equal(t, first, body["ref_id"])

	resp, body = api.book(t, monday(11, 0), monday(12, 0))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode, body)

	resp, body = api.book(t, monday(8, 0), monday(9, 0))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "outside_availability", body["kind"])

	resp, _ = api.book(t, monday(11, 0), monday(10, 0))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = api.do(t, http.MethodPatch, "/appointments/"+first+"/cancel", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "canceled", body["data"].(map[string]any)["status"])

	resp, body = api.do(t, http.MethodPatch, "/appointments/"+first+"/complete", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_transition", body["kind"])

	// The canceled slot is free again.
	resp, body = api.book(t, monday(10, 0), monday(11, 0))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode, body)

	resp, body = api.do(t, http.MethodGet, "/staff/"+api.staff.String()+"/appointments?status=booked", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Len(t, body["data"], 2)
}

func TestReschedule(t *testing.T) {
	api := newTestAPI(t, time.Second)

	_, body := api.book(t, monday(10, 0), monday(11, 0))
	id := dataID(t, body)

	resp, body := api.do(t, http.MethodPatch, "/appointments/"+id+"/reschedule", fiber.Map{
		"start_time": monday(10, 30), "end_time": monday(11, 30),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)

	resp, body = api.do(t, http.MethodGet, "/appointments/"+id, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	start, err := time.Parse(time.RFC3339, body["data"].(map[string]any)["start_time"].(string))
	require.NoError(t, err)
	assert.True(t, start.Equal(monday(10, 30)))
}

func TestBadIDsAndBodies(t *testing.T) {
	api := newTestAPI(t, time.Second)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed id", http.MethodGet, "/appointments/not-a-uuid", nil, fiber.StatusBadRequest},
		{"unknown appointment", http.MethodGet, "/appointments/" + ids.New().String(), nil, fiber.StatusNotFound},
		{"bad list status", http.MethodGet, "/staff/" + api.staff.String() + "/appointments?status=lost", nil, fiber.StatusBadRequest},
		{"bad list bound", http.MethodGet, "/staff/" + api.staff.String() + "/appointments?from=yesterday", nil, fiber.StatusBadRequest},
		{"unknown slot", http.MethodDelete, "/slots/" + ids.New().String(), nil, fiber.StatusNotFound},
		{"half window", http.MethodGet, "/staff/" + api.staff.String() + "/slots?from=2024-01-01T00:00:00Z", nil, fiber.StatusBadRequest},
		{"free times without duration", http.MethodGet, "/staff/" + api.staff.String() + "/free-times?from=2024-01-01T00:00:00Z&to=2024-01-02T00:00:00Z", nil, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := api.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSlotOverlapRejected(t *testing.T) {
	api := newTestAPI(t, time.Second)

	resp, body := api.do(t, http.MethodPost, "/staff/"+api.staff.String()+"/slots", fiber.Map{
		"kind": "weekly", "weekday": 1, "start_minute": 16 * 60, "end_minute": 18 * 60,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.NotEmpty(t, body["ref_id"])

	resp, body = api.do(t, http.MethodGet, "/staff/"+api.staff.String()+"/slots", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)
}

func TestFreeTimes(t *testing.T) {
	api := newTestAPI(t, time.Second)
	_, body := api.book(t, monday(10, 0), monday(11, 0))
	dataID(t, body)

	resp, body := api.do(t, http.MethodGet,
		"/staff/"+api.staff.String()+"/free-times?from=2024-01-01T09:00:00Z&to=2024-01-01T12:00:00Z&duration_minutes=60", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)

	data := body["data"].(map[string]any)
	assert.Equal(t, "UTC", data["timezone"])
	var got []string
	for _, v := range data["start_times"].([]any) {
		ts, err := time.Parse(time.RFC3339, v.(string))
		require.NoError(t, err)
		got = append(got, ts.UTC().Format("15:04"))
	}
	assert.Equal(t, []string{"09:00", "11:00"}, got)
}

func TestGetSlot(t *testing.T) {
	api := newTestAPI(t, time.Second)

	resp, body := api.do(t, http.MethodGet, "/staff/"+api.staff.String()+"/slots", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	slots := body["data"].([]any)
	require.Len(t, slots, 1)
	id := slots[0].(map[string]any)["id"].(string)

	resp, body = api.do(t, http.MethodGet, "/slots/"+id, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Equal(t, id, dataID(t, body))
	assert.Equal(t, "weekly", body["data"].(map[string]any)["kind"])

	resp, _ = api.do(t, http.MethodGet, "/slots/"+ids.New().String(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = api.do(t, http.MethodGet, "/slots/nope", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAppointmentDetail(t *testing.T) {
	api := newTestAPI(t, time.Second)
	_, body := api.book(t, monday(10, 0), monday(11, 0))
	id := dataID(t, body)

	resp, body := api.do(t, http.MethodGet, "/appointments/"+id+"/detail", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, id, data["id"])
	assert.Equal(t, api.staff.String(), data["staff"].(map[string]any)["id"])
	assert.Equal(t, api.customer.String(), data["customer"].(map[string]any)["id"])
	assert.Equal(t, api.clinic.String(), data["clinic"].(map[string]any)["id"])
	assert.Equal(t, api.service.String(), data["service"].(map[string]any)["id"])
}

func TestSearchAppointments(t *testing.T) {
	api := newTestAPI(t, time.Second)
	api.book(t, monday(10, 0), monday(11, 0))
	api.book(t, monday(11, 0), monday(12, 0))

	resp, body := api.do(t, http.MethodGet, "/appointments?staff_id="+api.staff.String()+"&limit=1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Len(t, body["data"], 1)

	resp, body = api.do(t, http.MethodGet, "/appointments?customer_id="+ids.New().String(), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Len(t, body["data"], 0)

	resp, _ = api.do(t, http.MethodGet, "/appointments?clinic_id=nope", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestBusyReturnsRetryAfter(t *testing.T) {
	api := newTestAPI(t, 50*time.Millisecond)

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = lock.WithStaffLock(context.Background(), api.locker, api.staff, func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	resp, body := api.book(t, monday(10, 0), monday(11, 0))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, RetryAfterSeconds, resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "busy", body["kind"])
}
