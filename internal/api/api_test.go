package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pathakanu/myPlants/internal/model"
	"github.com/pathakanu/myPlants/internal/reminder"
	"github.com/pathakanu/myPlants/internal/store"
	"github.com/pathakanu/myPlants/internal/testutil"
	"github.com/pathakanu/myPlants/internal/tracker"
	"github.com/sirupsen/logrus"
)

var now = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

type scheduleFailStore struct {
	*store.GormStore
	fail bool
}

func (s *scheduleFailStore) UpdatePlantSchedule(ctx context.Context, userID string, plantID uuid.UUID, last, next time.Time) (*model.Plant, error) {
	if s.fail {
		return nil, errors.New("connection reset")
	}
	return s.GormStore.UpdatePlantSchedule(ctx, userID, plantID, last, next)
}

type testServer struct {
	e     *echo.Echo
	store *scheduleFailStore
	clock *time.Time
}

func newTestServer(t *testing.T, cronSecret string) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	st := &scheduleFailStore{GormStore: store.New(testutil.NewDB(t))}
	current := now
	clock := func() time.Time { return current }
	plants := tracker.New(st, clock, time.UTC, log)
	scanner := reminder.NewScanner(st, reminder.DefaultWindow, nil, nil, log)

	e := New(Options{
		Plants:     plants,
		Scanner:    scanner,
		DB:         st,
		CronSecret: cronSecret,
		Clock:      clock,
		Logger:     log,
	})
	return &testServer{e: e, store: st, clock: &current}
}

func (s *testServer) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

type plantResp struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	NextWatering *time.Time `json:"next_watering"`
	LastWatered  *time.Time `json:"last_watered"`
	Status       string     `json:"status"`
	DaysUntil    *int       `json:"days_until"`
}

func (s *testServer) createPlant(t *testing.T, user string) plantResp {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/plants", user,
		`{"name":"Monstera","species":"Monstera deliciosa","water_amount":400,"water_frequency":5}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plant: status %d body %s", rec.Code, rec.Body.String())
	}
	var p plantResp
	decode(t, rec, &p)
	return p
}

func TestRequestsWithoutIdentityAreRejected(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/plants", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateAndFetchPlant(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, "")

	p := s.createPlant(t, "alice")
	if p.NextWatering == nil || !p.NextWatering.Equal(now.Add(5*24*time.Hour)) {
		t.Fatalf("next_watering = %v", p.NextWatering)
	}
	if p.Status != "upcoming" || p.DaysUntil == nil || *p.DaysUntil != 5 {
		t.Fatalf("status = %q days_until = %v", p.Status, p.DaysUntil)
	}

	rec := s.do(t, http.MethodGet, "/api/plants/"+p.ID, "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get own plant: status %d", rec.Code)
	}
}

func TestOtherUsersPlantIsNotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, "")
	p := s.createPlant(t, "alice")

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/plants/" + p.ID, ""},
		{http.MethodPut, "/api/plants/" + p.ID, `{"name":"Mine","water_amount":1,"water_frequency":1}`},
		{http.MethodPost, "/api/plants/" + p.ID + "/water", ""},
		{http.MethodGet, "/api/plants/" + p.ID + "/history", ""},
		{http.MethodDelete, "/api/plants/" + p.ID, ""},
	} {
		rec := s.do(t, tc.method, tc.path, "bob", tc.body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s as bob: status %d, want 404", tc.method, tc.path, rec.Code)
		}
	}

	rec := s.do(t, http.MethodGet, "/api/plants/"+p.ID, "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("alice lost her plant: status %d", rec.Code)
	}
}

func TestMalformedIDIsNotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/api/plants/not-a-uuid", "alice", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestValidationErrorsReturn400(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodPost, "/api/plants", "alice", `{"name":"Fern","water_amount":100,"water_frequency":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["field"] != "water_frequency" {
		t.Fatalf("field = %q, want water_frequency", body["field"])
	}

	p := s.createPlant(t, "alice")
	rec = s.do(t, http.MethodPost, "/api/plants/"+p.ID+"/water", "alice", `{"amount":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero amount: status = %d, want 400", rec.Code)
	}
}

func TestQuickWaterAndHistory(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, "")
	p := s.createPlant(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/plants/"+p.ID+"/water", "alice", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("quick water: status %d body %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Event struct {
			Amount int `json:"amount"`
		} `json:"event"`
		Plant plantResp `json:"plant"`
	}
	decode(t, rec, &res)
	if res.Event.Amount != 400 {
		t.Fatalf("amount = %d, want the plant default 400", res.Event.Amount)
	}
	if res.Plant.LastWatered == nil || !res.Plant.LastWatered.Equal(now) {
		t.Fatalf("last_watered = %v, want %s", res.Plant.LastWatered, now)
	}

	rec = s.do(t, http.MethodGet, "/api/plants/"+p.ID+"/history?limit=10", "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history: status %d", rec.Code)
	}
	var events []map[string]any
	decode(t, rec, &events)
	if len(events) != 1 {
		t.Fatalf("history has %d events, want 1", len(events))
	}
}

func TestScheduleUpdateFailureReportsEvent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, "")
	p := s.createPlant(t, "alice")

	s.store.fail = true
	rec := s.do(t, http.MethodPost, "/api/plants/"+p.ID+"/water", "alice", `{"amount":250,"watered_at":"2026-05-04T08:30:00Z"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["step"] != "schedule_update" || body["event_id"] == "" {
		t.Fatalf("body = %v, want step and event_id", body)
	}
	rec = s.do(t, http.MethodGet, "/api/plants/"+p.ID+"/history", "alice", "")
	var kept []map[string]any
	decode(t, rec, &kept)
	if len(kept) != 1 || kept[0]["id"] != body["event_id"] {
		t.Fatalf("history = %v, want the event %s kept", kept, body["event_id"])
	}

	s.store.fail = false
	rec = s.do(t, http.MethodPost, "/api/plants/"+p.ID+"/recompute", "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("recompute: status %d body %s", rec.Code, rec.Body.String())
	}
	var fixed plantResp
	decode(t, rec, &fixed)
	if fixed.LastWatered == nil || !fixed.LastWatered.Equal(now) {
		t.Fatalf("recompute last_watered = %v, want %s", fixed.LastWatered, now)
	}
}

func TestCheckWateringRequiresSecret(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, "s3cret")
	p := s.createPlant(t, "alice")
	*s.clock = now.Add(6 * 24 * time.Hour)

	rec := s.do(t, http.MethodPost, "/api/cron/check-watering", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/cron/check-watering", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer s3cret")
	first := httptest.NewRecorder()
	s.e.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("scan: status %d body %s", first.Code, first.Body.String())
	}
	var summary reminder.Summary
	decode(t, first, &summary)
	if summary.Created != 1 || len(summary.Notifications) != 1 || summary.Notifications[0].PlantID.String() != p.ID {
		t.Fatalf("summary = %+v, want one reminder for %s", summary, p.ID)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/cron/check-watering", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer s3cret")
	second := httptest.NewRecorder()
	s.e.ServeHTTP(second, req)
	decode(t, second, &summary)
	if summary.Created != 0 || summary.Skipped != 1 {
		t.Fatalf("second scan = %+v, want the reminder suppressed", summary)
	}

	rec = s.do(t, http.MethodGet, "/api/notifications", "alice", "")
	var list struct {
		Notifications []struct {
			PlantName string `json:"plant_name"`
		} `json:"notifications"`
		Unread int `json:"unread"`
	}
	decode(t, rec, &list)
	if list.Unread != 1 || len(list.Notifications) != 1 || list.Notifications[0].PlantName != "Monstera" {
		t.Fatalf("notifications = %+v", list)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodPut, "/api/profile", "alice", `{"email":"alice@example.com","full_name":"Alice","whatsapp_number":"+1 555 0100"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodGet, "/api/profile", "alice", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "alice@example.com") {
		t.Fatalf("get profile: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodGet, "/api/profile", "bob", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("bob has no profile: status %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, "")

	rec := s.do(t, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
}
