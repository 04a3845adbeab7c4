package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/internal/usecase"
	"tourstaff-service/pkg/logger"
	"tourstaff-service/pkg/metrics"

	"github.com/gin-gonic/gin"
)

type memShiftRepo struct {
	mu     sync.Mutex
	shifts map[string]entity.Shift
	n      int
}

func (r *memShiftRepo) Create(ctx context.Context, s *entity.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	s.ID = fmt.Sprintf("s%d", r.n)
	r.shifts[s.ID] = *s
	return nil
}

func (r *memShiftRepo) FindByID(ctx context.Context, id string) (*entity.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "shift", ID: id}
	}
	return &s, nil
}

func (r *memShiftRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Shift, error) {
	return r.match(func(s entity.Shift) bool { return !s.Date.Before(from) && s.Date.Before(to) }), nil
}

func (r *memShiftRepo) FindByGuide(ctx context.Context, guideID string, from, to time.Time) ([]*entity.Shift, error) {
	return r.match(func(s entity.Shift) bool {
		return s.GuideID == guideID && !s.Date.Before(from) && s.Date.Before(to)
	}), nil
}

func (r *memShiftRepo) match(f func(entity.Shift) bool) []*entity.Shift {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Shift{}
	for _, s := range r.shifts {
		if f(s) {
			s := s
			out = append(out, &s)
		}
	}
	return out
}

func (r *memShiftRepo) Update(ctx context.Context, id string, expected entity.ShiftStatus, u entity.ShiftUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[id]
	if !ok || s.Status != expected {
		return domain.StateConflictError{Resource: "shift"}
	}
	u.Apply(&s)
	r.shifts[id] = s
	return nil
}

func (r *memShiftRepo) CompleteAcceptedBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	return 0, nil
}

type staticBookings struct {
	bookings []entity.PickupBooking
	err      error
}

func (s staticBookings) FetchBookings(ctx context.Context, date time.Time) ([]entity.PickupBooking, error) {
	return s.bookings, s.err
}

type memStatusRepo struct {
	marked map[string]bool
	guides map[string]string
}

func (r *memStatusRepo) FindByDate(ctx context.Context, date time.Time) (map[string]*entity.PickupStatus, error) {
	out := map[string]*entity.PickupStatus{}
	status := func(id string) *entity.PickupStatus {
		if out[id] == nil {
			out[id] = &entity.PickupStatus{BookingID: id}
		}
		return out[id]
	}
	for id := range r.marked {
		status(id).IsArrived = true
	}
	for id, guide := range r.guides {
		status(id).AssignedGuideID = guide
	}
	return out, nil
}

func (r *memStatusRepo) MarkTerminal(ctx context.Context, date time.Time, id string, arrived bool) error {
	if r.marked[id] {
		return domain.StateConflictError{Resource: "booking"}
	}
	r.marked[id] = true
	return nil
}

func (r *memStatusRepo) MarkPaid(ctx context.Context, date time.Time, id string) error { return nil }

func (r *memStatusRepo) AssignGuide(ctx context.Context, date time.Time, ids []string, guideID, guideName string) error {
	for _, id := range ids {
		r.guides[id] = guideID
	}
	return nil
}

type nopReports struct{}

func (nopReports) WritePickupReport(ctx context.Context, date time.Time, groups []entity.TourGroup) (int, error) {
	return len(groups), nil
}

func newTestRouter(t *testing.T, bookings staticBookings) (*gin.Engine, *memShiftRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNopLogger()
	m := metrics.NewNopMetrics()
	shifts := &memShiftRepo{shifts: map[string]entity.Shift{}}
	allocator := usecase.NewShiftBusAllocator(shifts, nil, log, m, time.UTC)
	pickups := usecase.NewPickupService(bookings, &memStatusRepo{marked: map[string]bool{}, guides: map[string]string{}}, nopReports{}, allocator, log, m, time.UTC)

	h := NewHandler(allocator, pickups, nil, log, time.UTC)
	return NewRouter(h, http.NotFoundHandler()), shifts
}

func do(r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, Response) {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, staticBookings{})
	w, _ := do(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || w.Body.String() != "Healthy" {
		t.Fatalf("GET /health = %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestShiftEndpointsLifecycle(t *testing.T) {
	r, shifts := newTestRouter(t, staticBookings{})

	w, resp := do(r, http.MethodPost, "/api/v1/shifts", gin.H{
		"guideId": "guide-1", "guideName": "Anna", "type": "dayTour", "date": "2026-10-20",
		"startTime": "08:00", "endTime": "17:00",
	})
	if w.Code != http.StatusCreated || !resp.Success {
		t.Fatalf("apply = %d %s", w.Code, w.Body.String())
	}

	w, _ = do(r, http.MethodPost, "/api/v1/shifts", gin.H{
		"guideId": "guide-1", "type": "dayTour", "date": "2026-10-20",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate apply = %d, want 409", w.Code)
	}

	w, _ = do(r, http.MethodPost, "/api/v1/shifts/s1/accept", gin.H{"busId": "bus-1", "busName": "Blue"})
	if w.Code != http.StatusOK {
		t.Fatalf("accept = %d %s", w.Code, w.Body.String())
	}
	if got := shifts.shifts["s1"]; got.Status != entity.ShiftStatusAccepted || got.BusID != "bus-1" {
		t.Fatalf("stored shift = %+v", got)
	}

	w, resp = do(r, http.MethodGet, "/api/v1/buses/bus-1/availability?type=dayTour&date=2026-10-20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("availability = %d", w.Code)
	}
	if data, _ := resp.Data.(map[string]interface{}); data["available"] != false {
		t.Fatalf("availability data = %v, want unavailable", resp.Data)
	}

	w, _ = do(r, http.MethodPost, "/api/v1/shifts/s1/cancel", gin.H{"guideId": "guide-1"})
	if w.Code != http.StatusConflict {
		t.Fatalf("cancel accepted = %d, want 409", w.Code)
	}

	w, _ = do(r, http.MethodPost, "/api/v1/shifts/s1/complete", gin.H{"guideId": "guide-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("complete = %d %s", w.Code, w.Body.String())
	}

	w, resp = do(r, http.MethodGet, "/api/v1/shifts?date=2026-10-20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	if list, _ := resp.Data.([]interface{}); len(list) != 1 {
		t.Fatalf("list data = %v", resp.Data)
	}
}

func TestShiftEndpointsErrors(t *testing.T) {
	r, _ := newTestRouter(t, staticBookings{})

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"bad type", http.MethodPost, "/api/v1/shifts", gin.H{"guideId": "g", "type": "boat", "date": "2026-10-20"}, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/v1/shifts", gin.H{"guideId": "g", "type": "dayTour", "date": "20/10/2026"}, http.StatusBadRequest},
		{"unknown shift", http.MethodPost, "/api/v1/shifts/nope/accept", gin.H{"busId": "bus-1"}, http.StatusNotFound},
		{"missing bus", http.MethodPost, "/api/v1/shifts/s1/accept", gin.H{}, http.StatusBadRequest},
		{"availability bad type", http.MethodGet, "/api/v1/buses/bus-1/availability?type=x&date=2026-10-20", nil, http.StatusBadRequest},
		{"list without date", http.MethodGet, "/api/v1/shifts", nil, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/v1/nothing", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Fatalf("%s %s = %d, want %d (%s)", tt.method, tt.path, w.Code, tt.want, w.Body.String())
			}
			if resp.Success || resp.Error == nil {
				t.Fatalf("expected error envelope, got %s", w.Body.String())
			}
		})
	}
}

func TestPickupEndpoints(t *testing.T) {
	pickup := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)
	r, _ := newTestRouter(t, staticBookings{bookings: []entity.PickupBooking{
		{ID: "b1", ProductID: "P1", ProductTitle: "Golden Circle", DepartureTime: "09:00", PickupTime: pickup, GuestCount: 2},
		{ID: "b2", ProductID: "P2", ProductTitle: "VIP Lights", DepartureTime: "20:00", IsPrivateTour: true, GuestCount: 4},
	}})

	w, resp := do(r, http.MethodGet, "/api/v1/pickups/2026-10-20/groups", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("groups = %d %s", w.Code, w.Body.String())
	}
	groups, _ := resp.Data.([]interface{})
	if len(groups) != 2 {
		t.Fatalf("groups = %v", resp.Data)
	}
	if first, _ := groups[0].(map[string]interface{}); first["groupKey"] != "P2_20:00_private" {
		t.Fatalf("first group = %v, want the private one", first)
	}

	w, _ = do(r, http.MethodPost, "/api/v1/pickups/2026-10-20/bookings/b1/arrived", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("arrived = %d", w.Code)
	}
	w, _ = do(r, http.MethodPost, "/api/v1/pickups/2026-10-20/bookings/b1/no-show", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("no-show after arrival = %d, want 409", w.Code)
	}

	w, _ = do(r, http.MethodPost, "/api/v1/pickups/2026-10-20/groups/P1_09:00_group/guide", gin.H{"guideId": "guide-1", "guideName": "Anna"})
	if w.Code != http.StatusOK {
		t.Fatalf("assign guide = %d %s", w.Code, w.Body.String())
	}
	w, _ = do(r, http.MethodPost, "/api/v1/pickups/2026-10-20/groups/P9_09:00_group/guide", gin.H{"guideId": "guide-1"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("assign unknown group = %d, want 404", w.Code)
	}

	w, resp = do(r, http.MethodPost, "/api/v1/pickups/2026-10-20/report", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("report = %d", w.Code)
	}
	if data, _ := resp.Data.(map[string]interface{}); data["rows"] != float64(2) {
		t.Fatalf("report data = %v", resp.Data)
	}

	w, _ = do(r, http.MethodGet, "/api/v1/pickups/tomorrow/groups", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad date = %d, want 400", w.Code)
	}
}

func TestPickupEndpointsUpstreamDown(t *testing.T) {
	r, _ := newTestRouter(t, staticBookings{err: domain.TransientIOError{Op: "fetch bookings", Err: errors.New("timeout")}})

	w, resp := do(r, http.MethodGet, "/api/v1/pickups/2026-10-20/groups", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("groups with upstream down = %d, want 503", w.Code)
	}
	if resp.Error == nil || resp.Error.Code != "upstream_unavailable" {
		t.Fatalf("error = %+v", resp.Error)
	}
}

func TestListShiftsForGuideEndDateInclusive(t *testing.T) {
	r, shifts := newTestRouter(t, staticBookings{})
	for id, d := range map[string]int{"s1": 19, "s2": 20, "s3": 21} {
		shifts.shifts[id] = entity.Shift{
			ID:      id,
			GuideID: "guide-1",
			Type:    entity.ShiftTypeDayTour,
			Status:  entity.ShiftStatusApplied,
			Date:    time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC),
		}
	}

	w, resp := do(r, http.MethodGet, "/api/v1/shifts?guideId=guide-1&from=2026-10-20&to=2026-10-20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d %s", w.Code, w.Body.String())
	}
	list, _ := resp.Data.([]interface{})
	if len(list) != 1 {
		t.Fatalf("got %d shifts, want 1: %v", len(list), resp.Data)
	}
	if first, _ := list[0].(map[string]interface{}); first["id"] != "s2" {
		t.Fatalf("shift = %v, want s2", first)
	}

	_, resp = do(r, http.MethodGet, "/api/v1/shifts?guideId=guide-1&from=2026-10-19&to=2026-10-21", nil)
	if list, _ := resp.Data.([]interface{}); len(list) != 3 {
		t.Fatalf("got %d shifts over three days, want 3", len(list))
	}
}

func TestBusAssignmentsEndpoint(t *testing.T) {
	r, shifts := newTestRouter(t, staticBookings{bookings: []entity.PickupBooking{
		{ID: "b1", ProductID: "P1", DepartureTime: "09:00", GuestCount: 4},
	}})
	shifts.shifts["s1"] = entity.Shift{
		ID:      "s1",
		GuideID: "guide-1",
		Type:    entity.ShiftTypeDayTour,
		Status:  entity.ShiftStatusAccepted,
		BusID:   "bus-1",
		BusName: "Blue",
		Date:    time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
	}

	w, _ := do(r, http.MethodPost, "/api/v1/pickups/2026-10-20/groups/P1_09:00_group/guide", gin.H{"guideId": "guide-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("assign guide = %d %s", w.Code, w.Body.String())
	}

	w, resp := do(r, http.MethodGet, "/api/v1/bus-assignments/2026-10-20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("bus assignments = %d %s", w.Code, w.Body.String())
	}
	list, _ := resp.Data.([]interface{})
	if len(list) != 1 {
		t.Fatalf("assignments = %v", resp.Data)
	}
	got, _ := list[0].(map[string]interface{})
	if got["bookedSeats"] != float64(4) || got["capacity"] != float64(entity.DefaultBusCapacity) {
		t.Fatalf("assignment = %v", got)
	}
	if got["availableSeats"] != float64(entity.DefaultBusCapacity-4) {
		t.Fatalf("availableSeats = %v", got["availableSeats"])
	}
	if full, present := got["isFull"]; !present || full != false {
		t.Fatalf("isFull = %v (present %v)", full, present)
	}
}
