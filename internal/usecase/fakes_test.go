package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/pkg/logger"
	"tourstaff-service/pkg/metrics"
)

var (
	testLoc    = time.UTC
	errStoreIO = errors.New("store unavailable")
)

// fakeShiftRepo keeps shifts in memory and honours the compare-and-set contract
type fakeShiftRepo struct {
	mu       sync.Mutex
	shifts   map[string]entity.Shift
	nextID   int
	rangeErr error
	writes   int
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make(map[string]entity.Shift)}
}

func (r *fakeShiftRepo) put(s entity.Shift) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shifts[s.ID] = s
}

func (r *fakeShiftRepo) get(id string) entity.Shift {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shifts[id]
}

func (r *fakeShiftRepo) Create(ctx context.Context, shift *entity.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if shift.ID == "" {
		r.nextID++
		shift.ID = fmt.Sprintf("shift-%d", r.nextID)
	}
	r.shifts[shift.ID] = *shift
	r.writes++
	return nil
}

func (r *fakeShiftRepo) FindByID(ctx context.Context, id string) (*entity.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "shift", ID: id}
	}
	return &s, nil
}

func (r *fakeShiftRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Shift, error) {
	if r.rangeErr != nil {
		return nil, r.rangeErr
	}
	return r.filter(func(s entity.Shift) bool {
		return !s.Date.Before(from) && s.Date.Before(to)
	}), nil
}

func (r *fakeShiftRepo) FindByGuide(ctx context.Context, guideID string, from, to time.Time) ([]*entity.Shift, error) {
	return r.filter(func(s entity.Shift) bool {
		return s.GuideID == guideID && !s.Date.Before(from) && s.Date.Before(to)
	}), nil
}

func (r *fakeShiftRepo) filter(match func(entity.Shift) bool) []*entity.Shift {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Shift, 0)
	for _, s := range r.shifts {
		if match(s) {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeShiftRepo) Update(ctx context.Context, id string, expected entity.ShiftStatus, update entity.ShiftUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[id]
	if !ok || s.Status != expected {
		return domain.StateConflictError{Resource: "shift", Msg: "status changed"}
	}
	update.Apply(&s)
	r.shifts[id] = s
	r.writes++
	return nil
}

func (r *fakeShiftRepo) CompleteAcceptedBefore(ctx context.Context, cutoff time.Time, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.shifts {
		if s.Status == entity.ShiftStatusAccepted && s.Date.Before(cutoff) {
			s.Status = entity.ShiftStatusCompleted
			s.UpdatedAt = now
			r.shifts[id] = s
			n++
		}
	}
	return n, nil
}

type fakeBusRepo struct {
	buses   map[string]*entity.Bus
	listErr error
}

func (r *fakeBusRepo) Create(ctx context.Context, bus *entity.Bus) error {
	r.buses[bus.ID] = bus
	return nil
}

func (r *fakeBusRepo) GetByID(ctx context.Context, id string) (*entity.Bus, error) {
	b, ok := r.buses[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "bus", ID: id}
	}
	return b, nil
}

func (r *fakeBusRepo) ListActive(ctx context.Context) ([]*entity.Bus, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*entity.Bus, 0, len(r.buses))
	for _, b := range r.buses {
		if b.Active {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeBookingSource struct {
	bookings []entity.PickupBooking
	err      error
	calls    int
}

func (s *fakeBookingSource) FetchBookings(ctx context.Context, date time.Time) ([]entity.PickupBooking, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]entity.PickupBooking, len(s.bookings))
	copy(out, s.bookings)
	return out, nil
}

// fakeStatusRepo mirrors the conditional terminal write of the Mongo overlay
type fakeStatusRepo struct {
	statuses map[string]*entity.PickupStatus
}

func newFakeStatusRepo() *fakeStatusRepo {
	return &fakeStatusRepo{statuses: make(map[string]*entity.PickupStatus)}
}

func (r *fakeStatusRepo) status(date time.Time, id string) *entity.PickupStatus {
	key := date.Format("2006-01-02") + "/" + id
	st, ok := r.statuses[key]
	if !ok {
		st = &entity.PickupStatus{BookingID: id, Date: date}
		r.statuses[key] = st
	}
	return st
}

func (r *fakeStatusRepo) FindByDate(ctx context.Context, date time.Time) (map[string]*entity.PickupStatus, error) {
	out := make(map[string]*entity.PickupStatus)
	for _, st := range r.statuses {
		if st.Date.Equal(date) {
			out[st.BookingID] = st
		}
	}
	return out, nil
}

func (r *fakeStatusRepo) MarkTerminal(ctx context.Context, date time.Time, bookingID string, arrived bool) error {
	st := r.status(date, bookingID)
	if st.IsArrived || st.IsNoShow {
		return domain.StateConflictError{Resource: "booking", Msg: "already terminal"}
	}
	if arrived {
		st.IsArrived = true
	} else {
		st.IsNoShow = true
	}
	return nil
}

func (r *fakeStatusRepo) MarkPaid(ctx context.Context, date time.Time, bookingID string) error {
	r.status(date, bookingID).PaidOnArrival = true
	return nil
}

func (r *fakeStatusRepo) AssignGuide(ctx context.Context, date time.Time, bookingIDs []string, guideID, guideName string) error {
	for _, id := range bookingIDs {
		st := r.status(date, id)
		st.AssignedGuideID = guideID
		st.AssignedGuideName = guideName
	}
	return nil
}

type fakeReportRepo struct {
	groups []entity.TourGroup
	err    error
}

func (r *fakeReportRepo) WritePickupReport(ctx context.Context, date time.Time, groups []entity.TourGroup) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.groups = groups
	rows := 0
	for _, g := range groups {
		rows += len(g.Bookings)
	}
	return rows, nil
}

type fakeStaffRepo struct {
	members map[string]*entity.StaffMember
	roleErr error
}

func (r *fakeStaffRepo) FindByID(ctx context.Context, id string) (*entity.StaffMember, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: "staff member", ID: id}
	}
	return m, nil
}

func (r *fakeStaffRepo) FindByRole(ctx context.Context, role entity.StaffRole) ([]*entity.StaffMember, error) {
	if r.roleErr != nil {
		return nil, r.roleErr
	}
	out := make([]*entity.StaffMember, 0)
	for _, m := range r.members {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakePushRepo struct {
	sent    []*entity.PushMessage
	failFor map[string]bool
}

func (r *fakePushRepo) Send(ctx context.Context, msg *entity.PushMessage) (string, error) {
	if r.failFor[msg.Token] {
		return "", errors.New("push rejected")
	}
	r.sent = append(r.sent, msg)
	return fmt.Sprintf("msg-%d", len(r.sent)), nil
}

func newTestAllocator(shifts *fakeShiftRepo, buses *fakeBusRepo, now time.Time) *ShiftBusAllocator {
	var a *ShiftBusAllocator
	if buses == nil {
		a = NewShiftBusAllocator(shifts, nil, logger.NewNopLogger(), metrics.NewNopMetrics(), testLoc)
	} else {
		a = NewShiftBusAllocator(shifts, buses, logger.NewNopLogger(), metrics.NewNopMetrics(), testLoc)
	}
	a.now = func() time.Time { return now }
	return a
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, testLoc)
}
