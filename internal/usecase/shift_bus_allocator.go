package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/internal/domain/repository"
	"tourstaff-service/pkg/logger"
	"tourstaff-service/pkg/metrics"
	"tourstaff-service/pkg/utils"
)

// ShiftBusAllocator drives the shift state machine and guards bus assignment
// against double-booking.
//
// Availability checks and the writes that follow are two separate remote calls.
// Two admins accepting different shifts onto the same bus at the same moment can
// both pass the check; writes only compare-and-set the shift's own status.
type ShiftBusAllocator struct {
	shiftRepo repository.ShiftRepository
	busRepo   repository.BusRepository
	logger    logger.Logger
	metrics   *metrics.Metrics
	location  *time.Location
	now       func() time.Time

	defaultCapacity int
}

// NewShiftBusAllocator creates a new allocator. busRepo may be nil, in which case
// bus names are taken as given and capacities default.
func NewShiftBusAllocator(
	shiftRepo repository.ShiftRepository,
	busRepo repository.BusRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
	location *time.Location,
) *ShiftBusAllocator {
	if location == nil {
		location = time.UTC
	}
	return &ShiftBusAllocator{
		shiftRepo: shiftRepo,
		busRepo:   busRepo,
		logger:    logger,
		metrics:   metrics,
		location:  location,
		now:       time.Now,

		defaultCapacity: entity.DefaultBusCapacity,
	}
}

// WithDefaultBusCapacity sets the seat count used for buses missing from the fleet table.
func (a *ShiftBusAllocator) WithDefaultBusCapacity(capacity int) *ShiftBusAllocator {
	if capacity > 0 {
		a.defaultCapacity = capacity
	}
	return a
}

// ApplyForShift records a guide's application for a tour type on a date.
// A guide may hold only one non-cancelled shift per (type, date).
func (a *ShiftBusAllocator) ApplyForShift(ctx context.Context, guideID, guideName string, shiftType entity.ShiftType, date time.Time, startTime, endTime string) (*entity.Shift, error) {
	const op = "apply"
	if strings.TrimSpace(guideID) == "" {
		return nil, a.fail(op, domain.ValidationError{Field: "guideId", Msg: "is required"})
	}
	if !shiftType.Valid() {
		return nil, a.fail(op, domain.ValidationError{Field: "type", Msg: fmt.Sprintf("unknown shift type %q", shiftType)})
	}
	if date.IsZero() {
		return nil, a.fail(op, domain.ValidationError{Field: "date", Msg: "is required"})
	}

	from, to := utils.DayBounds(date, a.location)
	existing, err := a.shiftRepo.FindByGuide(ctx, guideID, from, to)
	if err != nil {
		return nil, a.fail(op, domain.TransientIOError{Op: "find guide shifts", Err: err})
	}
	for _, s := range existing {
		if s.Type == shiftType && s.Status != entity.ShiftStatusCancelled {
			return nil, a.fail(op, domain.StateConflictError{
				Resource: "shift",
				Msg:      fmt.Sprintf("guide already has a %s shift on %s (%s)", shiftType, utils.FormatDate(from, a.location), s.Status),
			})
		}
	}

	now := a.now()
	shift := &entity.Shift{
		Type:      shiftType,
		Date:      from,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    entity.ShiftStatusApplied,
		GuideID:   guideID,
		GuideName: guideName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.shiftRepo.Create(ctx, shift); err != nil {
		return nil, a.fail(op, domain.TransientIOError{Op: "create shift", Err: err})
	}

	a.succeed(op)
	a.logger.Info("Shift application created",
		"shiftId", shift.ID,
		"guideId", guideID,
		"type", shiftType,
		"date", utils.FormatDate(from, a.location))
	return shift, nil
}

// IsBusAvailableForShift reports whether no other accepted or completed shift of
// the same type holds busID on date. Read failures fail open: the bus is reported
// available and the fallback is logged and counted.
func (a *ShiftBusAllocator) IsBusAvailableForShift(ctx context.Context, busID string, shiftType entity.ShiftType, date time.Time, excludeShiftID string) bool {
	if busID == "" {
		return true
	}

	from, to := utils.DayBounds(date, a.location)
	shifts, err := a.shiftRepo.FindByDateRange(ctx, from, to)
	if err != nil {
		a.logger.Warn("Bus availability check failed, treating bus as available",
			"busId", busID,
			"type", shiftType,
			"date", utils.FormatDate(from, a.location),
			"error", err)
		a.metrics.AvailabilityFallbacks.Inc()
		return true
	}

	for _, s := range shifts {
		if s.ID == excludeShiftID && excludeShiftID != "" {
			continue
		}
		if s.Status.HoldsBus() && s.Type == shiftType && s.BusID == busID {
			a.logger.Debug("Bus already booked",
				"busId", busID,
				"conflictingShiftId", s.ID,
				"guideId", s.GuideID)
			return false
		}
	}
	return true
}

// AcceptShiftAndAssignBus moves an applied shift to accepted and assigns the bus in one write.
func (a *ShiftBusAllocator) AcceptShiftAndAssignBus(ctx context.Context, shiftID, busID, busName, adminNote string) (*entity.Shift, error) {
	const op = "accept"
	if strings.TrimSpace(busID) == "" {
		return nil, a.fail(op, domain.ValidationError{Field: "busId", Msg: "is required"})
	}

	shift, err := a.loadShift(ctx, shiftID)
	if err != nil {
		return nil, a.fail(op, err)
	}
	if !entity.CanTransition(shift.Status, entity.ShiftStatusAccepted) {
		return nil, a.fail(op, domain.StateConflictError{
			Resource: "shift",
			Msg:      fmt.Sprintf("cannot accept shift in status %s", shift.Status),
		})
	}
	if !a.IsBusAvailableForShift(ctx, busID, shift.Type, shift.Date, shift.ID) {
		return nil, a.fail(op, domain.StateConflictError{
			Resource: "bus",
			Msg:      fmt.Sprintf("bus %s is already booked for %s on %s", busID, shift.Type, utils.FormatDate(shift.Date, a.location)),
		})
	}

	accepted := entity.ShiftStatusAccepted
	name := a.resolveBusName(ctx, busID, busName)
	update := entity.ShiftUpdate{
		Status:    &accepted,
		BusID:     &busID,
		BusName:   &name,
		UpdatedAt: a.now(),
	}
	if adminNote != "" {
		update.AdminNote = &adminNote
	}
	if err := a.write(ctx, shift, update); err != nil {
		return nil, a.fail(op, err)
	}

	a.succeed(op)
	a.logger.Info("Shift accepted",
		"shiftId", shift.ID,
		"guideId", shift.GuideID,
		"busId", busID)
	return shift, nil
}

// ReassignBus moves an accepted shift onto another bus.
func (a *ShiftBusAllocator) ReassignBus(ctx context.Context, shiftID, busID, busName string) (*entity.Shift, error) {
	const op = "reassign"
	if strings.TrimSpace(busID) == "" {
		return nil, a.fail(op, domain.ValidationError{Field: "busId", Msg: "is required"})
	}

	shift, err := a.loadShift(ctx, shiftID)
	if err != nil {
		return nil, a.fail(op, err)
	}
	if shift.Status != entity.ShiftStatusAccepted {
		return nil, a.fail(op, domain.StateConflictError{
			Resource: "shift",
			Msg:      fmt.Sprintf("bus can only be reassigned on accepted shifts, got %s", shift.Status),
		})
	}
	if !a.IsBusAvailableForShift(ctx, busID, shift.Type, shift.Date, shift.ID) {
		return nil, a.fail(op, domain.StateConflictError{
			Resource: "bus",
			Msg:      fmt.Sprintf("bus %s is already booked for %s on %s", busID, shift.Type, utils.FormatDate(shift.Date, a.location)),
		})
	}

	name := a.resolveBusName(ctx, busID, busName)
	update := entity.ShiftUpdate{
		BusID:     &busID,
		BusName:   &name,
		UpdatedAt: a.now(),
	}
	if err := a.write(ctx, shift, update); err != nil {
		return nil, a.fail(op, err)
	}

	a.succeed(op)
	a.logger.Info("Shift bus reassigned", "shiftId", shift.ID, "busId", busID)
	return shift, nil
}

// CancelShiftApplication lets the owning guide withdraw an application that is still applied.
func (a *ShiftBusAllocator) CancelShiftApplication(ctx context.Context, shiftID, guideID string) (*entity.Shift, error) {
	return a.guideTransition(ctx, "cancel", shiftID, guideID, entity.ShiftStatusCancelled)
}

// CompleteShift lets the owning guide mark an accepted shift completed.
func (a *ShiftBusAllocator) CompleteShift(ctx context.Context, shiftID, guideID string) (*entity.Shift, error) {
	return a.guideTransition(ctx, "complete", shiftID, guideID, entity.ShiftStatusCompleted)
}

func (a *ShiftBusAllocator) guideTransition(ctx context.Context, op, shiftID, guideID string, to entity.ShiftStatus) (*entity.Shift, error) {
	shift, err := a.loadShift(ctx, shiftID)
	if err != nil {
		return nil, a.fail(op, err)
	}
	if guideID == "" || shift.GuideID != guideID {
		return nil, a.fail(op, domain.StateConflictError{
			Resource: "shift",
			Msg:      "shift belongs to another guide",
		})
	}
	if !entity.CanTransition(shift.Status, to) {
		return nil, a.fail(op, domain.StateConflictError{
			Resource: "shift",
			Msg:      fmt.Sprintf("cannot move shift from %s to %s", shift.Status, to),
		})
	}

	update := entity.ShiftUpdate{Status: &to, UpdatedAt: a.now()}
	if err := a.write(ctx, shift, update); err != nil {
		return nil, a.fail(op, err)
	}

	a.succeed(op)
	a.logger.Info("Shift status changed", "shiftId", shift.ID, "guideId", guideID, "status", to)
	return shift, nil
}

// AutoCompletePastShifts completes every accepted shift dated before today.
// Running it again is a no-op for shifts it already completed.
func (a *ShiftBusAllocator) AutoCompletePastShifts(ctx context.Context) (int64, error) {
	const op = "auto_complete"
	now := a.now()
	cutoff := utils.StartOfDay(now, a.location)

	n, err := a.shiftRepo.CompleteAcceptedBefore(ctx, cutoff, now)
	if err != nil {
		return 0, a.fail(op, domain.TransientIOError{Op: "complete past shifts", Err: err})
	}

	a.succeed(op)
	a.metrics.ShiftsAutoCompleted.Add(float64(n))
	if n > 0 {
		a.logger.Info("Auto-completed past shifts", "count", n, "cutoff", utils.FormatDate(cutoff, a.location))
	}
	return n, nil
}

// ShiftsForDate lists all shifts on a calendar day.
func (a *ShiftBusAllocator) ShiftsForDate(ctx context.Context, date time.Time) ([]*entity.Shift, error) {
	from, to := utils.DayBounds(date, a.location)
	shifts, err := a.shiftRepo.FindByDateRange(ctx, from, to)
	if err != nil {
		return nil, domain.TransientIOError{Op: "find shifts", Err: err}
	}
	return shifts, nil
}

// ShiftsForGuide lists a guide's shifts with dates in [from, to].
func (a *ShiftBusAllocator) ShiftsForGuide(ctx context.Context, guideID string, from, to time.Time) ([]*entity.Shift, error) {
	if guideID == "" {
		return nil, domain.ValidationError{Field: "guideId", Msg: "is required"}
	}
	start := utils.StartOfDay(from, a.location)
	_, end := utils.DayBounds(to, a.location)
	shifts, err := a.shiftRepo.FindByGuide(ctx, guideID, start, end)
	if err != nil {
		return nil, domain.TransientIOError{Op: "find guide shifts", Err: err}
	}
	return shifts, nil
}

func (a *ShiftBusAllocator) loadShift(ctx context.Context, shiftID string) (*entity.Shift, error) {
	if strings.TrimSpace(shiftID) == "" {
		return nil, domain.ValidationError{Field: "shiftId", Msg: "is required"}
	}
	shift, err := a.shiftRepo.FindByID(ctx, shiftID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, domain.TransientIOError{Op: "load shift", Err: err}
	}
	return shift, nil
}

// write performs the update conditioned on the status the shift was read with,
// then reflects it on the in-memory shift.
func (a *ShiftBusAllocator) write(ctx context.Context, shift *entity.Shift, update entity.ShiftUpdate) error {
	if err := a.shiftRepo.Update(ctx, shift.ID, shift.Status, update); err != nil {
		if domain.IsStateConflict(err) || domain.IsNotFound(err) {
			return err
		}
		return domain.TransientIOError{Op: "update shift", Err: err}
	}
	update.Apply(shift)
	return nil
}

func (a *ShiftBusAllocator) resolveBusName(ctx context.Context, busID, busName string) string {
	if busName != "" || a.busRepo == nil {
		return busName
	}
	bus, err := a.busRepo.GetByID(ctx, busID)
	if err != nil {
		a.logger.Warn("Failed to look up bus name", "busId", busID, "error", err)
		return busName
	}
	return bus.Name
}

func (a *ShiftBusAllocator) succeed(op string) {
	a.metrics.ShiftTransitions.WithLabelValues(op, "ok").Inc()
}

func (a *ShiftBusAllocator) fail(op string, err error) error {
	outcome := "error"
	switch {
	case domain.IsStateConflict(err):
		outcome = "conflict"
	case domain.IsValidation(err):
		outcome = "invalid"
	case domain.IsNotFound(err):
		outcome = "not_found"
	default:
		a.metrics.ErrorsCount.WithLabelValues("shift_" + op).Inc()
	}
	a.metrics.ShiftTransitions.WithLabelValues(op, outcome).Inc()
	a.logger.Warn("Shift operation rejected", "operation", op, "outcome", outcome, "error", err)
	return err
}
