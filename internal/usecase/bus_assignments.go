package usecase

import (
	"context"
	"sort"
	"time"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
)

type busAssignmentKey struct {
	busID     string
	shiftType entity.ShiftType
}

// BusAssignments builds the admin bus view for a date from accepted and completed
// shifts. Passengers of bookings assigned to a guide count as booked seats on
// exactly one of that guide's buses, see seatsByShift.
func (a *ShiftBusAllocator) BusAssignments(ctx context.Context, date time.Time, bookings []entity.PickupBooking) ([]entity.BusAssignment, error) {
	shifts, err := a.ShiftsForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	capacities := a.fleetCapacities(ctx)
	seats := seatsByShift(shifts, bookings)

	index := make(map[busAssignmentKey]int)
	assignments := make([]entity.BusAssignment, 0)
	for _, s := range shifts {
		if !s.Status.HoldsBus() || s.BusID == "" {
			continue
		}
		key := busAssignmentKey{busID: s.BusID, shiftType: s.Type}
		i, ok := index[key]
		if !ok {
			capacity := capacities[s.BusID]
			if capacity <= 0 {
				capacity = a.defaultCapacity
			}
			i = len(assignments)
			index[key] = i
			assignments = append(assignments, entity.BusAssignment{
				BusID:    s.BusID,
				BusName:  s.BusName,
				Date:     s.Date,
				Type:     s.Type,
				Capacity: capacity,
			})
		}
		assignments[i].Shifts = append(assignments[i].Shifts, *s)
		assignments[i].BookedSeats += seats[s.ID]
	}

	sort.SliceStable(assignments, func(x, y int) bool {
		if assignments[x].Type != assignments[y].Type {
			return assignments[x].Type < assignments[y].Type
		}
		return assignments[x].BusName < assignments[y].BusName
	})
	return assignments, nil
}

// seatsByShift maps shift id to booked passengers. A guide holding several buses
// on one date gets each booking counted on the shift whose start/end window
// contains the departure time, otherwise on their earliest-starting shift. No-shows and
// unassigned bookings take no seat.
func seatsByShift(shifts []*entity.Shift, bookings []entity.PickupBooking) map[string]int {
	held := make(map[string][]*entity.Shift)
	for _, s := range shifts {
		if s.Status.HoldsBus() && s.BusID != "" {
			held[s.GuideID] = append(held[s.GuideID], s)
		}
	}
	for _, list := range held {
		sort.Slice(list, func(x, y int) bool {
			if list[x].StartTime != list[y].StartTime {
				return list[x].StartTime < list[y].StartTime
			}
			return list[x].ID < list[y].ID
		})
	}

	seats := make(map[string]int)
	for _, b := range bookings {
		if b.AssignedGuideID == "" || b.IsNoShow {
			continue
		}
		candidates := held[b.AssignedGuideID]
		if len(candidates) == 0 {
			continue
		}
		target := candidates[0]
		for _, s := range candidates {
			if departsWithin(b.DepartureTime, s.StartTime, s.EndTime) {
				target = s
				break
			}
		}
		seats[target.ID] += b.GuestCount
	}
	return seats
}

// departsWithin compares HH:MM strings. A window ending before it starts runs past midnight.
func departsWithin(departure, start, end string) bool {
	if departure == "" || start == "" || end == "" {
		return false
	}
	if start <= end {
		return start <= departure && departure <= end
	}
	return departure >= start || departure <= end
}

func (a *ShiftBusAllocator) fleetCapacities(ctx context.Context) map[string]int {
	capacities := make(map[string]int)
	if a.busRepo == nil {
		return capacities
	}
	buses, err := a.busRepo.ListActive(ctx)
	if err != nil {
		a.logger.Warn("Failed to load bus fleet, using default capacity",
			"capacity", a.defaultCapacity,
			"error", domain.TransientIOError{Op: "list buses", Err: err})
		return capacities
	}
	for _, b := range buses {
		capacities[b.ID] = b.Capacity
	}
	return capacities
}
