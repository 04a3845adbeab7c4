package repository

import (
	"context"
	"time"

	"tourstaff-service/internal/domain/entity"
)

// PickupStatusRepository stores guide actions on bookings per date
type PickupStatusRepository interface {
	FindByDate(ctx context.Context, date time.Time) (map[string]*entity.PickupStatus, error)
	// MarkTerminal sets arrived or no-show on a booking only if neither flag is already set.
	// It returns a StateConflictError when the booking already has a terminal status.
	MarkTerminal(ctx context.Context, date time.Time, bookingID string, arrived bool) error
	MarkPaid(ctx context.Context, date time.Time, bookingID string) error
	AssignGuide(ctx context.Context, date time.Time, bookingIDs []string, guideID, guideName string) error
}
