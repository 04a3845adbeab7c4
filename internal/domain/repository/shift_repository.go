package repository

import (
	"context"
	"time"

	"tourstaff-service/internal/domain/entity"
)

// ShiftRepository defines the persistence operations over the shift collection
type ShiftRepository interface {
	Create(ctx context.Context, shift *entity.Shift) error
	FindByID(ctx context.Context, id string) (*entity.Shift, error)
	// FindByDateRange returns shifts whose date falls in [from, to).
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Shift, error)
	FindByGuide(ctx context.Context, guideID string, from, to time.Time) ([]*entity.Shift, error)
	// Update writes all fields of the update in one document write, only if the
	// stored status still equals expected. It returns a StateConflictError otherwise.
	Update(ctx context.Context, id string, expected entity.ShiftStatus, update entity.ShiftUpdate) error
	// CompleteAcceptedBefore moves every accepted shift dated before the cutoff to completed.
	CompleteAcceptedBefore(ctx context.Context, cutoff time.Time, now time.Time) (int64, error)
}
