package repository

import (
	"context"
	"time"

	"tourstaff-service/internal/domain/entity"
)

// ReportRepository writes the grouped pickup list for a date and returns the number of rows written
type ReportRepository interface {
	WritePickupReport(ctx context.Context, date time.Time, groups []entity.TourGroup) (int, error)
}
