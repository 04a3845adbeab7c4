package repository

import (
	"context"
	"time"

	"tourstaff-service/internal/domain/entity"
)

// BookingSource yields pickup bookings for a calendar date from the external booking system
type BookingSource interface {
	FetchBookings(ctx context.Context, date time.Time) ([]entity.PickupBooking, error)
}
