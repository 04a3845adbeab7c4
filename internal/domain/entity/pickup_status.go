package entity

import "time"

// PickupStatus is the stored overlay of guide actions on a booking for one date.
// Bookings themselves are re-synced from the booking source and never stored.
type PickupStatus struct {
	BookingID         string    `bson:"bookingId"`
	Date              time.Time `bson:"date"`
	IsArrived         bool      `bson:"isArrived"`
	IsNoShow          bool      `bson:"isNoShow"`
	PaidOnArrival     bool      `bson:"paidOnArrival"`
	AssignedGuideID   string    `bson:"assignedGuideId,omitempty"`
	AssignedGuideName string    `bson:"assignedGuideName,omitempty"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}

// ApplyTo merges the overlay into a booking fetched from the source.
func (s PickupStatus) ApplyTo(b *PickupBooking) {
	b.IsArrived = s.IsArrived
	b.IsNoShow = s.IsNoShow
	if s.PaidOnArrival {
		b.PaidOnArrival = true
	}
	if s.AssignedGuideID != "" {
		b.AssignedGuideID = s.AssignedGuideID
		b.AssignedGuideName = s.AssignedGuideName
	}
}
