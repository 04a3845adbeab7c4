package entity

// TourGroup is a derived aggregate of bookings sharing product, departure time and privacy.
// It is recomputed on every read and never persisted.
type TourGroup struct {
	GroupKey      string          `json:"groupKey"`
	ProductID     string          `json:"productId,omitempty"`
	ProductTitle  string          `json:"productTitle"`
	DepartureTime string          `json:"departureTime,omitempty"`
	IsPrivateTour bool            `json:"isPrivateTour"`
	Bookings      []PickupBooking `json:"bookings"`
}

func (g TourGroup) TotalPassengers() int {
	total := 0
	for _, b := range g.Bookings {
		total += b.GuestCount
	}
	return total
}

// CompletedCount counts bookings marked arrived.
func (g TourGroup) CompletedCount() int {
	n := 0
	for _, b := range g.Bookings {
		if b.IsArrived {
			n++
		}
	}
	return n
}

func (g TourGroup) NoShowCount() int {
	n := 0
	for _, b := range g.Bookings {
		if b.IsNoShow {
			n++
		}
	}
	return n
}

func (g TourGroup) PendingCount() int {
	return len(g.Bookings) - g.CompletedCount() - g.NoShowCount()
}
