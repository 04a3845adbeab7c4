package templates

import (
	"fmt"
	"strings"
	"time"

	"tourstaff-service/internal/domain/entity"
)

// PickupAssigned formats the guide notification for a tour group hand-out
func PickupAssigned(group entity.TourGroup, date time.Time, loc *time.Location) (string, string) {
	title := "Pickup list " + date.In(loc).Format("2 Jan")

	var sb strings.Builder
	name := group.ProductTitle
	if name == "" {
		name = "Tour"
	}
	sb.WriteString(name)
	if group.DepartureTime != "" {
		sb.WriteString(" at ")
		sb.WriteString(group.DepartureTime)
	}
	if group.IsPrivateTour {
		sb.WriteString(" (private)")
	}
	fmt.Fprintf(&sb, "\n%d bookings, %d passengers", len(group.Bookings), group.TotalPassengers())

	if first := firstPickup(group); first != nil {
		fmt.Fprintf(&sb, "\nFirst pickup %s at %s", first.PickupTime.In(loc).Format("15:04"), first.PickupPlace)
	}
	return title, sb.String()
}

func firstPickup(group entity.TourGroup) *entity.PickupBooking {
	for i := range group.Bookings {
		if !group.Bookings[i].PickupTime.IsZero() {
			return &group.Bookings[i]
		}
	}
	return nil
}
