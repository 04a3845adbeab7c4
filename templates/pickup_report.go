package templates

import (
	"fmt"
	"time"

	"tourstaff-service/internal/domain/entity"
)

// PickupReportHeader is the first row of every pickup report
var PickupReportHeader = []interface{}{
	"Tour", "Departure", "Kind", "Pickup", "Pickup place", "Customer",
	"Guests", "Phone", "Email", "Guide", "Status", "To pay",
}

// PickupReportRows renders grouped bookings as report rows, header included.
// Each group ends with a summary row. bookingRows counts only booking lines.
func PickupReportRows(groups []entity.TourGroup, loc *time.Location) (rows [][]interface{}, bookingRows int) {
	rows = append(rows, PickupReportHeader)
	for _, g := range groups {
		kind := "Group"
		if g.IsPrivateTour {
			kind = "Private"
		}
		for _, b := range g.Bookings {
			rows = append(rows, []interface{}{
				g.ProductTitle,
				g.DepartureTime,
				kind,
				pickupClock(b, loc),
				b.PickupPlace,
				b.CustomerName,
				b.GuestCount,
				b.Phone,
				b.Email,
				b.AssignedGuideName,
				pickupStatusLabel(b),
				amountDue(b),
			})
			bookingRows++
		}
		rows = append(rows, []interface{}{
			fmt.Sprintf("%s total", g.ProductTitle), "", "", "", "", "",
			g.TotalPassengers(), "", "", "",
			fmt.Sprintf("%d arrived / %d no-show / %d pending", g.CompletedCount(), g.NoShowCount(), g.PendingCount()),
			"",
		})
	}
	return rows, bookingRows
}

func pickupClock(b entity.PickupBooking, loc *time.Location) string {
	if b.PickupTime.IsZero() {
		return ""
	}
	return b.PickupTime.In(loc).Format("15:04")
}

func pickupStatusLabel(b entity.PickupBooking) string {
	switch {
	case b.IsArrived:
		return "Arrived"
	case b.IsNoShow:
		return "No-show"
	default:
		return "Pending"
	}
}

func amountDue(b entity.PickupBooking) string {
	if !b.IsUnpaid || b.PaidOnArrival || b.AmountToPayOnArrival <= 0 {
		return ""
	}
	return fmt.Sprintf("%.0f", b.AmountToPayOnArrival)
}
