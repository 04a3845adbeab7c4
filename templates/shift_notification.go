package templates

import (
	"fmt"
	"time"

	"tourstaff-service/internal/domain/entity"
)

const (
	shiftAppliedTitle  = "New shift application"
	shiftAcceptedTitle = "Shift confirmed"
	busChangedTitle    = "Bus changed"
)

// ShiftTypeLabel returns the display name of a shift type
func ShiftTypeLabel(t entity.ShiftType) string {
	switch t {
	case entity.ShiftTypeDayTour:
		return "Day Tour"
	case entity.ShiftTypeNorthernLights:
		return "Northern Lights"
	default:
		return string(t)
	}
}

// ShiftApplied formats the admin notification for a new application
func ShiftApplied(shift *entity.Shift, loc *time.Location) (string, string) {
	body := fmt.Sprintf("%s applied for %s on %s",
		shift.GuideName,
		ShiftTypeLabel(shift.Type),
		shift.Date.In(loc).Format("Mon 2 Jan"))
	return shiftAppliedTitle, body
}

// ShiftAccepted formats the guide notification after an admin accepts a shift
func ShiftAccepted(shift *entity.Shift, loc *time.Location) (string, string) {
	body := fmt.Sprintf("Your %s shift on %s is confirmed. Bus: %s",
		ShiftTypeLabel(shift.Type),
		shift.Date.In(loc).Format("Mon 2 Jan"),
		busLabel(shift))
	if shift.AdminNote != "" {
		body += "\nNote: " + shift.AdminNote
	}
	return shiftAcceptedTitle, body
}

// BusReassigned formats the guide notification after a bus change
func BusReassigned(shift *entity.Shift, loc *time.Location) (string, string) {
	body := fmt.Sprintf("Your %s shift on %s now uses bus %s",
		ShiftTypeLabel(shift.Type),
		shift.Date.In(loc).Format("Mon 2 Jan"),
		busLabel(shift))
	return busChangedTitle, body
}

func busLabel(shift *entity.Shift) string {
	if shift.BusName != "" {
		return shift.BusName
	}
	return shift.BusID
}
