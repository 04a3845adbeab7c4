package entity

import "time"

type ShiftType string

const (
	ShiftTypeDayTour        ShiftType = "dayTour"
	ShiftTypeNorthernLights ShiftType = "northernLights"
)

func (t ShiftType) Valid() bool {
	return t == ShiftTypeDayTour || t == ShiftTypeNorthernLights
}

type ShiftStatus string

const (
	ShiftStatusAvailable ShiftStatus = "available"
	ShiftStatusApplied   ShiftStatus = "applied"
	ShiftStatusAccepted  ShiftStatus = "accepted"
	ShiftStatusCompleted ShiftStatus = "completed"
	ShiftStatusCancelled ShiftStatus = "cancelled"
)

var shiftTransitions = map[ShiftStatus][]ShiftStatus{
	ShiftStatusAvailable: {ShiftStatusApplied},
	ShiftStatusApplied:   {ShiftStatusAccepted, ShiftStatusCancelled},
	ShiftStatusAccepted:  {ShiftStatusCompleted},
}

// CanTransition reports whether a shift may move from one status to another.
// Bus reassignment keeps a shift in accepted and is not a status transition.
func CanTransition(from, to ShiftStatus) bool {
	for _, next := range shiftTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// HoldsBus reports whether a shift in this status occupies its bus for the day.
func (s ShiftStatus) HoldsBus() bool {
	return s == ShiftStatusAccepted || s == ShiftStatusCompleted
}

// Shift is a guide's claim on a single tour-type/date slot.
type Shift struct {
	ID        string      `json:"id" bson:"_id,omitempty"`
	Type      ShiftType   `json:"type" bson:"type"`
	Date      time.Time   `json:"date" bson:"date"`
	StartTime string      `json:"startTime" bson:"startTime"`
	EndTime   string      `json:"endTime" bson:"endTime"`
	Status    ShiftStatus `json:"status" bson:"status"`
	GuideID   string      `json:"guideId" bson:"guideId"`
	GuideName string      `json:"guideName" bson:"guideName"`
	BusID     string      `json:"busId,omitempty" bson:"busId,omitempty"`
	BusName   string      `json:"busName,omitempty" bson:"busName,omitempty"`
	AdminNote string      `json:"adminNote,omitempty" bson:"adminNote,omitempty"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// ShiftUpdate lists the fields written together in one shift update. Nil fields are left untouched.
type ShiftUpdate struct {
	Status    *ShiftStatus
	BusID     *string
	BusName   *string
	AdminNote *string
	UpdatedAt time.Time
}

// Apply copies the update onto a shift value.
func (u ShiftUpdate) Apply(s *Shift) {
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.BusID != nil {
		s.BusID = *u.BusID
	}
	if u.BusName != nil {
		s.BusName = *u.BusName
	}
	if u.AdminNote != nil {
		s.AdminNote = *u.AdminNote
	}
	if !u.UpdatedAt.IsZero() {
		s.UpdatedAt = u.UpdatedAt
	}
}
