package entity

import (
	"encoding/json"
	"time"
)

const DefaultBusCapacity = 19

// Bus is a vehicle in the fleet reference table.
type Bus struct {
	ID           string
	Name         string
	LicensePlate string
	Capacity     int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BusAssignment groups the shifts holding one bus on one date for one tour type.
type BusAssignment struct {
	BusID       string    `json:"busId"`
	BusName     string    `json:"busName"`
	Date        time.Time `json:"date"`
	Type        ShiftType `json:"type"`
	Shifts      []Shift   `json:"shifts"`
	Capacity    int       `json:"capacity"`
	BookedSeats int       `json:"bookedSeats"`
}

func (a BusAssignment) AvailableSeats() int {
	if a.BookedSeats >= a.Capacity {
		return 0
	}
	return a.Capacity - a.BookedSeats
}

func (a BusAssignment) IsFull() bool {
	return a.BookedSeats >= a.Capacity
}

// MarshalJSON adds the derived seat fields to the stored ones.
func (a BusAssignment) MarshalJSON() ([]byte, error) {
	type stored BusAssignment
	return json.Marshal(struct {
		stored
		AvailableSeats int  `json:"availableSeats"`
		IsFull         bool `json:"isFull"`
	}{
		stored:         stored(a),
		AvailableSeats: a.AvailableSeats(),
		IsFull:         a.IsFull(),
	})
}
