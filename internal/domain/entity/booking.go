package entity

import (
	"strings"
	"time"
)

// PickupBooking is one customer's pickup record for a tour departure.
// Optional source fields are kept as zero values: an empty ProductID or
// DepartureTime means the booking source did not supply one.
type PickupBooking struct {
	ID                   string    `json:"id" bson:"bookingId"`
	CustomerName         string    `json:"customerName" bson:"customerName"`
	PickupPlace          string    `json:"pickupPlace" bson:"pickupPlace"`
	PickupTime           time.Time `json:"pickupTime" bson:"pickupTime"`
	GuestCount           int       `json:"guestCount" bson:"guestCount"`
	Phone                string    `json:"phone" bson:"phone"`
	Email                string    `json:"email" bson:"email"`
	AssignedGuideID      string    `json:"assignedGuideId,omitempty" bson:"assignedGuideId,omitempty"`
	AssignedGuideName    string    `json:"assignedGuideName,omitempty" bson:"assignedGuideName,omitempty"`
	IsNoShow             bool      `json:"isNoShow" bson:"isNoShow"`
	IsArrived            bool      `json:"isArrived" bson:"isArrived"`
	ProductID            string    `json:"productId,omitempty" bson:"productId,omitempty"`
	ProductTitle         string    `json:"productTitle,omitempty" bson:"productTitle,omitempty"`
	DepartureTime        string    `json:"departureTime,omitempty" bson:"departureTime,omitempty"`
	StartTimeID          string    `json:"startTimeId,omitempty" bson:"startTimeId,omitempty"`
	IsPrivateTour        bool      `json:"isPrivateTour" bson:"isPrivateTour"`
	IsUnpaid             bool      `json:"isUnpaid" bson:"isUnpaid"`
	AmountToPayOnArrival float64   `json:"amountToPayOnArrival" bson:"amountToPayOnArrival"`
	PaidOnArrival        bool      `json:"paidOnArrival" bson:"paidOnArrival"`
}

// IsCompleted reports whether the booking has reached a terminal pickup state.
func (b PickupBooking) IsCompleted() bool {
	return b.IsArrived || b.IsNoShow
}

var privateTourKeywords = []string{"private", "exclusive", "vip", "custom", "charter"}

// IsPrivateTour classifies a product title, label or booking type string.
// Matching is a case-insensitive substring test against English keywords only.
func IsPrivateTour(value string) bool {
	if value == "" {
		return false
	}
	lower := strings.ToLower(value)
	for _, keyword := range privateTourKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// IsPrivateTourAny returns true if any of the values classifies as private.
func IsPrivateTourAny(values ...string) bool {
	for _, v := range values {
		if IsPrivateTour(v) {
			return true
		}
	}
	return false
}
