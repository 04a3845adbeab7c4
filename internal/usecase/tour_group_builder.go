package usecase

import (
	"sort"
	"strings"

	"tourstaff-service/internal/domain/entity"
)

const (
	groupKeySeparator   = "_"
	unknownKeyPart      = "unknown"
	missingDepartureKey = "99:99"
)

// tourGroupID is the grouping identity. The joined string key is only for display
// and lookups, since product ids may contain the separator.
type tourGroupID struct {
	productID string
	departure string
	private   bool
}

func groupIDOf(b entity.PickupBooking) tourGroupID {
	id := tourGroupID{productID: b.ProductID, departure: b.DepartureTime, private: b.IsPrivateTour}
	if id.productID == "" {
		id.productID = unknownKeyPart
	}
	if id.departure == "" {
		id.departure = unknownKeyPart
	}
	return id
}

func (id tourGroupID) String() string {
	privacy := "group"
	if id.private {
		privacy = "private"
	}
	return strings.Join([]string{id.productID, id.departure, privacy}, groupKeySeparator)
}

// TourGroupKey derives the grouping key for a booking.
func TourGroupKey(b entity.PickupBooking) string {
	return groupIDOf(b).String()
}

// GroupBookings partitions bookings into tour-departure groups.
//
// The first booking seen for a key supplies the group's display fields. Bookings
// inside a group are ordered by pickup time, keeping input order on ties. Groups
// are ordered private first, then by departure time (missing last), then by title.
// The result depends only on the input list.
func GroupBookings(bookings []entity.PickupBooking) []entity.TourGroup {
	if len(bookings) == 0 {
		return []entity.TourGroup{}
	}

	index := make(map[tourGroupID]int)
	groups := make([]entity.TourGroup, 0)

	for _, b := range bookings {
		id := groupIDOf(b)
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, entity.TourGroup{
				GroupKey:      id.String(),
				ProductID:     b.ProductID,
				ProductTitle:  b.ProductTitle,
				DepartureTime: b.DepartureTime,
				IsPrivateTour: b.IsPrivateTour,
			})
		}
		groups[i].Bookings = append(groups[i].Bookings, b)
	}

	for i := range groups {
		members := groups[i].Bookings
		sort.SliceStable(members, func(a, b int) bool {
			return members[a].PickupTime.Before(members[b].PickupTime)
		})
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return tourGroupLess(groups[a], groups[b])
	})

	return groups
}

func tourGroupLess(a, b entity.TourGroup) bool {
	if a.IsPrivateTour != b.IsPrivateTour {
		return a.IsPrivateTour
	}
	da, db := departureSortKey(a.DepartureTime), departureSortKey(b.DepartureTime)
	if da != db {
		return da < db
	}
	return a.ProductTitle < b.ProductTitle
}

func departureSortKey(departure string) string {
	if departure == "" {
		return missingDepartureKey
	}
	return departure
}

// FindTourGroup returns the group with the given key.
func FindTourGroup(groups []entity.TourGroup, key string) (entity.TourGroup, bool) {
	for _, g := range groups {
		if g.GroupKey == key {
			return g, true
		}
	}
	return entity.TourGroup{}, false
}
