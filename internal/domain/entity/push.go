package entity

// PushType tags the reason a push message was sent.
type PushType string

const (
	PushShiftApplied  PushType = "shift_applied"
	PushShiftAccepted PushType = "shift_accepted"
	PushBusReassigned PushType = "bus_reassigned"
	PushPickupList    PushType = "pickup_list"
)

// PushMessage is a device notification addressed by FCM registration token.
type PushMessage struct {
	Type  PushType
	Token string
	Title string
	Body  string
	Data  map[string]string
}
