package entity

type StaffRole string

const (
	StaffRoleGuide StaffRole = "guide"
	StaffRoleAdmin StaffRole = "admin"
)

// StaffMember is a guide or admin from the users collection.
type StaffMember struct {
	ID       string    `bson:"_id"`
	Name     string    `bson:"name"`
	Email    string    `bson:"email"`
	Role     StaffRole `bson:"role"`
	FCMToken string    `bson:"fcmToken,omitempty"`
}
