package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityKind ประเภทกิจกรรมที่บันทึกลง logins
type ActivityKind string

const (
	ActivitySignup        ActivityKind = "signup"
	ActivityLogin         ActivityKind = "login"
	ActivityProfileUpdate ActivityKind = "profile_update"
)

// LoginEvent append-only audit record stored in the logins collection.
type LoginEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Role      Role               `bson:"role" json:"role"`
	Activity  ActivityKind       `bson:"activity" json:"activity"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
