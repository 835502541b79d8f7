package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountBase ฟิลด์ที่ทุก role ใช้ร่วมกัน
type AccountBase struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name,omitempty" json:"name,omitempty"`
	Email               string             `bson:"email" json:"email"`
	Password            string             `bson:"password,omitempty" json:"-"` // hash only, never sent back
	Phone               string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role                Role               `bson:"role" json:"role"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire *time.Time         `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Base gives callers access to the shared fields of any variant.
func (b *AccountBase) Base() *AccountBase { return b }

// Account is implemented by *Student, *Faculty, *PlacementOfficer and *Admin.
type Account interface {
	Base() *AccountBase
}

// NewAccount returns an empty variant for role with its Role field set.
func NewAccount(role Role) Account {
	var acc Account
	switch role {
	case RoleStudent:
		acc = &Student{}
	case RoleFaculty:
		acc = &Faculty{}
	case RolePlacementOfficer:
		acc = &PlacementOfficer{}
	case RoleAdmin:
		acc = &Admin{}
	default:
		return nil
	}
	acc.Base().Role = role
	return acc
}

// StripSecrets clears the password hash and reset-token state before a record leaves the service layer.
func StripSecrets(acc Account) Account {
	if acc == nil {
		return nil
	}
	b := acc.Base()
	b.Password = ""
	b.ResetPasswordToken = ""
	b.ResetPasswordExpire = nil
	return acc
}

// NormalizeEmail trims and lower-cases an address so lookups and the uniqueness check agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var baseEditableFields = []string{"name", "phone"}

var roleEditableFields = map[Role][]string{
	RoleStudent:          {"studentId", "course", "year", "cgpa", "skills"},
	RoleFaculty:          {"employeeId", "department", "designation", "specialization", "experience"},
	RolePlacementOfficer: {"employeeId", "department", "designation", "specialization"},
	RoleAdmin:            {"employeeId", "designation", "specialization"},
}

// EditableFields returns the bson keys a generic profile update may set for role.
// role, email, accessLevel, resume and reset fields are never part of it.
func EditableFields(role Role) map[string]struct{} {
	fields := make(map[string]struct{}, len(baseEditableFields)+len(roleEditableFields[role]))
	for _, f := range baseEditableFields {
		fields[f] = struct{}{}
	}
	for _, f := range roleEditableFields[role] {
		fields[f] = struct{}{}
	}
	return fields
}
