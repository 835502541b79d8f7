package models

// DefaultAccessLevel is applied to admins registered without one.
const DefaultAccessLevel = "Full"

// Admin เจ้าหน้าที่ดูแลระบบ (no department)
type Admin struct {
	AccountBase    `bson:",inline"`
	EmployeeID     string `bson:"employeeId,omitempty" json:"employeeId,omitempty"`
	Designation    string `bson:"designation,omitempty" json:"designation,omitempty"`
	Specialization string `bson:"specialization,omitempty" json:"specialization,omitempty"`
	AccessLevel    string `bson:"accessLevel,omitempty" json:"accessLevel,omitempty"`
}
