package models

// Faculty อาจารย์
type Faculty struct {
	AccountBase    `bson:",inline"`
	EmployeeID     string `bson:"employeeId,omitempty" json:"employeeId,omitempty"`
	Department     string `bson:"department,omitempty" json:"department,omitempty"`
	Designation    string `bson:"designation,omitempty" json:"designation,omitempty"`
	Specialization string `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Experience     string `bson:"experience,omitempty" json:"experience,omitempty"`
}

// PlacementOfficer เจ้าหน้าที่ฝ่ายจัดหางาน (TPO), same as faculty without experience
type PlacementOfficer struct {
	AccountBase    `bson:",inline"`
	EmployeeID     string `bson:"employeeId,omitempty" json:"employeeId,omitempty"`
	Department     string `bson:"department,omitempty" json:"department,omitempty"`
	Designation    string `bson:"designation,omitempty" json:"designation,omitempty"`
	Specialization string `bson:"specialization,omitempty" json:"specialization,omitempty"`
}
