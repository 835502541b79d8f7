package models

// Student นิสิต
type Student struct {
	AccountBase    `bson:",inline"`
	StudentID      string `bson:"studentId,omitempty" json:"studentId,omitempty"`
	Course         string `bson:"course,omitempty" json:"course,omitempty"`
	Year           string `bson:"year,omitempty" json:"year,omitempty"`
	CGPA           string `bson:"cgpa,omitempty" json:"cgpa,omitempty"`
	Skills         string `bson:"skills,omitempty" json:"skills,omitempty"`
	ResumeFileName string `bson:"resumeFileName,omitempty" json:"resumeFileName,omitempty"`
	ResumeData     string `bson:"resumeData,omitempty" json:"resumeData,omitempty"` // base64
}
