package models

import "strings"

// Role ประเภทบัญชีผู้ใช้ แต่ละ role มี collection ของตัวเอง
type Role string

const (
	RoleStudent          Role = "student"
	RoleFaculty          Role = "faculty"
	RolePlacementOfficer Role = "tpo"
	RoleAdmin            Role = "admin"
)

// Roles is the fixed scan order used by the uniqueness check and the role-agnostic login.
var Roles = []Role{RoleStudent, RoleFaculty, RolePlacementOfficer, RoleAdmin}

var roleCollections = map[Role]string{
	RoleStudent:          "students",
	RoleFaculty:          "faculties",
	RolePlacementOfficer: "tpos",
	RoleAdmin:            "admins",
}

var rolePaths = map[Role]string{
	RoleStudent:          "students",
	RoleFaculty:          "faculty",
	RolePlacementOfficer: "tpo",
	RoleAdmin:            "admin",
}

// Valid reports whether r is one of the four account roles.
func (r Role) Valid() bool {
	_, ok := roleCollections[r]
	return ok
}

// Collection returns the MongoDB collection holding accounts of this role.
func (r Role) Collection() string {
	return roleCollections[r]
}

// PathName returns the URL segment used under /api for this role.
func (r Role) PathName() string {
	return rolePaths[r]
}

// RoleFromPath maps an /api/{role} segment back to its Role.
func RoleFromPath(segment string) (Role, bool) {
	segment = strings.ToLower(strings.TrimSpace(segment))
	for role, path := range rolePaths {
		if path == segment {
			return role, true
		}
	}
	return "", false
}
