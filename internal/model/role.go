package model

// Role enumerates account roles.
type Role string

const (
	// RoleStudent may browse and search published work.
	RoleStudent Role = "STUDENT"
	// RoleAuthor may additionally submit papers.
	RoleAuthor Role = "AUTHOR"
	// RoleCommittee may review pending submissions and publish them.
	RoleCommittee Role = "COMMITTEE"
)

// Roles lists every role the system accepts at signup.
func Roles() []Role {
	return []Role{RoleStudent, RoleAuthor, RoleCommittee}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAuthor, RoleCommittee:
		return true
	}
	return false
}
