package types

import "fmt"

// Role is the closed set of principal roles. The wire values are the
// claim strings carried by issued credentials.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProfessor Role = "professor"
	RoleStudent   Role = "aluno"
)

// ParseRole rejects anything outside the closed set so an unknown role
// can never flow into policy evaluation.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleProfessor, RoleStudent:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }
