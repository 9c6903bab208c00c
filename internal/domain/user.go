package domain

import "time"

type Role string

const (
	RoleUser   Role = "user"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a request token to a Role, defaulting to RoleUser.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleUser, true
	case RoleUser, RoleEditor, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID        int64     `json:"id"`
	Handle    string    `json:"handle"`
	Role      Role      `json:"role"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// CanEditDirectly reports whether the user's edits apply immediately instead
// of queueing as suggestions.
func (u User) CanEditDirectly() bool {
	return u.Role == RoleEditor || u.Role == RoleAdmin
}

// CanModerate reports whether the user may approve or reject suggestions.
func (u User) CanModerate() bool {
	return u.Role == RoleAdmin
}
