package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role partitions users into administrators and regular operators.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole converts a caller-supplied string into a Role, accepting any casing.
func ParseRole(value string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleUser):
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// User mirrors the persisted representation in the users table.
type User struct {
	ID        int64
	Email     string
	Role      Role
	CreatedAt time.Time
}

// IsAdmin reports whether the user holds the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
