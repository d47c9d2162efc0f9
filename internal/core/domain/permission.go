package domain

// PermissionStatus tracks whether a grant is currently effective.
type PermissionStatus string

const (
	PermissionActive  PermissionStatus = "ACTIVE"
	PermissionRevoked PermissionStatus = "REVOKED"
)

// Permission links a user to an application they may query and alert on.
// At most one row exists per (user, application) pair; revocation flips the
// status instead of deleting so a later re-grant reactivates the same row.
type Permission struct {
	ID            int64
	UserID        int64
	ApplicationID int64
	Status        PermissionStatus
}
