package domain

import "time"

// UserRole enumerates the roles a CyberShield account can hold.
type UserRole string

const (
	RoleDataProvider UserRole = "DATA_PROVIDER"
	RoleDataConsumer UserRole = "DATA_CONSUMER"
	RoleGovBody      UserRole = "GOV_BODY"
)

// User is the domain model for dashboard accounts.
type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	Role            UserRole
	JobTitle        string
	PhotoURL        string
	OrganizationIDs []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MemberOf reports whether the user belongs to the given organization.
func (u *User) MemberOf(orgID string) bool {
	for _, id := range u.OrganizationIDs {
		if id == orgID {
			return true
		}
	}
	return false
}

// ValidRole reports whether the value is a known role.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleDataProvider, RoleDataConsumer, RoleGovBody:
		return true
	}
	return false
}
