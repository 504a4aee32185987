package domain

import "time"

// Organization is a tenant grouping of users that owns reports. The founder
// is fixed at creation; only the founder may rename the organization or
// change its membership.
type Organization struct {
	ID        string
	Name      string
	FounderID string
	MemberIDs []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasMember reports whether the user belongs to the organization. The founder
// is always a member.
func (o *Organization) HasMember(userID string) bool {
	if userID == o.FounderID {
		return true
	}
	for _, id := range o.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
