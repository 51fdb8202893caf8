package models

import "time"

// Group is a named set of users that can message each other anonymously.
// Members are kept in join order; the founder is always the first entry.
type Group struct {
	ID         string    `json:"id"`         // Unique identifier for the group (UUID)
	Name       string    `json:"name"`       // Trimmed display name, 1-50 characters
	InviteCode string    `json:"inviteCode"` // Uppercase code shared to let others join
	Members    []string  `json:"members"`    // User IDs in join order, no duplicates
	CreatedBy  string    `json:"createdBy"`  // Founder's user ID, never changes
	CreatedAt  time.Time `json:"createdAt"`  // Creation timestamp, never changes
}

// HasMember reports whether userID belongs to the group.
func (g Group) HasMember(userID string) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// GroupSummary is the list view of a group the caller belongs to.
type GroupSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"inviteCode"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Member is a group member resolved to its display name.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// GroupDetail is a group with member identities resolved through the identity directory.
type GroupDetail struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"inviteCode"`
	Members    []Member  `json:"members"`
	CreatedBy  Member    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}
