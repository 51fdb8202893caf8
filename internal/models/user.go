package models

// GroupRef is the short form of a group kept on a user.
type GroupRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"inviteCode"`
}

// User is owned by the identity collaborator. Groups is a back-reference that
// trails the group stores and may briefly lag behind them.
type User struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Groups   []GroupRef `json:"groups"`
}
