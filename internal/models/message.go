package models

import "time"

// Message is the persisted form of an anonymous message.
//
// It intentionally has no field that could hold the sender. Adding one would break the
// anonymity guarantee for every record ever written, so the type must stay as it is.
type Message struct {
	ID         string    `json:"id" bson:"_id"`
	GroupID    string    `json:"groupId" bson:"group_id"`
	ReceiverID string    `json:"receiverId" bson:"receiver_id"`
	Text       string    `json:"text" bson:"message_text"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

// InboxEntry is a received message enriched with the group it was sent in.
type InboxEntry struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	GroupName       string    `json:"groupName"`
	GroupID         string    `json:"groupId"`
	GroupInviteCode string    `json:"groupInviteCode"`
	CreatedAt       time.Time `json:"createdAt"`
}

// InboxEvent is pushed to a receiver's live connections when a message arrives.
type InboxEvent struct {
	MessageID string    `json:"messageId"`
	GroupID   string    `json:"groupId"`
	CreatedAt time.Time `json:"createdAt"`
}
