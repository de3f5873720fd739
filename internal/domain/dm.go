package domain

import (
	"time"
)

// ConversationID identifies a DM conversation. One-on-one conversations
// use the form "<user1>-<user2>".
type ConversationID string

// String returns the string representation of the ConversationID.
func (id ConversationID) String() string {
	return string(id)
}

// DMEventKind classifies a synthetic system message in a group
// conversation.
type DMEventKind string

const (
	DMEventMessage          DMEventKind = "message"
	DMEventParticipantJoin  DMEventKind = "participants_join"
	DMEventParticipantLeave DMEventKind = "participants_leave"
)

// DMMessage is a single direct message, or a synthetic system message
// describing a participant change in a group conversation.
//
// Within a conversation messages form a total order by (CreatedAt, ID).
type DMMessage struct {
	ID        string
	Kind      DMEventKind
	SenderID  UserID
	CreatedAt time.Time
	Text      string
	Entities  []URLEntity
	Media     []MediaItem

	// Affected lists the users added or removed for join/leave events.
	Affected []UserID
}

// IsSystem reports whether the message is a synthetic participant event
// rather than a user-authored message.
func (m *DMMessage) IsSystem() bool {
	return m.Kind == DMEventParticipantJoin || m.Kind == DMEventParticipantLeave
}

// DMConversation is a raw conversation as loaded from the archive:
// messages are unordered and participants unresolved.
type DMConversation struct {
	ID           ConversationID
	Participants []UserID // deduplicated, display order decided later
	Messages     []DMMessage
	Group        bool
}
