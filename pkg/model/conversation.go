package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultRetentionDays is the conversation memory window applied when the
// active persona does not specify its own.
const DefaultRetentionDays = 30

// MessageID is the unique identifier of a stored message.
type MessageID string

// NewMessageID generates a new random message ID.
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

// Message is a single utterance in a user conversation.
type Message struct {
	ID             MessageID      `json:"id"`
	UserID         string         `json:"user_id"`
	ConversationID string         `json:"conversation_id"`
	Role           Role           `json:"role"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Context is the rolling summary of a conversation, keyed by
// (UserID, ConversationID).
type Context struct {
	UserID         string            `json:"user_id"`
	ConversationID string            `json:"conversation_id"`
	Summary        string            `json:"summary"`
	KeyTopics      []string          `json:"key_topics"`
	Preferences    map[string]string `json:"preferences"`
	LastUpdated    time.Time         `json:"last_updated"`
}

// NewContext returns an empty context for a conversation that has no stored
// context row yet.
func NewContext(userID, conversationID string) *Context {
	return &Context{
		UserID:         userID,
		ConversationID: conversationID,
		KeyTopics:      []string{},
		Preferences:    map[string]string{},
	}
}

// ConversationStat summarizes one conversation of a user.
type ConversationStat struct {
	ConversationID string    `json:"conversation_id"`
	MessageCount   int64     `json:"message_count"`
	LastActivity   time.Time `json:"last_activity"`
}
