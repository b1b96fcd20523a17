package events

import (
	"time"

	"github.com/hostbay/livechat-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionOpened   EventType = "session_opened"
	EventSessionAssigned EventType = "session_assigned"
	EventSessionClosed   EventType = "session_closed"
	EventMessagePosted   EventType = "message_posted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.ActorType `json:"type"`
	AgentID *string          `json:"agent_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SessionOpenedPayload payload.
type SessionOpenedPayload struct {
	DepartmentID *string `json:"department_id,omitempty"`
	AgentID      *string `json:"agent_id,omitempty"`
	Subject      string  `json:"subject"`
	VisitorName  string  `json:"visitor_name"`
}

// SessionAssignedPayload payload.
type SessionAssignedPayload struct {
	AgentID      string  `json:"agent_id"`
	DepartmentID *string `json:"department_id,omitempty"`
}

// SessionClosedPayload payload.
type SessionClosedPayload struct {
	ClosedAt   time.Time `json:"closed_at"`
	NotesAdded bool      `json:"notes_added"`
}

// MessagePostedPayload payload.
type MessagePostedPayload struct {
	MessageID   string            `json:"message_id"`
	Sender      domain.SenderRole `json:"sender"`
	AgentID     *string           `json:"agent_id,omitempty"`
	BodyPreview string            `json:"body_preview"`
}
