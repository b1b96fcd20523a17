package domain

import "time"

// SenderRole indicates which party authored a message. The caller
// supplies it; the core never infers it.
type SenderRole string

const (
	SenderRoleVisitor SenderRole = "VISITOR"
	SenderRoleAgent   SenderRole = "AGENT"
)

// ChatMessage is one immutable unit of dialogue within a session.
// Seq is assigned at write time and breaks ties between messages
// created within the same clock resolution.
type ChatMessage struct {
	ID        string
	SessionID string
	Seq       int64
	Sender    SenderRole
	AgentID   *string
	Body      string
	CreatedAt time.Time
}
