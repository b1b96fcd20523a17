package domain

import "time"

// SessionStatus enumerates lifecycle states for chat sessions.
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusClosed SessionStatus = "CLOSED"
)

// ChatSession is the aggregate for one visitor conversation.
// Visitor identity is self-reported and unauthenticated, so it lives
// inline on the session rather than in an account table.
type ChatSession struct {
	ID           string
	VisitorName  string
	VisitorEmail string
	DepartmentID *string
	AgentID      *string
	Status       SessionStatus
	Subject      string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
}

// IsClosed reports whether the session reached its terminal state.
func (s *ChatSession) IsClosed() bool {
	return s.Status == SessionStatusClosed
}
