package dto

import (
	"time"

	"github.com/hostbay/livechat-service/internal/domain"
)

// AgentPublic is the agent shape exposed to visitors: no email, no
// role, just enough to render the directory.
type AgentPublic struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// DepartmentResponse is one directory entry.
type DepartmentResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Agents      []AgentPublic `json:"agents"`
}

// StartSessionRequest is the visitor "start chat" payload.
type StartSessionRequest struct {
	VisitorName  string  `json:"visitor_name"`
	VisitorEmail string  `json:"visitor_email"`
	Subject      string  `json:"subject"`
	DepartmentID *string `json:"department_id,omitempty"`
}

// SessionResponse is the session summary returned from reads and
// mutations, optionally joined with department and agent context.
type SessionResponse struct {
	ID           string               `json:"id"`
	VisitorName  string               `json:"visitor_name"`
	VisitorEmail string               `json:"visitor_email"`
	Status       domain.SessionStatus `json:"status"`
	Subject      string               `json:"subject"`
	Notes        string               `json:"notes,omitempty"`
	Department   *DepartmentSummary   `json:"department,omitempty"`
	Agent        *AgentPublic         `json:"agent,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	ClosedAt     *time.Time           `json:"closed_at"`
}

// DepartmentSummary is the nested department shape on a session.
type DepartmentSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MessageResponse represents one transcript entry.
type MessageResponse struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id"`
	Seq       int64             `json:"seq"`
	Sender    domain.SenderRole `json:"sender"`
	AgentID   *string           `json:"agent_id,omitempty"`
	Body      string            `json:"body"`
	CreatedAt time.Time         `json:"created_at"`
}

// PostMessageRequest is the append-message payload.
type PostMessageRequest struct {
	Body string `json:"body"`
}

// CloseSessionRequest carries optional closing notes.
type CloseSessionRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// PresenceRequest toggles the calling agent's on-duty flag.
type PresenceRequest struct {
	Active bool `json:"active"`
}
