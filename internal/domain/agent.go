package domain

import "time"

// AgentRole enumerates staff roles within the chat console.
type AgentRole string

const (
	AgentRoleAgent      AgentRole = "AGENT"
	AgentRoleSupervisor AgentRole = "SUPERVISOR"
	AgentRoleAdmin      AgentRole = "ADMIN"
)

// Agent models a staff member who can be bound to chat sessions.
// The chat core only flips IsActive through the presence endpoint;
// everything else is managed by staff administration.
type Agent struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         AgentRole
	DepartmentID *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
