package domain

import "time"

// ActorType captures who performed a recorded change.
type ActorType string

const (
	ActorTypeVisitor ActorType = "VISITOR"
	ActorTypeAgent   ActorType = "AGENT"
	ActorTypeSystem  ActorType = "SYSTEM"
)

// SessionChangeType captures what changed in a history entry.
type SessionChangeType string

const (
	ChangeTypeStatus     SessionChangeType = "STATUS_CHANGE"
	ChangeTypeAgent      SessionChangeType = "AGENT_CHANGE"
	ChangeTypeDepartment SessionChangeType = "DEPARTMENT_CHANGE"
)

// SessionHistory is an immutable audit trail entry. Assignment and
// status changes always pass through here so bindings are never
// reassigned without a trace.
type SessionHistory struct {
	ID         string
	SessionID  string
	ActorType  ActorType
	ActorID    *string
	ChangeType SessionChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
