package domain

import "time"

// Department is a routing bucket of agents sharing a specialty.
// Departments are configured by product administration; the chat core
// only reads them.
type Department struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DepartmentListing is a department annotated with the agents the
// directory chose to surface for it (active agents normally, the full
// roster under the availability fallback).
type DepartmentListing struct {
	Department
	Agents []Agent
}

// HasActiveAgent reports whether any attached agent is on duty.
func (d DepartmentListing) HasActiveAgent() bool {
	for _, agent := range d.Agents {
		if agent.IsActive {
			return true
		}
	}
	return false
}
