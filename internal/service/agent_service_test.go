package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbay/livechat-service/internal/domain"
)

func TestSetAvailabilityFlipsFlag(t *testing.T) {
	repo := &memAgentRepo{agents: []domain.Agent{
		{ID: "a1", Name: "Ana", IsActive: false},
	}}
	svc := NewAgentService(repo)

	agent, err := svc.SetAvailability(context.Background(), "a1", true)
	require.NoError(t, err)
	assert.True(t, agent.IsActive)

	agent, err = svc.SetAvailability(context.Background(), "a1", false)
	require.NoError(t, err)
	assert.False(t, agent.IsActive)
}

func TestSetAvailabilityUnknownAgent(t *testing.T) {
	svc := NewAgentService(&memAgentRepo{})

	_, err := svc.SetAvailability(context.Background(), "a-missing", true)
	requireCode(t, err, "NOT_FOUND")
}

func TestListByDepartmentReturnsFullRoster(t *testing.T) {
	repo := &memAgentRepo{agents: []domain.Agent{
		{ID: "a1", Name: "Ana", DepartmentID: strptr("dept-support"), IsActive: true},
		{ID: "a2", Name: "Ben", DepartmentID: strptr("dept-support"), IsActive: false},
		{ID: "a3", Name: "Cleo", DepartmentID: strptr("dept-sales"), IsActive: true},
	}}
	svc := NewAgentService(repo)

	agents, err := svc.ListByDepartment(context.Background(), "dept-support")
	require.NoError(t, err)
	// Off-duty agents stay on the roster; presence only affects the
	// visitor directory.
	require.Len(t, agents, 2)
}
