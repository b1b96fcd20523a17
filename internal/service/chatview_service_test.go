package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbay/livechat-service/internal/domain"
)

func TestGetSessionViewJoinsDepartmentAndAgent(t *testing.T) {
	f := newSessionFixture(t)
	f.sessions.seed(domain.ChatSession{
		ID:           "sess-1",
		Status:       domain.SessionStatusOpen,
		DepartmentID: strptr("dept-support"),
		AgentID:      strptr("a1"),
	})
	f.messages.seed(domain.ChatMessage{
		ID: "m1", SessionID: "sess-1", Seq: 1,
		Sender: domain.SenderRoleVisitor, Body: "hello",
		CreatedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	})

	view := NewChatViewService(f.svc,
		&memDepartmentRepo{departments: []domain.Department{{ID: "dept-support", Name: "Support"}}},
		&memAgentRepo{agents: []domain.Agent{{ID: "a1", Name: "Ana"}}},
	)

	result, err := view.GetSessionView(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", result.Session.ID)
	require.NotNil(t, result.Department)
	assert.Equal(t, "Support", result.Department.Name)
	require.NotNil(t, result.Agent)
	assert.Equal(t, "Ana", result.Agent.Name)
	require.Len(t, result.Messages, 1)
}

func TestGetSessionViewUnboundSession(t *testing.T) {
	f := newSessionFixture(t)
	f.sessions.seed(domain.ChatSession{ID: "sess-1", Status: domain.SessionStatusOpen})

	view := NewChatViewService(f.svc, &memDepartmentRepo{}, &memAgentRepo{})

	result, err := view.GetSessionView(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Nil(t, result.Department)
	assert.Nil(t, result.Agent)
	assert.Empty(t, result.Messages)
}

func TestJoinSessionToleratesDanglingReferences(t *testing.T) {
	f := newSessionFixture(t)
	view := NewChatViewService(f.svc, &memDepartmentRepo{}, &memAgentRepo{})

	// Department and agent rows were removed after binding: the view
	// still renders, just without the joined context.
	result, err := view.JoinSession(context.Background(), &domain.ChatSession{
		ID:           "sess-1",
		DepartmentID: strptr("dept-gone"),
		AgentID:      strptr("agent-gone"),
	})
	require.NoError(t, err)
	assert.Nil(t, result.Department)
	assert.Nil(t, result.Agent)
}

func TestGetSessionViewNotFound(t *testing.T) {
	f := newSessionFixture(t)
	view := NewChatViewService(f.svc, &memDepartmentRepo{}, &memAgentRepo{})

	_, err := view.GetSessionView(context.Background(), "sess-missing")
	requireCode(t, err, "NOT_FOUND")
}
