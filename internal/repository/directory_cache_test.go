package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbay/livechat-service/internal/domain"
)

func sampleListing() domain.DepartmentListing {
	deptID := "dept-support"
	return domain.DepartmentListing{
		Department: domain.Department{
			ID:          deptID,
			Name:        "Support",
			Description: "General support",
			CreatedAt:   time.Now(),
		},
		Agents: []domain.Agent{
			{
				ID:           "a1",
				Name:         "Sam",
				Email:        "sam@corp.example",
				PasswordHash: "$2a$12$SECRETHASH",
				Role:         domain.AgentRoleAgent,
				DepartmentID: &deptID,
				IsActive:     true,
			},
		},
	}
}

func TestEncodeDirectoryStripsCredentials(t *testing.T) {
	payload, err := encodeDirectory([]domain.DepartmentListing{sampleListing()})
	require.NoError(t, err)

	// The persisted projection carries only what the visitor directory
	// renders. Hashes and emails must never land in redis.
	assert.NotContains(t, string(payload), "SECRETHASH")
	assert.NotContains(t, string(payload), "sam@corp.example")
	assert.NotContains(t, string(payload), "PasswordHash")
	assert.Contains(t, string(payload), `"name":"Sam"`)
}

func TestDirectoryRoundtripKeepsRenderedFields(t *testing.T) {
	payload, err := encodeDirectory([]domain.DepartmentListing{sampleListing()})
	require.NoError(t, err)

	listings, err := decodeDirectory(payload)
	require.NoError(t, err)
	require.Len(t, listings, 1)

	listing := listings[0]
	assert.Equal(t, "dept-support", listing.ID)
	assert.Equal(t, "Support", listing.Name)
	assert.Equal(t, "General support", listing.Description)
	require.Len(t, listing.Agents, 1)
	assert.Equal(t, "a1", listing.Agents[0].ID)
	assert.Equal(t, "Sam", listing.Agents[0].Name)
	assert.True(t, listing.Agents[0].IsActive)
	assert.True(t, listing.HasActiveAgent())
	// Decoded agents come back without credentials.
	assert.Empty(t, listing.Agents[0].PasswordHash)
	assert.Empty(t, listing.Agents[0].Email)
}

func TestDecodeDirectoryRejectsGarbage(t *testing.T) {
	_, err := decodeDirectory([]byte("not-json"))
	assert.Error(t, err)
}
