package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hostbay/livechat-service/internal/domain"
)

const directoryCacheKey = "chat:directory"

// DirectoryCache caches the assembled department directory view. The
// directory is tolerant of short staleness, so cache misses and cache
// faults both fall through to the database.
type DirectoryCache interface {
	Get(ctx context.Context) ([]domain.DepartmentListing, bool)
	Set(ctx context.Context, listings []domain.DepartmentListing, ttl time.Duration)
}

// cachedDepartment is the persisted projection of one directory entry.
// Agents are trimmed to the fields the visitor directory renders;
// credentials and contact details never reach redis.
type cachedDepartment struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Agents      []cachedAgent `json:"agents"`
}

type cachedAgent struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DepartmentID *string `json:"department_id,omitempty"`
	IsActive     bool    `json:"is_active"`
}

func encodeDirectory(listings []domain.DepartmentListing) ([]byte, error) {
	entries := make([]cachedDepartment, 0, len(listings))
	for _, listing := range listings {
		agents := make([]cachedAgent, 0, len(listing.Agents))
		for _, agent := range listing.Agents {
			agents = append(agents, cachedAgent{
				ID:           agent.ID,
				Name:         agent.Name,
				DepartmentID: agent.DepartmentID,
				IsActive:     agent.IsActive,
			})
		}
		entries = append(entries, cachedDepartment{
			ID:          listing.ID,
			Name:        listing.Name,
			Description: listing.Description,
			Agents:      agents,
		})
	}
	return json.Marshal(entries)
}

func decodeDirectory(payload []byte) ([]domain.DepartmentListing, error) {
	var entries []cachedDepartment
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, err
	}
	listings := make([]domain.DepartmentListing, 0, len(entries))
	for _, entry := range entries {
		agents := make([]domain.Agent, 0, len(entry.Agents))
		for _, agent := range entry.Agents {
			agents = append(agents, domain.Agent{
				ID:           agent.ID,
				Name:         agent.Name,
				DepartmentID: agent.DepartmentID,
				IsActive:     agent.IsActive,
			})
		}
		listings = append(listings, domain.DepartmentListing{
			Department: domain.Department{
				ID:          entry.ID,
				Name:        entry.Name,
				Description: entry.Description,
			},
			Agents: agents,
		})
	}
	return listings, nil
}

type redisDirectoryCache struct {
	client *redis.Client
}

// NewRedisDirectoryCache builds a redis-backed directory cache.
func NewRedisDirectoryCache(client *redis.Client) DirectoryCache {
	return &redisDirectoryCache{client: client}
}

func (c *redisDirectoryCache) Get(ctx context.Context) ([]domain.DepartmentListing, bool) {
	if c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, directoryCacheKey).Bytes()
	if err != nil {
		// redis.Nil and transport faults alike fall through to the store
		return nil, false
	}
	listings, err := decodeDirectory(payload)
	if err != nil {
		return nil, false
	}
	return listings, true
}

func (c *redisDirectoryCache) Set(ctx context.Context, listings []domain.DepartmentListing, ttl time.Duration) {
	if c.client == nil || ttl <= 0 {
		return
	}
	payload, err := encodeDirectory(listings)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, directoryCacheKey, payload, ttl).Err()
}
