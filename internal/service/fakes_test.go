package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hostbay/livechat-service/internal/domain"
	"github.com/hostbay/livechat-service/internal/events"
	"github.com/hostbay/livechat-service/internal/repository"
)

// In-memory repository fakes mirroring the conditional-update
// semantics of the pgx implementations.

type memDepartmentRepo struct {
	departments []domain.Department
	err         error
}

func (r *memDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.departments {
		if r.departments[i].ID == id {
			dept := r.departments[i]
			return &dept, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]domain.Department{}, r.departments...), nil
}

type memAgentRepo struct {
	mu         sync.Mutex
	agents     []domain.Agent
	err        error
	lastFilter repository.AgentFilter
}

func (r *memAgentRepo) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.agents {
		if r.agents[i].ID == id {
			agent := r.agents[i]
			return &agent, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memAgentRepo) GetByEmail(_ context.Context, email string) (*domain.Agent, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.agents {
		if r.agents[i].Email == email {
			agent := r.agents[i]
			return &agent, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memAgentRepo) List(_ context.Context, filter repository.AgentFilter) ([]domain.Agent, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	var result []domain.Agent
	for _, agent := range r.agents {
		if filter.DepartmentID != nil {
			if agent.DepartmentID == nil || *agent.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		if filter.Role != nil && agent.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && agent.IsActive != *filter.Active {
			continue
		}
		result = append(result, agent)
	}
	return result, nil
}

func (r *memAgentRepo) SetActive(_ context.Context, id string, active bool) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.agents {
		if r.agents[i].ID == id {
			r.agents[i].IsActive = active
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.ChatSession
	nextID   int
	err      error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*domain.ChatSession)}
}

func (r *memSessionRepo) Create(_ context.Context, session *domain.ChatSession) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	session.ID = fmt.Sprintf("sess-%d", r.nextID)
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id string) (*domain.ChatSession, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	session := *stored
	return &session, nil
}

func (r *memSessionRepo) CloseIfOpen(_ context.Context, id string, notes *string, closedAt time.Time) (*domain.ChatSession, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[id]
	if !ok || stored.Status != domain.SessionStatusOpen {
		return nil, pgx.ErrNoRows
	}
	stored.Status = domain.SessionStatusClosed
	stored.ClosedAt = &closedAt
	stored.UpdatedAt = time.Now()
	if notes != nil {
		if stored.Notes == "" {
			stored.Notes = *notes
		} else {
			stored.Notes = stored.Notes + "\n" + *notes
		}
	}
	session := *stored
	return &session, nil
}

func (r *memSessionRepo) AssignAgentIfUnassigned(_ context.Context, id, agentID string) (*domain.ChatSession, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[id]
	if !ok || stored.AgentID != nil || stored.Status != domain.SessionStatusOpen {
		return nil, pgx.ErrNoRows
	}
	stored.AgentID = &agentID
	stored.UpdatedAt = time.Now()
	session := *stored
	return &session, nil
}

func (r *memSessionRepo) ListWithFilter(_ context.Context, filter repository.SessionFilter) ([]domain.ChatSession, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ChatSession
	for _, stored := range r.sessions {
		if filter.DepartmentID != nil {
			if stored.DepartmentID == nil || *stored.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		if filter.AgentID != nil {
			if stored.AgentID == nil || *stored.AgentID != *filter.AgentID {
				continue
			}
		}
		if filter.Unassigned && stored.AgentID != nil {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, status := range filter.Statuses {
				if stored.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		result = append(result, *stored)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memSessionRepo) CountOpenByAgent(_ context.Context, agentID string) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, stored := range r.sessions {
		if stored.AgentID != nil && *stored.AgentID == agentID && stored.Status == domain.SessionStatusOpen {
			count++
		}
	}
	return count, nil
}

// seed inserts a session verbatim, bypassing Create.
func (r *memSessionRepo) seed(session domain.ChatSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := session
	r.sessions[session.ID] = &stored
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
	nextSeq  int64
	err      error
}

func (r *memMessageRepo) Create(_ context.Context, msg *domain.ChatMessage) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	msg.Seq = r.nextSeq
	msg.ID = fmt.Sprintf("msg-%d", r.nextSeq)
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memMessageRepo) ListBySession(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ChatMessage
	for _, msg := range r.messages {
		if msg.SessionID == sessionID {
			result = append(result, msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Seq < result[j].Seq
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// seed inserts a message verbatim, preserving its timestamp and seq.
func (r *memMessageRepo) seed(msg domain.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	if msg.Seq > r.nextSeq {
		r.nextSeq = msg.Seq
	}
}

type memHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.SessionHistory
}

func (r *memHistoryRepo) Create(_ context.Context, entry *domain.SessionHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = fmt.Sprintf("hist-%d", len(r.entries)+1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memHistoryRepo) ListBySession(_ context.Context, sessionID string, limit, offset int) ([]domain.SessionHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.SessionHistory
	for _, entry := range r.entries {
		if entry.SessionID == sessionID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type memLoginTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.LoginToken
	nextID int
}

func newMemLoginTokenRepo() *memLoginTokenRepo {
	return &memLoginTokenRepo{tokens: make(map[string]*domain.LoginToken)}
}

func (r *memLoginTokenRepo) Create(_ context.Context, token *domain.LoginToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	token.ID = fmt.Sprintf("tok-%d", r.nextID)
	token.CreatedAt = time.Now()
	stored := *token
	r.tokens[token.Token] = &stored
	return nil
}

func (r *memLoginTokenRepo) GetByToken(_ context.Context, token string) (*domain.LoginToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tokens[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	record := *stored
	return &record, nil
}

func (r *memLoginTokenRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.tokens {
		if stored.ID == id {
			if stored.UsedAt != nil {
				return pgx.ErrNoRows
			}
			now := time.Now()
			stored.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeDirectoryCache struct {
	mu       sync.Mutex
	listings []domain.DepartmentListing
	stored   bool
	hits     int
	sets     int
}

func (c *fakeDirectoryCache) Get(_ context.Context) ([]domain.DepartmentListing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.stored {
		return nil, false
	}
	c.hits++
	return c.listings, true
}

func (c *fakeDirectoryCache) Set(_ context.Context, listings []domain.DepartmentListing, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = listings
	c.stored = true
	c.sets++
}

type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func (d *captureDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

func strptr(s string) *string {
	return &s
}
