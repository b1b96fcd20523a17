package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hostbay/livechat-service/internal/domain"
	"github.com/hostbay/livechat-service/internal/repository"
	apperrors "github.com/hostbay/livechat-service/pkg/util"
)

// DirectoryService is the department registry: it assembles the view
// of departments a visitor can open a chat against.
type DirectoryService struct {
	departments repository.DepartmentRepository
	agents      repository.AgentRepository
	cache       repository.DirectoryCache
	cacheTTL    time.Duration
	rosterLimit int
	logger      *zap.Logger
}

// DirectoryDependencies bundles collaborators for the directory.
type DirectoryDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	AgentRepo      repository.AgentRepository
	Cache          repository.DirectoryCache
	CacheTTL       time.Duration
	// RosterLimit caps agents loaded per directory refresh; see
	// ChatConfig.DirectoryRosterLimit.
	RosterLimit int
	Logger      *zap.Logger
}

const defaultRosterLimit = 1000

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rosterLimit := deps.RosterLimit
	if rosterLimit <= 0 {
		rosterLimit = defaultRosterLimit
	}
	return &DirectoryService{
		departments: deps.DepartmentRepo,
		agents:      deps.AgentRepo,
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
		rosterLimit: rosterLimit,
		logger:      logger,
	}
}

// ListActiveDepartments returns departments with at least one active
// agent, each annotated with only its active agents. When no
// department is staffed at all it falls back to every configured
// department with its full roster, so a visitor is never blocked from
// starting a chat just because nobody is marked on duty right now.
func (s *DirectoryService) ListActiveDepartments(ctx context.Context) ([]domain.DepartmentListing, error) {
	if s.cache != nil {
		if listings, ok := s.cache.Get(ctx); ok {
			return listings, nil
		}
	}

	departments, err := s.departments.List(ctx)
	if err != nil {
		s.logger.Error("department directory read failed", zap.Error(err))
		return nil, apperrors.NewUnavailable("unable to load departments", err)
	}

	active := true
	activeAgents, err := s.agents.List(ctx, repository.AgentFilter{Active: &active, Limit: s.rosterLimit})
	if err != nil {
		s.logger.Error("agent directory read failed", zap.Error(err))
		return nil, apperrors.NewUnavailable("unable to load departments", err)
	}

	byDepartment := groupByDepartment(activeAgents)
	listings := make([]domain.DepartmentListing, 0, len(departments))
	for _, dept := range departments {
		agents := byDepartment[dept.ID]
		if len(agents) == 0 {
			continue
		}
		listings = append(listings, domain.DepartmentListing{Department: dept, Agents: agents})
	}

	if len(listings) == 0 {
		listings, err = s.fullRoster(ctx, departments)
		if err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		s.cache.Set(ctx, listings, s.cacheTTL)
	}
	return listings, nil
}

// fullRoster is the availability fallback: every department with its
// complete, possibly empty, agent list.
func (s *DirectoryService) fullRoster(ctx context.Context, departments []domain.Department) ([]domain.DepartmentListing, error) {
	allAgents, err := s.agents.List(ctx, repository.AgentFilter{Limit: s.rosterLimit})
	if err != nil {
		s.logger.Error("agent directory read failed", zap.Error(err))
		return nil, apperrors.NewUnavailable("unable to load departments", err)
	}
	byDepartment := groupByDepartment(allAgents)
	listings := make([]domain.DepartmentListing, 0, len(departments))
	for _, dept := range departments {
		listings = append(listings, domain.DepartmentListing{Department: dept, Agents: byDepartment[dept.ID]})
	}
	return listings, nil
}

func groupByDepartment(agents []domain.Agent) map[string][]domain.Agent {
	grouped := make(map[string][]domain.Agent)
	for _, agent := range agents {
		if agent.DepartmentID == nil {
			continue
		}
		grouped[*agent.DepartmentID] = append(grouped[*agent.DepartmentID], agent)
	}
	return grouped
}
