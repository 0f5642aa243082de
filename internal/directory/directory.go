package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/contract"
)

// Service resolves organizational lookups that envelopes may omit, backed by
// a TTL cache so queue bursts do not hammer the employees table.
type Service struct {
	employees contract.EmployeeRepository
	cache     *cache.Cache
	log       logger.ILogger
}

func NewService(employees contract.EmployeeRepository, ttl time.Duration, log logger.ILogger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		employees: employees,
		cache:     cache.New(ttl, 2*ttl),
		log:       log,
	}
}

// TeamFor returns the employee codes reporting to the given supervisor.
// Missing supervisors yield an empty team, not an error.
func (s *Service) TeamFor(ctx context.Context, accountID, supervisorCode string) ([]string, error) {
	key := fmt.Sprintf("team:%s:%s", accountID, supervisorCode)
	if cached, found := s.cache.Get(key); found {
		return cached.([]string), nil
	}

	team, err := s.employees.FindTeam(ctx, accountID, supervisorCode)
	if err != nil {
		return nil, fmt.Errorf("resolve team for %s: %w", supervisorCode, err)
	}

	codes := make([]string, 0, len(team))
	for _, member := range team {
		codes = append(codes, member.Code)
	}

	s.cache.Set(key, codes, cache.DefaultExpiration)
	return codes, nil
}

// Invalidate drops cached lookups for an account after ingestion changes
// the employee roster.
func (s *Service) Invalidate(accountID string) {
	prefix := fmt.Sprintf("team:%s:", accountID)
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}
