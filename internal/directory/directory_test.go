package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qainatsaeed/BlackBox-LLM/internal/entity"
	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/contract"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/specification"
)

type stubEmployeeRepo struct {
	team      []*entity.Employee
	findCalls int
}

func (s *stubEmployeeRepo) Create(context.Context, *entity.Employee) error        { return nil }
func (s *stubEmployeeRepo) CreateBulk(context.Context, []*entity.Employee) error  { return nil }
func (s *stubEmployeeRepo) FindOne(context.Context, ...specification.Specification) (*entity.Employee, error) {
	return nil, nil
}
func (s *stubEmployeeRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Employee, error) {
	return nil, nil
}
func (s *stubEmployeeRepo) FindTeam(ctx context.Context, accountID, supervisorCode string) ([]*entity.Employee, error) {
	s.findCalls++
	return s.team, nil
}
func (s *stubEmployeeRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, nil
}

var _ contract.EmployeeRepository = (*stubEmployeeRepo)(nil)

func TestTeamForResolvesCodes(t *testing.T) {
	repo := &stubEmployeeRepo{team: []*entity.Employee{
		{Code: "emp002"},
		{Code: "emp003"},
	}}
	svc := NewService(repo, time.Minute, logger.NewNopLogger())

	codes, err := svc.TeamFor(context.Background(), "acct1", "sup1")

	require.NoError(t, err)
	assert.Equal(t, []string{"emp002", "emp003"}, codes)
}

func TestTeamForCachesLookups(t *testing.T) {
	repo := &stubEmployeeRepo{team: []*entity.Employee{{Code: "emp002"}}}
	svc := NewService(repo, time.Minute, logger.NewNopLogger())

	_, err := svc.TeamFor(context.Background(), "acct1", "sup1")
	require.NoError(t, err)
	_, err = svc.TeamFor(context.Background(), "acct1", "sup1")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.findCalls)
}

func TestInvalidateDropsAccountEntries(t *testing.T) {
	repo := &stubEmployeeRepo{team: []*entity.Employee{{Code: "emp002"}}}
	svc := NewService(repo, time.Minute, logger.NewNopLogger())

	_, err := svc.TeamFor(context.Background(), "acct1", "sup1")
	require.NoError(t, err)

	svc.Invalidate("acct1")

	_, err = svc.TeamFor(context.Background(), "acct1", "sup1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.findCalls)
}
