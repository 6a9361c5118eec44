package service

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/pkg/config"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
	"github.com/gradeup-app/gradeup-api/pkg/jobs"
)

type recalcMatchStub struct {
	calc  func(athleteID, brandID string) (*int, error)
	calls int64
}

func (s *recalcMatchStub) CalculateBrandMatch(ctx context.Context, athleteID, brandID string) (*int, error) {
	atomic.AddInt64(&s.calls, 1)
	return s.calc(athleteID, brandID)
}

type recalcAthleteStub struct {
	athletes   map[string]*models.Athlete
	candidates []string
}

func (s *recalcAthleteStub) GetByID(ctx context.Context, id string) (*models.Athlete, error) {
	if athlete, ok := s.athletes[id]; ok {
		return athlete, nil
	}
	return nil, sql.ErrNoRows
}

func (s *recalcAthleteStub) ListRecalcCandidateIDs(ctx context.Context) ([]string, error) {
	return s.candidates, nil
}

type recalcBrandStub struct {
	brands   map[string]*models.Brand
	verified []string
}

func (s *recalcBrandStub) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	if brand, ok := s.brands[id]; ok {
		return brand, nil
	}
	return nil, sql.ErrNoRows
}

func (s *recalcBrandStub) ListVerifiedIDs(ctx context.Context) ([]string, error) {
	return s.verified, nil
}

func newRecalcService(matches *recalcMatchStub, athletes *recalcAthleteStub, brands *recalcBrandStub) *RecalcService {
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	return NewRecalcService(matches, athletes, brands, cache, nil, zap.NewNop(), config.RecalcConfig{Concurrency: 2})
}

func TestRecalculateForAthleteCountsOutcomes(t *testing.T) {
	matches := &recalcMatchStub{calc: func(athleteID, brandID string) (*int, error) {
		switch brandID {
		case "brand-err":
			return nil, errors.New("procedure failed")
		case "brand-gone":
			return nil, nil
		default:
			return intPtr(72), nil
		}
	}}
	athletes := &recalcAthleteStub{athletes: map[string]*models.Athlete{"athlete-1": {ID: "athlete-1"}}}
	brands := &recalcBrandStub{verified: []string{"brand-1", "brand-err", "brand-2", "brand-gone", "brand-3"}}
	svc := newRecalcService(matches, athletes, brands)

	report, err := svc.RecalculateForAthlete(context.Background(), "athlete-1")
	require.NoError(t, err)
	assert.Equal(t, 5, report.Requested)
	assert.Equal(t, 3, report.Succeeded)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, "brand-err", report.Failures[0].CounterpartID)
	assert.Equal(t, "procedure failed", report.Failures[0].Reason)
	assert.Equal(t, "brand-gone", report.Failures[1].CounterpartID)
	assert.Equal(t, "profile not found", report.Failures[1].Reason)
	assert.EqualValues(t, 5, matches.calls)
}

func TestRecalculateForAthleteUnknownAthlete(t *testing.T) {
	svc := newRecalcService(&recalcMatchStub{}, &recalcAthleteStub{}, &recalcBrandStub{})

	_, err := svc.RecalculateForAthlete(context.Background(), "athlete-missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAthleteNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecalculateForBrandEmptyCandidateSet(t *testing.T) {
	matches := &recalcMatchStub{calc: func(_, _ string) (*int, error) { return intPtr(50), nil }}
	athletes := &recalcAthleteStub{candidates: nil}
	brands := &recalcBrandStub{brands: map[string]*models.Brand{"brand-1": {ID: "brand-1"}}}
	svc := newRecalcService(matches, athletes, brands)

	report, err := svc.RecalculateForBrand(context.Background(), "brand-1")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Requested)
	assert.Equal(t, 0, report.Succeeded)
	assert.Empty(t, report.Failures)
	assert.EqualValues(t, 0, matches.calls)
}

func TestRecalculateForBrandSurvivesPartialFailure(t *testing.T) {
	matches := &recalcMatchStub{calc: func(athleteID, _ string) (*int, error) {
		if athleteID == "athlete-2" {
			return nil, errors.New("deadlock detected")
		}
		return intPtr(64), nil
	}}
	athletes := &recalcAthleteStub{candidates: []string{"athlete-1", "athlete-2", "athlete-3"}}
	brands := &recalcBrandStub{brands: map[string]*models.Brand{"brand-1": {ID: "brand-1"}}}
	svc := newRecalcService(matches, athletes, brands)

	report, err := svc.RecalculateForBrand(context.Background(), "brand-1")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Requested)
	assert.Equal(t, 2, report.Succeeded)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "athlete-2", report.Failures[0].CounterpartID)
}

func TestRecalcWorkerHandlesAthleteJob(t *testing.T) {
	matches := &recalcMatchStub{calc: func(_, _ string) (*int, error) { return intPtr(72), nil }}
	athletes := &recalcAthleteStub{athletes: map[string]*models.Athlete{"athlete-1": {ID: "athlete-1"}}}
	brands := &recalcBrandStub{verified: []string{"brand-1", "brand-2"}}
	worker := NewRecalcWorker(newRecalcService(matches, athletes, brands), zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{
		ID:      "job-1",
		Type:    "athlete_recalc",
		Payload: RecalcJobPayload{AthleteID: "athlete-1"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, matches.calls)
}

func TestRecalcWorkerRejectsBadPayload(t *testing.T) {
	worker := NewRecalcWorker(newRecalcService(&recalcMatchStub{}, &recalcAthleteStub{}, &recalcBrandStub{}), zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Payload: "athlete-1"})
	require.Error(t, err)

	err = worker.Handle(context.Background(), jobs.Job{ID: "job-2", Payload: RecalcJobPayload{}})
	require.Error(t, err)
}

func TestRecalculateForBrandCancelledContext(t *testing.T) {
	matches := &recalcMatchStub{calc: func(_, _ string) (*int, error) { return intPtr(50), nil }}
	athletes := &recalcAthleteStub{candidates: []string{"athlete-1", "athlete-2"}}
	brands := &recalcBrandStub{brands: map[string]*models.Brand{"brand-1": {ID: "brand-1"}}}
	svc := newRecalcService(matches, athletes, brands)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.RecalculateForBrand(ctx, "brand-1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Requested)
	assert.Equal(t, report.Requested, report.Succeeded+len(report.Failures))
}
