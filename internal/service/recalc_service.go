package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/pkg/config"
	appErrors "github.com/gradeup-app/gradeup-api/pkg/errors"
)

type recalcMatchRepository interface {
	CalculateBrandMatch(ctx context.Context, athleteID, brandID string) (*int, error)
}

type recalcAthleteRepository interface {
	GetByID(ctx context.Context, id string) (*models.Athlete, error)
	ListRecalcCandidateIDs(ctx context.Context) ([]string, error)
}

type recalcBrandRepository interface {
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	ListVerifiedIDs(ctx context.Context) ([]string, error)
}

// RecalcService recomputes match scores in bulk with bounded concurrency.
// One failed pair never aborts the batch; failures are collected into the
// returned report.
type RecalcService struct {
	matches  recalcMatchRepository
	athletes recalcAthleteRepository
	brands   recalcBrandRepository
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      config.RecalcConfig
}

// NewRecalcService constructs a RecalcService.
func NewRecalcService(matches recalcMatchRepository, athletes recalcAthleteRepository, brands recalcBrandRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg config.RecalcConfig) *RecalcService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &RecalcService{matches: matches, athletes: athletes, brands: brands, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// RecalculateForAthlete recomputes the athlete's scores against every
// verified brand.
func (s *RecalcService) RecalculateForAthlete(ctx context.Context, athleteID string) (*models.RecalcReport, error) {
	if athleteID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "athleteId is required")
	}
	if _, err := s.athletes.GetByID(ctx, athleteID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAthleteNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load athlete")
	}

	brandIDs, err := s.brands.ListVerifiedIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list verified brands")
	}

	report := s.runBatch(ctx, brandIDs, func(ctx context.Context, brandID string) (*int, error) {
		return s.matches.CalculateBrandMatch(ctx, athleteID, brandID)
	})

	if s.cache != nil {
		s.cache.InvalidateMatchStats(ctx, athleteID)
	}

	s.logger.Info("athlete recalculation finished",
		zap.String("athlete_id", athleteID),
		zap.Int("requested", report.Requested),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.Failures)))
	return report, nil
}

// RecalculateForBrand recomputes the brand's scores against every searchable,
// deal-accepting athlete.
func (s *RecalcService) RecalculateForBrand(ctx context.Context, brandID string) (*models.RecalcReport, error) {
	if brandID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "brandId is required")
	}
	if _, err := s.brands.GetByID(ctx, brandID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrBrandNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load brand")
	}

	athleteIDs, err := s.athletes.ListRecalcCandidateIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidate athletes")
	}

	report := s.runBatch(ctx, athleteIDs, func(ctx context.Context, athleteID string) (*int, error) {
		return s.matches.CalculateBrandMatch(ctx, athleteID, brandID)
	})

	if s.cache != nil {
		s.cache.Invalidate(ctx, "match:stats:*")
	}

	s.logger.Info("brand recalculation finished",
		zap.String("brand_id", brandID),
		zap.Int("requested", report.Requested),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.Failures)))
	return report, nil
}

func (s *RecalcService) runBatch(ctx context.Context, counterpartIDs []string, calc func(context.Context, string) (*int, error)) *models.RecalcReport {
	report := &models.RecalcReport{Requested: len(counterpartIDs)}
	if len(counterpartIDs) == 0 {
		return report
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, s.cfg.Concurrency)
	)

	for _, id := range counterpartIDs {
		select {
		case <-ctx.Done():
			mu.Lock()
			report.Failures = append(report.Failures, models.RecalcFailure{CounterpartID: id, Reason: ctx.Err().Error()})
			mu.Unlock()
			continue
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(counterpartID string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			score, err := calc(ctx, counterpartID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failures = append(report.Failures, models.RecalcFailure{CounterpartID: counterpartID, Reason: err.Error()})
				s.metrics.RecordRecalc("failed")
			case score == nil:
				report.Failures = append(report.Failures, models.RecalcFailure{CounterpartID: counterpartID, Reason: "profile not found"})
				s.metrics.RecordRecalc("failed")
			default:
				report.Succeeded++
				s.metrics.RecordRecalc("ok")
			}
		}(id)
	}

	wg.Wait()
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].CounterpartID < report.Failures[j].CounterpartID
	})
	return report
}
