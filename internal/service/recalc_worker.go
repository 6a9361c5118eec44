package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/pkg/jobs"
)

// RecalcJobPayload names the target of one queued bulk recompute. Exactly one
// of the IDs is set.
type RecalcJobPayload struct {
	AthleteID string
	BrandID   string
}

// RecalcWorker bridges queue jobs to RecalcService. Batches triggered over
// HTTP are acknowledged with 202 and run here in the background.
type RecalcWorker struct {
	recalc *RecalcService
	logger *zap.Logger
}

// NewRecalcWorker constructs a worker.
func NewRecalcWorker(recalc *RecalcService, logger *zap.Logger) *RecalcWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalcWorker{recalc: recalc, logger: logger}
}

// Handle processes a queue job.
func (w *RecalcWorker) Handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(RecalcJobPayload)
	if !ok {
		return fmt.Errorf("unexpected recalc payload type %T", job.Payload)
	}

	switch {
	case payload.AthleteID != "":
		report, err := w.recalc.RecalculateForAthlete(ctx, payload.AthleteID)
		if err != nil {
			return err
		}
		w.logger.Info("queued athlete recalculation finished",
			zap.String("job_id", job.ID),
			zap.String("athlete_id", payload.AthleteID),
			zap.Int("succeeded", report.Succeeded),
			zap.Int("failed", len(report.Failures)))
		return nil
	case payload.BrandID != "":
		report, err := w.recalc.RecalculateForBrand(ctx, payload.BrandID)
		if err != nil {
			return err
		}
		w.logger.Info("queued brand recalculation finished",
			zap.String("job_id", job.ID),
			zap.String("brand_id", payload.BrandID),
			zap.Int("succeeded", report.Succeeded),
			zap.Int("failed", len(report.Failures)))
		return nil
	default:
		return errors.New("recalc job names no target")
	}
}
