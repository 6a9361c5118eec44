package dto

import "github.com/gradeup-app/gradeup-api/internal/models"

// ReportRequest captures POST /reports/generate payload.
type ReportRequest struct {
	Type      models.ReportType   `json:"type"`
	AthleteID *string             `json:"athleteId,omitempty"`
	BrandID   *string             `json:"brandId,omitempty"`
	Format    models.ReportFormat `json:"format"`
	Limit     int                 `json:"limit,omitempty"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
