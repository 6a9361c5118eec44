package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gradeup-app/gradeup-api/internal/models"
	"github.com/gradeup-app/gradeup-api/pkg/export"
	"github.com/gradeup-app/gradeup-api/pkg/storage"
)

type exportMatchSource interface {
	TopMatchesForAthlete(ctx context.Context, athleteID string, filter models.TopMatchFilter) ([]models.TopMatch, error)
	MatchesForBrand(ctx context.Context, brandID string) ([]models.AthleteMatch, error)
	ListForAthlete(ctx context.Context, athleteID string) ([]models.MatchScore, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds match report datasets and persists rendered files.
type ExportService struct {
	matches exportMatchSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(matches exportMatchSource, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		matches: matches,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the dataset for a job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	subject := deref(job.Params.AthleteID)
	if subject == "" {
		subject = deref(job.Params.BrandID)
	}
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), sanitizeFilename(subject), timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeTopMatches:
		return s.buildTopMatchesDataset(ctx, job.Params)
	case models.ReportTypeBrandCandidates:
		return s.buildBrandCandidatesDataset(ctx, job.Params)
	case models.ReportTypeMatchStats:
		return s.buildMatchStatsDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildTopMatchesDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	athleteID := deref(params.AthleteID)
	if athleteID == "" {
		return export.Dataset{}, "", fmt.Errorf("athleteId missing from job params")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	matches, err := s.matches.TopMatchesForAthlete(ctx, athleteID, models.TopMatchFilter{Limit: limit})
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, map[string]string{
			"Brand":          m.BrandName,
			"Industry":       m.BrandIndustry,
			"Score":          fmt.Sprintf("%d", m.Score),
			"Major Match":    formatBool(m.MajorMatch),
			"Industry Match": formatBool(m.IndustryMatch),
			"Values Match":   formatBool(m.ValuesMatch),
			"Calculated At":  m.CalculatedAt.UTC().Format(time.RFC3339),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Brand", "Industry", "Score", "Major Match", "Industry Match", "Values Match", "Calculated At"},
		Rows:    rows,
	}
	return dataset, "Top Brand Matches", nil
}

func (s *ExportService) buildBrandCandidatesDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	brandID := deref(params.BrandID)
	if brandID == "" {
		return export.Dataset{}, "", fmt.Errorf("brandId missing from job params")
	}
	matches, err := s.matches.MatchesForBrand(ctx, brandID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	if params.Limit > 0 && len(matches) > params.Limit {
		matches = matches[:params.Limit]
	}
	rows := make([]map[string]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, map[string]string{
			"Athlete":       m.AthleteName,
			"Sport":         m.Sport,
			"School":        m.SchoolName,
			"Division":      m.Division,
			"GPA":           fmt.Sprintf("%.2f", m.EffectiveGPA()),
			"GradeUp Score": fmt.Sprintf("%.1f", m.GradeupScore),
			"Match Score":   fmt.Sprintf("%d", m.Score),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Athlete", "Sport", "School", "Division", "GPA", "GradeUp Score", "Match Score"},
		Rows:    rows,
	}
	return dataset, "Candidate Athletes", nil
}

func (s *ExportService) buildMatchStatsDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	athleteID := deref(params.AthleteID)
	if athleteID == "" {
		return export.Dataset{}, "", fmt.Errorf("athleteId missing from job params")
	}
	matches, err := s.matches.ListForAthlete(ctx, athleteID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	stats := aggregateMatchStats(matches)
	rows := []map[string]string{
		{"Metric": "Total Matches", "Value": fmt.Sprintf("%d", stats.TotalMatches)},
		{"Metric": "High Matches (80+)", "Value": fmt.Sprintf("%d", stats.HighMatches)},
		{"Metric": "Medium Matches (60-79)", "Value": fmt.Sprintf("%d", stats.MediumMatches)},
		{"Metric": "Low Matches (<60)", "Value": fmt.Sprintf("%d", stats.LowMatches)},
		{"Metric": "Major Matches", "Value": fmt.Sprintf("%d", stats.MajorMatches)},
		{"Metric": "Industry Matches", "Value": fmt.Sprintf("%d", stats.IndustryMatches)},
		{"Metric": "Average Score", "Value": fmt.Sprintf("%d", stats.AverageScore)},
	}
	dataset := export.Dataset{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}
	return dataset, "Match Statistics", nil
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
