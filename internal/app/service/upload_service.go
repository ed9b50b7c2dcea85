package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/internal/ingest"
	"github.com/vendsight/vendsight-backend/internal/storage"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrMissingPeriod  = errors.New("reporting period is required")
	ErrUploadNotFound = errors.New("upload not found")
)

// PreviewResult is what the mapping screen renders before an import is
// committed.
type PreviewResult struct {
	Platform   model.Platform       `json:"platform"`
	Headers    []string             `json:"headers"`
	Mapping    ingest.ColumnMapping `json:"mapping"`
	SampleRows []ingest.Row         `json:"sample_rows"`
	TotalRows  int                  `json:"total_rows"`
	DateRange  *ingest.DateRange    `json:"date_range,omitempty"`
}

type UploadService interface {
	Preview(filename string, content []byte, customMapping *ingest.ColumnMapping) (*PreviewResult, error)
	Process(userID uint, filename string, content []byte, periodStart, periodEnd string, customMapping *ingest.ColumnMapping, onProgress ProgressFunc) (*model.CsvUpload, *ImportResult, error)
	History(userID uint) ([]model.CsvUpload, error)
	GetByID(userID, id uint) (*model.CsvUpload, error)
}

type uploadService struct {
	uploadRepo    repository.UploadRepository
	importService ImportService
	analytics     AnalyticsService
	auth          AuthService
	archiver      storage.Archiver // nil disables archiving
}

func NewUploadService(
	uploadRepo repository.UploadRepository,
	importService ImportService,
	analytics AnalyticsService,
	auth AuthService,
	archiver storage.Archiver,
) UploadService {
	return &uploadService{
		uploadRepo:    uploadRepo,
		importService: importService,
		analytics:     analytics,
		auth:          auth,
		archiver:      archiver,
	}
}

const previewSampleSize = 5

// Preview parses the file without touching the database.
func (s *uploadService) Preview(filename string, content []byte, customMapping *ingest.ColumnMapping) (*PreviewResult, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyFile
	}

	parsed, err := ingest.Parse(bytes.NewReader(content), customMapping)
	if err != nil {
		return nil, err
	}

	sample := parsed.Rows
	if len(sample) > previewSampleSize {
		sample = sample[:previewSampleSize]
	}

	return &PreviewResult{
		Platform:   parsed.Platform,
		Headers:    parsed.Headers,
		Mapping:    parsed.Mapping,
		SampleRows: sample,
		TotalRows:  len(parsed.Rows),
		DateRange:  ingest.ExtractDateRange(filename),
	}, nil
}

// Process runs a full import. The upload record is created "processing"
// before any work and finalized exactly once; a crash between the two
// leaves it for the stale-job janitor.
func (s *uploadService) Process(userID uint, filename string, content []byte, periodStart, periodEnd string, customMapping *ingest.ColumnMapping, onProgress ProgressFunc) (*model.CsvUpload, *ImportResult, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, nil, ErrEmptyFile
	}

	// fall back to the filename's embedded range
	if periodStart == "" || periodEnd == "" {
		if r := ingest.ExtractDateRange(filename); r != nil {
			periodStart = r.StartDate
			periodEnd = r.EndDate
		}
	}
	if periodStart == "" || periodEnd == "" {
		return nil, nil, ErrMissingPeriod
	}

	upload := &model.CsvUpload{
		UserID:      userID,
		Filename:    filename,
		Platform:    model.PlatformCustom,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      model.UploadStatusProcessing,
	}
	if err := s.uploadRepo.Create(upload); err != nil {
		logger.Error("Failed to create upload record", err, map[string]interface{}{
			"user_id":  userID,
			"filename": filename,
		})
		return nil, nil, err
	}

	parsed, err := ingest.Parse(bytes.NewReader(content), customMapping)
	if err != nil {
		s.finalize(upload, model.UploadStatusFailed, 0, nil, err.Error())
		return upload, nil, err
	}

	upload.Platform = parsed.Platform
	upload.TotalRows = len(parsed.Rows)

	result := s.importService.Import(userID, parsed.Rows, upload.ID, periodStart, periodEnd, onProgress)

	status := model.UploadStatusCompleted
	if result.ImportedRows == 0 && len(result.Errors) > 0 {
		status = model.UploadStatusFailed
	}
	s.finalize(upload, status, result.TotalRows, result, strings.Join(result.Errors, "; "))

	s.archive(upload, content)

	s.analytics.InvalidateCache(userID)

	if status == model.UploadStatusCompleted {
		if err := s.auth.MarkOnboardingCompleted(userID); err != nil {
			logger.Warn("Failed to flag onboarding", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}

	return upload, result, nil
}

func (s *uploadService) finalize(upload *model.CsvUpload, status model.UploadStatus, totalRows int, result *ImportResult, errorMessage string) {
	now := time.Now()
	upload.Status = status
	upload.TotalRows = totalRows
	upload.ErrorMessage = errorMessage
	upload.CompletedAt = &now
	if result != nil {
		upload.ImportedRows = result.ImportedRows
		upload.DuplicateRows = result.DuplicateRows
	}

	if err := s.uploadRepo.Update(upload); err != nil {
		logger.Error("Failed to finalize upload record", err, map[string]interface{}{
			"upload_id": upload.ID,
			"status":    status,
		})
	}
}

// archive stores the raw file in S3. Best effort, an archive failure
// never fails the import.
func (s *uploadService) archive(upload *model.CsvUpload, content []byte) {
	if s.archiver == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key, err := s.archiver.Archive(ctx, upload.Filename, content)
	if err != nil {
		logger.Warn("Failed to archive raw upload", map[string]interface{}{
			"upload_id": upload.ID,
			"error":     err.Error(),
		})
		return
	}

	upload.ArchiveKey = key
	if err := s.uploadRepo.Update(upload); err != nil {
		logger.Warn("Failed to persist archive key", map[string]interface{}{
			"upload_id": upload.ID,
			"error":     err.Error(),
		})
	}
}

func (s *uploadService) History(userID uint) ([]model.CsvUpload, error) {
	return s.uploadRepo.FindByUserID(userID)
}

func (s *uploadService) GetByID(userID, id uint) (*model.CsvUpload, error) {
	upload, err := s.uploadRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	return upload, nil
}
