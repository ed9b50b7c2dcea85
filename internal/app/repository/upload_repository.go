package repository

import (
	"time"

	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"gorm.io/gorm"
)

type UploadRepository interface {
	Create(upload *model.CsvUpload) error
	Update(upload *model.CsvUpload) error
	FindByUserID(userID uint) ([]model.CsvUpload, error)
	FindByID(userID, id uint) (*model.CsvUpload, error)
	FailStale(olderThan time.Time, message string) (int64, error)
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(upload *model.CsvUpload) error {
	return r.db.Create(upload).Error
}

func (r *uploadRepository) Update(upload *model.CsvUpload) error {
	return r.db.Save(upload).Error
}

func (r *uploadRepository) FindByUserID(userID uint) ([]model.CsvUpload, error) {
	var uploads []model.CsvUpload
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&uploads).Error
	if err != nil {
		return nil, err
	}
	return uploads, nil
}

func (r *uploadRepository) FindByID(userID, id uint) (*model.CsvUpload, error) {
	var upload model.CsvUpload
	if err := r.db.Where("user_id = ?", userID).First(&upload, id).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

// FailStale marks uploads stuck in processing since before olderThan as
// failed. Run by the janitor; a crash mid-import is the only way an
// upload stays processing.
func (r *uploadRepository) FailStale(olderThan time.Time, message string) (int64, error) {
	now := time.Now()
	result := r.db.Model(&model.CsvUpload{}).
		Where("status = ? AND created_at < ?", model.UploadStatusProcessing, olderThan).
		Updates(map[string]interface{}{
			"status":        model.UploadStatusFailed,
			"error_message": message,
			"completed_at":  &now,
		})
	if result.Error != nil {
		logger.Error("Failed to fail stale uploads", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
