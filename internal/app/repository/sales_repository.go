package repository

import (
	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"gorm.io/gorm"
)

// SalesFilter narrows sales queries to a reporting window. Empty bounds
// are ignored. Dates are ISO strings, so string comparison is correct.
type SalesFilter struct {
	PeriodStart string
	PeriodEnd   string
}

type SalesRepository interface {
	BulkCreate(records []model.SalesRecord) error
	FindByUserID(userID uint, filter SalesFilter) ([]model.SalesRecord, error)
	ListFingerprints(userID uint) ([]string, error)
}

type salesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) SalesRepository {
	return &salesRepository{db: db}
}

// BulkCreate inserts one batch of sales records. The caller owns batch
// sizing; this is a single all-or-nothing statement.
func (r *salesRepository) BulkCreate(records []model.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := r.db.Create(&records).Error; err != nil {
		logger.Error("Failed to insert sales batch", err, map[string]interface{}{
			"count": len(records),
		})
		return err
	}
	return nil
}

func (r *salesRepository) FindByUserID(userID uint, filter SalesFilter) ([]model.SalesRecord, error) {
	query := r.db.Where("user_id = ?", userID)
	if filter.PeriodStart != "" {
		query = query.Where("period_start >= ?", filter.PeriodStart)
	}
	if filter.PeriodEnd != "" {
		query = query.Where("period_end <= ?", filter.PeriodEnd)
	}

	var records []model.SalesRecord
	if err := query.Order("period_start DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListFingerprints returns every fingerprint the account has ever
// imported. Loaded once at import start to seed the dedup set.
func (r *salesRepository) ListFingerprints(userID uint) ([]string, error) {
	var fingerprints []string
	err := r.db.Model(&model.SalesRecord{}).
		Where("user_id = ?", userID).
		Pluck("fingerprint", &fingerprints).Error
	if err != nil {
		return nil, err
	}
	return fingerprints, nil
}
