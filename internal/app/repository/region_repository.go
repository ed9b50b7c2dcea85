package repository

import (
	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"gorm.io/gorm"
)

type RegionRepository interface {
	FindByUserID(userID uint) ([]model.Region, error)
	FindByID(userID, id uint) (*model.Region, error)
	BulkCreate(regions []model.Region) error
}

type regionRepository struct {
	db *gorm.DB
}

func NewRegionRepository(db *gorm.DB) RegionRepository {
	return &regionRepository{db: db}
}

func (r *regionRepository) FindByUserID(userID uint) ([]model.Region, error) {
	var regions []model.Region
	if err := r.db.Where("user_id = ?", userID).Order("name").Find(&regions).Error; err != nil {
		return nil, err
	}
	return regions, nil
}

func (r *regionRepository) FindByID(userID, id uint) (*model.Region, error) {
	var region model.Region
	if err := r.db.Where("user_id = ?", userID).First(&region, id).Error; err != nil {
		return nil, err
	}
	return &region, nil
}

// BulkCreate inserts the given regions in one statement. IDs are
// populated on the passed slice.
func (r *regionRepository) BulkCreate(regions []model.Region) error {
	if len(regions) == 0 {
		return nil
	}

	logger.Debug("Bulk creating regions", map[string]interface{}{
		"count": len(regions),
	})

	if err := r.db.Create(&regions).Error; err != nil {
		logger.Error("Failed to bulk create regions", err, map[string]interface{}{
			"count": len(regions),
		})
		return err
	}
	return nil
}
