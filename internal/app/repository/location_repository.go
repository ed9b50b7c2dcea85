package repository

import (
	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"gorm.io/gorm"
)

type LocationRepository interface {
	FindByUserID(userID uint) ([]model.Location, error)
	FindByID(userID, id uint) (*model.Location, error)
	BulkCreate(locations []model.Location) error
	Update(location *model.Location) error
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) FindByUserID(userID uint) ([]model.Location, error) {
	var locations []model.Location
	err := r.db.Preload("Region").
		Where("user_id = ?", userID).
		Order("name").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) FindByID(userID, id uint) (*model.Location, error) {
	var location model.Location
	err := r.db.Preload("Region").
		Where("user_id = ?", userID).
		First(&location, id).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) BulkCreate(locations []model.Location) error {
	if len(locations) == 0 {
		return nil
	}

	logger.Debug("Bulk creating locations", map[string]interface{}{
		"count": len(locations),
	})

	if err := r.db.Create(&locations).Error; err != nil {
		logger.Error("Failed to bulk create locations", err, map[string]interface{}{
			"count": len(locations),
		})
		return err
	}
	return nil
}

func (r *locationRepository) Update(location *model.Location) error {
	return r.db.Save(location).Error
}
