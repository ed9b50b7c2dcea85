package repository

import (
	"github.com/vendsight/vendsight-backend/internal/app/model"
	"gorm.io/gorm"
)

type MappingRepository interface {
	Create(mapping *model.ColumnMapping) error
	FindByUserID(userID uint) ([]model.ColumnMapping, error)
	FindByID(userID, id uint) (*model.ColumnMapping, error)
	Delete(userID, id uint) error
}

type mappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) MappingRepository {
	return &mappingRepository{db: db}
}

func (r *mappingRepository) Create(mapping *model.ColumnMapping) error {
	return r.db.Create(mapping).Error
}

func (r *mappingRepository) FindByUserID(userID uint) ([]model.ColumnMapping, error) {
	var mappings []model.ColumnMapping
	err := r.db.Where("user_id = ?", userID).
		Order("mapping_name").
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *mappingRepository) FindByID(userID, id uint) (*model.ColumnMapping, error) {
	var mapping model.ColumnMapping
	if err := r.db.Where("user_id = ?", userID).First(&mapping, id).Error; err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *mappingRepository) Delete(userID, id uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.ColumnMapping{}, id).Error
}
