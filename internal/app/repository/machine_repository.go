package repository

import (
	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"gorm.io/gorm"
)

type MachineRepository interface {
	FindByUserID(userID uint) ([]model.Machine, error)
	FindByID(userID, id uint) (*model.Machine, error)
	BulkCreate(machines []model.Machine) error
	Update(machine *model.Machine) error
}

type machineRepository struct {
	db *gorm.DB
}

func NewMachineRepository(db *gorm.DB) MachineRepository {
	return &machineRepository{db: db}
}

func (r *machineRepository) FindByUserID(userID uint) ([]model.Machine, error) {
	var machines []model.Machine
	err := r.db.Preload("Location").
		Where("user_id = ?", userID).
		Order("serial_number").
		Find(&machines).Error
	if err != nil {
		return nil, err
	}
	return machines, nil
}

func (r *machineRepository) FindByID(userID, id uint) (*model.Machine, error) {
	var machine model.Machine
	err := r.db.Preload("Location").
		Where("user_id = ?", userID).
		First(&machine, id).Error
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

func (r *machineRepository) BulkCreate(machines []model.Machine) error {
	if len(machines) == 0 {
		return nil
	}

	logger.Debug("Bulk creating machines", map[string]interface{}{
		"count": len(machines),
	})

	if err := r.db.Create(&machines).Error; err != nil {
		logger.Error("Failed to bulk create machines", err, map[string]interface{}{
			"count": len(machines),
		})
		return err
	}
	return nil
}

func (r *machineRepository) Update(machine *model.Machine) error {
	return r.db.Save(machine).Error
}
