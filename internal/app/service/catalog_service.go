package service

import (
	"errors"

	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrMachineNotFound  = errors.New("machine not found")
	ErrRegionNotFound   = errors.New("region not found")
)

// LocationUpdate carries the editable location fields. Nil means leave
// the field alone; RegionID may be set to a null pointer explicitly via
// ClearRegion.
type LocationUpdate struct {
	RegionID     *uint
	ClearRegion  bool
	LocationType *string
	City         *string
	State        *string
}

// MachineUpdate carries the editable machine fields.
type MachineUpdate struct {
	LocationID    *uint
	ClearLocation bool
	AssetNumber   *string
	Make          *string
	Model         *string
	ProductType   *string
}

// CatalogService exposes the resolved entity catalog for browsing and
// manual correction. Entities are created by imports, never here.
type CatalogService interface {
	ListRegions(userID uint) ([]model.Region, error)
	ListLocations(userID uint) ([]model.Location, error)
	GetLocation(userID, id uint) (*model.Location, error)
	UpdateLocation(userID, id uint, update LocationUpdate) (*model.Location, error)
	ListMachines(userID uint) ([]model.Machine, error)
	GetMachine(userID, id uint) (*model.Machine, error)
	UpdateMachine(userID, id uint, update MachineUpdate) (*model.Machine, error)
}

type catalogService struct {
	regionRepo   repository.RegionRepository
	locationRepo repository.LocationRepository
	machineRepo  repository.MachineRepository
	analytics    AnalyticsService
}

func NewCatalogService(
	regionRepo repository.RegionRepository,
	locationRepo repository.LocationRepository,
	machineRepo repository.MachineRepository,
	analytics AnalyticsService,
) CatalogService {
	return &catalogService{
		regionRepo:   regionRepo,
		locationRepo: locationRepo,
		machineRepo:  machineRepo,
		analytics:    analytics,
	}
}

func (s *catalogService) ListRegions(userID uint) ([]model.Region, error) {
	return s.regionRepo.FindByUserID(userID)
}

func (s *catalogService) ListLocations(userID uint) ([]model.Location, error) {
	return s.locationRepo.FindByUserID(userID)
}

func (s *catalogService) GetLocation(userID, id uint) (*model.Location, error) {
	location, err := s.locationRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return location, nil
}

func (s *catalogService) UpdateLocation(userID, id uint, update LocationUpdate) (*model.Location, error) {
	location, err := s.GetLocation(userID, id)
	if err != nil {
		return nil, err
	}

	if update.ClearRegion {
		location.RegionID = nil
	} else if update.RegionID != nil {
		// reassignment must reference a region the user owns
		if _, err := s.regionRepo.FindByID(userID, *update.RegionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRegionNotFound
			}
			return nil, err
		}
		location.RegionID = update.RegionID
	}
	if update.LocationType != nil {
		location.LocationType = *update.LocationType
	}
	if update.City != nil {
		location.City = *update.City
	}
	if update.State != nil {
		location.State = *update.State
	}

	if err := s.locationRepo.Update(location); err != nil {
		logger.Error("Failed to update location", err, map[string]interface{}{
			"user_id":     userID,
			"location_id": id,
		})
		return nil, err
	}

	// region and type assignments feed the dashboard groupings
	s.analytics.InvalidateCache(userID)

	return location, nil
}

func (s *catalogService) ListMachines(userID uint) ([]model.Machine, error) {
	return s.machineRepo.FindByUserID(userID)
}

func (s *catalogService) GetMachine(userID, id uint) (*model.Machine, error) {
	machine, err := s.machineRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}
	return machine, nil
}

func (s *catalogService) UpdateMachine(userID, id uint, update MachineUpdate) (*model.Machine, error) {
	machine, err := s.GetMachine(userID, id)
	if err != nil {
		return nil, err
	}

	if update.ClearLocation {
		machine.LocationID = nil
	} else if update.LocationID != nil {
		if _, err := s.GetLocation(userID, *update.LocationID); err != nil {
			return nil, err
		}
		machine.LocationID = update.LocationID
	}
	if update.AssetNumber != nil {
		machine.AssetNumber = *update.AssetNumber
	}
	if update.Make != nil {
		machine.Make = *update.Make
	}
	if update.Model != nil {
		machine.Model = *update.Model
	}
	if update.ProductType != nil {
		machine.ProductType = *update.ProductType
	}

	if err := s.machineRepo.Update(machine); err != nil {
		logger.Error("Failed to update machine", err, map[string]interface{}{
			"user_id":    userID,
			"machine_id": id,
		})
		return nil, err
	}

	s.analytics.InvalidateCache(userID)

	return machine, nil
}
