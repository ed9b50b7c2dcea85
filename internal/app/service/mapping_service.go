package service

import (
	"encoding/json"
	"errors"

	"github.com/lib/pq"
	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/internal/ingest"
	"gorm.io/gorm"
)

var ErrMappingNotFound = errors.New("column mapping not found")

// MappingService stores reusable column mappings for operators whose
// exports never auto-detect.
type MappingService interface {
	Save(userID uint, name string, platform model.Platform, mapping ingest.ColumnMapping, headers []string) (*model.ColumnMapping, error)
	List(userID uint) ([]model.ColumnMapping, error)
	Get(userID, id uint) (*model.ColumnMapping, error)
	Resolve(userID, id uint) (*ingest.ColumnMapping, error)
	Delete(userID, id uint) error
}

type mappingService struct {
	mappingRepo repository.MappingRepository
}

func NewMappingService(mappingRepo repository.MappingRepository) MappingService {
	return &mappingService{mappingRepo: mappingRepo}
}

func (s *mappingService) Save(userID uint, name string, platform model.Platform, mapping ingest.ColumnMapping, headers []string) (*model.ColumnMapping, error) {
	columns, err := mappingToColumns(mapping)
	if err != nil {
		return nil, err
	}

	record := &model.ColumnMapping{
		UserID:      userID,
		MappingName: name,
		Platform:    platform,
		Columns:     columns,
		Headers:     pq.StringArray(headers),
	}
	if err := s.mappingRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *mappingService) List(userID uint) ([]model.ColumnMapping, error) {
	return s.mappingRepo.FindByUserID(userID)
}

func (s *mappingService) Get(userID, id uint) (*model.ColumnMapping, error) {
	mapping, err := s.mappingRepo.FindByID(userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, err
	}
	return mapping, nil
}

// Resolve loads a saved mapping in the form the parser consumes.
func (s *mappingService) Resolve(userID, id uint) (*ingest.ColumnMapping, error) {
	record, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	return columnsToMapping(record.Columns)
}

func (s *mappingService) Delete(userID, id uint) error {
	return s.mappingRepo.Delete(userID, id)
}

// The stored form is the parser struct's JSON shape, so the two convert
// through encoding/json.

func mappingToColumns(mapping ingest.ColumnMapping) (model.JSONMap, error) {
	data, err := json.Marshal(mapping)
	if err != nil {
		return nil, err
	}
	var columns model.JSONMap
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

func columnsToMapping(columns model.JSONMap) (*ingest.ColumnMapping, error) {
	data, err := json.Marshal(columns)
	if err != nil {
		return nil, err
	}
	var mapping ingest.ColumnMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, err
	}
	return &mapping, nil
}
