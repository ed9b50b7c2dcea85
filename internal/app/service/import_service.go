package service

import (
	"fmt"
	"sync"

	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/internal/ingest"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"github.com/vendsight/vendsight-backend/pkg/util"
)

type ImportStage string

const (
	StageLoadingExisting   ImportStage = "loading-existing"
	StageCreatingRegions   ImportStage = "creating-regions"
	StageCreatingLocations ImportStage = "creating-locations"
	StageCreatingMachines  ImportStage = "creating-machines"
	StageInsertingSales    ImportStage = "inserting-sales"
	StageDone              ImportStage = "done"
)

// ImportProgress is one progress notification. Zero or more of these are
// emitted in stage order, then exactly one terminal result.
type ImportProgress struct {
	UploadID uint        `json:"upload_id"`
	Stage    ImportStage `json:"stage"`
	Current  int         `json:"current"`
	Total    int         `json:"total"`
	Message  string      `json:"message"`
}

// ProgressFunc receives progress notifications. Invocations are
// fire-and-forget; implementations must not block the import.
type ProgressFunc func(ImportProgress)

// ImportResult summarizes one import run. Errors holds every stage
// failure; nothing is silently dropped and nothing is retried.
type ImportResult struct {
	TotalRows        int      `json:"total_rows"`
	ImportedRows     int      `json:"imported_rows"`
	DuplicateRows    int      `json:"duplicate_rows"`
	RegionsCreated   int      `json:"regions_created"`
	LocationsCreated int      `json:"locations_created"`
	MachinesCreated  int      `json:"machines_created"`
	Errors           []string `json:"errors"`
}

type ImportService interface {
	Import(userID uint, rows []ingest.Row, uploadID uint, periodStart, periodEnd string, onProgress ProgressFunc) *ImportResult
}

type importService struct {
	regionRepo   repository.RegionRepository
	locationRepo repository.LocationRepository
	machineRepo  repository.MachineRepository
	salesRepo    repository.SalesRepository
	batchSize    int
}

func NewImportService(
	regionRepo repository.RegionRepository,
	locationRepo repository.LocationRepository,
	machineRepo repository.MachineRepository,
	salesRepo repository.SalesRepository,
	batchSize int,
) ImportService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &importService{
		regionRepo:   regionRepo,
		locationRepo: locationRepo,
		machineRepo:  machineRepo,
		salesRepo:    salesRepo,
		batchSize:    batchSize,
	}
}

// importCaches are the per-import lookup tables. Each import owns its
// own instance, so concurrent imports never share mutable state.
type importCaches struct {
	regions      map[string]uint // normalized_name -> id
	locations    map[string]uint // normalized_name -> id
	machines     map[string]uint // serial_number -> id
	fingerprints map[string]bool
}

// Import runs the full pipeline: load existing entities, create missing
// regions/locations/machines, then insert deduplicated sales records in
// fixed-size batches. Stage failures are recorded and the import keeps
// going with whatever succeeded; it never returns an error.
func (s *importService) Import(userID uint, rows []ingest.Row, uploadID uint, periodStart, periodEnd string, onProgress ProgressFunc) *ImportResult {
	result := &ImportResult{
		TotalRows: len(rows),
		Errors:    []string{},
	}

	notify := func(stage ImportStage, current, total int, message string) {
		if onProgress != nil {
			onProgress(ImportProgress{
				UploadID: uploadID,
				Stage:    stage,
				Current:  current,
				Total:    total,
				Message:  message,
			})
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			logger.Error("Unexpected error during import", err, map[string]interface{}{
				"user_id":   userID,
				"upload_id": uploadID,
			})
			result.Errors = append(result.Errors, fmt.Sprintf("Unexpected error: %v", r))
		}
	}()

	logger.Info("Starting sales import", map[string]interface{}{
		"user_id":      userID,
		"upload_id":    uploadID,
		"total_rows":   len(rows),
		"period_start": periodStart,
		"period_end":   periodEnd,
	})

	// Stage 1: load existing entities and fingerprints
	notify(StageLoadingExisting, 0, 1, "Loading existing data...")

	caches, err := s.loadCaches(userID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Unexpected error: %v", err))
		return result
	}

	// Stage 2: regions
	s.createRegions(userID, rows, caches, result, notify)

	// Stage 3: locations (carry resolved region ids)
	s.createLocations(userID, rows, caches, result, notify)

	// Stage 4: machines (carry resolved location ids)
	s.createMachines(userID, rows, caches, result, notify)

	// Stage 5: sales records
	s.insertSales(userID, rows, uploadID, periodStart, periodEnd, caches, result, notify)

	notify(StageDone, result.TotalRows, result.TotalRows, "Import finished")

	logger.Info("Sales import finished", map[string]interface{}{
		"user_id":        userID,
		"upload_id":      uploadID,
		"imported_rows":  result.ImportedRows,
		"duplicate_rows": result.DuplicateRows,
		"errors":         len(result.Errors),
	})

	return result
}

// loadCaches fetches existing regions, locations, machines and
// fingerprints. The four reads are independent, so they are dispatched
// together and awaited jointly; this is a latency optimization only,
// nothing races against an in-flight import.
func (s *importService) loadCaches(userID uint) (*importCaches, error) {
	caches := &importCaches{
		regions:      make(map[string]uint),
		locations:    make(map[string]uint),
		machines:     make(map[string]uint),
		fingerprints: make(map[string]bool),
	}

	var (
		wg           sync.WaitGroup
		regions      []model.Region
		locations    []model.Location
		machines     []model.Machine
		fingerprints []string
		errs         [4]error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		regions, errs[0] = s.regionRepo.FindByUserID(userID)
	}()
	go func() {
		defer wg.Done()
		locations, errs[1] = s.locationRepo.FindByUserID(userID)
	}()
	go func() {
		defer wg.Done()
		machines, errs[2] = s.machineRepo.FindByUserID(userID)
	}()
	go func() {
		defer wg.Done()
		fingerprints, errs[3] = s.salesRepo.ListFingerprints(userID)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	for _, r := range regions {
		caches.regions[r.NormalizedName] = r.ID
	}
	for _, l := range locations {
		caches.locations[l.NormalizedName] = l.ID
	}
	for _, m := range machines {
		caches.machines[m.SerialNumber] = m.ID
	}
	for _, fp := range fingerprints {
		caches.fingerprints[fp] = true
	}

	return caches, nil
}

func (s *importService) createRegions(userID uint, rows []ingest.Row, caches *importCaches, result *ImportResult, notify func(ImportStage, int, int, string)) {
	// first display name wins for duplicate identities within the batch
	var order []string
	names := make(map[string]string)
	for _, row := range rows {
		if row.Region == "" {
			continue
		}
		normalized := util.NormalizeName(row.Region)
		if normalized == "" {
			continue
		}
		if _, seen := names[normalized]; seen {
			continue
		}
		if _, exists := caches.regions[normalized]; exists {
			continue
		}
		names[normalized] = row.Region
		order = append(order, normalized)
	}

	if len(order) == 0 {
		return
	}

	notify(StageCreatingRegions, 0, len(order), fmt.Sprintf("Creating %d regions...", len(order)))

	toInsert := make([]model.Region, 0, len(order))
	for _, normalized := range order {
		toInsert = append(toInsert, model.Region{
			UserID:         userID,
			Name:           names[normalized],
			NormalizedName: normalized,
		})
	}

	if err := s.regionRepo.BulkCreate(toInsert); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Error creating regions: %v", err))
		return
	}

	for _, r := range toInsert {
		caches.regions[r.NormalizedName] = r.ID
	}
	result.RegionsCreated = len(toInsert)
}

func (s *importService) createLocations(userID uint, rows []ingest.Row, caches *importCaches, result *ImportResult, notify func(ImportStage, int, int, string)) {
	type pendingLocation struct {
		name             string
		regionNormalized string
		locationType     string
		city             string
		state            string
	}

	var order []string
	pending := make(map[string]pendingLocation)
	for _, row := range rows {
		if row.Location == "" {
			continue
		}
		normalized := util.NormalizeName(row.Location)
		if normalized == "" {
			continue
		}
		if _, seen := pending[normalized]; seen {
			continue
		}
		if _, exists := caches.locations[normalized]; exists {
			continue
		}
		pending[normalized] = pendingLocation{
			name:             row.Location,
			regionNormalized: util.NormalizeName(row.Region),
			locationType:     row.LocationType,
			city:             row.City,
			state:            row.State,
		}
		order = append(order, normalized)
	}

	if len(order) == 0 {
		return
	}

	notify(StageCreatingLocations, 0, len(order), fmt.Sprintf("Creating %d locations...", len(order)))

	toInsert := make([]model.Location, 0, len(order))
	for _, normalized := range order {
		loc := pending[normalized]
		var regionID *uint
		if id, ok := caches.regions[loc.regionNormalized]; ok {
			regionID = &id
		}
		toInsert = append(toInsert, model.Location{
			UserID:         userID,
			RegionID:       regionID,
			Name:           loc.name,
			NormalizedName: normalized,
			LocationType:   loc.locationType,
			City:           loc.city,
			State:          loc.state,
		})
	}

	if err := s.locationRepo.BulkCreate(toInsert); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Error creating locations: %v", err))
		return
	}

	for _, l := range toInsert {
		caches.locations[l.NormalizedName] = l.ID
	}
	result.LocationsCreated = len(toInsert)
}

func (s *importService) createMachines(userID uint, rows []ingest.Row, caches *importCaches, result *ImportResult, notify func(ImportStage, int, int, string)) {
	var order []string
	pending := make(map[string]ingest.Row)
	for _, row := range rows {
		if row.SerialNumber == "" {
			continue
		}
		if _, seen := pending[row.SerialNumber]; seen {
			continue
		}
		if _, exists := caches.machines[row.SerialNumber]; exists {
			continue
		}
		pending[row.SerialNumber] = row
		order = append(order, row.SerialNumber)
	}

	if len(order) == 0 {
		return
	}

	notify(StageCreatingMachines, 0, len(order), fmt.Sprintf("Creating %d machines...", len(order)))

	toInsert := make([]model.Machine, 0, len(order))
	for _, serial := range order {
		row := pending[serial]
		var locationID *uint
		if id, ok := caches.locations[util.NormalizeName(row.Location)]; ok {
			locationID = &id
		}
		toInsert = append(toInsert, model.Machine{
			UserID:       userID,
			LocationID:   locationID,
			SerialNumber: serial,
			AssetNumber:  row.AssetNumber,
			Make:         row.Make,
			Model:        row.Model,
			ProductType:  row.ProductType,
		})
	}

	if err := s.machineRepo.BulkCreate(toInsert); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Error creating machines: %v", err))
		return
	}

	for _, m := range toInsert {
		caches.machines[m.SerialNumber] = m.ID
	}
	result.MachinesCreated = len(toInsert)
}

func (s *importService) insertSales(userID uint, rows []ingest.Row, uploadID uint, periodStart, periodEnd string, caches *importCaches, result *ImportResult, notify func(ImportStage, int, int, string)) {
	var toInsert []model.SalesRecord

	for _, row := range rows {
		fingerprint := ingest.RowFingerprint(userID, row, periodStart, periodEnd)

		if caches.fingerprints[fingerprint] {
			result.DuplicateRows++
			continue
		}
		caches.fingerprints[fingerprint] = true

		// unresolved references become null, not an error
		var regionID, locationID, machineID *uint
		if id, ok := caches.regions[util.NormalizeName(row.Region)]; ok {
			regionID = &id
		}
		if id, ok := caches.locations[util.NormalizeName(row.Location)]; ok {
			locationID = &id
		}
		if row.SerialNumber != "" {
			if id, ok := caches.machines[row.SerialNumber]; ok {
				machineID = &id
			}
		}

		uid := uploadID
		toInsert = append(toInsert, model.SalesRecord{
			UserID:              userID,
			UploadID:            &uid,
			RegionID:            regionID,
			LocationID:          locationID,
			MachineID:           machineID,
			PeriodStart:         periodStart,
			PeriodEnd:           periodEnd,
			ProductType:         row.ProductType,
			PaymentMethod:       row.PaymentMethod,
			PaymentCategory:     row.PaymentCategory,
			TranCount:           row.TranCount,
			VendCount:           row.VendCount,
			Amount:              row.Amount,
			TwoTierPricing:      row.TwoTierPricing,
			LoyaltyDiscount:     row.LoyaltyDiscount,
			CampaignName:        row.CampaignName,
			PurchaseDiscount:    row.PurchaseDiscount,
			FreeProductDiscount: row.FreeProductDiscount,
			Fingerprint:         fingerprint,
			RawData:             row.Raw,
		})
	}

	// flush in fixed-size batches; a failed batch does not stop later ones
	for i := 0; i < len(toInsert); i += s.batchSize {
		end := i + s.batchSize
		if end > len(toInsert) {
			end = len(toInsert)
		}
		batch := toInsert[i:end]

		notify(StageInsertingSales, i, len(toInsert), fmt.Sprintf("Importing rows %d - %d...", i+1, end))

		if err := s.salesRepo.BulkCreate(batch); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Error inserting batch %d: %v", i/s.batchSize+1, err))
			continue
		}
		result.ImportedRows += len(batch)
	}
}
