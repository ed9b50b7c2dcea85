package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/internal/db"
	"github.com/vendsight/vendsight-backend/internal/ingest"
	"gorm.io/gorm"
)

type importTestEnv struct {
	db           *gorm.DB
	regionRepo   repository.RegionRepository
	locationRepo repository.LocationRepository
	machineRepo  repository.MachineRepository
	salesRepo    repository.SalesRepository
	service      ImportService
}

func setupImportTest(t *testing.T, batchSize int) *importTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	env := &importTestEnv{
		db:           testDB,
		regionRepo:   repository.NewRegionRepository(testDB),
		locationRepo: repository.NewLocationRepository(testDB),
		machineRepo:  repository.NewMachineRepository(testDB),
		salesRepo:    repository.NewSalesRepository(testDB),
	}
	env.service = NewImportService(env.regionRepo, env.locationRepo, env.machineRepo, env.salesRepo, batchSize)
	return env
}

func importRow(serial, location, region, paymentMethod string, amount float64) ingest.Row {
	return ingest.Row{
		Region:          region,
		Location:        location,
		SerialNumber:    serial,
		ProductType:     "Beverage",
		PaymentMethod:   paymentMethod,
		PaymentCategory: ingest.NormalizePaymentCategory(paymentMethod),
		TranCount:       2,
		VendCount:       3,
		Amount:          amount,
	}
}

func TestImportService_FirstImportCreatesEntities(t *testing.T) {
	env := setupImportTest(t, 100)

	rows := []ingest.Row{
		importRow("SN1", "Store 1", "East", "Cash", 10),
		importRow("SN2", "Store 1", "East", "Credit Card", 20),
		importRow("SN3", "Store 2", "West", "Apple Pay", 30),
	}

	result := env.service.Import(1, rows, 1, "2025-10-01", "2025-12-31", nil)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 3, result.ImportedRows)
	assert.Equal(t, 0, result.DuplicateRows)
	assert.Equal(t, 2, result.RegionsCreated)
	assert.Equal(t, 2, result.LocationsCreated)
	assert.Equal(t, 3, result.MachinesCreated)
	assert.Empty(t, result.Errors)

	// sales carry resolved references
	sales, err := env.salesRepo.FindByUserID(1, repository.SalesFilter{})
	require.NoError(t, err)
	require.Len(t, sales, 3)
	for _, s := range sales {
		assert.NotNil(t, s.RegionID)
		assert.NotNil(t, s.LocationID)
		assert.NotNil(t, s.MachineID)
	}

	locations, err := env.locationRepo.FindByUserID(1)
	require.NoError(t, err)
	for _, l := range locations {
		assert.NotNil(t, l.RegionID)
	}
}

func TestImportService_ReimportIsIdempotent(t *testing.T) {
	env := setupImportTest(t, 100)

	rows := []ingest.Row{
		importRow("SN1", "Store 1", "East", "Cash", 10),
		importRow("SN2", "Store 2", "West", "Credit Card", 20),
	}

	first := env.service.Import(1, rows, 1, "2025-10-01", "2025-12-31", nil)
	require.Equal(t, 2, first.ImportedRows)

	second := env.service.Import(1, rows, 2, "2025-10-01", "2025-12-31", nil)

	assert.Equal(t, 2, second.TotalRows)
	assert.Equal(t, 0, second.ImportedRows)
	assert.Equal(t, 2, second.DuplicateRows)
	assert.Equal(t, 0, second.RegionsCreated)
	assert.Equal(t, 0, second.LocationsCreated)
	assert.Equal(t, 0, second.MachinesCreated)
	assert.Empty(t, second.Errors)

	sales, err := env.salesRepo.FindByUserID(1, repository.SalesFilter{})
	require.NoError(t, err)
	assert.Len(t, sales, 2)
}

func TestImportService_SameSerialResolvesToOneMachine(t *testing.T) {
	env := setupImportTest(t, 100)

	// same machine reported under different payment methods
	rows := []ingest.Row{
		importRow("SN1", "Store 1", "East", "Cash", 10),
		importRow("SN1", "Store 1", "East", "Credit Card", 20),
		importRow("SN1", "Store 1", "East", "Apple Pay", 30),
	}

	result := env.service.Import(1, rows, 1, "2025-10-01", "2025-12-31", nil)

	assert.Equal(t, 3, result.ImportedRows)
	assert.Equal(t, 1, result.MachinesCreated)
	assert.Equal(t, 1, result.LocationsCreated)
	assert.Equal(t, 1, result.RegionsCreated)

	machines, err := env.machineRepo.FindByUserID(1)
	require.NoError(t, err)
	require.Len(t, machines, 1)

	sales, err := env.salesRepo.FindByUserID(1, repository.SalesFilter{})
	require.NoError(t, err)
	for _, s := range sales {
		require.NotNil(t, s.MachineID)
		assert.Equal(t, machines[0].ID, *s.MachineID)
	}
}

func TestImportService_DuplicateWithinBatchSkipped(t *testing.T) {
	env := setupImportTest(t, 100)

	row := importRow("SN1", "Store 1", "East", "Cash", 10)
	rows := []ingest.Row{row, row}

	result := env.service.Import(1, rows, 1, "2025-10-01", "2025-12-31", nil)

	assert.Equal(t, 1, result.ImportedRows)
	assert.Equal(t, 1, result.DuplicateRows)
}

func TestImportService_UnresolvedReferencesStayNull(t *testing.T) {
	env := setupImportTest(t, 100)

	// no serial, no location, no region: the row still imports
	row := ingest.Row{
		PaymentMethod:   "Cash",
		PaymentCategory: model.PaymentCash,
		TranCount:       1,
		VendCount:       1,
		Amount:          5,
	}

	result := env.service.Import(1, []ingest.Row{row}, 1, "2025-10-01", "2025-12-31", nil)

	assert.Equal(t, 1, result.ImportedRows)
	assert.Equal(t, 0, result.RegionsCreated)
	assert.Equal(t, 0, result.LocationsCreated)
	assert.Equal(t, 0, result.MachinesCreated)

	sales, err := env.salesRepo.FindByUserID(1, repository.SalesFilter{})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Nil(t, sales[0].RegionID)
	assert.Nil(t, sales[0].LocationID)
	assert.Nil(t, sales[0].MachineID)
}

func TestImportService_BatchesLargeImports(t *testing.T) {
	env := setupImportTest(t, 100)

	rows := make([]ingest.Row, 0, 150)
	for i := 0; i < 150; i++ {
		rows = append(rows, importRow(fmt.Sprintf("SN%d", i), "Store 1", "East", "Cash", float64(i)+0.5))
	}

	var insertEvents []ImportProgress
	result := env.service.Import(1, rows, 1, "2025-10-01", "2025-12-31", func(p ImportProgress) {
		if p.Stage == StageInsertingSales {
			insertEvents = append(insertEvents, p)
		}
	})

	assert.Equal(t, 150, result.ImportedRows)
	assert.Empty(t, result.Errors)

	// two flushes: rows 1-100 and 101-150
	require.Len(t, insertEvents, 2)
	assert.Equal(t, 0, insertEvents[0].Current)
	assert.Equal(t, 100, insertEvents[1].Current)
	assert.Equal(t, 150, insertEvents[1].Total)
}

func TestImportService_ProgressStageOrder(t *testing.T) {
	env := setupImportTest(t, 100)

	rows := []ingest.Row{importRow("SN1", "Store 1", "East", "Cash", 10)}

	var stages []ImportStage
	env.service.Import(1, rows, 7, "2025-10-01", "2025-12-31", func(p ImportProgress) {
		assert.Equal(t, uint(7), p.UploadID)
		stages = append(stages, p.Stage)
	})

	require.NotEmpty(t, stages)
	assert.Equal(t, StageLoadingExisting, stages[0])
	assert.Equal(t, StageDone, stages[len(stages)-1])
	assert.Equal(t, []ImportStage{
		StageLoadingExisting,
		StageCreatingRegions,
		StageCreatingLocations,
		StageCreatingMachines,
		StageInsertingSales,
		StageDone,
	}, stages)
}

// failingSalesRepo drops one batch to simulate a transient insert outage.
type failingSalesRepo struct {
	repository.SalesRepository
	calls int
}

func (r *failingSalesRepo) BulkCreate(records []model.SalesRecord) error {
	r.calls++
	if r.calls == 2 {
		return errors.New("connection reset")
	}
	return r.SalesRepository.BulkCreate(records)
}

func TestImportService_BatchFailureDoesNotStopImport(t *testing.T) {
	env := setupImportTest(t, 100)

	salesRepo := &failingSalesRepo{SalesRepository: env.salesRepo}
	service := NewImportService(env.regionRepo, env.locationRepo, env.machineRepo, salesRepo, 100)

	rows := make([]ingest.Row, 0, 250)
	for i := 0; i < 250; i++ {
		rows = append(rows, importRow(fmt.Sprintf("SN%d", i), "Store 1", "East", "Cash", float64(i)+0.5))
	}

	result := service.Import(1, rows, 1, "2025-10-01", "2025-12-31", nil)

	// batches one and three land, batch two is recorded and skipped
	assert.Equal(t, 250, result.TotalRows)
	assert.Equal(t, 200, result.ImportedRows)
	assert.Equal(t, 3, salesRepo.calls)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Error inserting batch 2")

	sales, err := env.salesRepo.FindByUserID(1, repository.SalesFilter{})
	require.NoError(t, err)
	assert.Len(t, sales, 200)
}

// failingRegionRepo simulates a region insert outage.
type failingRegionRepo struct {
	repository.RegionRepository
}

func (r *failingRegionRepo) BulkCreate(regions []model.Region) error {
	return errors.New("connection reset")
}

func TestImportService_EntityFailureDoesNotStopImport(t *testing.T) {
	env := setupImportTest(t, 100)

	service := NewImportService(
		&failingRegionRepo{env.regionRepo},
		env.locationRepo,
		env.machineRepo,
		env.salesRepo,
		100,
	)

	rows := []ingest.Row{importRow("SN1", "Store 1", "East", "Cash", 10)}
	result := service.Import(1, rows, 1, "2025-10-01", "2025-12-31", nil)

	// the row imports without a region reference, the failure is recorded
	assert.Equal(t, 1, result.ImportedRows)
	assert.Equal(t, 0, result.RegionsCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Error creating regions")

	sales, err := env.salesRepo.FindByUserID(1, repository.SalesFilter{})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Nil(t, sales[0].RegionID)
	assert.NotNil(t, sales[0].LocationID)
	assert.NotNil(t, sales[0].MachineID)
}
