package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/db"
	"gorm.io/gorm"
)

func setupSalesRepoTest(t *testing.T) (*gorm.DB, SalesRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB, NewSalesRepository(testDB)
}

func salesRecord(userID uint, fingerprint, periodStart, periodEnd string, amount float64) model.SalesRecord {
	return model.SalesRecord{
		UserID:      userID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Amount:      amount,
		Fingerprint: fingerprint,
	}
}

func TestSalesRepository_BulkCreateAndList(t *testing.T) {
	_, repo := setupSalesRepoTest(t)

	records := []model.SalesRecord{
		salesRecord(1, "fp-1", "2025-10-01", "2025-12-31", 10),
		salesRecord(1, "fp-2", "2025-10-01", "2025-12-31", 20),
	}
	require.NoError(t, repo.BulkCreate(records))

	// IDs populated in place
	assert.NotZero(t, records[0].ID)
	assert.NotZero(t, records[1].ID)

	found, err := repo.FindByUserID(1, SalesFilter{})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	fingerprints, err := repo.ListFingerprints(1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fp-1", "fp-2"}, fingerprints)
}

func TestSalesRepository_FingerprintUniquePerUser(t *testing.T) {
	_, repo := setupSalesRepoTest(t)

	require.NoError(t, repo.BulkCreate([]model.SalesRecord{
		salesRecord(1, "fp-1", "2025-10-01", "2025-12-31", 10),
	}))

	// same fingerprint, same user: rejected
	err := repo.BulkCreate([]model.SalesRecord{
		salesRecord(1, "fp-1", "2025-10-01", "2025-12-31", 10),
	})
	assert.Error(t, err)

	// same fingerprint, different user: fine
	err = repo.BulkCreate([]model.SalesRecord{
		salesRecord(2, "fp-1", "2025-10-01", "2025-12-31", 10),
	})
	assert.NoError(t, err)
}

func TestSalesRepository_PeriodFilter(t *testing.T) {
	_, repo := setupSalesRepoTest(t)

	require.NoError(t, repo.BulkCreate([]model.SalesRecord{
		salesRecord(1, "fp-q1", "2025-01-01", "2025-03-31", 10),
		salesRecord(1, "fp-q4", "2025-10-01", "2025-12-31", 20),
	}))

	q4, err := repo.FindByUserID(1, SalesFilter{PeriodStart: "2025-10-01", PeriodEnd: "2025-12-31"})
	require.NoError(t, err)
	require.Len(t, q4, 1)
	assert.Equal(t, "fp-q4", q4[0].Fingerprint)

	all, err := repo.FindByUserID(1, SalesFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSalesRepository_ScopedToUser(t *testing.T) {
	_, repo := setupSalesRepoTest(t)

	require.NoError(t, repo.BulkCreate([]model.SalesRecord{
		salesRecord(1, "fp-a", "2025-10-01", "2025-12-31", 10),
		salesRecord(2, "fp-b", "2025-10-01", "2025-12-31", 20),
	}))

	found, err := repo.FindByUserID(1, SalesFilter{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "fp-a", found[0].Fingerprint)
}

func TestSalesRepository_RawDataRoundTrip(t *testing.T) {
	_, repo := setupSalesRepoTest(t)

	rec := salesRecord(1, "fp-raw", "2025-10-01", "2025-12-31", 5)
	rec.RawData = model.JSONMap{"Serial #": "SN1", "Amount": "$5.00"}
	require.NoError(t, repo.BulkCreate([]model.SalesRecord{rec}))

	found, err := repo.FindByUserID(1, SalesFilter{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "SN1", found[0].RawData["Serial #"])
}
