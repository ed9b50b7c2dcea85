package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint(1, "SN1", "Store 1", "Cash", "Snack", "2025-10-01", "2025-12-31", 10.0, 2)
	b := Fingerprint(1, "SN1", "Store 1", "Cash", "Snack", "2025-10-01", "2025-12-31", 10.0, 2)
	assert.Equal(t, a, b)
}

func TestFingerprint_SensitiveToEachField(t *testing.T) {
	base := Fingerprint(1, "SN1", "Store 1", "Cash", "Snack", "2025-10-01", "2025-12-31", 10.0, 2)

	variants := []string{
		Fingerprint(2, "SN1", "Store 1", "Cash", "Snack", "2025-10-01", "2025-12-31", 10.0, 2),
		Fingerprint(1, "SN2", "Store 1", "Cash", "Snack", "2025-10-01", "2025-12-31", 10.0, 2),
		Fingerprint(1, "SN1", "Store 2", "Cash", "Snack", "2025-10-01", "2025-12-31", 10.0, 2),
		Fingerprint(1, "SN1", "Store 1", "Credit", "Snack", "2025-10-01", "2025-12-31", 10.0, 2),
		Fingerprint(1, "SN1", "Store 1", "Cash", "Coffee", "2025-10-01", "2025-12-31", 10.0, 2),
		Fingerprint(1, "SN1", "Store 1", "Cash", "Snack", "2025-01-01", "2025-12-31", 10.0, 2),
		Fingerprint(1, "SN1", "Store 1", "Cash", "Snack", "2025-10-01", "2025-12-31", 10.5, 2),
		Fingerprint(1, "SN1", "Store 1", "Cash", "Snack", "2025-10-01", "2025-12-31", 10.0, 3),
	}

	for i, v := range variants {
		assert.NotEqual(t, base, v, "variant %d should differ", i)
	}
}

func TestFingerprint_Format(t *testing.T) {
	fp := Fingerprint(1, "SN1", "Store 1", "Cash", "Snack", "2025-10-01", "2025-12-31", 10.0, 2)

	parts := strings.SplitN(fp, "-", 2)
	assert.Len(t, parts, 2)
	assert.Len(t, parts[0], 16) // 64-bit hash, hex
	assert.NotEmpty(t, parts[1])
}

func TestRowFingerprint_MatchesFingerprint(t *testing.T) {
	row := Row{
		SerialNumber:  "SN1",
		Location:      "Store 1",
		PaymentMethod: "Cash",
		ProductType:   "Snack",
		Amount:        10.0,
		TranCount:     2,
	}

	assert.Equal(t,
		Fingerprint(7, "SN1", "Store 1", "Cash", "Snack", "2025-10-01", "2025-12-31", 10.0, 2),
		RowFingerprint(7, row, "2025-10-01", "2025-12-31"),
	)
}
