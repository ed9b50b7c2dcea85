package ingest

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

// Fingerprint derives the dedup key for one sales row from its immutable
// business fields. FNV-1a 64 over the delimited field string, hex-encoded,
// with the input length appended as a tie-breaker.
//
// This is deliberately non-cryptographic: the only threat model is an
// operator re-uploading the same file, so a fast hash with negligible
// accidental collision probability at tens of thousands of rows per
// account is sufficient. Two distinct rows colliding would be silently
// treated as duplicates; accepted.
//
// Region is not part of the key: it rides on the resolved region_id of
// the stored row instead.
func Fingerprint(userID uint, serialNumber, location, paymentMethod, productType, periodStart, periodEnd string, amount float64, tranCount int) string {
	data := fmt.Sprintf("%d|%s|%s|%s|%s|%s|%s|%s|%d",
		userID,
		serialNumber,
		location,
		paymentMethod,
		productType,
		periodStart,
		periodEnd,
		strconv.FormatFloat(amount, 'f', -1, 64),
		tranCount,
	)

	h := fnv.New64a()
	h.Write([]byte(data))

	return fmt.Sprintf("%016x-%x", h.Sum64(), len(data))
}

// RowFingerprint computes the fingerprint of a normalized row for the
// given account and reporting period.
func RowFingerprint(userID uint, row Row, periodStart, periodEnd string) string {
	return Fingerprint(userID, row.SerialNumber, row.Location, row.PaymentMethod, row.ProductType, periodStart, periodEnd, row.Amount, row.TranCount)
}
