package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type PaymentCategory string

const (
	PaymentCash        PaymentCategory = "cash"
	PaymentCredit      PaymentCategory = "credit"
	PaymentApplePay    PaymentCategory = "apple_pay"
	PaymentGooglePay   PaymentCategory = "google_pay"
	PaymentContactless PaymentCategory = "contactless"
	PaymentAccess      PaymentCategory = "access"
	PaymentChargeback  PaymentCategory = "chargeback"
	PaymentOther       PaymentCategory = "other"
)

// DigitalPaymentCategories is the fixed subset counted as "digital" in
// the dashboard KPI.
var DigitalPaymentCategories = map[PaymentCategory]bool{
	PaymentCredit:      true,
	PaymentApplePay:    true,
	PaymentGooglePay:   true,
	PaymentContactless: true,
}

// JSONMap stores a string map as a JSON column. Portable across Postgres
// and the SQLite test database.
type JSONMap map[string]string

// Value implements database/sql/driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements database/sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JSONMap")
	}

	return json.Unmarshal(bytes, m)
}

// SalesRecord is one normalized rollup row. Append-only: once created it
// is never updated; re-imports of the same logical row are rejected by
// the per-account unique fingerprint.
type SalesRecord struct {
	ID         uint  `gorm:"primarykey" json:"id"`
	UserID     uint  `gorm:"not null;index:idx_sales_user_fingerprint,unique" json:"user_id"`
	UploadID   *uint `gorm:"index" json:"upload_id"`
	RegionID   *uint `gorm:"index" json:"region_id"`
	LocationID *uint `gorm:"index" json:"location_id"`
	MachineID  *uint `gorm:"index" json:"machine_id"`

	// ISO dates (YYYY-MM-DD); lexicographic order matches chronological
	PeriodStart string `gorm:"type:varchar(10);not null;index" json:"period_start"`
	PeriodEnd   string `gorm:"type:varchar(10);not null;index" json:"period_end"`

	ProductType     string          `gorm:"type:varchar(100)" json:"product_type"`
	PaymentMethod   string          `gorm:"type:varchar(100)" json:"payment_method"`
	PaymentCategory PaymentCategory `gorm:"type:varchar(20)" json:"payment_category"`

	TranCount int     `gorm:"not null;default:0" json:"tran_count"`
	VendCount int     `gorm:"not null;default:0" json:"vend_count"`
	Amount    float64 `gorm:"not null;default:0" json:"amount"`

	TwoTierPricing      float64 `gorm:"default:0" json:"two_tier_pricing"`
	LoyaltyDiscount     float64 `gorm:"default:0" json:"loyalty_discount"`
	CampaignName        string  `gorm:"type:varchar(255)" json:"campaign_name"`
	PurchaseDiscount    float64 `gorm:"default:0" json:"purchase_discount"`
	FreeProductDiscount float64 `gorm:"default:0" json:"free_product_discount"`

	Fingerprint string  `gorm:"type:varchar(40);not null;index:idx_sales_user_fingerprint,unique" json:"fingerprint"`
	RawData     JSONMap `gorm:"type:text" json:"raw_data"`

	CreatedAt time.Time `json:"created_at"`
}

func (SalesRecord) TableName() string {
	return "sales_records"
}
