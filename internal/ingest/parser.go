package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/vendsight/vendsight-backend/internal/app/model"
)

// ColumnMapping maps semantic fields to CSV header names. Empty string
// means the field is absent from the file.
type ColumnMapping struct {
	Customer            string `json:"customer,omitempty"`
	Region              string `json:"region,omitempty"`
	Location            string `json:"location,omitempty"`
	LocationType        string `json:"location_type,omitempty"`
	SerialNumber        string `json:"serial_number,omitempty"`
	AssetNumber         string `json:"asset_number,omitempty"`
	Make                string `json:"make,omitempty"`
	Model               string `json:"model,omitempty"`
	City                string `json:"city,omitempty"`
	State               string `json:"state,omitempty"`
	ProductType         string `json:"product_type,omitempty"`
	TransTypeName       string `json:"trans_type_name,omitempty"`
	TranCount           string `json:"tran_count,omitempty"`
	VendCount           string `json:"vend_count,omitempty"`
	Amount              string `json:"amount,omitempty"`
	CurrencyCode        string `json:"currency_code,omitempty"`
	TwoTierPricing      string `json:"two_tier_pricing,omitempty"`
	LoyaltyDiscount     string `json:"loyalty_discount,omitempty"`
	CampaignName        string `json:"campaign_name,omitempty"`
	PurchaseDiscount    string `json:"purchase_discount,omitempty"`
	FreeProductDiscount string `json:"free_product_discount,omitempty"`
}

// Row is one normalized sales row. Raw keeps the original cells verbatim
// for auditability.
type Row struct {
	Customer        string
	Region          string
	Location        string
	LocationType    string
	SerialNumber    string
	AssetNumber     string
	Make            string
	Model           string
	City            string
	State           string
	ProductType     string
	PaymentMethod   string
	PaymentCategory model.PaymentCategory

	TranCount int
	VendCount int
	Amount    float64

	TwoTierPricing      float64
	LoyaltyDiscount     float64
	CampaignName        string
	PurchaseDiscount    float64
	FreeProductDiscount float64

	Raw map[string]string
}

// ParseResult is the outcome of parsing one CSV file.
type ParseResult struct {
	Rows     []Row
	Headers  []string
	Platform model.Platform
	Mapping  ColumnMapping
}

// Cantaloupe signature headers; 3 of 4 is enough to classify
var cantaloupeMarkers = []string{"Trans Type Name", "Serial #", "Tran Count", "Vend Count"}

// DetectPlatform classifies the data source by its header names. Always
// returns a platform, defaulting to custom.
func DetectPlatform(headers []string) model.Platform {
	headerSet := make(map[string]bool, len(headers))
	for _, h := range headers {
		headerSet[strings.TrimSpace(h)] = true
	}

	matches := 0
	for _, m := range cantaloupeMarkers {
		if headerSet[m] {
			matches++
		}
	}
	if matches >= 3 {
		return model.PlatformCantaloupe
	}

	if headerSet["Machine ID"] || headerSet["Nayax ID"] {
		return model.PlatformNayax
	}

	if headerSet["PayRange ID"] || headerSet["Beacon ID"] {
		return model.PlatformPayRange
	}

	return model.PlatformCustom
}

var (
	twoTierRe  = regexp.MustCompile(`(?i)two.tier\s*pricing`)
	loyaltyRe  = regexp.MustCompile(`(?i)loyalty\s*discount`)
	purchaseRe = regexp.MustCompile(`(?i)purchase\s*discount`)
	freeRe     = regexp.MustCompile(`(?i)free\s*product\s*discount`)
)

// cantaloupeMapping matches the fixed Cantaloupe export headers. The
// discount columns ship with verbose names like
// "Two-Tier Pricing (Included in Net Revenue)", hence the regexes.
func cantaloupeMapping(headers []string) ColumnMapping {
	headerSet := make(map[string]bool, len(headers))
	for _, h := range headers {
		headerSet[h] = true
	}

	var m ColumnMapping
	exact := []struct {
		header string
		target *string
	}{
		{"Customer", &m.Customer},
		{"Region", &m.Region},
		{"Location", &m.Location},
		{"Location Type", &m.LocationType},
		{"Serial #", &m.SerialNumber},
		{"Asset #", &m.AssetNumber},
		{"Make", &m.Make},
		{"Model", &m.Model},
		{"City", &m.City},
		{"State", &m.State},
		{"Product Type", &m.ProductType},
		{"Trans Type Name", &m.TransTypeName},
		{"Tran Count", &m.TranCount},
		{"Vend Count", &m.VendCount},
		{"Amount", &m.Amount},
		{"Currency Code", &m.CurrencyCode},
		{"Campaign Name", &m.CampaignName},
	}
	for _, e := range exact {
		if headerSet[e.header] {
			*e.target = e.header
		}
	}

	for _, h := range headers {
		switch {
		case m.TwoTierPricing == "" && twoTierRe.MatchString(h):
			m.TwoTierPricing = h
		case m.LoyaltyDiscount == "" && loyaltyRe.MatchString(h):
			m.LoyaltyDiscount = h
		case m.PurchaseDiscount == "" && purchaseRe.MatchString(h):
			m.PurchaseDiscount = h
		case m.FreeProductDiscount == "" && freeRe.MatchString(h):
			m.FreeProductDiscount = h
		}
	}

	return m
}

var genericRules = []struct {
	re     *regexp.Regexp
	target func(*ColumnMapping) *string
}{
	{regexp.MustCompile(`(?i)^region$`), func(m *ColumnMapping) *string { return &m.Region }},
	{regexp.MustCompile(`(?i)^(location|site)$`), func(m *ColumnMapping) *string { return &m.Location }},
	{regexp.MustCompile(`(?i)location\s*type`), func(m *ColumnMapping) *string { return &m.LocationType }},
	{regexp.MustCompile(`(?i)serial`), func(m *ColumnMapping) *string { return &m.SerialNumber }},
	{regexp.MustCompile(`(?i)asset`), func(m *ColumnMapping) *string { return &m.AssetNumber }},
	{regexp.MustCompile(`(?i)^make$`), func(m *ColumnMapping) *string { return &m.Make }},
	{regexp.MustCompile(`(?i)^model$`), func(m *ColumnMapping) *string { return &m.Model }},
	{regexp.MustCompile(`(?i)^city$`), func(m *ColumnMapping) *string { return &m.City }},
	{regexp.MustCompile(`(?i)^state$`), func(m *ColumnMapping) *string { return &m.State }},
	{regexp.MustCompile(`(?i)product\s*type`), func(m *ColumnMapping) *string { return &m.ProductType }},
	{regexp.MustCompile(`(?i)trans.*type|payment.*method|payment.*type`), func(m *ColumnMapping) *string { return &m.TransTypeName }},
	{regexp.MustCompile(`(?i)tran.*count`), func(m *ColumnMapping) *string { return &m.TranCount }},
	{regexp.MustCompile(`(?i)vend.*count`), func(m *ColumnMapping) *string { return &m.VendCount }},
	{regexp.MustCompile(`(?i)^amount$|^total|^revenue|^net\s*revenue`), func(m *ColumnMapping) *string { return &m.Amount }},
}

// genericMapping sniffs headers for non-Cantaloupe exports. First match
// wins per field.
func genericMapping(headers []string) ColumnMapping {
	var m ColumnMapping
	for _, header := range headers {
		h := strings.TrimSpace(header)
		for _, rule := range genericRules {
			if !rule.re.MatchString(h) {
				continue
			}
			if t := rule.target(&m); *t == "" {
				*t = header
			}
			break
		}
	}
	return m
}

// MappingFor derives the column mapping for the given platform.
func MappingFor(headers []string, platform model.Platform) ColumnMapping {
	if platform == model.PlatformCantaloupe {
		return cantaloupeMapping(headers)
	}
	return genericMapping(headers)
}

// Payment-category rules, checked in order; first match wins
var (
	cashRe            = regexp.MustCompile(`(?i)^cash$`)
	applePayRe        = regexp.MustCompile(`(?i)apple\s*pay`)
	googlePayRe       = regexp.MustCompile(`(?i)google\s*pay`)
	contactlessRe     = regexp.MustCompile(`(?i)contactless|emv\s*contactless`)
	appleMentionRe    = regexp.MustCompile(`(?i)apple`)
	googleMentionRe   = regexp.MustCompile(`(?i)google`)
	chargebackRe      = regexp.MustCompile(`(?i)chargeback`)
	accessRe          = regexp.MustCompile(`(?i)^access$`)
	creditRe          = regexp.MustCompile(`(?i)^credit`)
)

// NormalizePaymentCategory maps a free-text payment method (the "Trans
// Type Name" cell) to a fixed category. Unmatched values fall to other.
func NormalizePaymentCategory(paymentMethod string) model.PaymentCategory {
	value := strings.TrimSpace(paymentMethod)

	switch {
	case cashRe.MatchString(value):
		return model.PaymentCash
	case applePayRe.MatchString(value):
		return model.PaymentApplePay
	case googlePayRe.MatchString(value):
		return model.PaymentGooglePay
	case contactlessRe.MatchString(value) && !appleMentionRe.MatchString(value) && !googleMentionRe.MatchString(value):
		return model.PaymentContactless
	case chargebackRe.MatchString(value):
		return model.PaymentChargeback
	case accessRe.MatchString(value):
		return model.PaymentAccess
	case creditRe.MatchString(value):
		return model.PaymentCredit
	}

	return model.PaymentOther
}

var amountRe = regexp.MustCompile(`-?\d+\.?\d*`)

// ParseAmount extracts a signed decimal from a currency string.
// "$1,234.56" -> 1234.56, "abc" -> 0, "" -> 0.
func ParseAmount(value string) float64 {
	if value == "" {
		return 0
	}

	var cleaned strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			cleaned.WriteRune(r)
		}
	}

	match := amountRe.FindString(cleaned.String())
	if match == "" {
		return 0
	}

	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseCount parses the leading integer of a count cell, so "3.5" is 3
// and "12 units" is 12. No leading digits means 0.
func ParseCount(value string) int {
	s := strings.TrimSpace(value)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Parse reads a CSV export: first record is the header row, empty lines
// are skipped. When customMapping is non-nil it overrides detection.
// A malformed file aborts before anything downstream runs.
func Parse(r io.Reader, customMapping *ColumnMapping) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("malformed CSV: missing header row")
	}

	headers := records[0]
	platform := DetectPlatform(headers)

	var mapping ColumnMapping
	if customMapping != nil {
		mapping = *customMapping
	} else {
		mapping = MappingFor(headers, platform)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		raw := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				raw[h] = record[i]
			} else {
				raw[h] = ""
			}
		}

		get := func(header string) string {
			if header == "" {
				return ""
			}
			return strings.TrimSpace(raw[header])
		}

		paymentMethod := get(mapping.TransTypeName)

		rows = append(rows, Row{
			Customer:            get(mapping.Customer),
			Region:              get(mapping.Region),
			Location:            get(mapping.Location),
			LocationType:        get(mapping.LocationType),
			SerialNumber:        get(mapping.SerialNumber),
			AssetNumber:         get(mapping.AssetNumber),
			Make:                get(mapping.Make),
			Model:               get(mapping.Model),
			City:                get(mapping.City),
			State:               get(mapping.State),
			ProductType:         get(mapping.ProductType),
			PaymentMethod:       paymentMethod,
			PaymentCategory:     NormalizePaymentCategory(paymentMethod),
			TranCount:           ParseCount(get(mapping.TranCount)),
			VendCount:           ParseCount(get(mapping.VendCount)),
			Amount:              ParseAmount(get(mapping.Amount)),
			TwoTierPricing:      ParseAmount(get(mapping.TwoTierPricing)),
			LoyaltyDiscount:     ParseAmount(get(mapping.LoyaltyDiscount)),
			CampaignName:        get(mapping.CampaignName),
			PurchaseDiscount:    ParseAmount(get(mapping.PurchaseDiscount)),
			FreeProductDiscount: ParseAmount(get(mapping.FreeProductDiscount)),
			Raw:                 raw,
		})
	}

	return &ParseResult{
		Rows:     rows,
		Headers:  headers,
		Platform: platform,
		Mapping:  mapping,
	}, nil
}
