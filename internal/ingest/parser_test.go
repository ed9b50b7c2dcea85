package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendsight/vendsight-backend/internal/app/model"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    model.Platform
	}{
		{
			name:    "cantaloupe full signature",
			headers: []string{"Customer", "Trans Type Name", "Serial #", "Tran Count", "Vend Count", "Amount"},
			want:    model.PlatformCantaloupe,
		},
		{
			name:    "cantaloupe three of four markers",
			headers: []string{"Trans Type Name", "Serial #", "Tran Count", "Amount"},
			want:    model.PlatformCantaloupe,
		},
		{
			name:    "two markers is not enough",
			headers: []string{"Trans Type Name", "Serial #", "Amount"},
			want:    model.PlatformCustom,
		},
		{
			name:    "nayax by machine id",
			headers: []string{"Machine ID", "Amount"},
			want:    model.PlatformNayax,
		},
		{
			name:    "payrange by beacon id",
			headers: []string{"Beacon ID", "Total"},
			want:    model.PlatformPayRange,
		},
		{
			name:    "empty headers fall back to custom",
			headers: []string{},
			want:    model.PlatformCustom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlatform(tt.headers))
		})
	}
}

func TestCantaloupeMapping_VerboseDiscountHeaders(t *testing.T) {
	headers := []string{
		"Region", "Location", "Serial #", "Trans Type Name", "Tran Count",
		"Vend Count", "Amount",
		"Two-Tier Pricing (Included in Net Revenue)",
		"Loyalty Discount", "Purchase Discount", "Free Product Discount",
	}

	m := MappingFor(headers, model.PlatformCantaloupe)
	assert.Equal(t, "Region", m.Region)
	assert.Equal(t, "Serial #", m.SerialNumber)
	assert.Equal(t, "Two-Tier Pricing (Included in Net Revenue)", m.TwoTierPricing)
	assert.Equal(t, "Loyalty Discount", m.LoyaltyDiscount)
	assert.Equal(t, "Purchase Discount", m.PurchaseDiscount)
	assert.Equal(t, "Free Product Discount", m.FreeProductDiscount)
}

func TestGenericMapping(t *testing.T) {
	headers := []string{"Region", "Site", "Serial Number", "Payment Method", "Tran Count", "Vend Count", "Net Revenue"}

	m := MappingFor(headers, model.PlatformCustom)
	assert.Equal(t, "Region", m.Region)
	assert.Equal(t, "Site", m.Location)
	assert.Equal(t, "Serial Number", m.SerialNumber)
	assert.Equal(t, "Payment Method", m.TransTypeName)
	assert.Equal(t, "Tran Count", m.TranCount)
	assert.Equal(t, "Vend Count", m.VendCount)
	assert.Equal(t, "Net Revenue", m.Amount)
}

func TestGenericMapping_FirstAmountMatchWins(t *testing.T) {
	m := MappingFor([]string{"Total Sales", "Revenue"}, model.PlatformCustom)
	assert.Equal(t, "Total Sales", m.Amount)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"$1,234.56", 1234.56},
		{"-12.50", -12.50},
		{"", 0},
		{"abc", 0},
		{"$0.75", 0.75},
		{"10", 10},
		{"USD 3.25", 3.25},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.input))
		})
	}
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 7, ParseCount("7"))
	assert.Equal(t, 0, ParseCount(""))
	assert.Equal(t, 0, ParseCount("n/a"))
	assert.Equal(t, -2, ParseCount(" -2 "))
	// only the leading integer counts
	assert.Equal(t, 3, ParseCount("3.5"))
	assert.Equal(t, 12, ParseCount("12 units"))
	assert.Equal(t, -4, ParseCount("-4x"))
	assert.Equal(t, 0, ParseCount("units 12"))
}

func TestNormalizePaymentCategory(t *testing.T) {
	tests := []struct {
		input string
		want  model.PaymentCategory
	}{
		{"Cash", model.PaymentCash},
		{"cash", model.PaymentCash},
		{"Apple Pay", model.PaymentApplePay},
		{"ApplePay", model.PaymentApplePay},
		{"Google Pay", model.PaymentGooglePay},
		{"EMV Contactless", model.PaymentContactless},
		{"Apple Pay Contactless", model.PaymentApplePay},
		{"Chargeback", model.PaymentChargeback},
		{"Access", model.PaymentAccess},
		{"Credit Card", model.PaymentCredit},
		{"Credit", model.PaymentCredit},
		{"Bitcoin", model.PaymentOther},
		{"", model.PaymentOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePaymentCategory(tt.input))
		})
	}
}

func TestParse_CantaloupeRow(t *testing.T) {
	content := strings.Join([]string{
		`Trans Type Name,Serial #,Tran Count,Vend Count,Region,Location,Amount`,
		`Cash,SN1,2,3,East,Store 1,$10.00`,
	}, "\n")

	result, err := Parse(strings.NewReader(content), nil)
	require.NoError(t, err)

	assert.Equal(t, model.PlatformCantaloupe, result.Platform)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	assert.Equal(t, "East", row.Region)
	assert.Equal(t, "Store 1", row.Location)
	assert.Equal(t, "SN1", row.SerialNumber)
	assert.Equal(t, model.PaymentCash, row.PaymentCategory)
	assert.Equal(t, 2, row.TranCount)
	assert.Equal(t, 3, row.VendCount)
	assert.Equal(t, 10.0, row.Amount)
	assert.Equal(t, "Cash", row.Raw["Trans Type Name"])
}

func TestParse_CustomMappingOverridesDetection(t *testing.T) {
	content := strings.Join([]string{
		`Zone,Store,Sales`,
		`West,Kiosk A,"$2,500.00"`,
	}, "\n")

	mapping := &ColumnMapping{Region: "Zone", Location: "Store", Amount: "Sales"}
	result, err := Parse(strings.NewReader(content), mapping)
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "West", result.Rows[0].Region)
	assert.Equal(t, "Kiosk A", result.Rows[0].Location)
	assert.Equal(t, 2500.0, result.Rows[0].Amount)
}

func TestParse_MissingFieldsAreValid(t *testing.T) {
	content := strings.Join([]string{
		`Trans Type Name,Serial #,Tran Count,Vend Count,Amount`,
		`Credit,,1,1,2.50`,
	}, "\n")

	result, err := Parse(strings.NewReader(content), nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	// no serial, no region, no location: unassigned, not an error
	row := result.Rows[0]
	assert.Empty(t, row.SerialNumber)
	assert.Empty(t, row.Region)
	assert.Empty(t, row.Location)
	assert.Equal(t, 2.50, row.Amount)
}

func TestParse_SkipsEmptyLines(t *testing.T) {
	content := "Trans Type Name,Serial #,Tran Count,Vend Count,Amount\n\nCash,SN1,1,1,1.00\n\n"

	result, err := Parse(strings.NewReader(content), nil)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
}

func TestParse_EmptyInputIsError(t *testing.T) {
	_, err := Parse(strings.NewReader(""), nil)
	assert.Error(t, err)
}
