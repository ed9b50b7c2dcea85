package service

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vendsight/vendsight-backend/internal/app/model"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// exportHeaders is the fixed column order for both export formats.
var exportHeaders = []string{
	"Period Start", "Period End", "Product Type", "Payment Method",
	"Payment Category", "Tran Count", "Vend Count", "Amount",
	"Two-Tier Pricing", "Loyalty Discount", "Purchase Discount",
	"Free Product Discount",
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type ExportService interface {
	ExportCSV(userID uint, periodStart, periodEnd string) (*ExportFile, error)
	ExportXLSX(userID uint, periodStart, periodEnd string) (*ExportFile, error)
}

type exportService struct {
	salesRepo repository.SalesRepository
}

func NewExportService(salesRepo repository.SalesRepository) ExportService {
	return &exportService{salesRepo: salesRepo}
}

func exportCells(rec *model.SalesRecord) []string {
	return []string{
		rec.PeriodStart,
		rec.PeriodEnd,
		rec.ProductType,
		rec.PaymentMethod,
		string(rec.PaymentCategory),
		strconv.Itoa(rec.TranCount),
		strconv.Itoa(rec.VendCount),
		formatAmount(rec.Amount),
		formatAmount(rec.TwoTierPricing),
		formatAmount(rec.LoyaltyDiscount),
		formatAmount(rec.PurchaseDiscount),
		formatAmount(rec.FreeProductDiscount),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ExportCSV renders the period's records in the fixed twelve-column
// layout. Every data cell is double-quoted.
func (s *exportService) ExportCSV(userID uint, periodStart, periodEnd string) (*ExportFile, error) {
	records, err := s.load(userID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(exportHeaders, ","))

	for i := range records {
		cells := exportCells(&records[i])
		quoted := make([]string, len(cells))
		for j, cell := range cells {
			quoted[j] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
		}
		buf.WriteString("\n")
		buf.WriteString(strings.Join(quoted, ","))
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("vending-export-%s.csv", time.Now().Format("2006-01-02")),
		ContentType: "text/csv",
		Content:     buf.Bytes(),
	}, nil
}

// ExportXLSX renders the same layout as a spreadsheet.
func (s *exportService) ExportXLSX(userID uint, periodStart, periodEnd string) (*ExportFile, error) {
	records, err := s.load(userID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales"
	f.SetSheetName("Sheet1", sheet)

	headerRow := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, err
	}

	for i := range records {
		rec := &records[i]
		row := []interface{}{
			rec.PeriodStart,
			rec.PeriodEnd,
			rec.ProductType,
			rec.PaymentMethod,
			string(rec.PaymentCategory),
			rec.TranCount,
			rec.VendCount,
			rec.Amount,
			rec.TwoTierPricing,
			rec.LoyaltyDiscount,
			rec.PurchaseDiscount,
			rec.FreeProductDiscount,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to render XLSX export", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("vending-export-%s.xlsx", time.Now().Format("2006-01-02")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf.Bytes(),
	}, nil
}

func (s *exportService) load(userID uint, periodStart, periodEnd string) ([]model.SalesRecord, error) {
	return s.salesRepo.FindByUserID(userID, repository.SalesFilter{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	})
}
