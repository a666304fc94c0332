package export

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"ziprates/internal/rates"
)

// BuildXLSX renders a lookup result as an XLSX workbook: a summary sheet
// for the request parameters and a rates sheet with one row per tariff.
func BuildXLSX(res *rates.LookupResult) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	ratesSheet := "rates"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(ratesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Residential Default Utility Rates")
	_ = f.SetCellValue(summarySheet, "A3", "ZIP")
	_ = f.SetCellValue(summarySheet, "B3", fmt.Sprintf("%05d", res.ZIP))
	_ = f.SetCellValue(summarySheet, "A4", "As of")
	_ = f.SetCellValue(summarySheet, "B4", res.AsOf.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A5", "Monthly kWh")
	_ = f.SetCellValue(summarySheet, "B5", res.MonthlyKWh)
	_ = f.SetCellValue(summarySheet, "A6", "Candidate tariffs")
	_ = f.SetCellValue(summarySheet, "B6", res.Candidates)
	_ = f.SetCellValue(summarySheet, "A7", "Eligible tariffs")
	_ = f.SetCellValue(summarySheet, "B7", res.Eligible)

	headers := []string{"Utility", "Tariff", "Ownership", "Service", "Start", "End", "cents/kWh", "Fixed $/mo"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ratesSheet, cell, h)
	}
	for i, r := range res.Rows {
		row := i + 2
		_ = f.SetCellValue(ratesSheet, fmt.Sprintf("A%d", row), r.UtilityName)
		_ = f.SetCellValue(ratesSheet, fmt.Sprintf("B%d", row), r.TariffName)
		_ = f.SetCellValue(ratesSheet, fmt.Sprintf("C%d", row), string(r.Ownership))
		_ = f.SetCellValue(ratesSheet, fmt.Sprintf("D%d", row), string(r.ServiceType))
		_ = f.SetCellValue(ratesSheet, fmt.Sprintf("E%d", row), fmtDate(r.StartDate))
		_ = f.SetCellValue(ratesSheet, fmt.Sprintf("F%d", row), fmtDate(r.EndDate))
		_ = f.SetCellValue(ratesSheet, fmt.Sprintf("G%d", row), r.EffectiveCentsPerKWh)
		_ = f.SetCellValue(ratesSheet, fmt.Sprintf("H%d", row), r.FixedCharge)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteXLSXFile writes the workbook to a file.
func WriteXLSXFile(path string, res *rates.LookupResult) error {
	data, err := BuildXLSX(res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
