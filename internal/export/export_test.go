package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"ziprates/internal/rates"
	"ziprates/pkg/openei"
)

func sampleResult() *rates.LookupResult {
	start := time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)
	min := 12.0
	return &rates.LookupResult{
		ZIP:        1749,
		AsOf:       time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		MonthlyKWh: 720,
		Candidates: 4,
		Eligible:   1,
		Rows: []rates.ResultRow{
			{
				UtilityName:          "Hudson Light & Power",
				TariffName:           "Residential",
				Ownership:            openei.OwnershipMunicipal,
				ServiceType:          openei.ServiceTypeBundled,
				StartDate:            &start,
				FixedCharge:          6.0,
				EffectiveCentsPerKWh: 14.67,
				MinTierCentsPerKWh:   &min,
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResult().Rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(CSVHeader, ",") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	want := "Hudson Light & Power,2014-01-01,,14.67,6.00"
	if lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ZIP code 01749") {
		t.Errorf("missing zero-padded ZIP in header:\n%s", out)
	}
	if !strings.Contains(out, "Hudson Light & Power") || !strings.Contains(out, "14.67") {
		t.Errorf("missing row data:\n%s", out)
	}
}

func TestWriteTableEmpty(t *testing.T) {
	res := sampleResult()
	res.Rows = nil
	var buf bytes.Buffer
	if err := WriteTable(&buf, res); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if !strings.Contains(buf.String(), "No eligible priceable tariffs found.") {
		t.Errorf("missing empty-result message:\n%s", buf.String())
	}
}

func TestBuildXLSX(t *testing.T) {
	data, err := BuildXLSX(sampleResult())
	if err != nil {
		t.Fatalf("BuildXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	zip, err := f.GetCellValue("summary", "B3")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if zip != "01749" {
		t.Errorf("summary ZIP = %q, want %q", zip, "01749")
	}
	name, err := f.GetCellValue("rates", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if name != "Hudson Light & Power" {
		t.Errorf("rates A2 = %q, want utility name", name)
	}
}
