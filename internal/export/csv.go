// Package export renders lookup results at the presentation boundary:
// a terminal table, the CSV column set the original reports used, and an
// XLSX workbook.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"ziprates/internal/rates"
)

// CSVHeader is the stable output column set.
var CSVHeader = []string{
	"utility_name",
	"start_date",
	"end_date",
	"effective_cents_per_kwh",
	"fixed_charge",
}

// WriteCSV writes the result rows in the stable column order.
func WriteCSV(w io.Writer, rows []rates.ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.UtilityName,
			fmtDate(r.StartDate),
			fmtDate(r.EndDate),
			fmtFloat(r.EffectiveCentsPerKWh),
			fmtFloat(r.FixedCharge),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the rows to a file, creating or truncating it.
func WriteCSVFile(path string, rows []rates.ResultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, rows)
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
