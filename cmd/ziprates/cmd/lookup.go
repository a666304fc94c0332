package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ziprates/internal/export"
	"ziprates/internal/rates"
)

var (
	lookupZIP    string
	urdbPath     string
	iouPath      string
	nonIOUPath   string
	outPath      string
	lookupKWh    float64
	lookupAsOf   string
	lookupFormat string
)

// lookupCmd resolves one ZIP code against the dataset CSVs and prints the
// priced residential default tariffs.
var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Price residential default tariffs for a ZIP code",
	Long: `Resolve a ZIP code to its electric utilities, filter to active
residential default tariffs, and price each at a monthly usage level.

Examples:
  ziprates lookup -z 01749
  ziprates lookup -z 37207 --kwh 900
  ziprates lookup -z 01749 -o rates.csv
  ziprates lookup -z 01749 --as-of 2024-06-15 --format xlsx -o rates.xlsx`,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupZIP, "zip", "z", "", "ZIP code to look up (required)")
	lookupCmd.Flags().StringVarP(&urdbPath, "urdb", "u", "", "URDB tariff CSV (default usurdb.csv)")
	lookupCmd.Flags().StringVarP(&iouPath, "iou", "i", "", "investor-owned utility ZIP mapping CSV")
	lookupCmd.Flags().StringVarP(&nonIOUPath, "non-iou", "n", "", "non-investor-owned utility ZIP mapping CSV")
	lookupCmd.Flags().StringVarP(&outPath, "out", "o", "", "write results to a file instead of stdout")
	lookupCmd.Flags().Float64Var(&lookupKWh, "kwh", 0, "monthly usage level to price at (default 720)")
	lookupCmd.Flags().StringVar(&lookupAsOf, "as-of", "", "activity reference date, YYYY-MM-DD (default today)")
	lookupCmd.Flags().StringVar(&lookupFormat, "format", "", "output format: table, csv, or xlsx")
	_ = lookupCmd.MarkFlagRequired("zip")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if urdbPath != "" {
		cfg.URDBPath = urdbPath
	}
	if iouPath != "" {
		cfg.IOUZIPPath = iouPath
	}
	if nonIOUPath != "" {
		cfg.NonIOUZIPPath = nonIOUPath
	}

	zip, err := rates.ParseZIP(lookupZIP)
	if err != nil {
		return err
	}

	opts := rates.LookupOptions{MonthlyKWh: lookupKWh}
	if lookupAsOf != "" {
		asOf, err := time.Parse("2006-01-02", lookupAsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of %q, want YYYY-MM-DD", lookupAsOf)
		}
		opts.AsOf = asOf
	}

	ctx := context.Background()
	svc := rates.NewService(cfg.RatesConfig())
	if _, err := svc.Reload(ctx); err != nil {
		return err
	}

	res, err := svc.Lookup(ctx, zip, opts)
	if err != nil {
		return err
	}

	format := lookupFormat
	if format == "" {
		format = formatFromPath(outPath)
	}

	switch format {
	case "table":
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			return export.WriteTable(f, res)
		}
		return export.WriteTable(os.Stdout, res)
	case "csv":
		if outPath != "" {
			return export.WriteCSVFile(outPath, res.Rows)
		}
		return export.WriteCSV(os.Stdout, res.Rows)
	case "xlsx":
		if outPath == "" {
			return fmt.Errorf("xlsx output requires -o")
		}
		return export.WriteXLSXFile(outPath, res)
	default:
		return fmt.Errorf("unknown format %q, want table, csv, or xlsx", format)
	}
}

// formatFromPath infers the output format from the -o extension; bare
// stdout defaults to the table view.
func formatFromPath(path string) string {
	switch {
	case path == "":
		return "table"
	case strings.HasSuffix(path, ".xlsx"):
		return "xlsx"
	default:
		return "csv"
	}
}
