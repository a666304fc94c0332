package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"ziprates/internal/rates"
)

// WriteTable pretty-prints a lookup result for the terminal.
func WriteTable(w io.Writer, res *rates.LookupResult) error {
	fmt.Fprintf(w, "\nResidential default utility rates for ZIP code %05d (%.0f kWh/month, as of %s):\n\n",
		res.ZIP, res.MonthlyKWh, res.AsOf.Format("2006-01-02"))

	if len(res.Rows) == 0 {
		fmt.Fprintln(w, "No eligible priceable tariffs found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UTILITY\tTARIFF\tSERVICE\tSTART\tEND\tcents/kWh\tFIXED $/mo")
	for _, r := range res.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\n",
			r.UtilityName,
			r.TariffName,
			r.ServiceType,
			fmtDate(r.StartDate),
			fmtDate(r.EndDate),
			r.EffectiveCentsPerKWh,
			r.FixedCharge,
		)
	}
	return tw.Flush()
}
