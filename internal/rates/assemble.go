package rates

import (
	"math"
	"sort"
	"time"

	"ziprates/pkg/openei"
)

// ResultRow is one priced, eligible tariff projected into output fields.
type ResultRow struct {
	UtilityName          string             `json:"utility_name"`
	TariffName           string             `json:"tariff_name"`
	Ownership            openei.Ownership   `json:"ownership,omitempty"`
	ServiceType          openei.ServiceType `json:"service_type,omitempty"`
	StartDate            *time.Time         `json:"start_date,omitempty"`
	EndDate              *time.Time         `json:"end_date,omitempty"`
	FixedCharge          float64            `json:"fixed_charge"`
	EffectiveCentsPerKWh float64            `json:"effective_cents_per_kwh"`
	MinTierCentsPerKWh   *float64           `json:"min_tier_cents_per_kwh,omitempty"`
}

// Assemble prices each eligible tariff at monthlyKWh and projects the
// priceable ones into result rows, dropping tariffs the pricing engine
// cannot price. Dropped tariff names are returned so callers can log them.
// Rows are sorted by utility name, then effective price ascending, so
// output is deterministic.
func Assemble(eligible []ResolvedTariff, monthlyKWh float64) (rows []ResultRow, unpriceable []string) {
	for _, c := range eligible {
		cents, ok := EffectiveCentsPerKWh(c.TariffRecord, monthlyKWh)
		if !ok {
			unpriceable = append(unpriceable, c.Name)
			continue
		}
		row := ResultRow{
			UtilityName:          c.UtilityName,
			TariffName:           c.Name,
			Ownership:            c.Ownership,
			ServiceType:          c.ServiceType,
			StartDate:            c.StartDate,
			EndDate:              c.EndDate,
			FixedCharge:          c.FixedCharge,
			EffectiveCentsPerKWh: round2(cents),
		}
		if min, ok := MinTierCentsPerKWh(c.TariffRecord); ok {
			m := round2(min)
			row.MinTierCentsPerKWh = &m
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].UtilityName != rows[j].UtilityName {
			return rows[i].UtilityName < rows[j].UtilityName
		}
		return rows[i].EffectiveCentsPerKWh < rows[j].EffectiveCentsPerKWh
	})
	return rows, unpriceable
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
