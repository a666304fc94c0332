package openei

import "fmt"

// maxTierColumns bounds the energyratestructure tier columns scanned per
// tariff. URDB exports name them by convention
// energyratestructure/period0/tier<N>rate and tier<N>max for N in 0..15.
const maxTierColumns = 16

// LoadTariffs reads the URDB CSV into TariffRecords, flattening the wide
// per-tier rate columns into an ordered tier sequence. The file must carry
// an `eiaid` column; everything else degrades to zero values per record.
func LoadTariffs(path string) ([]TariffRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	eiaIdx, err := t.require("eiaid")
	if err != nil {
		return nil, err
	}

	nameIdx := t.optionalIdx("name")
	descIdx := t.optionalIdx("description")
	sectorIdx := t.optionalIdx("sector")
	defaultIdx := t.optionalIdx("is_default")
	startIdx := t.optionalIdx("startdate")
	endIdx := t.optionalIdx("enddate")
	fixedIdx := t.optionalIdx("fixedchargefirstmeter")

	type tierCols struct{ rate, max int }
	tiers := make([]tierCols, 0, maxTierColumns)
	for n := 0; n < maxTierColumns; n++ {
		tc := tierCols{
			rate: t.optionalIdx(fmt.Sprintf("energyratestructure/period0/tier%drate", n)),
			max:  t.optionalIdx(fmt.Sprintf("energyratestructure/period0/tier%dmax", n)),
		}
		tiers = append(tiers, tc)
	}

	out := make([]TariffRecord, 0, len(t.rows))
	for _, row := range t.rows {
		eia, ok := parseInt64(field(row, eiaIdx))
		if !ok {
			continue
		}

		rec := TariffRecord{
			UtilityID:   eia,
			Name:        field(row, nameIdx),
			Description: field(row, descIdx),
			Sector:      field(row, sectorIdx),
			IsDefault:   parseBool(field(row, defaultIdx)),
			StartDate:   parseDate(field(row, startIdx)),
			EndDate:     parseDate(field(row, endIdx)),
		}
		if v, ok := parseFloat(field(row, fixedIdx)); ok {
			rec.FixedCharge = v
		}

		for n, tc := range tiers {
			var tier TierRate
			tier.Index = n
			present := false
			if v, ok := parseFloat(field(row, tc.rate)); ok {
				tier.Rate = &v
				present = true
			}
			if v, ok := parseFloat(field(row, tc.max)); ok {
				tier.MaxKWh = &v
				present = true
			}
			if present {
				rec.Tiers = append(rec.Tiers, tier)
			}
		}

		out = append(out, rec)
	}
	return out, nil
}
