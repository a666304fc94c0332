package openei

// LoadZIPMappings reads one or more ZIP-to-utility mapping CSVs (the EIA
// publishes investor-owned and non-investor-owned utilities as separate
// files) and concatenates their rows. Every file must carry integer `zip`
// and `eiaid` columns; rows whose identifiers do not parse are skipped.
func LoadZIPMappings(paths ...string) ([]UtilityRecord, error) {
	var out []UtilityRecord
	for _, path := range paths {
		recs, err := loadZIPMapping(path)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

func loadZIPMapping(path string) ([]UtilityRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	zipIdx, err := t.require("zip")
	if err != nil {
		return nil, err
	}
	eiaIdx, err := t.require("eiaid")
	if err != nil {
		return nil, err
	}

	nameIdx := t.optionalIdx("utility_name")
	stateIdx := t.optionalIdx("state")
	ownIdx := t.optionalIdx("ownership")
	svcIdx := t.optionalIdx("service_type")

	out := make([]UtilityRecord, 0, len(t.rows))
	for _, row := range t.rows {
		zip, ok := parseInt64(field(row, zipIdx))
		if !ok {
			continue
		}
		eia, ok := parseInt64(field(row, eiaIdx))
		if !ok {
			continue
		}
		out = append(out, UtilityRecord{
			UtilityID:   eia,
			UtilityName: field(row, nameIdx),
			ZIP:         int(zip),
			State:       field(row, stateIdx),
			Ownership:   Ownership(field(row, ownIdx)),
			ServiceType: ServiceType(field(row, svcIdx)),
		})
	}
	return out, nil
}
