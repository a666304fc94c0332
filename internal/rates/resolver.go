package rates

import (
	"fmt"

	"ziprates/pkg/openei"
)

// NotFoundError reports a ZIP code with no mapped utility. It is fatal to
// the request that carried the ZIP, never to the process.
type NotFoundError struct {
	ZIP int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no utilities found for ZIP code %05d", e.ZIP)
}

// ResolvedTariff is a candidate tariff joined with the display metadata of
// its owning utility. The join is a left join keyed on the EIA ID: a tariff
// is preserved even when the mapping row carries partial metadata.
type ResolvedTariff struct {
	openei.TariffRecord

	UtilityName string             `json:"utility_name"`
	State       string             `json:"state,omitempty"`
	Ownership   openei.Ownership   `json:"ownership,omitempty"`
	ServiceType openei.ServiceType `json:"service_type,omitempty"`
}

// Resolve returns every tariff belonging to a utility that serves the ZIP,
// in a deterministic order: utilities in mapping-file order, each utility's
// tariffs in repository order. It fails with NotFoundError when the ZIP
// Index has no rows for the ZIP.
func (t *Tables) Resolve(zip int) ([]ResolvedTariff, error) {
	utilityRows := t.byZIP[zip]
	if len(utilityRows) == 0 {
		return nil, &NotFoundError{ZIP: zip}
	}

	// Distinct EIA IDs in first-seen order, remembering the mapping row
	// that supplies each utility's display metadata.
	seen := make(map[int64]int, len(utilityRows))
	var order []int64
	for _, idx := range utilityRows {
		id := t.Utilities[idx].UtilityID
		if _, ok := seen[id]; !ok {
			seen[id] = idx
			order = append(order, id)
		}
	}

	var out []ResolvedTariff
	for _, id := range order {
		meta := t.Utilities[seen[id]]
		for _, tariffIdx := range t.byUtility[id] {
			out = append(out, ResolvedTariff{
				TariffRecord: t.Tariffs[tariffIdx],
				UtilityName:  meta.UtilityName,
				State:        meta.State,
				Ownership:    meta.Ownership,
				ServiceType:  meta.ServiceType,
			})
		}
	}
	return out, nil
}

// UtilitiesForZIP returns the mapping rows for a ZIP, one per distinct
// (zip, eiaid) pair, or NotFoundError.
func (t *Tables) UtilitiesForZIP(zip int) ([]openei.UtilityRecord, error) {
	rows := t.byZIP[zip]
	if len(rows) == 0 {
		return nil, &NotFoundError{ZIP: zip}
	}
	out := make([]openei.UtilityRecord, 0, len(rows))
	for _, idx := range rows {
		out = append(out, t.Utilities[idx])
	}
	return out, nil
}
