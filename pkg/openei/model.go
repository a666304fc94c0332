// Package openei loads the two reference datasets this service is built on:
// the EIA ZIP-to-utility mapping CSVs and the OpenEI Utility Rate Database
// (URDB) CSV. It exposes the loaded rows as plain immutable records; all
// filtering and pricing happens in higher layers.
package openei

import "time"

// Ownership classifies who owns a utility in the EIA mapping files.
type Ownership string

const (
	OwnershipInvestorOwned Ownership = "Investor Owned"
	OwnershipCooperative   Ownership = "Cooperative"
	OwnershipMunicipal     Ownership = "Municipal"
)

// ServiceType is the service arrangement reported for a (zip, utility) row.
type ServiceType string

const (
	ServiceTypeBundled  ServiceType = "Bundled"
	ServiceTypeDelivery ServiceType = "Delivery"
	ServiceTypeEnergy   ServiceType = "Energy"
)

// UtilityRecord is one row of the ZIP-to-utility mapping. Several utilities
// may serve one ZIP and one utility (EIA ID) serves many ZIPs.
type UtilityRecord struct {
	UtilityID   int64       `json:"eiaid"`
	UtilityName string      `json:"utility_name"`
	ZIP         int         `json:"zip"`
	State       string      `json:"state"`
	Ownership   Ownership   `json:"ownership"`
	ServiceType ServiceType `json:"service_type"`
}

// TierRate is one usage band of a tariff's energy rate structure. Rate and
// MaxKWh are nil when the source cell is absent; a nil or non-positive
// MaxKWh means the tier is unbounded and absorbs all remaining usage.
type TierRate struct {
	Index  int      `json:"index"`
	Rate   *float64 `json:"rate,omitempty"`
	MaxKWh *float64 `json:"max_kwh,omitempty"`
}

// TariffRecord is one URDB tariff. Records are immutable once loaded;
// derived values (effective prices) are computed elsewhere and never
// written back.
type TariffRecord struct {
	UtilityID   int64      `json:"eiaid"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Sector      string     `json:"sector"`
	IsDefault   bool       `json:"is_default"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	FixedCharge float64    `json:"fixed_charge"`
	Tiers       []TierRate `json:"tiers,omitempty"`
}

// HasUsableTier reports whether any tier carries a positive rate. Tariffs
// without one are unpriceable and must never be reported as costing zero.
func (t TariffRecord) HasUsableTier() bool {
	for _, tier := range t.Tiers {
		if tier.Rate != nil && *tier.Rate > 0 {
			return true
		}
	}
	return false
}
