package rates

import (
	"strings"
	"time"
)

// FilterConfig controls the eligibility predicates. The exclusion
// vocabularies encode policy judgment, not algorithmic necessity, so they
// ship as overridable configuration rather than inline literals.
type FilterConfig struct {
	// SectorContains keeps tariffs whose sector field contains this
	// substring, case-insensitively. Upstream labels vary ("Residential",
	// "Residential TOU"), hence substring rather than exact match.
	SectorContains string `yaml:"sector_contains" json:"sector_contains"`

	// ServiceTypes optionally restricts to the listed service types.
	// Empty means no restriction. One historical run of this tool kept
	// Delivery rates only; enabling that again is a config change.
	ServiceTypes []string `yaml:"service_types" json:"service_types,omitempty"`

	// Exclusion vocabularies. A case-insensitive match in either the
	// tariff name or description excludes the tariff.
	MultiUnitTerms       []string `yaml:"multi_unit_terms" json:"multi_unit_terms"`
	SpecialProgramTerms  []string `yaml:"special_program_terms" json:"special_program_terms"`
	IncomeQualifiedTerms []string `yaml:"income_qualified_terms" json:"income_qualified_terms"`
}

// DefaultFilterConfig returns the shipped policy defaults.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		SectorContains: "residential",
		MultiUnitTerms: []string{
			"Two", "Three", "Multi", "Condominium",
		},
		SpecialProgramTerms: []string{
			"Time of Use", "Time-of-Use", "Electric Vehicle", "Storage",
			"Interruptible", "Seasonal",
		},
		IncomeQualifiedTerms: []string{
			"Low Income", "Low-Income", "Discount", "Lifeline", "R-2",
		},
	}
}

// FilterEligible narrows candidates to tariffs that are residential,
// default, active at asOf, and not excluded by category. Predicates are
// conjunctive, the filter is stable, and no tariff is mutated. asOf is an
// explicit parameter so runs are deterministic and testable.
func FilterEligible(candidates []ResolvedTariff, asOf time.Time, cfg FilterConfig) []ResolvedTariff {
	out := make([]ResolvedTariff, 0, len(candidates))
	for _, c := range candidates {
		if !sectorMatches(c.Sector, cfg.SectorContains) {
			continue
		}
		if !c.IsDefault {
			continue
		}
		if !activeAt(c, asOf) {
			continue
		}
		if len(cfg.ServiceTypes) > 0 && !serviceTypeAllowed(string(c.ServiceType), cfg.ServiceTypes) {
			continue
		}
		if matchesAnyTerm(c, cfg.MultiUnitTerms) ||
			matchesAnyTerm(c, cfg.SpecialProgramTerms) ||
			matchesAnyTerm(c, cfg.IncomeQualifiedTerms) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sectorMatches(sector, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(sector), strings.ToLower(substr))
}

func activeAt(c ResolvedTariff, asOf time.Time) bool {
	if c.StartDate != nil && c.StartDate.After(asOf) {
		return false
	}
	if c.EndDate != nil && c.EndDate.Before(asOf) {
		return false
	}
	return true
}

func serviceTypeAllowed(st string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(st, a) {
			return true
		}
	}
	return false
}

// matchesAnyTerm scans name and description independently; a hit in either
// field excludes the tariff.
func matchesAnyTerm(c ResolvedTariff, terms []string) bool {
	name := strings.ToLower(c.Name)
	desc := strings.ToLower(c.Description)
	for _, term := range terms {
		t := strings.ToLower(term)
		if t == "" {
			continue
		}
		if strings.Contains(name, t) || strings.Contains(desc, t) {
			return true
		}
	}
	return false
}
