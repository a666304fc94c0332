package rates

import (
	"sort"

	"ziprates/pkg/openei"
)

// allocationTolerance is the point at which remaining usage counts as fully
// allocated across tiers.
const allocationTolerance = 1e-6

// EffectiveCentsPerKWh computes the blended progressive-tier price of a
// tariff at the given monthly usage: each tier bills the energy that falls
// inside its band, and the result is the usage-weighted average price in
// cents per kWh, (cost / kWh) * 100.
//
// It fails softly: ok is false when monthlyKWh is not positive, when the
// tariff has no usable tiers, or when no tier ends up billing any energy.
// A returned price of zero can only mean an actual zero-cost tariff.
func EffectiveCentsPerKWh(t openei.TariffRecord, monthlyKWh float64) (float64, bool) {
	if monthlyKWh <= 0 || len(t.Tiers) == 0 {
		return 0, false
	}

	tiers := orderedTiers(t)

	remaining := monthlyKWh
	cost := 0.0
	prevUpper := 0.0
	billed := false

	for _, tier := range tiers {
		if remaining <= allocationTolerance {
			break
		}

		// Non-priced placeholder rows advance the band boundary but
		// never bill.
		if tier.Rate == nil || *tier.Rate <= 0 {
			if bounded(tier) {
				prevUpper = *tier.MaxKWh
			}
			continue
		}

		capacity := remaining
		if bounded(tier) {
			capacity = *tier.MaxKWh - prevUpper
			if capacity < 0 {
				capacity = 0
			}
		}

		energy := remaining
		if capacity < energy {
			energy = capacity
		}
		if energy > 0 {
			cost += energy * *tier.Rate
			remaining -= energy
			billed = true
		}
		if bounded(tier) {
			prevUpper = *tier.MaxKWh
		}
	}

	if !billed {
		return 0, false
	}
	return (cost / monthlyKWh) * 100, true
}

// MinTierCentsPerKWh returns the cheapest priced tier in cents per kWh.
// It is a simpler derived statistic than the blended price and is exposed
// alongside it, never instead of it.
func MinTierCentsPerKWh(t openei.TariffRecord) (float64, bool) {
	found := false
	min := 0.0
	for _, tier := range t.Tiers {
		if tier.Rate == nil || *tier.Rate <= 0 {
			continue
		}
		if !found || *tier.Rate < min {
			min = *tier.Rate
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return min * 100, true
}

func bounded(tier openei.TierRate) bool {
	return tier.MaxKWh != nil && *tier.MaxKWh > 0
}

// orderedTiers returns the tariff's tiers sorted by tier index without
// touching the record's own slice.
func orderedTiers(t openei.TariffRecord) []openei.TierRate {
	if sort.SliceIsSorted(t.Tiers, func(i, j int) bool { return t.Tiers[i].Index < t.Tiers[j].Index }) {
		return t.Tiers
	}
	tiers := make([]openei.TierRate, len(t.Tiers))
	copy(tiers, t.Tiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Index < tiers[j].Index })
	return tiers
}
