package rates

import (
	"math"
	"testing"

	"ziprates/pkg/openei"
)

func fptr(v float64) *float64 { return &v }

func TestEffectiveCentsPerKWh_SingleUnboundedTier(t *testing.T) {
	tariff := openei.TariffRecord{
		Tiers: []openei.TierRate{{Index: 0, Rate: fptr(0.15)}},
	}

	for _, kwh := range []float64{1, 100, 720, 5000} {
		got, ok := EffectiveCentsPerKWh(tariff, kwh)
		if !ok {
			t.Fatalf("kwh=%v: expected priceable", kwh)
		}
		if got != 15.0 {
			t.Errorf("kwh=%v: expected exactly 15.0 cents, got %v", kwh, got)
		}
	}
}

func TestEffectiveCentsPerKWh_TwoTierBlend(t *testing.T) {
	// tier0: 0.12 $/kWh up to 400 kWh, tier1: 0.18 $/kWh unbounded.
	// At 720 kWh: 400*0.12 + 320*0.18 = 105.6; (105.6/720)*100 = 14.666...
	tariff := openei.TariffRecord{
		Tiers: []openei.TierRate{
			{Index: 0, Rate: fptr(0.12), MaxKWh: fptr(400)},
			{Index: 1, Rate: fptr(0.18)},
		},
	}

	got, ok := EffectiveCentsPerKWh(tariff, 720)
	if !ok {
		t.Fatalf("expected priceable")
	}
	want := 105.6 / 720 * 100
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}
	if round2(got) != 14.67 {
		t.Errorf("expected 14.67 after rounding, got %v", round2(got))
	}
}

func TestEffectiveCentsPerKWh_UsageWithinFirstTier(t *testing.T) {
	tariff := openei.TariffRecord{
		Tiers: []openei.TierRate{
			{Index: 0, Rate: fptr(0.12), MaxKWh: fptr(400)},
			{Index: 1, Rate: fptr(0.18)},
		},
	}

	got, ok := EffectiveCentsPerKWh(tariff, 300)
	if !ok {
		t.Fatalf("expected priceable")
	}
	if got != 12.0 {
		t.Errorf("usage inside tier0 should price at tier0 rate, got %v", got)
	}
}

func TestEffectiveCentsPerKWh_Boundaries(t *testing.T) {
	priced := openei.TariffRecord{Tiers: []openei.TierRate{{Index: 0, Rate: fptr(0.1)}}}

	if _, ok := EffectiveCentsPerKWh(priced, 0); ok {
		t.Errorf("zero usage must be unpriceable")
	}
	if _, ok := EffectiveCentsPerKWh(priced, -10); ok {
		t.Errorf("negative usage must be unpriceable")
	}
	if _, ok := EffectiveCentsPerKWh(openei.TariffRecord{}, 500); ok {
		t.Errorf("tariff with no tiers must be unpriceable")
	}

	zeroRates := openei.TariffRecord{
		Tiers: []openei.TierRate{
			{Index: 0, Rate: fptr(0), MaxKWh: fptr(100)},
			{Index: 1},
		},
	}
	if _, ok := EffectiveCentsPerKWh(zeroRates, 500); ok {
		t.Errorf("all-malformed tiers must yield none, not zero")
	}
}

func TestEffectiveCentsPerKWh_PlaceholderTierAdvancesBound(t *testing.T) {
	// tier0 has no rate but defines a 100 kWh bound; tier1 bills 0.20 up
	// to 300 kWh. At 400 kWh only tier1's 200 kWh band is billable.
	tariff := openei.TariffRecord{
		Tiers: []openei.TierRate{
			{Index: 0, MaxKWh: fptr(100)},
			{Index: 1, Rate: fptr(0.20), MaxKWh: fptr(300)},
		},
	}

	got, ok := EffectiveCentsPerKWh(tariff, 400)
	if !ok {
		t.Fatalf("expected priceable")
	}
	want := (200 * 0.20) / 400 * 100
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestEffectiveCentsPerKWh_MonotonicAndConverges(t *testing.T) {
	tariff := openei.TariffRecord{
		Tiers: []openei.TierRate{
			{Index: 0, Rate: fptr(0.10), MaxKWh: fptr(300)},
			{Index: 1, Rate: fptr(0.15), MaxKWh: fptr(800)},
			{Index: 2, Rate: fptr(0.22)},
		},
	}

	prevCost := 0.0
	prevAvg := 0.0
	for _, kwh := range []float64{100, 300, 500, 800, 2000, 50000, 1e7} {
		avg, ok := EffectiveCentsPerKWh(tariff, kwh)
		if !ok {
			t.Fatalf("kwh=%v: expected priceable", kwh)
		}
		cost := avg / 100 * kwh
		if cost < prevCost {
			t.Errorf("cost decreased with usage: %v -> %v at kwh=%v", prevCost, cost, kwh)
		}
		if avg < prevAvg {
			t.Errorf("average price decreased on an increasing schedule at kwh=%v", kwh)
		}
		prevCost, prevAvg = cost, avg
	}
	if math.Abs(prevAvg-22.0) > 0.01 {
		t.Errorf("average should converge to top tier rate, got %v", prevAvg)
	}
}

func TestEffectiveCentsPerKWh_UnsortedTiers(t *testing.T) {
	tariff := openei.TariffRecord{
		Tiers: []openei.TierRate{
			{Index: 1, Rate: fptr(0.18)},
			{Index: 0, Rate: fptr(0.12), MaxKWh: fptr(400)},
		},
	}

	got, ok := EffectiveCentsPerKWh(tariff, 720)
	if !ok {
		t.Fatalf("expected priceable")
	}
	want := 105.6 / 720 * 100
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("tier order must follow tier index, got %v want %v", got, want)
	}
}

func TestMinTierCentsPerKWh(t *testing.T) {
	tariff := openei.TariffRecord{
		Tiers: []openei.TierRate{
			{Index: 0, Rate: fptr(0.18)},
			{Index: 1, Rate: fptr(0.12)},
			{Index: 2, Rate: fptr(0)},
		},
	}

	got, ok := MinTierCentsPerKWh(tariff)
	if !ok || got != 12.0 {
		t.Errorf("expected 12.0, got %v ok=%v", got, ok)
	}

	if _, ok := MinTierCentsPerKWh(openei.TariffRecord{}); ok {
		t.Errorf("no tiers must yield none")
	}
}
