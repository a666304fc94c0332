package rates

import (
	"reflect"
	"testing"
	"time"

	"ziprates/pkg/openei"
)

func date(y int, m time.Month, d int) *time.Time {
	ts := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &ts
}

func candidate(name, sector string, isDefault bool) ResolvedTariff {
	return ResolvedTariff{
		TariffRecord: openei.TariffRecord{
			Name:      name,
			Sector:    sector,
			IsDefault: isDefault,
		},
		UtilityName: "Test Utility",
	}
}

var asOf = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func TestFilterEligible_SectorSubstring(t *testing.T) {
	in := []ResolvedTariff{
		candidate("Plan A", "Residential", true),
		candidate("Plan B", "RESIDENTIAL TOU", true),
		candidate("Plan C", "Commercial", true),
		candidate("Plan D", "", true),
	}

	cfg := DefaultFilterConfig()
	cfg.SpecialProgramTerms = nil // isolate the sector predicate
	out := FilterEligible(in, asOf, cfg)
	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(out))
	}
	if out[0].Name != "Plan A" || out[1].Name != "Plan B" {
		t.Errorf("wrong survivors or order: %v, %v", out[0].Name, out[1].Name)
	}
}

func TestFilterEligible_DefaultOnly(t *testing.T) {
	in := []ResolvedTariff{
		candidate("Default", "Residential", true),
		candidate("Opt-in", "Residential", false),
	}

	out := FilterEligible(in, asOf, DefaultFilterConfig())
	if len(out) != 1 || out[0].Name != "Default" {
		t.Fatalf("expected only the default tariff, got %+v", out)
	}
}

func TestFilterEligible_Temporal(t *testing.T) {
	expired := candidate("Expired", "Residential", true)
	expired.EndDate = date(2024, time.June, 14) // one day before asOf

	endsToday := candidate("EndsToday", "Residential", true)
	endsToday.EndDate = date(2024, time.June, 15)

	openEnded := candidate("OpenEnded", "Residential", true)

	notStarted := candidate("NotStarted", "Residential", true)
	notStarted.StartDate = date(2024, time.July, 1)

	alwaysStarted := candidate("AlwaysStarted", "Residential", true)
	alwaysStarted.EndDate = date(2025, time.January, 1)

	out := FilterEligible(
		[]ResolvedTariff{expired, endsToday, openEnded, notStarted, alwaysStarted},
		asOf, DefaultFilterConfig(),
	)

	names := make([]string, 0, len(out))
	for _, c := range out {
		names = append(names, c.Name)
	}
	want := []string{"EndsToday", "OpenEnded", "AlwaysStarted"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestFilterEligible_CategoryExclusion(t *testing.T) {
	tou := candidate("Residential Time of Use", "Residential", true)
	ev := candidate("Residential EV Plan", "Residential", true)
	ev.Description = "Electric Vehicle charging rate"
	multi := candidate("Residential Three Family", "Residential", true)
	lowIncome := candidate("Residential R-2 Rate", "Residential", true)
	plain := candidate("Residential Service", "Residential", true)

	out := FilterEligible(
		[]ResolvedTariff{tou, ev, multi, lowIncome, plain},
		asOf, DefaultFilterConfig(),
	)
	if len(out) != 1 || out[0].Name != "Residential Service" {
		t.Fatalf("expected only the plain tariff to survive, got %+v", out)
	}
}

func TestFilterEligible_TOUOnlyCandidateYieldsNothing(t *testing.T) {
	in := []ResolvedTariff{candidate("Residential Time of Use", "Residential", true)}

	out := FilterEligible(in, asOf, DefaultFilterConfig())
	if len(out) != 0 {
		t.Fatalf("special-program tariff must be excluded, got %+v", out)
	}
}

func TestFilterEligible_Idempotent(t *testing.T) {
	in := []ResolvedTariff{
		candidate("Residential Service", "Residential", true),
		candidate("Residential Time of Use", "Residential", true),
		candidate("Commercial", "Commercial", true),
		candidate("Opt-in", "Residential", false),
	}
	cfg := DefaultFilterConfig()

	once := FilterEligible(in, asOf, cfg)
	twice := FilterEligible(once, asOf, cfg)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering is not idempotent: %+v vs %+v", once, twice)
	}
}

func TestFilterEligible_ServiceTypeRestriction(t *testing.T) {
	bundled := candidate("Residential Bundled", "Residential", true)
	bundled.ServiceType = openei.ServiceTypeBundled
	delivery := candidate("Residential Delivery", "Residential", true)
	delivery.ServiceType = openei.ServiceTypeDelivery

	cfg := DefaultFilterConfig()
	cfg.ServiceTypes = []string{"Delivery"}

	out := FilterEligible([]ResolvedTariff{bundled, delivery}, asOf, cfg)
	if len(out) != 1 || out[0].ServiceType != openei.ServiceTypeDelivery {
		t.Fatalf("expected only Delivery to survive, got %+v", out)
	}
}
