package rates

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ziprates/internal/storage"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func scenarioConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	iou := writeFixture(t, dir, "iou.csv",
		"zip,eiaid,utility_name,state,ownership,service_type\n"+
			"01749,5029,Massachusetts Electric Co,MA,Investor Owned,Bundled\n"+
			"01749,13998,NSTAR Electric Company,MA,Investor Owned,Delivery\n")
	nonIOU := writeFixture(t, dir, "non_iou.csv",
		"zip,eiaid,utility_name,state,ownership,service_type\n"+
			"01749,6618,Hudson Light & Power,MA,Municipal,Bundled\n"+
			"01749,4089,Concord Municipal Light,MA,Municipal,Bundled\n")
	urdb := writeFixture(t, dir, "usurdb.csv",
		"eiaid,name,description,sector,is_default,startdate,enddate,fixedchargefirstmeter,"+
			"energyratestructure/period0/tier0rate,energyratestructure/period0/tier0max,"+
			"energyratestructure/period0/tier1rate,energyratestructure/period0/tier1max\n"+
			// The priceable residential default: two tiers, 0.12 to 400 kWh then 0.18.
			"5029,Residential,Standard residential service,Residential,true,2014-01-01,,6.0,0.12,400,0.18,\n"+
			// Excluded: special program.
			"5029,Residential Time of Use,TOU pilot,Residential,true,2014-01-01,,6.0,0.10,,,\n"+
			// Excluded: expired before today.
			"6618,Residential Service,Old plan,Residential,true,2000-01-01,2001-01-01,4.0,0.09,,,\n"+
			// Survives filtering but has no priceable tiers.
			"4089,Residential,Placeholder tariff,Residential,true,2014-01-01,,5.0,,,,\n")

	return Config{
		URDBPath:          urdb,
		ZIPMapPaths:       []string{iou, nonIOU},
		DefaultMonthlyKWh: 720,
		Filter:            DefaultFilterConfig(),
	}
}

func TestServiceLookup_Scenario01749(t *testing.T) {
	svc := NewService(scenarioConfig(t))
	ctx := context.Background()

	if _, err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	zip, err := ParseZIP("01749")
	if err != nil {
		t.Fatalf("ParseZIP failed: %v", err)
	}

	res, err := svc.Lookup(ctx, zip, LookupOptions{MonthlyKWh: 720})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if res.Candidates != 4 {
		t.Errorf("expected 4 candidate tariffs, got %d", res.Candidates)
	}
	if res.Eligible != 2 {
		t.Errorf("expected 2 eligible tariffs (one priceable, one placeholder), got %d", res.Eligible)
	}
	if len(res.Unpriceable) != 1 {
		t.Errorf("expected 1 unpriceable tariff, got %v", res.Unpriceable)
	}

	if len(res.Rows) != 1 {
		t.Fatalf("expected exactly 1 output row, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row.UtilityName != "Massachusetts Electric Co" {
		t.Errorf("unexpected utility: %q", row.UtilityName)
	}
	if row.EffectiveCentsPerKWh != 14.67 {
		t.Errorf("expected 14.67 cents/kWh at 720 kWh, got %v", row.EffectiveCentsPerKWh)
	}
	if row.FixedCharge != 6.0 {
		t.Errorf("unexpected fixed charge: %v", row.FixedCharge)
	}
	if row.MinTierCentsPerKWh == nil || *row.MinTierCentsPerKWh != 12.0 {
		t.Errorf("unexpected min tier rate: %v", row.MinTierCentsPerKWh)
	}
}

func TestServiceLookup_UnknownZIP(t *testing.T) {
	svc := NewService(scenarioConfig(t))
	ctx := context.Background()
	if _, err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if _, err := svc.Lookup(ctx, 99999, LookupOptions{}); err == nil {
		t.Fatalf("expected NotFoundError for unmapped ZIP")
	}
}

func TestServiceLookup_BeforeLoadFails(t *testing.T) {
	svc := NewService(Config{DefaultMonthlyKWh: 720, Filter: DefaultFilterConfig()})
	if _, err := svc.Lookup(context.Background(), 1749, LookupOptions{}); err == nil {
		t.Fatalf("expected error before datasets are loaded")
	}
}

func TestServiceLookup_AsOfIsInjectable(t *testing.T) {
	svc := NewService(scenarioConfig(t))
	ctx := context.Background()
	if _, err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	// Back in 2000 the Hudson plan was active and the 5029 plans had not
	// started yet.
	asOf := time.Date(2000, time.June, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.Lookup(ctx, 1749, LookupOptions{MonthlyKWh: 500, AsOf: asOf})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].UtilityName != "Hudson Light & Power" {
		t.Fatalf("expected only the historical Hudson plan, got %+v", res.Rows)
	}
}

func TestServiceLookup_DefaultAsOfKeepsTariffEndingToday(t *testing.T) {
	dir := t.TempDir()
	today := time.Now().UTC().Format("2006-01-02")

	zipmap := writeFixture(t, dir, "zips.csv",
		"zip,eiaid,utility_name,state,ownership,service_type\n"+
			"01749,6618,Hudson Light & Power,MA,Municipal,Bundled\n")
	urdb := writeFixture(t, dir, "usurdb.csv",
		"eiaid,name,sector,is_default,startdate,enddate,fixedchargefirstmeter,"+
			"energyratestructure/period0/tier0rate\n"+
			"6618,Residential,Residential,true,2014-01-01,"+today+",4.0,0.11\n")

	svc := NewService(Config{
		URDBPath:          urdb,
		ZIPMapPaths:       []string{zipmap},
		DefaultMonthlyKWh: 720,
		Filter:            DefaultFilterConfig(),
	})
	ctx := context.Background()
	if _, err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	// Zero AsOf takes the default, which must compare as today's date,
	// not the current instant; end dates are inclusive.
	res, err := svc.Lookup(ctx, 1749, LookupOptions{})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("expected the tariff ending today to stay eligible, got %+v", res.Rows)
	}
	if res.Rows[0].EffectiveCentsPerKWh != 11.0 {
		t.Errorf("expected 11.0 cents/kWh, got %v", res.Rows[0].EffectiveCentsPerKWh)
	}
}

func TestServiceSnapshotRoundTrip(t *testing.T) {
	st := storage.NewMemory()
	cfg := scenarioConfig(t)
	ctx := context.Background()

	loader := NewServiceWithStorage(cfg, st)
	if _, err := loader.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	// A second service with no CSV paths restores from the snapshots.
	restored := NewServiceWithStorage(Config{
		DefaultMonthlyKWh: 720,
		Filter:            DefaultFilterConfig(),
	}, st)
	ok, err := restored.RestoreFromStorage(ctx)
	if err != nil {
		t.Fatalf("RestoreFromStorage failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected snapshots to be present")
	}

	res, err := restored.Lookup(ctx, 1749, LookupOptions{MonthlyKWh: 720})
	if err != nil {
		t.Fatalf("Lookup after restore failed: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].EffectiveCentsPerKWh != 14.67 {
		t.Fatalf("restored tables gave wrong result: %+v", res.Rows)
	}
}

func TestServiceRestore_EmptyStorage(t *testing.T) {
	svc := NewServiceWithStorage(Config{}, storage.NewMemory())
	ok, err := svc.RestoreFromStorage(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no snapshots in fresh storage")
	}
}
