package rates

import (
	"errors"
	"testing"

	"ziprates/pkg/openei"
)

func testTables() *Tables {
	utilities := []openei.UtilityRecord{
		{UtilityID: 5029, UtilityName: "Massachusetts Electric Co", ZIP: 1749, State: "MA", Ownership: openei.OwnershipInvestorOwned, ServiceType: openei.ServiceTypeBundled},
		{UtilityID: 13998, UtilityName: "NSTAR Electric Company", ZIP: 1749, State: "MA", Ownership: openei.OwnershipInvestorOwned, ServiceType: openei.ServiceTypeDelivery},
		{UtilityID: 6618, UtilityName: "Hudson Light & Power", ZIP: 1749, State: "MA", Ownership: openei.OwnershipMunicipal, ServiceType: openei.ServiceTypeBundled},
		{UtilityID: 4089, UtilityName: "Concord Municipal Light", ZIP: 1749, State: "MA", Ownership: openei.OwnershipMunicipal, ServiceType: openei.ServiceTypeBundled},
		{UtilityID: 9999, UtilityName: "Elsewhere Power", ZIP: 2134, State: "MA", Ownership: openei.OwnershipCooperative, ServiceType: openei.ServiceTypeBundled},
	}
	tariffs := []openei.TariffRecord{
		{UtilityID: 5029, Name: "Residential", Sector: "Residential", IsDefault: true},
		{UtilityID: 5029, Name: "Residential TOU", Sector: "Residential", IsDefault: false},
		{UtilityID: 6618, Name: "Residential Service", Sector: "Residential", IsDefault: true},
		{UtilityID: 9999, Name: "Elsewhere Residential", Sector: "Residential", IsDefault: true},
		{UtilityID: 7777, Name: "Unmapped Utility Plan", Sector: "Residential", IsDefault: true},
	}
	return BuildTables(utilities, tariffs, nil)
}

func TestResolve_ReturnsTariffsForMappedUtilities(t *testing.T) {
	tables := testTables()

	got, err := tables.Resolve(1749)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// 4 utilities serve the ZIP; two of them have tariffs (3 total).
	if len(got) != 3 {
		t.Fatalf("expected 3 candidate tariffs, got %d", len(got))
	}
	wantIDs := map[int64]bool{5029: true, 6618: true}
	for _, c := range got {
		if !wantIDs[c.UtilityID] {
			t.Errorf("tariff from unexpected utility %d", c.UtilityID)
		}
	}
}

func TestResolve_JoinsUtilityMetadata(t *testing.T) {
	tables := testTables()

	got, err := tables.Resolve(1749)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got[0].UtilityName != "Massachusetts Electric Co" {
		t.Errorf("metadata join missing: %+v", got[0])
	}
	if got[0].Ownership != openei.OwnershipInvestorOwned || got[0].ServiceType != openei.ServiceTypeBundled {
		t.Errorf("ownership/service type not joined: %+v", got[0])
	}
}

func TestResolve_NotFound(t *testing.T) {
	tables := testTables()

	_, err := tables.Resolve(99999)
	if err == nil {
		t.Fatalf("expected NotFoundError")
	}
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	if nfe.ZIP != 99999 {
		t.Errorf("unexpected ZIP in error: %d", nfe.ZIP)
	}
}

func TestUtilitiesForZIP(t *testing.T) {
	tables := testTables()

	got, err := tables.UtilitiesForZIP(1749)
	if err != nil {
		t.Fatalf("UtilitiesForZIP failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 utilities, got %d", len(got))
	}

	if _, err := tables.UtilitiesForZIP(424242); err == nil {
		t.Errorf("expected NotFoundError for unknown ZIP")
	}
}

func TestParseZIP(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"01749", 1749, false},
		{"90210", 90210, false},
		{" 02134 ", 2134, false},
		{"", 0, true},
		{"123456", 0, true},
		{"abcde", 0, true},
		{"-1234", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseZIP(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseZIP(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseZIP(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseZIP(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
