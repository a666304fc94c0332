package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"ziprates/internal/metrics"
	"ziprates/internal/storage"
	"ziprates/pkg/openei"
)

// Config controls where the service loads its reference datasets from and
// how lookups behave by default.
type Config struct {
	// URDBPath is the OpenEI URDB CSV.
	URDBPath string
	// ZIPMapPaths are the ZIP-to-utility mapping CSVs (IOU and non-IOU
	// files are concatenated).
	ZIPMapPaths []string
	// DefaultMonthlyKWh is the representative consumption used when a
	// request does not supply one.
	DefaultMonthlyKWh float64
	// Filter holds the eligibility predicates and exclusion vocabularies.
	Filter FilterConfig
}

// Service coordinates dataset loading and ZIP lookups over the shared
// read-only tables.
type Service struct {
	cfg   Config
	store *Store
	st    storage.Storage // may be nil for file-only mode
}

// NewService returns a file-only Service: datasets come from the configured
// CSV paths and nothing is cached across restarts.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg, store: NewStore()}
}

// NewServiceWithStorage returns a Service that additionally snapshots
// parsed datasets to the storage backend, so serve and worker modes can
// restart without the source CSVs present.
func NewServiceWithStorage(cfg Config, st storage.Storage) *Service {
	return &Service{cfg: cfg, store: NewStore(), st: st}
}

// Store exposes the table store, mainly for tests and the worker.
func (s *Service) Store() *Store { return s.store }

// Datasets describes the currently loaded tables.
func (s *Service) Datasets() []DatasetInfo {
	t := s.store.Tables()
	if t == nil {
		return nil
	}
	return t.Datasets
}

// Reload parses the configured CSV files into a fresh Tables generation and
// atomically swaps it in. The previous generation keeps serving concurrent
// readers until they finish. With a storage backend attached, the parsed
// tables are also snapshotted, best effort.
func (s *Service) Reload(ctx context.Context) (*Tables, error) {
	utilities, err := openei.LoadZIPMappings(s.cfg.ZIPMapPaths...)
	if err != nil {
		return nil, fmt.Errorf("load zip mappings: %w", err)
	}
	tariffs, err := openei.LoadTariffs(s.cfg.URDBPath)
	if err != nil {
		return nil, fmt.Errorf("load urdb: %w", err)
	}

	now := time.Now()
	datasets := []DatasetInfo{
		{Kind: "zipmap", SourcePath: strings.Join(s.cfg.ZIPMapPaths, ","), RowCount: len(utilities), LoadedAt: now},
		{Kind: "urdb", SourcePath: s.cfg.URDBPath, RowCount: len(tariffs), LoadedAt: now},
	}

	t := BuildTables(utilities, tariffs, datasets)
	s.store.Swap(t)
	metrics.RecordDatasetRows("zipmap", len(utilities))
	metrics.RecordDatasetRows("urdb", len(tariffs))

	if s.st != nil {
		s.snapshot(ctx, "zipmap", datasets[0], utilities)
		s.snapshot(ctx, "urdb", datasets[1], tariffs)
	}
	return t, nil
}

func (s *Service) snapshot(ctx context.Context, kind string, info DatasetInfo, rows any) {
	payload, err := json.Marshal(rows)
	if err != nil {
		log.Printf("rates: marshal %s snapshot: %v", kind, err)
		return
	}
	err = s.st.SaveDatasetSnapshot(ctx, storage.DatasetSnapshot{
		Kind:       kind,
		SourcePath: info.SourcePath,
		RowCount:   info.RowCount,
		Payload:    payload,
		FetchedAt:  info.LoadedAt,
	})
	if err != nil {
		log.Printf("rates: save %s snapshot: %v", kind, err)
	}
}

// RestoreFromStorage rebuilds the tables from the latest dataset snapshots.
// It returns false without error when either snapshot is missing.
func (s *Service) RestoreFromStorage(ctx context.Context) (bool, error) {
	if s.st == nil {
		return false, nil
	}
	zipSnap, err := s.st.GetDatasetSnapshot(ctx, "zipmap")
	if err != nil || zipSnap == nil {
		return false, err
	}
	urdbSnap, err := s.st.GetDatasetSnapshot(ctx, "urdb")
	if err != nil || urdbSnap == nil {
		return false, err
	}

	var utilities []openei.UtilityRecord
	if err := json.Unmarshal(zipSnap.Payload, &utilities); err != nil {
		return false, fmt.Errorf("decode zipmap snapshot: %w", err)
	}
	var tariffs []openei.TariffRecord
	if err := json.Unmarshal(urdbSnap.Payload, &tariffs); err != nil {
		return false, fmt.Errorf("decode urdb snapshot: %w", err)
	}

	datasets := []DatasetInfo{
		{Kind: "zipmap", SourcePath: zipSnap.SourcePath, RowCount: len(utilities), LoadedAt: zipSnap.FetchedAt},
		{Kind: "urdb", SourcePath: urdbSnap.SourcePath, RowCount: len(tariffs), LoadedAt: urdbSnap.FetchedAt},
	}
	s.store.Swap(BuildTables(utilities, tariffs, datasets))
	return true, nil
}

// LookupOptions are the per-request knobs of a lookup.
type LookupOptions struct {
	// MonthlyKWh is the usage level to price at; zero means the service
	// default.
	MonthlyKWh float64
	// AsOf is the activity reference date; zero means today.
	AsOf time.Time
}

// LookupResult is the output of one ZIP resolution.
type LookupResult struct {
	ZIP         int         `json:"zip"`
	AsOf        time.Time   `json:"as_of"`
	MonthlyKWh  float64     `json:"monthly_kwh"`
	Candidates  int         `json:"candidates"`
	Eligible    int         `json:"eligible"`
	Unpriceable []string    `json:"unpriceable,omitempty"`
	Rows        []ResultRow `json:"rows"`
}

// Lookup runs the full pipeline for one ZIP: resolve candidates, filter to
// eligible residential defaults, price each at the usage level, and
// assemble sorted output rows. Unpriceable tariffs are dropped row by row
// and logged; they never fail the lookup.
func (s *Service) Lookup(ctx context.Context, zip int, opts LookupOptions) (*LookupResult, error) {
	t := s.store.Tables()
	if t == nil {
		return nil, fmt.Errorf("datasets not loaded")
	}

	kwh := opts.MonthlyKWh
	if kwh == 0 {
		kwh = s.cfg.DefaultMonthlyKWh
	}
	if kwh <= 0 {
		return nil, fmt.Errorf("monthly kWh must be positive, got %v", kwh)
	}
	asOf := opts.AsOf
	if asOf.IsZero() {
		// Dataset dates are midnight UTC, so the default must be the
		// current date, not the current instant; otherwise a tariff
		// ending today would already count as expired.
		now := time.Now().UTC()
		asOf = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	candidates, err := t.Resolve(zip)
	if err != nil {
		return nil, err
	}
	eligible := FilterEligible(candidates, asOf, s.cfg.Filter)
	rows, unpriceable := Assemble(eligible, kwh)
	for _, name := range unpriceable {
		log.Printf("rates: tariff %q for ZIP %05d has no priceable tiers, dropped", name, zip)
		metrics.UnpriceableTariffsTotal.Inc()
	}

	return &LookupResult{
		ZIP:         zip,
		AsOf:        asOf,
		MonthlyKWh:  kwh,
		Candidates:  len(candidates),
		Eligible:    len(eligible),
		Unpriceable: unpriceable,
		Rows:        rows,
	}, nil
}

// Utilities returns the mapping rows serving a ZIP.
func (s *Service) Utilities(zip int) ([]openei.UtilityRecord, error) {
	t := s.store.Tables()
	if t == nil {
		return nil, fmt.Errorf("datasets not loaded")
	}
	return t.UtilitiesForZIP(zip)
}

// ParseZIP validates a 5-digit US ZIP code string, tolerating the leading
// zeros that integer round-trips strip.
func ParseZIP(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 || len(trimmed) > 5 {
		return 0, fmt.Errorf("invalid ZIP code %q", s)
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid ZIP code %q", s)
	}
	return v, nil
}
