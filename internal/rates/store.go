// Package rates is the rate-resolution and tiered-pricing engine: it
// resolves a ZIP code to candidate tariffs, narrows them to eligible
// residential defaults, and computes a blended effective price per tariff.
package rates

import (
	"sync/atomic"
	"time"

	"ziprates/pkg/openei"
)

// DatasetInfo describes one loaded source table.
type DatasetInfo struct {
	Kind       string    `json:"kind"` // "zipmap" or "urdb"
	SourcePath string    `json:"source_path,omitempty"`
	RowCount   int       `json:"row_count"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Tables is one immutable generation of the loaded reference data plus the
// lookup indexes built over it. A Tables value is never mutated after
// BuildTables returns, so it is safe for concurrent readers.
type Tables struct {
	Utilities []openei.UtilityRecord
	Tariffs   []openei.TariffRecord
	Datasets  []DatasetInfo

	byZIP     map[int][]int   // ZIP -> indexes into Utilities
	byUtility map[int64][]int // EIA ID -> indexes into Tariffs
}

// BuildTables indexes the loaded rows. Input slices are owned by the result
// afterwards and must not be modified by the caller.
func BuildTables(utilities []openei.UtilityRecord, tariffs []openei.TariffRecord, datasets []DatasetInfo) *Tables {
	t := &Tables{
		Utilities: utilities,
		Tariffs:   tariffs,
		Datasets:  datasets,
		byZIP:     make(map[int][]int),
		byUtility: make(map[int64][]int),
	}
	for i, u := range utilities {
		t.byZIP[u.ZIP] = append(t.byZIP[u.ZIP], i)
	}
	for i, tr := range tariffs {
		t.byUtility[tr.UtilityID] = append(t.byUtility[tr.UtilityID], i)
	}
	return t
}

// Store holds the current Tables generation behind an atomic pointer.
// Reloads build a fresh Tables and swap it in; readers keep whatever
// generation they grabbed for the duration of one request.
type Store struct {
	current atomic.Pointer[Tables]
}

func NewStore() *Store { return &Store{} }

// Tables returns the current generation, or nil before the first load.
func (s *Store) Tables() *Tables { return s.current.Load() }

// Swap installs a new generation.
func (s *Store) Swap(t *Tables) { s.current.Store(t) }
