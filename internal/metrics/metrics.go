package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ziprates_lookups_total",
			Help: "Total number of ZIP lookups by outcome",
		},
		[]string{"outcome"},
	)

	LookupDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ziprates_lookup_duration_seconds",
			Help:    "Lookup duration in seconds per path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ziprates_request_errors_total",
			Help: "Total number of error responses per path and code",
		},
		[]string{"path", "code"},
	)

	UnpriceableTariffsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ziprates_unpriceable_tariffs_total",
			Help: "Eligible tariffs dropped because no tier was priceable",
		},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ziprates_dataset_rows",
			Help: "Row count of the currently loaded datasets per kind",
		},
		[]string{"kind"},
	)

	DBPoolTotalConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ziprates_db_pool_total_conns",
			Help: "Total number of connections in the DB pool per driver",
		},
		[]string{"driver"},
	)

	DBPoolIdleConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ziprates_db_pool_idle_conns",
			Help: "Idle connections in the DB pool per driver",
		},
		[]string{"driver"},
	)

	DBPoolAcquiredConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ziprates_db_pool_acquired_conns",
			Help: "Currently acquired (in-use) connections per driver",
		},
		[]string{"driver"},
	)

	JobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ziprates_job_duration_seconds",
			Help:    "Background job duration in seconds per job",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	JobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ziprates_job_failures_total",
			Help: "Total number of failed background job runs per job",
		},
		[]string{"job"},
	)

	JobLastSuccessTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ziprates_job_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful run per job",
		},
		[]string{"job"},
	)
)

// UpdateJobMetrics records one background job run.
func UpdateJobMetrics(job string, started time.Time, err error) {
	JobDurationSeconds.WithLabelValues(job).Observe(time.Since(started).Seconds())
	if err != nil {
		JobFailuresTotal.WithLabelValues(job).Inc()
		return
	}
	JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}

// RecordDatasetRows publishes the loaded table sizes.
func RecordDatasetRows(kind string, rows int) {
	DatasetRows.WithLabelValues(kind).Set(float64(rows))
}
