package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ziprates/internal/auth"
	"ziprates/internal/config"
	"ziprates/internal/migrate"
	"ziprates/internal/rates"
	"ziprates/internal/storage"
	"ziprates/internal/ui"
)

// NewMux constructs the HTTP mux: the rates API, dataset endpoints,
// metrics, health probes, swagger, and the web UI. Datasets are loaded
// from the configured CSVs; when that fails, the last persisted snapshot
// is restored so the service can still answer lookups.
func NewMux(cfg config.Config) (*http.ServeMux, error) {
	ctx := context.Background()

	if cfg.AutoMigrate {
		if err := migrate.Up(ctx, cfg.DBDriver, cfg.DBDSN); err != nil {
			log.Printf("auto-migration failed: %v", err)
		}
	}

	st, err := storage.Open(ctx, storage.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
	if err != nil {
		return nil, err
	}

	svc := rates.NewServiceWithStorage(cfg.RatesConfig(), st)
	if _, err := svc.Reload(ctx); err != nil {
		log.Printf("initial dataset load failed: %v", err)
		restored, rerr := svc.RestoreFromStorage(ctx)
		if rerr != nil {
			log.Printf("snapshot restore failed: %v", rerr)
		} else if restored {
			log.Printf("serving from last persisted dataset snapshot")
		}
	}

	authSvc, err := auth.NewService(st)
	if err != nil {
		return nil, err
	}

	// Periodic pool gauges for the pgx backend.
	if reporter, ok := st.(interface{ ReportPoolMetrics() }); ok {
		go func() {
			t := time.NewTicker(15 * time.Second)
			defer t.Stop()
			for range t.C {
				reporter.ReportPoolMetrics()
			}
		}()
	}

	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			log.Printf("readyz: db ping failed: %v", err)
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if svc.Store().Tables() == nil {
			http.Error(w, "datasets not loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("live"))
	})

	RegisterRatesRoutes(mux, svc)
	RegisterRefreshHandler(mux, svc, authSvc)
	RegisterV2Routes(mux, authSvc)
	RegisterSwagger(mux)

	mux.Handle("/ui/", http.StripPrefix("/ui/", ui.Handler()))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/ui/", http.StatusFound)
	})

	return mux, nil
}
