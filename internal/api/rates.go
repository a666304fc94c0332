package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ziprates/internal/export"
	"ziprates/internal/metrics"
	"ziprates/internal/rates"
	"ziprates/pkg/openei"
)

// RegisterRatesRoutes wires the lookup endpoints onto the mux.
func RegisterRatesRoutes(mux *http.ServeMux, svc *rates.Service) {
	mux.HandleFunc("/rates/", handleRates(svc))
	mux.HandleFunc("/utilities/", handleUtilities(svc))
	mux.HandleFunc("/datasets", handleDatasets(svc))
}

// handleRates serves GET /rates/{zip}?kwh=&as_of=&format=json|csv|xlsx.
func handleRates(svc *rates.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		labelsPath := "/rates"
		defer func() {
			metrics.LookupDurationSeconds.WithLabelValues(labelsPath).Observe(time.Since(start).Seconds())
		}()

		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		zipStr := strings.TrimPrefix(r.URL.Path, "/rates/")
		zip, err := rates.ParseZIP(zipStr)
		if err != nil {
			metrics.LookupsTotal.WithLabelValues("bad_request").Inc()
			metrics.RequestErrorsTotal.WithLabelValues(labelsPath, "400").Inc()
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var opts rates.LookupOptions
		if raw := r.URL.Query().Get("kwh"); raw != "" {
			kwh, err := strconv.ParseFloat(raw, 64)
			if err != nil || kwh <= 0 {
				metrics.LookupsTotal.WithLabelValues("bad_request").Inc()
				metrics.RequestErrorsTotal.WithLabelValues(labelsPath, "400").Inc()
				http.Error(w, fmt.Sprintf("invalid kwh %q", raw), http.StatusBadRequest)
				return
			}
			opts.MonthlyKWh = kwh
		}
		if raw := r.URL.Query().Get("as_of"); raw != "" {
			asOf, err := time.Parse("2006-01-02", raw)
			if err != nil {
				metrics.LookupsTotal.WithLabelValues("bad_request").Inc()
				metrics.RequestErrorsTotal.WithLabelValues(labelsPath, "400").Inc()
				http.Error(w, fmt.Sprintf("invalid as_of %q, want YYYY-MM-DD", raw), http.StatusBadRequest)
				return
			}
			opts.AsOf = asOf
		}

		res, err := svc.Lookup(r.Context(), zip, opts)
		if err != nil {
			var nf *rates.NotFoundError
			if errors.As(err, &nf) {
				metrics.LookupsTotal.WithLabelValues("not_found").Inc()
				metrics.RequestErrorsTotal.WithLabelValues(labelsPath, "404").Inc()
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			log.Printf("lookup for ZIP %05d failed: %v", zip, err)
			metrics.LookupsTotal.WithLabelValues("error").Inc()
			metrics.RequestErrorsTotal.WithLabelValues(labelsPath, "500").Inc()
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		metrics.LookupsTotal.WithLabelValues("ok").Inc()

		switch r.URL.Query().Get("format") {
		case "", "json":
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(res); err != nil {
				log.Printf("encode response failed: %v", err)
			}
		case "csv":
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=rates_%05d.csv", zip))
			if err := export.WriteCSV(w, res.Rows); err != nil {
				log.Printf("write csv failed: %v", err)
			}
		case "xlsx":
			data, err := export.BuildXLSX(res)
			if err != nil {
				log.Printf("build xlsx failed: %v", err)
				metrics.RequestErrorsTotal.WithLabelValues(labelsPath, "500").Inc()
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=rates_%05d.xlsx", zip))
			_, _ = w.Write(data)
		default:
			metrics.RequestErrorsTotal.WithLabelValues(labelsPath, "400").Inc()
			http.Error(w, "unknown format, want json, csv, or xlsx", http.StatusBadRequest)
		}
	}
}

// handleUtilities serves GET /utilities/{zip}: the raw mapping rows
// without eligibility filtering or pricing.
func handleUtilities(svc *rates.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		labelsPath := "/utilities"
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		zipStr := strings.TrimPrefix(r.URL.Path, "/utilities/")
		zip, err := rates.ParseZIP(zipStr)
		if err != nil {
			metrics.RequestErrorsTotal.WithLabelValues(labelsPath, "400").Inc()
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		utilities, err := svc.Utilities(zip)
		if err != nil {
			var nf *rates.NotFoundError
			if errors.As(err, &nf) {
				metrics.RequestErrorsTotal.WithLabelValues(labelsPath, "404").Inc()
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			log.Printf("utilities for ZIP %05d failed: %v", zip, err)
			metrics.RequestErrorsTotal.WithLabelValues(labelsPath, "500").Inc()
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			ZIP       string                 `json:"zip"`
			Utilities []openei.UtilityRecord `json:"utilities"`
		}{
			ZIP:       fmt.Sprintf("%05d", zip),
			Utilities: utilities,
		})
	}
}

// handleDatasets serves GET /datasets: provenance of the loaded tables.
func handleDatasets(svc *rates.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Datasets []rates.DatasetInfo `json:"datasets"`
		}{Datasets: svc.Datasets()})
	}
}
