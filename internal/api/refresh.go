package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"ziprates/internal/auth"
	"ziprates/internal/rates"
)

// RefreshResponse reports the outcome of a manual dataset refresh.
type RefreshResponse struct {
	Status     string              `json:"status"`
	Error      string              `json:"error,omitempty"`
	DurationMs int64               `json:"duration_ms"`
	Datasets   []rates.DatasetInfo `json:"datasets,omitempty"`
}

// RegisterRefreshHandler wires POST /internal/refresh, which re-reads the
// dataset CSVs and swaps the in-memory tables. Requires datasets:write
// when a token is presented.
func RegisterRefreshHandler(mux *http.ServeMux, svc *rates.Service, authSvc *auth.Service) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		resp := RefreshResponse{Status: "ok"}
		if _, err := svc.Reload(r.Context()); err != nil {
			log.Printf("manual refresh failed: %v", err)
			resp.Status = "error"
			resp.Error = err.Error()
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			resp.Datasets = svc.Datasets()
		}
		resp.DurationMs = time.Since(start).Milliseconds()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	if authSvc != nil {
		mux.Handle("/internal/refresh", authSvc.Middleware(guardRefresh(authSvc, handler)))
		return
	}
	mux.Handle("/internal/refresh", handler)
}

// guardRefresh enforces datasets:write for authenticated requests while
// keeping the endpoint open to unauthenticated in-cluster callers, which
// matches how the scheduled refresh job invokes it.
func guardRefresh(authSvc *auth.Service, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		authSvc.RequirePermission("datasets", "write", next).ServeHTTP(w, r)
	})
}
