package api

import (
	"encoding/json"
	"net/http"
	"time"

	"ziprates/internal/auth"
	"ziprates/internal/storage"
)

type V2Handler struct {
	authSvc *auth.Service
}

// RegisterV2Routes wires the auth endpoints: login and API token creation.
func RegisterV2Routes(mux *http.ServeMux, authSvc *auth.Service) {
	h := &V2Handler{authSvc: authSvc}
	mux.HandleFunc("/api/v2/auth/login", h.Login)
	mux.Handle("/api/v2/auth/tokens", authSvc.Middleware(http.HandlerFunc(h.CreateToken)))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string     `json:"token"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Login exchanges credentials for a session token valid for 24 hours.
func (h *V2Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.authSvc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	expires := time.Now().Add(24 * time.Hour)
	_, raw, err := h.authSvc.CreateToken(r.Context(), u.ID, "session", u.Role, &expires)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{Token: raw, Role: u.Role, ExpiresAt: &expires})
}

type createTokenRequest struct {
	Name      string `json:"name"`
	ExpiresIn string `json:"expires_in"`
}

// CreateToken mints a named API token for the authenticated user,
// inheriting the caller's role.
func (h *V2Handler) CreateToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token, ok := r.Context().Value(auth.TokenContextKey).(*storage.Token)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	expiresAt, err := auth.ParseExpirationDuration(req.ExpiresIn)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, raw, err := h.authSvc.CreateToken(r.Context(), token.UserID, req.Name, token.Role, expiresAt)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tokenResponse{Token: raw, Role: token.Role, ExpiresAt: expiresAt})
}
