package api

import (
	"net/http"

	"ziprates/internal/api/swagger"
)

// RegisterSwagger mounts the API documentation under /swagger/.
func RegisterSwagger(mux *http.ServeMux) {
	mux.Handle("/swagger/", http.StripPrefix("/swagger", swagger.Handler()))
}
