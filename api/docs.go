package api

import (
	"encoding/json"
	"net/http"
)

// NewDocumentationHandler serves the embedded OpenAPI document as JSON
func NewDocumentationHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spec, err := GetSwagger()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(spec)
	})
}
