package api

import (
	"encoding/json"
	"net/http"

	"github.com/ltst/latest-block/logging"
)

// Envelope is the uniform host API response shape. Operation failures
// travel in Errors next to whatever Data is available; callers that treat
// writes as fire-and-forget can ignore both.
type Envelope struct {
	Data   map[string]interface{} `json:"data"`
	Errors []string               `json:"errors,omitempty"`
}

// writeEnvelope writes an Envelope with the given status code
func writeEnvelope(w http.ResponseWriter, logger *logging.Logger, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Warn("Failed to encode response envelope", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// writeData writes a successful envelope
func writeData(w http.ResponseWriter, logger *logging.Logger, data map[string]interface{}) {
	writeEnvelope(w, logger, http.StatusOK, Envelope{Data: data})
}

// writeErrors writes an envelope whose errors field is populated. The
// status stays 200 for store-level failures; the envelope is the error
// channel, matching how the block consumes it.
func writeErrors(w http.ResponseWriter, logger *logging.Logger, status int, errs ...string) {
	writeEnvelope(w, logger, status, Envelope{Errors: errs})
}
