package api

import (
	"encoding/json"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/ltst/latest-block/latest"
	"github.com/ltst/latest-block/logging"
)

// LatestHandler handles the GET /api/latest endpoint, proxying the
// remote latest-update fetch for the embedded block's host page.
type LatestHandler struct {
	fetcher latest.Interface
	logger  *logging.Logger
}

// NewLatestHandler creates a new handler for the latest update API
func NewLatestHandler(fetcher latest.Interface, logger *logging.Logger) *LatestHandler {
	return &LatestHandler{
		fetcher: fetcher,
		logger:  logger,
	}
}

// ServeHTTP handles the GET /api/latest request
func (h *LatestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var channelID string
	if err := runtime.BindQueryParameter("form", true, true, "channelId", r.URL.Query(), &channelID); err != nil {
		writeErrors(w, h.logger, http.StatusBadRequest, "channelId query parameter is required")
		return
	}
	if channelID == "" {
		writeErrors(w, h.logger, http.StatusBadRequest, "channelId must not be empty")
		return
	}

	result, err := h.fetcher.Latest(r.Context(), channelID)
	if err != nil {
		h.logger.Warn("Latest proxy fetch failed", map[string]interface{}{
			"channelId": channelID,
			"error":     err.Error(),
		})
		writeErrors(w, h.logger, http.StatusBadGateway, "upstream fetch failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Warn("Failed to encode latest response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
