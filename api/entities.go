package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ltst/latest-block/entitystore"
	"github.com/ltst/latest-block/logging"
)

// EntitiesHandler exposes the entity store as the host message API:
// POST /api/entity-types, POST /api/entities, and GET/PATCH
// /api/entities/{entityId}. Store-level failures are reported in the
// response envelope's errors field, not as HTTP errors.
type EntitiesHandler struct {
	store  entitystore.Interface
	logger *logging.Logger
}

// NewEntitiesHandler creates a new handler for the entity store API
func NewEntitiesHandler(store entitystore.Interface, logger *logging.Logger) *EntitiesHandler {
	return &EntitiesHandler{
		store:  store,
		logger: logger,
	}
}

// ServeHTTP dispatches entity store requests by method and path
func (h *EntitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/api/entity-types" && r.Method == http.MethodPost:
		h.handleCreateEntityType(w, r)
	case path == "/api/entities" && r.Method == http.MethodPost:
		h.handleCreateEntity(w, r)
	case strings.HasPrefix(path, "/api/entities/"):
		entityID := strings.TrimPrefix(path, "/api/entities/")
		if entityID == "" || strings.Contains(entityID, "/") {
			writeErrors(w, h.logger, http.StatusBadRequest, "invalid entity identifier")
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.handleGetEntity(w, r, entityID)
		case http.MethodPatch:
			h.handleUpdateEntity(w, r, entityID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCreateEntityType handles POST /api/entity-types
func (h *EntitiesHandler) handleCreateEntityType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Schema entitystore.Schema `json:"schema"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Schema.Title == "" {
		writeErrors(w, h.logger, http.StatusBadRequest, "schema title is required")
		return
	}

	id, err := h.store.CreateEntityType(r.Context(), req.Schema)
	if err != nil {
		writeErrors(w, h.logger, http.StatusOK, err.Error())
		return
	}

	writeData(w, h.logger, map[string]interface{}{"entityTypeId": id})
}

// handleCreateEntity handles POST /api/entities
func (h *EntitiesHandler) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntityTypeID string                 `json:"entityTypeId"`
		Properties   map[string]interface{} `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.store.CreateEntity(r.Context(), req.EntityTypeID, req.Properties)
	if err != nil {
		writeErrors(w, h.logger, http.StatusOK, err.Error())
		return
	}

	writeData(w, h.logger, map[string]interface{}{"entityId": id})
}

// handleGetEntity handles GET /api/entities/{entityId}
func (h *EntitiesHandler) handleGetEntity(w http.ResponseWriter, r *http.Request, entityID string) {
	entity, err := h.store.GetEntity(r.Context(), entityID)
	if err != nil {
		if errors.Is(err, entitystore.ErrEntityNotFound) {
			writeErrors(w, h.logger, http.StatusNotFound, err.Error())
			return
		}
		writeErrors(w, h.logger, http.StatusOK, err.Error())
		return
	}

	writeData(w, h.logger, map[string]interface{}{
		"entityId":     entity.ID,
		"entityTypeId": entity.EntityTypeID,
		"properties":   entity.Properties,
	})
}

// handleUpdateEntity handles PATCH /api/entities/{entityId}
func (h *EntitiesHandler) handleUpdateEntity(w http.ResponseWriter, r *http.Request, entityID string) {
	var req struct {
		Properties map[string]interface{} `json:"properties"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.UpdateEntity(r.Context(), entityID, req.Properties); err != nil {
		writeErrors(w, h.logger, http.StatusOK, err.Error())
		return
	}

	writeData(w, h.logger, map[string]interface{}{"entityId": entityID})
}
