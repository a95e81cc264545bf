package handlers

import (
	"log"
	"net/http"

	"github.com/ltst/latest-block/api"
	"github.com/ltst/latest-block/block"
	"github.com/ltst/latest-block/config"
	"github.com/ltst/latest-block/entitystore"
	"github.com/ltst/latest-block/latest"
	"github.com/ltst/latest-block/live"
	"github.com/ltst/latest-block/logging"
	"github.com/ltst/latest-block/ui"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds all the dependencies needed by the handlers
type Dependencies struct {
	Fetcher latest.Interface
	Store   entitystore.Interface
	Block   *block.Block
	Logger  *logging.Logger
}

// SetupRoutes configures all HTTP routes and handlers
func SetupRoutes(cfg *config.Config, deps Dependencies) http.Handler {
	handler := http.NewServeMux()

	handler.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Printf("Error writing health response: %v", err)
		}
	})

	// Prometheus metrics endpoint
	handler.Handle("/metrics", promhttp.Handler())

	// JSON API, validated against the embedded OpenAPI document
	apiMux := http.NewServeMux()
	latestHandler := api.NewLatestHandler(deps.Fetcher, deps.Logger)
	apiMux.Handle("/api/latest", latestHandler)

	entitiesHandler := api.NewEntitiesHandler(deps.Store, deps.Logger)
	apiMux.Handle("/api/entity-types", entitiesHandler)
	apiMux.Handle("/api/entities", entitiesHandler)
	apiMux.Handle("/api/entities/", entitiesHandler)

	if swagger, err := api.GetSwagger(); err != nil {
		log.Printf("Warning: Failed to load OpenAPI document, request validation disabled: %v", err)
		handler.Handle("/api/", apiMux)
	} else {
		// Clear servers so validation matches request paths regardless of host
		swagger.Servers = nil
		handler.Handle("/api/", oapimiddleware.OapiRequestValidator(swagger)(apiMux))
	}

	// OpenAPI document endpoint, outside the validator
	handler.Handle("/api/openapi.json", api.NewDocumentationHandler())

	// Websocket endpoint driving the live block
	handler.Handle("/ws", live.NewHandler(deps.Block, deps.Logger))

	// No-JS fallbacks for the block form and reset link
	handler.HandleFunc("/block/submit", CreateSubmitHandler(deps.Block))
	handler.HandleFunc("/block/reset", CreateResetHandler(deps.Block))

	// Embedded static assets
	handler.Handle("/static/", ui.Handler("/static/"))

	// Block page
	handler.HandleFunc("/", CreatePageHandler(deps.Block, deps.Logger))

	return handler
}
