package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ltst/latest-block/block"
	"github.com/ltst/latest-block/config"
	"github.com/ltst/latest-block/entitystore"
	"github.com/ltst/latest-block/latest"
	"github.com/ltst/latest-block/logging"
)

func strPtr(s string) *string { return &s }

func testDeps(fetcher latest.Interface, store entitystore.Interface) Dependencies {
	logger := logging.New(logging.ERROR, "[test]")
	blk := block.New(block.Options{
		EntityID: "block-entity-1",
		Strategy: config.StrategyWriteThrough,
		SiteURL:  "https://ltst.xyz",
		Fetcher:  fetcher,
		Store:    store,
		Logger:   logger,
	})
	return Dependencies{
		Fetcher: fetcher,
		Store:   store,
		Block:   blk,
		Logger:  logger,
	}
}

func testRouter(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()
	cfg := config.Default()
	return SetupRoutes(cfg, deps)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, testDeps(&latest.MockClient{}, &entitystore.MockStore{}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Expected body OK, got %q", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter(t, testDeps(&latest.MockClient{}, &entitystore.MockStore{}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("Expected Prometheus metrics output")
	}
}

func TestPageRendersBlock(t *testing.T) {
	router := testRouter(t, testDeps(&latest.MockClient{}, &entitystore.MockStore{}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `class="latest-block"`) {
		t.Error("Expected page to contain the block")
	}
	if !strings.Contains(body, `name="channelId"`) {
		t.Error("Expected page to contain the channel form")
	}
	if !strings.Contains(body, "/static/app.js") {
		t.Error("Expected page to load the client script")
	}
}

func TestPageUnknownPath(t *testing.T) {
	router := testRouter(t, testDeps(&latest.MockClient{}, &entitystore.MockStore{}))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestSubmitFallbackLoadsChannel(t *testing.T) {
	fetcher := &latest.MockClient{
		LatestFunc: func(ctx context.Context, channelID string) (*latest.Result, error) {
			return &latest.Result{
				Channel: &latest.Channel{Title: "My Channel"},
				Update:  &latest.Update{Text: strPtr("Hello"), TS: 1700000000000000},
			}, nil
		},
	}
	deps := testDeps(fetcher, &entitystore.MockStore{})
	router := testRouter(t, deps)

	form := strings.NewReader("channelId=abc123")
	req := httptest.NewRequest(http.MethodPost, "/block/submit", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Expected redirect to /, got %q", loc)
	}

	// Follow the redirect and check the loaded view
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "My Channel") {
		t.Error("Expected loaded view after submit")
	}

	deps.Block.Flush()
}

func TestResetFallback(t *testing.T) {
	fetcher := &latest.MockClient{
		LatestFunc: func(ctx context.Context, channelID string) (*latest.Result, error) {
			return &latest.Result{
				Channel: &latest.Channel{Title: "My Channel"},
				Update:  &latest.Update{Text: strPtr("Hello")},
			}, nil
		},
	}
	deps := testDeps(fetcher, &entitystore.MockStore{})
	router := testRouter(t, deps)

	deps.Block.Submit(context.Background(), "abc123")
	deps.Block.Flush()

	req := httptest.NewRequest(http.MethodPost, "/block/reset", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `name="channelId"`) {
		t.Error("Expected input view after reset")
	}
}

func TestStaticAssets(t *testing.T) {
	router := testRouter(t, testDeps(&latest.MockClient{}, &entitystore.MockStore{}))

	req := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestOpenAPIDocument(t *testing.T) {
	router := testRouter(t, testDeps(&latest.MockClient{}, &entitystore.MockStore{}))

	req := httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/latest") {
		t.Error("Expected OpenAPI document to describe /api/latest")
	}
}

func TestAPIRequestValidation(t *testing.T) {
	router := testRouter(t, testDeps(&latest.MockClient{}, &entitystore.MockStore{}))

	// channelId is required by the OpenAPI document
	req := httptest.NewRequest(http.MethodGet, "/api/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
