package ui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerServesStylesheet(t *testing.T) {
	handler := Handler("/static/")

	req := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/css") {
		t.Errorf("Expected text/css content type, got %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc == "" {
		t.Error("Expected Cache-Control header")
	}
	if !strings.Contains(rec.Body.String(), ".latest-block") {
		t.Error("Expected stylesheet body to contain block styles")
	}
}

func TestHandlerServesScript(t *testing.T) {
	handler := Handler("/static/")

	req := httptest.NewRequest(http.MethodGet, "/static/app.js", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "WebSocket") {
		t.Error("Expected script body to open a websocket")
	}
}

func TestHandlerNotFound(t *testing.T) {
	handler := Handler("/static/")

	req := httptest.NewRequest(http.MethodGet, "/static/missing.css", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestHandlerRejectsTraversal(t *testing.T) {
	handler := Handler("/static/")

	req := httptest.NewRequest(http.MethodGet, "/static/../ui.go", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	handler := Handler("/static/")

	req := httptest.NewRequest(http.MethodPost, "/static/app.css", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}
