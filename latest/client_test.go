package latest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ltst/latest-block/circuitbreaker"
	"github.com/ltst/latest-block/logging"
)

func testLogger() *logging.Logger {
	return logging.New(logging.ERROR, "[test]")
}

func newTestClient(baseURL string) *Client {
	return New(baseURL, "test-key", 5*time.Second, testLogger())
}

func TestLatestSuccess(t *testing.T) {
	var gotChannelID, gotAPIKey string
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		gotChannelID = r.URL.Query().Get("channelId")
		gotAPIKey = r.URL.Query().Get("apiKey")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"channel": {"title": "My Channel", "subscribers": 42},
			"update": {"text": "Hello", "ts": 1700000000000000}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Latest(context.Background(), "abc123")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if requests != 1 {
		t.Errorf("Expected exactly one request, got %d", requests)
	}
	if gotChannelID != "abc123" {
		t.Errorf("Expected channelId abc123, got %q", gotChannelID)
	}
	if gotAPIKey != "test-key" {
		t.Errorf("Expected apiKey test-key, got %q", gotAPIKey)
	}

	if result.Channel == nil || result.Channel.Title != "My Channel" {
		t.Errorf("Expected channel title My Channel, got %+v", result.Channel)
	}
	if result.Update == nil {
		t.Fatal("Expected update to be present")
	}
	if result.Update.Text == nil || *result.Update.Text != "Hello" {
		t.Errorf("Expected update text Hello, got %+v", result.Update.Text)
	}
	if result.Update.TS != 1700000000000000 {
		t.Errorf("Expected ts 1700000000000000, got %d", result.Update.TS)
	}
	if result.Update.Image != nil {
		t.Errorf("Expected absent image to stay nil, got %v", *result.Update.Image)
	}
}

func TestLatestChannelIDEncoding(t *testing.T) {
	var gotRawQuery string
	var gotChannelID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawQuery = r.URL.RawQuery
		gotChannelID = r.URL.Query().Get("channelId")
		w.Write([]byte(`{"update": null, "channel": null}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	// Identifier with characters that need query encoding; passed through verbatim
	if _, err := client.Latest(context.Background(), "my channel/42&x=y"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotChannelID != "my channel/42&x=y" {
		t.Errorf("Expected decoded channelId to round-trip, got %q", gotChannelID)
	}
	if gotRawQuery == "" {
		t.Error("Expected a non-empty query string")
	}
}

func TestLatestEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"update": null, "channel": null}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Latest(context.Background(), "nosuch")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Update != nil {
		t.Errorf("Expected nil update, got %+v", result.Update)
	}
	if result.Channel != nil {
		t.Errorf("Expected nil channel, got %+v", result.Channel)
	}
}

func TestLatestMissingKeys(t *testing.T) {
	// Response body without update/channel keys at all
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Latest(context.Background(), "nosuch")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Update != nil || result.Channel != nil {
		t.Errorf("Expected nil update and channel, got %+v", result)
	}
}

func TestLatestEmptyChannelID(t *testing.T) {
	client := newTestClient("https://ltst.xyz")
	if _, err := client.Latest(context.Background(), ""); err == nil {
		t.Error("Expected error for empty channel ID, got nil")
	}
}

func TestLatestServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.Latest(context.Background(), "abc123"); err == nil {
		t.Error("Expected error for 500 response, got nil")
	}
}

func TestLatestMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"update": [not json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.Latest(context.Background(), "abc123"); err == nil {
		t.Error("Expected error for malformed JSON, got nil")
	}
}

func TestLatestTransportError(t *testing.T) {
	// Server closed before the request is made
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	if _, err := client.Latest(context.Background(), "abc123"); err == nil {
		t.Error("Expected transport error, got nil")
	}
}

func TestLatestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	for i := 0; i < 5; i++ {
		if _, err := client.Latest(context.Background(), "abc123"); err == nil {
			t.Fatalf("Expected error on call %d, got nil", i)
		}
	}
	if requests != 5 {
		t.Fatalf("Expected 5 upstream requests, got %d", requests)
	}

	// The circuit is open now; no request reaches the upstream
	if _, err := client.Latest(context.Background(), "abc123"); !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if requests != 5 {
		t.Errorf("Expected request count to stay at 5, got %d", requests)
	}
}

func TestLatestContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	if _, err := client.Latest(ctx, "abc123"); err == nil {
		t.Error("Expected error after context cancellation, got nil")
	}
}
