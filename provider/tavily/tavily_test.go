package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vantagehq/vantage/iox"
	"github.com/vantagehq/vantage/provider"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("empty API key accepted")
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["api_key"] != "tvly-test" || req["query"] != "AI chips" {
			t.Errorf("request = %v", req)
		}
		if req["search_depth"] != "advanced" || req["topic"] != "news" {
			t.Errorf("search params = %v", req)
		}
		if req["max_results"] != float64(5) {
			t.Errorf("max_results = %v", req["max_results"])
		}

		_, _ = w.Write([]byte(`{"results": [
			{"title": "Chips rally", "url": "https://example.com/a", "content": "long content"},
			{"title": "", "url": "", "snippet": "snippet only"}
		]}`))
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "tvly-test", Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(iox.CloseFunc(client))

	results, err := client.Search(context.Background(), "AI chips", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Title != "Chips rally" || results[0].Content != "long content" {
		t.Errorf("result = %+v", results[0])
	}

	// Missing fields fall back to placeholders and the snippet.
	if results[1].Title != "No title" || results[1].URL != "Unknown source" {
		t.Errorf("placeholder mapping = %+v", results[1])
	}
	if results[1].Content != "snippet only" {
		t.Errorf("snippet fallback = %q", results[1].Content)
	}
}

func TestSearch_StatusErrors(t *testing.T) {
	tests := []struct {
		code      int
		retriable bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.code)
		}))

		client, err := New(Config{APIKey: "k", Endpoint: server.URL})
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		_, err = client.Search(context.Background(), "q", 1)

		var statusErr *provider.StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("status %d: err = %v, want StatusError", tt.code, err)
		}
		if statusErr.Code != tt.code || statusErr.Retriable() != tt.retriable {
			t.Errorf("status %d: got code %d retriable %v", tt.code, statusErr.Code, statusErr.Retriable())
		}
		server.Close()
	}
}

func TestSearch_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "k", Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Search(context.Background(), "q", 1); err == nil {
		t.Error("malformed response accepted")
	}
}
