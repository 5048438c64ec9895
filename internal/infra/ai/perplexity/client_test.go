package perplexity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brandlens/brandlens/internal/domain/ai"
)

func TestReady(t *testing.T) {
	if err := NewClient("", "sonar").Ready(); !errors.Is(err, ai.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
	if err := NewClient("pplx-key", "sonar").Ready(); err != nil {
		t.Errorf("unexpected error with key set: %v", err)
	}
}

func TestSearch(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Acme tops most plumbing rankings."}},
			},
			"citations": []string{"https://example.com/a", "https://example.com/b"},
		})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("pplx-key", "sonar", srv.URL)
	ans, err := c.Search(context.Background(), "best plumbing services")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if gotAuth != "Bearer pplx-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.Model != "sonar" {
		t.Errorf("model = %q, want sonar", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[1].Content != "best plumbing services" {
		t.Errorf("unexpected messages: %+v", gotReq.Messages)
	}
	if ans.Text != "Acme tops most plumbing rankings." {
		t.Errorf("text = %q", ans.Text)
	}
	if len(ans.Citations) != 2 {
		t.Errorf("citations = %v", ans.Citations)
	}
}

func TestSearchQuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("pplx-key", "sonar", srv.URL)
	_, err := c.Search(context.Background(), "anything")
	if !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("pplx-key", "sonar", srv.URL)
	if _, err := c.Search(context.Background(), "anything"); err == nil {
		t.Error("expected an error for a 502 response")
	}
}

func TestSearchWithoutKey(t *testing.T) {
	c := NewClient("", "sonar")
	if _, err := c.Search(context.Background(), "anything"); !errors.Is(err, ai.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}
