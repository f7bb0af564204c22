package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "alexandria" || pass != "secret-pass" {
			t.Errorf("unexpected credentials %q %q %v", user, pass, ok)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"lbrynet is not running","code":"daemon_unavailable","error_code":4101}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL).WithPassword("secret-pass")
	_, err := client.Status(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Code != "daemon_unavailable" || apiErr.ErrorCode != 4101 {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestSearchQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/v1/search" || q.Get("q") != "linux" || q.Get("page") != "2" || q.Get("page_size") != "" {
			t.Errorf("unexpected request %s", r.URL)
		}
		_, _ = w.Write([]byte(`{"query":"linux","page":2,"page_size":20,"items":[{"claim_id":"abc","name":"x","title":"X","amount":1.5}]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/").Search(context.Background(), "linux", 2, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Amount != 1.5 {
		t.Fatalf("unexpected response %+v", resp)
	}
}
