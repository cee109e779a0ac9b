package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestInitializeRejectsIncompleteConfig(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{"missing serviceUrl", http.StatusOK, `{"serviceKey":"anon"}`},
		{"missing serviceKey", http.StatusOK, `{"serviceUrl":"http://svc"}`},
		{"both missing", http.StatusOK, `{}`},
		{"empty fields", http.StatusOK, `{"serviceUrl":"","serviceKey":""}`},
		{"malformed body", http.StatusOK, `{not json`},
		{"server error", http.StatusInternalServerError, ``},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Initialize(context.Background())
			if !errors.Is(err, ErrConfigUnavailable) {
				t.Errorf("Initialize() error = %v, want ErrConfigUnavailable", err)
			}
		})
	}
}

func TestInitializeUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL).Initialize(context.Background())
	if !errors.Is(err, ErrConfigUnavailable) {
		t.Errorf("Initialize() error = %v, want ErrConfigUnavailable", err)
	}
}

func TestInitializeMemoizesClient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/config" {
			t.Errorf("config fetch path = %q, want /api/config", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"serviceUrl":"http://svc.local","serviceKey":"anon"}`))
	}))
	defer srv.Close()

	b := New(srv.URL)
	first, err := b.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	second, err := b.Initialize(context.Background())
	if err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}

	if first != second {
		t.Error("Initialize() returned distinct clients, want memoized handle")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("config endpoint fetched %d times, want 1", got)
	}
}

func TestInitializeRetriesAfterFailure(t *testing.T) {
	healthy := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"serviceUrl":"http://svc.local","serviceKey":"anon"}`))
	}))
	defer srv.Close()

	b := New(srv.URL)
	if _, err := b.Initialize(context.Background()); err == nil {
		t.Fatal("Initialize() error = nil, want failure")
	}

	healthy = true
	if _, err := b.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() after recovery error = %v", err)
	}
}
