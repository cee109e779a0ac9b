package configapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mfukui/actlog/internal/config"
)

func testConfig(t *testing.T) *config.CollaboratorConfig {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>entry</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	return &config.CollaboratorConfig{
		ListenAddr:  ":0",
		StaticDir:   dir,
		Environment: "development",
		ServiceURL:  "https://platform.example.com",
		ServiceKey:  "anon-key",
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	w := get(t, NewRouter(testConfig(t)), "/api/health")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "OK" {
		t.Errorf("status field = %v, want OK", body["status"])
	}
	if body["environment"] != "development" {
		t.Errorf("environment = %v, want development", body["environment"])
	}
	if _, ok := body["timestamp"].(string); !ok {
		t.Errorf("timestamp missing from %v", body)
	}
}

func TestConfigEndpoint(t *testing.T) {
	w := get(t, NewRouter(testConfig(t)), "/api/config")

	body := decodeBody(t, w)
	if body["serviceUrl"] != "https://platform.example.com" {
		t.Errorf("serviceUrl = %v", body["serviceUrl"])
	}
	if body["serviceKey"] != "anon-key" {
		t.Errorf("serviceKey = %v", body["serviceKey"])
	}
}

func TestConfigEndpointWithoutServiceSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.ServiceURL = ""
	cfg.ServiceKey = ""

	body := decodeBody(t, get(t, NewRouter(cfg), "/api/config"))
	if body["serviceUrl"] != "" || body["serviceKey"] != "" {
		t.Errorf("config body = %v, want empty service settings", body)
	}
}

func TestStaticFileServed(t *testing.T) {
	w := get(t, NewRouter(testConfig(t)), "/app.css")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "body{}") {
		t.Errorf("body = %q, want stylesheet contents", w.Body.String())
	}
}

func TestUnknownPathFallsBackToEntryDocument(t *testing.T) {
	w := get(t, NewRouter(testConfig(t)), "/no/such/page")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "entry") {
		t.Errorf("body = %q, want entry document", w.Body.String())
	}
}

func TestPanicBecomesJSONError(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg).(*chi.Mux)
	router.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("exploded")
	})

	w := get(t, router, "/boom")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "internal server error" {
		t.Errorf("error field = %v", body["error"])
	}
	if body["message"] != "exploded" {
		t.Errorf("message = %v, want panic detail in development", body["message"])
	}
}

func TestPanicDetailSuppressedInProduction(t *testing.T) {
	cfg := testConfig(t)
	cfg.Environment = "production"
	router := NewRouter(cfg).(*chi.Mux)
	router.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("secret detail")
	})

	body := decodeBody(t, get(t, router, "/boom"))
	if body["message"] != "an error occurred" {
		t.Errorf("message = %v, want generic message", body["message"])
	}
}
