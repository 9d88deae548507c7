package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"gemini2api/internal/config"
	"gemini2api/internal/core"
	"gemini2api/internal/storage"
)

// upstreamHandler is a minimal fake of the provider API used by server tests.
func upstreamHandler(t *testing.T) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1beta/models":
			_, _ = w.Write([]byte(`{"models":[
				{"name":"models/gemini-pro","displayName":"Gemini Pro","supportedGenerationMethods":["generateContent"]},
				{"name":"models/text-bison","displayName":"Bison","supportedGenerationMethods":["generateText"]}
			]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1beta/models/gemini-pro:generateContent":
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello"}]},"finishReason":"STOP"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"model not found","status":"NOT_FOUND"}}`))
		}
	}
}

func newTestServer(t *testing.T, opts ...func(*config.ServerConfig)) *Server {
	t.Helper()

	upstream := httptest.NewServer(upstreamHandler(t))
	t.Cleanup(upstream.Close)

	statsPath := filepath.Join(t.TempDir(), "stats.json")
	st := storage.NewFileStorage(statsPath)

	cfg := config.ServerConfig{
		Port:          "0",
		GinMode:       "test",
		GeminiAPIKey:  "test-api-key",
		GeminiBaseURL: upstream.URL,
		RateLimit:     1000,
		HTTPClientSettings: config.HTTPClientSettings{
			MaxIdleConns:        1,
			MaxIdleConnsPerHost: 1,
			MaxConnsPerHost:     1,
			IdleConnTimeout:     time.Second,
			TLSHandshakeTimeout: time.Second,
			RequestTimeout:      5 * time.Second,
		},
		Storage: st,
		Logger:  &core.NopLogger{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	t.Cleanup(func() {
		_ = server.Close()
		_ = st.Close()
	})

	return server
}

func TestRoutes_HealthAndStatsPublicAccess(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("/health should be public, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w = httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("/api/stats should be public, got %d", w.Code)
	}
}

func TestRoutes_FrontendServedAtRoot(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("/ should serve the frontend, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("<html")) {
		t.Error("Frontend response should contain HTML")
	}
}

func TestGenerate_ReturnsUpstreamText(t *testing.T) {
	server := newTestServer(t)

	body := []byte(`{"prompt":"say hello","model":"gemini-pro"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(body))
	req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"output":"Hello"`)) {
		t.Errorf("Expected generated text in response, got %s", w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"model_used":"gemini-pro"`)) {
		t.Errorf("Expected model_used in response, got %s", w.Body.String())
	}
}

func TestGenerate_AutomaticModelSelection(t *testing.T) {
	server := newTestServer(t)

	body := []byte(`{"prompt":"say hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(body))
	req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"model_used":"gemini-pro"`)) {
		t.Errorf("Expected preferred model selected, got %s", w.Body.String())
	}
}

func TestGenerate_EmptyPromptRejected(t *testing.T) {
	server := newTestServer(t)

	for _, body := range []string{`{"prompt":""}`, `{"prompt":"   "}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader([]byte(body)))
		req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Body %s: expected 400, got %d", body, w.Code)
		}
		if !bytes.Contains(w.Body.Bytes(), []byte(`"ok":false`)) {
			t.Errorf("Body %s: expected error shape, got %s", body, w.Body.String())
		}
	}
}

func TestGenerate_MalformedJSONRejected(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader([]byte(`{not json`)))
	req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for malformed JSON, got %d", w.Code)
	}
}

func TestGenerate_UnknownModelSurfacesProviderError(t *testing.T) {
	server := newTestServer(t)

	body := []byte(`{"prompt":"hi","model":"no-such-model"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(body))
	req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected upstream 404 passthrough, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"ok":false`)) {
		t.Errorf("Expected error shape, got %s", w.Body.String())
	}
}

func TestListModels_ReturnsProviderCatalog(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/list-models", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	responseBody := w.Body.Bytes()
	geminiIdx := bytes.Index(responseBody, []byte("models/gemini-pro"))
	bisonIdx := bytes.Index(responseBody, []byte("models/text-bison"))
	if geminiIdx < 0 || bisonIdx < 0 {
		t.Fatalf("Expected both models in response, got %s", responseBody)
	}
	if geminiIdx > bisonIdx {
		t.Error("Model order must match the provider's")
	}
}

func TestServerClose_Idempotent(t *testing.T) {
	server := newTestServer(t)

	if err := server.Close(); err != nil {
		t.Fatalf("First close failed: %v", err)
	}
	if err := server.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}
}

func TestNewServer_RequiresLoggerAndStorage(t *testing.T) {
	_, err := NewServer(config.ServerConfig{})
	if err == nil {
		t.Fatal("Expected error without logger")
	}

	_, err = NewServer(config.ServerConfig{Logger: &core.NopLogger{}})
	if err == nil {
		t.Fatal("Expected error without storage")
	}
}
