package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gemini2api/internal/config"
	"gemini2api/internal/core"
)

func TestAuth_OpenWhenNoKeysConfigured(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/list-models", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("API should be open without configured keys, got %d", w.Code)
	}
}

func TestAuth_MissingKeyRejected(t *testing.T) {
	server := newTestServer(t, func(cfg *config.ServerConfig) {
		cfg.ClientAPIKeys = []string{"client-secret"}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/list-models", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without credentials, got %d", w.Code)
	}
}

func TestAuth_AcceptsAPIKeyHeader(t *testing.T) {
	server := newTestServer(t, func(cfg *config.ServerConfig) {
		cfg.ClientAPIKeys = []string{"client-secret"}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/list-models", nil)
	req.Header.Set(core.HeaderXAPIKey, "client-secret")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with valid x-api-key, got %d", w.Code)
	}
}

func TestAuth_AcceptsBearerToken(t *testing.T) {
	server := newTestServer(t, func(cfg *config.ServerConfig) {
		cfg.ClientAPIKeys = []string{"client-secret"}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/list-models", nil)
	req.Header.Set(core.HeaderAuthorization, core.AuthBearerPrefix+"client-secret")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with valid Bearer token, got %d", w.Code)
	}
}

func TestAuth_WrongKeyForbidden(t *testing.T) {
	server := newTestServer(t, func(cfg *config.ServerConfig) {
		cfg.ClientAPIKeys = []string{"client-secret"}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/list-models", nil)
	req.Header.Set(core.HeaderXAPIKey, "wrong-key")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 with wrong key, got %d", w.Code)
	}
}

func TestCORS_PreflightHandled(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected wildcard origin, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Error("Preflight must advertise POST")
	}
}

func TestCORS_HeadersOnAPIResponses(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/list-models", nil)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("API responses must carry CORS headers")
	}
}

func TestRateLimit_BlocksExcessRequests(t *testing.T) {
	server := newTestServer(t, func(cfg *config.ServerConfig) {
		cfg.RateLimit = 2
	})

	var lastCode int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, req)
		lastCode = w.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 after exceeding limit, got %d", lastCode)
	}
}

func TestRateLimit_PerIPIsolation(t *testing.T) {
	server := newTestServer(t, func(cfg *config.ServerConfig) {
		cfg.RateLimit = 1
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("First request should pass, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Different IP must have its own budget, got %d", w.Code)
	}
}

func TestMaxBodySize_OversizedBodyRejected(t *testing.T) {
	server := newTestServer(t)

	oversized := bytes.Repeat([]byte("a"), MaxBodySize+1)
	body := append([]byte(`{"prompt":"`), oversized...)
	body = append(body, []byte(`"}`)...)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(body))
	req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)

	if w.Code == http.StatusOK {
		t.Fatalf("Oversized body must be rejected, got %d", w.Code)
	}
}
