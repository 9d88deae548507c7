package storage

import (
	"path/filepath"
	"testing"
	"time"

	"gemini2api/internal/core"
)

func TestFileStorage_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	fs := NewFileStorage(path)

	stats := &core.RequestStats{
		TotalRequests:      10,
		SuccessfulRequests: 8,
		FailedRequests:     2,
		TotalResponseTime:  1234,
		LastRequestTime:    time.Now().Truncate(time.Second),
		RequestHistory: []core.RequestRecord{
			{Timestamp: time.Now().Truncate(time.Second), Success: true, ResponseTime: 100, Model: "gemini-pro"},
		},
	}

	if err := fs.SaveStats(stats); err != nil {
		t.Fatalf("SaveStats failed: %v", err)
	}

	loaded, err := fs.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}

	if loaded.TotalRequests != 10 || loaded.SuccessfulRequests != 8 || loaded.FailedRequests != 2 {
		t.Errorf("Counter mismatch: %+v", loaded)
	}
	if len(loaded.RequestHistory) != 1 {
		t.Fatalf("Expected 1 history record, got %d", len(loaded.RequestHistory))
	}
	if loaded.RequestHistory[0].Model != "gemini-pro" {
		t.Errorf("Expected model preserved, got %q", loaded.RequestHistory[0].Model)
	}
}

func TestFileStorage_LoadMissingFileReturnsEmptyStats(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "does-not-exist.json"))

	stats, err := fs.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats on missing file must not error: %v", err)
	}
	if stats.TotalRequests != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
	if stats.RequestHistory == nil {
		t.Error("RequestHistory must be non-nil")
	}
}

func TestFileStorage_DefaultPathWhenEmpty(t *testing.T) {
	fs := NewFileStorage("")
	if fs.filePath != core.StatsFilePath {
		t.Errorf("Expected default path %q, got %q", core.StatsFilePath, fs.filePath)
	}
}

func TestInitStorage_FileFallbackWithoutRedisURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("STATS_FILE", filepath.Join(t.TempDir(), "stats.json"))

	st, err := InitStorage(&core.NopLogger{})
	if err != nil {
		t.Fatalf("InitStorage failed: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if _, ok := st.(*FileStorage); !ok {
		t.Errorf("Expected file storage, got %T", st)
	}
}

func TestInitStorage_UnreachableRedisFallsBackToFile(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1/0")
	t.Setenv("STATS_FILE", filepath.Join(t.TempDir(), "stats.json"))

	st, err := InitStorage(&core.NopLogger{})
	if err != nil {
		t.Fatalf("InitStorage must fall back, not fail: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if _, ok := st.(*FileStorage); !ok {
		t.Errorf("Expected file storage fallback, got %T", st)
	}
}
