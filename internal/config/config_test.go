package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "WORKER_COUNT", "MAX_QUEUE_SIZE", "LEVEL_MARKER", "JOB_TTL", "ARCHIVE_ENABLED", "MAX_CONCURRENT_TREES"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8091" {
		t.Errorf("expected port 8091, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.MaxConcurrentTrees != 4 {
		t.Errorf("unexpected pool defaults: %+v", cfg)
	}
	if cfg.LevelMarker != '|' {
		t.Errorf("expected marker '|', got %q", cfg.LevelMarker)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %s", cfg.JobTTL)
	}
	if cfg.ArchiveEnabled {
		t.Error("expected archive disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WORKER_COUNT", "2")
	t.Setenv("MAX_QUEUE_SIZE", "-1")
	t.Setenv("LEVEL_MARKER", "!")
	t.Setenv("JOB_TTL", "90s")
	t.Setenv("ARCHIVE_ENABLED", "true")

	cfg := Load()
	if cfg.WorkerCount != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected non-positive queue size to fall back to 100, got %d", cfg.MaxQueueSize)
	}
	if cfg.LevelMarker != '!' {
		t.Errorf("expected marker '!', got %q", cfg.LevelMarker)
	}
	if cfg.JobTTL != 90*time.Second {
		t.Errorf("expected 90s TTL, got %s", cfg.JobTTL)
	}
	if !cfg.ArchiveEnabled {
		t.Error("expected archive enabled")
	}
}

func TestLoad_MultiCharMarkerFallsBack(t *testing.T) {
	t.Setenv("LEVEL_MARKER", "||")
	if got := Load().LevelMarker; got != '|' {
		t.Errorf("expected fallback '|', got %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{TreeflatAPIKey: "k", LevelMarker: '|'}, false},
		{"missing key", Config{LevelMarker: '|'}, true},
		{"archive without key", Config{TreeflatAPIKey: "k", ArchiveEnabled: true, LevelMarker: '|'}, true},
		{"archive with key", Config{TreeflatAPIKey: "k", ArchiveEnabled: true, ArchiveAPIKey: "a", LevelMarker: '|'}, false},
		{"colon marker", Config{TreeflatAPIKey: "k", LevelMarker: ':'}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
