package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scheduling.WorkdayStart != "08:00" || cfg.Scheduling.WorkdayEnd != "18:00" {
		t.Errorf("unexpected workday %s-%s", cfg.Scheduling.WorkdayStart, cfg.Scheduling.WorkdayEnd)
	}
	if cfg.Scheduling.DefaultSlotMinutes != 60 {
		t.Errorf("expected 60 minute slots, got %d", cfg.Scheduling.DefaultSlotMinutes)
	}
	if cfg.Scheduling.ReassignPolicy != "first_active" {
		t.Errorf("expected first_active policy, got %s", cfg.Scheduling.ReassignPolicy)
	}
	if !strings.Contains(cfg.Database.DSN, "loc=UTC") {
		t.Errorf("expected DSN to store UTC, got %s", cfg.Database.DSN)
	}
	if cfg.ClinicCache.TTL != 5*time.Minute {
		t.Errorf("expected 5m cache ttl, got %s", cfg.ClinicCache.TTL)
	}
	if cfg.CalendarSync.Enabled {
		t.Error("expected calendar sync disabled by default")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DEFAULT_TIMEZONE", "America/Sao_Paulo")
	t.Setenv("REASSIGN_TARGET_POLICY", "explicit")
	t.Setenv("STORAGE_BACKEND", "MEMORY")
	t.Setenv("CALENDAR_SYNC_ENABLED", "true")
	t.Setenv("CALENDAR_SYNC_WEBHOOK_URL", "http://calendar.local/hook")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.Scheduling.DefaultTimezone != "America/Sao_Paulo" {
		t.Errorf("unexpected timezone %s", cfg.Scheduling.DefaultTimezone)
	}
	if cfg.StorageBackend != "memory" {
		t.Errorf("expected memory backend, got %s", cfg.StorageBackend)
	}
	if !cfg.CalendarSync.Enabled {
		t.Error("expected calendar sync enabled")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad int", "JWT_EXPIRATION_MINUTES", "soon"},
		{"bad bool", "CALENDAR_SYNC_ENABLED", "maybe"},
		{"bad timezone", "DEFAULT_TIMEZONE", "Mars/Olympus"},
		{"bad workday", "DEFAULT_WORKDAY_START", "8am"},
		{"bad policy", "REASSIGN_TARGET_POLICY", "random"},
		{"bad backend", "STORAGE_BACKEND", "sqlite"},
		{"sync without url", "CALENDAR_SYNC_ENABLED", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
