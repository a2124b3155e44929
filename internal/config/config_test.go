package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.StorageBackend != BackendMemory {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, BackendMemory)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("OpenAIModel = %q, want gpt-4o", cfg.OpenAIModel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("DB_PATH", "/tmp/test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 || cfg.StorageBackend != BackendSQLite || cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	if _, err := Load(); err == nil {
		t.Error("Load() accepted an unknown storage backend")
	}
}

func TestLoad_RejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	if _, err := Load(); err == nil {
		t.Error("Load() accepted an out-of-range port")
	}
}
