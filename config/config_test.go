package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("MAP_WIDTH", "")
	cfg := Load()

	if cfg.StorageBackend != BackendMemory {
		t.Errorf("StorageBackend: got %q, want %q", cfg.StorageBackend, BackendMemory)
	}
	if cfg.MapWidth != 800 || cfg.MapHeight != 350 {
		t.Errorf("map size: got %dx%d, want 800x350", cfg.MapWidth, cfg.MapHeight)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("MAX_RETRIES", "7")
	t.Setenv("MAP_HEIGHT", "not-a-number")
	cfg := Load()

	if cfg.StorageBackend != BackendSQLite {
		t.Errorf("StorageBackend: got %q, want %q", cfg.StorageBackend, BackendSQLite)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("MaxRetries: got %d, want 7", cfg.MaxRetries)
	}
	if cfg.MapHeight != 350 {
		t.Errorf("invalid int should fall back, got %d", cfg.MapHeight)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Load()
	cfg.StorageBackend = "mongo"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "rental_db", PostgresSSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=rental_db sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
