package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CRASHGATE_AUTH__HMAC_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Primary.Env != "development" {
		t.Errorf("env = %q", cfg.Primary.Env)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Limits.RequestsPerMinute != 60 {
		t.Errorf("requests_per_minute = %d", cfg.Limits.RequestsPerMinute)
	}
	if cfg.Limits.MaxBodyBytes != 50000 {
		t.Errorf("max_body_bytes = %d", cfg.Limits.MaxBodyBytes)
	}
	if cfg.Storage.Backend != BackendREST {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}
	if cfg.Observability == nil || cfg.Observability.Enabled() {
		t.Error("observability should default to disabled, non-nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CRASHGATE_AUTH__HMAC_SECRET", "s3cret")
	t.Setenv("CRASHGATE_PRIMARY__ENV", "production")
	t.Setenv("CRASHGATE_SERVER__PORT", "9090")
	t.Setenv("CRASHGATE_LIMITS__REQUESTS_PER_MINUTE", "5")
	t.Setenv("CRASHGATE_LIMITS__MAX_BODY_BYTES", "1024")
	t.Setenv("CRASHGATE_STORAGE__BACKEND", "postgres")
	t.Setenv("CRASHGATE_DATABASE__URL", "postgres://localhost/crashgate")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Primary.Env != "production" || cfg.Server.Port != "9090" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Limits.RequestsPerMinute != 5 || cfg.Limits.MaxBodyBytes != 1024 {
		t.Errorf("limit overrides not applied: %+v", cfg.Limits)
	}
	if cfg.Storage.Backend != BackendPostgres || cfg.Database.URL == "" {
		t.Errorf("storage overrides not applied: %+v", cfg.Storage)
	}
}

func TestLoad_RequiresHMACSecret(t *testing.T) {
	t.Setenv("CRASHGATE_AUTH__HMAC_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without HMAC secret")
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("CRASHGATE_AUTH__HMAC_SECRET", "s3cret")
	t.Setenv("CRASHGATE_STORAGE__BACKEND", "cassette-tape")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}
