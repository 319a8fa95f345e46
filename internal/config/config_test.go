package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Session.Lifetime != 7*24*time.Hour {
		t.Errorf("Session.Lifetime: got %v, want %v", cfg.Session.Lifetime, 7*24*time.Hour)
	}
	if cfg.Session.RenewAfter != 0.5 {
		t.Errorf("Session.RenewAfter: got %v, want 0.5", cfg.Session.RenewAfter)
	}
	if cfg.OAuth.ProviderTimeout != 10*time.Second {
		t.Errorf("OAuth.ProviderTimeout: got %v, want 10s", cfg.OAuth.ProviderTimeout)
	}
	if cfg.Database.Name != "folio" {
		t.Errorf("Database.Name: got %q, want %q", cfg.Database.Name, "folio")
	}
}

func TestLoad_MissingSessionSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing SESSION_SECRET")
	}
}

func TestLoad_WeakSessionSecret(t *testing.T) {
	os.Setenv("SESSION_SECRET", "short")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for short SESSION_SECRET")
	}
}

func TestLoad_ProductionSecretLength(t *testing.T) {
	os.Setenv("ENV", "production")
	os.Setenv("SESSION_SECRET", "only-20-characters!!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for 20-char secret in production")
	}
}

func TestLoad_InvalidRenewAfter(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("SESSION_RENEW_AFTER", "1.5")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for renew fraction above 1")
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("SESSION_LIFETIME", "not-a-duration")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.Session.Lifetime != 7*24*time.Hour {
		t.Errorf("Session.Lifetime with invalid value: got %v, want default", cfg.Session.Lifetime)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5433, User: "folio", Password: "pw", Name: "folio", SSLMode: "require",
	}
	want := "host=db port=5433 user=folio password=pw dbname=folio sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN(): got %q, want %q", got, want)
	}
}
