// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "PARTSADMIN_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/partsadmin.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/partsadmin.db")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.APIURL != "http://localhost:8000/api/v1" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("APITimeout = %v, want 10s", cfg.APITimeout)
	}
	if cfg.UploadTimeout != 120*time.Second {
		t.Errorf("UploadTimeout = %v, want 120s", cfg.UploadTimeout)
	}
	if cfg.MaxUploadBytes() != 50<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", cfg.MaxUploadBytes(), 50<<20)
	}
	if cfg.BackgroundRefreshEnabled() {
		t.Error("BackgroundRefreshEnabled() = true without a service token")
	}
	if cfg.ActivityRetention() != 90*24*time.Hour {
		t.Errorf("ActivityRetention() = %v, want 90 days", cfg.ActivityRetention())
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "PARTSADMIN_SESSION_SECRET", testSecret)
	setEnv(t, "PARTSADMIN_API_URL", "https://catalog.example.com/api/v1/")
	setEnv(t, "PARTSADMIN_API_TIMEOUT", "3s")
	setEnv(t, "PARTSADMIN_SERVICE_TOKEN", "svc")
	setEnv(t, "PARTSADMIN_ENV", "production")
	setEnv(t, "PARTSADMIN_TRUSTED_ORIGINS", "admin.example.com,admin.example.com:8443")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIURL != "https://catalog.example.com/api/v1" {
		t.Errorf("APIURL = %q, trailing slash should be trimmed", cfg.APIURL)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Errorf("APITimeout = %v, want 3s", cfg.APITimeout)
	}
	if !cfg.BackgroundRefreshEnabled() {
		t.Error("BackgroundRefreshEnabled() = false, want true")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true for production")
	}
	if len(cfg.TrustedOrigins) != 2 || cfg.TrustedOrigins[1] != "admin.example.com:8443" {
		t.Errorf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when PARTSADMIN_SESSION_SECRET is not set")
	}
}

func TestLoad_SessionSecretTooShort(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "PARTSADMIN_SESSION_SECRET", tt.secret)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %d-byte secret", len(tt.secret))
			}
		})
	}
}

func TestLoad_WeakSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "PARTSADMIN_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a known default secret")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"relative api url", "PARTSADMIN_API_URL", "/api/v1"},
		{"zero timeout", "PARTSADMIN_API_TIMEOUT", "0s"},
		{"bad schedule", "PARTSADMIN_COUNT_REFRESH_SCHEDULE", "every minute"},
		{"negative retention", "PARTSADMIN_ACTIVITY_RETENTION_DAYS", "-1"},
		{"origin with scheme", "PARTSADMIN_TRUSTED_ORIGINS", "https://admin.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "PARTSADMIN_SESSION_SECRET", testSecret)
			setEnv(t, tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_ServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"localhost", 8080, "localhost:8080"},
		{"0.0.0.0", 3000, "0.0.0.0:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := Config{ServerHost: tt.host, ServerPort: tt.port}
			if got := cfg.ServerAddr(); got != tt.want {
				t.Errorf("ServerAddr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single character class should be low entropy")
	}
	if !hasMinimumEntropy(testSecret) {
		t.Error("lowercase, digits and symbols should pass")
	}
}
