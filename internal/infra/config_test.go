package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresDatabaseURLForPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("FUNDED_POLICY", "")
	t.Setenv("STORE_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port mismatch: got %q want %q", cfg.Port, "8080")
	}
	if cfg.FundedPolicy != "absorb" {
		t.Fatalf("FundedPolicy mismatch: got %q want %q", cfg.FundedPolicy, "absorb")
	}
	if cfg.StoreTimeout != 5*time.Second {
		t.Fatalf("StoreTimeout mismatch: got %s", cfg.StoreTimeout)
	}
	if cfg.BoltPath != "community.db" {
		t.Fatalf("BoltPath mismatch: got %q", cfg.BoltPath)
	}
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"policy", map[string]string{"STORE_DRIVER": "memory", "FUNDED_POLICY": "refund"}},
		{"timeout", map[string]string{"STORE_DRIVER": "memory", "STORE_TIMEOUT_SECONDS": "0"}},
		{"interval", map[string]string{"STORE_DRIVER": "memory", "RECONCILE_INTERVAL_SECONDS": "-1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("FUNDED_POLICY", "")
			t.Setenv("STORE_TIMEOUT_SECONDS", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for %v", tc.env)
			}
		})
	}
}

func TestLoadConfigParsesOriginList(t *testing.T) {
	t.Setenv("STORE_DRIVER", "bolt")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins mismatch: got %#v want %#v", cfg.CORSAllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
}
