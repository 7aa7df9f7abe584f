package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"TEMPO_LIMITE", "TENTATIVAS_MAXIMAS_RECURSIVAS", "TJSP_BASE_URL",
		"TJSP_INSECURE_TLS", "MONITOR_PORT", "MONITOR_API_KEYS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Portal.Timeout != 180*time.Second {
		t.Errorf("Timeout = %v, want 180s", cfg.Portal.Timeout)
	}
	if cfg.Portal.MaxRetries != 30 {
		t.Errorf("MaxRetries = %d, want 30", cfg.Portal.MaxRetries)
	}
	if cfg.Portal.BaseURL != "https://esaj.tjsp.jus.br" {
		t.Errorf("BaseURL = %q", cfg.Portal.BaseURL)
	}
	if !cfg.Portal.InsecureTLS {
		t.Error("InsecureTLS should default to true")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.APIKeys != nil {
		t.Errorf("APIKeys = %v, want nil", cfg.Auth.APIKeys)
	}
}

func TestLoad_PortalOverrides(t *testing.T) {
	t.Setenv("TEMPO_LIMITE", "45")
	t.Setenv("TENTATIVAS_MAXIMAS_RECURSIVAS", "3")
	t.Setenv("MONITOR_API_KEYS", " a, b ,,c ")

	cfg := Load()

	if cfg.Portal.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Portal.Timeout)
	}
	if cfg.Portal.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Portal.MaxRetries)
	}
	if got := cfg.Auth.APIKeys; len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("APIKeys = %v, want [a b c]", got)
	}
}

func TestEnvSecondsOr(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want time.Duration
	}{
		{"empty", "", time.Minute},
		{"seconds", "10", 10 * time.Second},
		{"duration", "2m", 2 * time.Minute},
		{"garbage", "soon", time.Minute},
		{"zero", "0", time.Minute},
		{"negative", "-5", time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_SECONDS", tt.val)
			if got := envSecondsOr("TEST_SECONDS", time.Minute); got != tt.want {
				t.Errorf("envSecondsOr(%q) = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}
