package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "OPEN_BROWSER", "METRICS_ADDR", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wd, _ := os.Getwd()
	if cfg.Port != DefaultPort {
		t.Errorf("expected port %d, got %d", DefaultPort, cfg.Port)
	}
	if cfg.RootDir != wd {
		t.Errorf("expected root %s, got %s", wd, cfg.RootDir)
	}
	if !cfg.OpenBrowser {
		t.Error("expected browser auto-open by default")
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("expected metrics disabled, got %q", cfg.MetricsAddr)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "console" {
		t.Errorf("unexpected log defaults: %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.URL() != "http://localhost:8000/index.html" {
		t.Errorf("unexpected URL %s", cfg.URL())
	}
}

func TestLoadPort(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{name: "explicit", value: "8123", want: 8123},
		{name: "lowest", value: "1", want: 1},
		{name: "highest", value: "65535", want: 65535},
		{name: "not a number", value: "eighty", wantErr: true},
		{name: "zero", value: "0", wantErr: true},
		{name: "too large", value: "70000", wantErr: true},
		{name: "negative", value: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.value)
			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for PORT=%q", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Port != tt.want {
				t.Errorf("expected %d, got %d", tt.want, cfg.Port)
			}
		})
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("OPEN_BROWSER", "false")
	if envBool("OPEN_BROWSER", true) {
		t.Error("expected false")
	}
	t.Setenv("OPEN_BROWSER", "garbage")
	if !envBool("OPEN_BROWSER", true) {
		t.Error("expected fallback on unparsable value")
	}
}
