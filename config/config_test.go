package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validIni = `[time]
endtime = 40
maxdt = 30

[output]
outdir = out

[rainfall]
file = rain.txt

[domain]
nr = 10
nc = 5
dx = 10.0

[parameters]
slope = 0.05
X = 9.4
Y = 0.5
b = 1.6
n = 0.025
ret = 2.0
tau = 8.0
v = 0.4
k = 2e-5
s = 1e-3
`

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "run.ini")
	if err := os.WriteFile(fp, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return fp
}

func TestLoad(t *testing.T) {
	fp := writeTemp(t, validIni)
	cfg, err := Load(fp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EndTime != 2400. {
		t.Errorf("EndTime = %f, want 2400 (40 min in seconds)", cfg.EndTime)
	}
	if cfg.MaxDt != 30. {
		t.Errorf("MaxDt = %f, want 30", cfg.MaxDt)
	}
	if cfg.Domain == nil {
		t.Fatal("expected uniform domain fallback")
	}
	if cfg.Domain.Nr != 10 || cfg.Domain.Nc != 5 {
		t.Errorf("domain dims = %dx%d, want 10x5", cfg.Domain.Nr, cfg.Domain.Nc)
	}
	if cfg.Domain.Dy != cfg.Domain.Dx {
		t.Errorf("dy should default to dx, got %f", cfg.Domain.Dy)
	}
	if cfg.Domain.FD != 4 {
		t.Errorf("fd should default to 4 (south), got %d", cfg.Domain.FD)
	}
	if !filepath.IsAbs(cfg.RainFile) {
		t.Errorf("rain file not resolved against config dir: %s", cfg.RainFile)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing endtime", "[time]\nmaxdt = 30\n[output]\noutdir = out\n[rainfall]\nfile = r.txt\n"},
		{"negative endtime", "[time]\nendtime = -1\nmaxdt = 30\n[output]\noutdir = out\n[rainfall]\nfile = r.txt\n"},
		{"missing outdir", "[time]\nendtime = 40\nmaxdt = 30\n[rainfall]\nfile = r.txt\n"},
		{"missing rainfall", "[time]\nendtime = 40\nmaxdt = 30\n[output]\noutdir = out\n"},
		{"no domain without datafile", "[time]\nendtime = 40\nmaxdt = 30\n[output]\noutdir = out\n[rainfall]\nfile = r.txt\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.body))
			if err == nil {
				t.Fatal("expected error, got none")
			}
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("expected *ConfigurationError, got %T", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}
