package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.InputExt != ".p7m" || cfg.OutputExt != ".pdf" {
		t.Errorf("default extensions = %q/%q", cfg.InputExt, cfg.OutputExt)
	}
	if cfg.VerifyChain {
		t.Error("chain verification on by default")
	}
	if cfg.Workers != 1 {
		t.Errorf("default workers = %d, want 1", cfg.Workers)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
output_ext = ".xml"
workers = 4
verify_chain = true

[scan]
enabled = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutputExt != ".xml" || cfg.Workers != 4 || !cfg.VerifyChain {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Scan.Enabled || cfg.Scan.ClamdAddress != "localhost:3310" {
		t.Errorf("scan = %+v, want enabled with default address", cfg.Scan)
	}
	// Untouched keys keep defaults.
	if cfg.InputExt != ".p7m" {
		t.Errorf("input_ext = %q", cfg.InputExt)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("Load of missing explicit path succeeded")
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("workers = {"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load of malformed file succeeded")
	}
}

func TestValidateNormalizesExtensions(t *testing.T) {
	cfg := Default()
	cfg.InputExt = "P7M"
	cfg.OutputExt = " .PDF "
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.InputExt != ".p7m" || cfg.OutputExt != ".pdf" {
		t.Errorf("normalized = %q/%q", cfg.InputExt, cfg.OutputExt)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty input ext", func(c *Config) { c.InputExt = "" }},
		{"empty output ext", func(c *Config) { c.OutputExt = "." }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"blank binary", func(c *Config) { c.OpenSSLBinary = "  " }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted invalid config")
			}
		})
	}
}

func TestSampleParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(Sample()), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
	if !strings.Contains(Sample(), "openssl_binary") {
		t.Error("sample missing openssl_binary key")
	}
}
