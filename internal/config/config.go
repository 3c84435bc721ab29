// Package config loads and validates the p7mx configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Scan configures the optional ClamAV pre-scan of queued inputs.
type Scan struct {
	Enabled      bool   `toml:"enabled"`
	ClamdAddress string `toml:"clamd_address"`
}

// Config holds application configuration. Flag values layer on top of it.
type Config struct {
	// InputExt is the queued file extension, matched case-insensitively.
	InputExt string `toml:"input_ext"`
	// OutputExt replaces the input extension on extracted payloads.
	OutputExt string `toml:"output_ext"`
	// DestinationDir, when non-empty, receives every output file. Empty
	// means each output lands next to its source.
	DestinationDir string `toml:"destination_dir"`
	// Recursive walks directory arguments at any depth.
	Recursive bool `toml:"recursive"`
	// Workers bounds concurrent extractions; 1 keeps the reference
	// sequential behavior.
	Workers int `toml:"workers"`
	// OpenSSLBinary is the extraction tool name or path.
	OpenSSLBinary string `toml:"openssl_binary"`
	// VerifyChain enables signer chain validation in the external tool.
	// Off by default: extraction, not trust evaluation.
	VerifyChain bool `toml:"verify_chain"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	Scan Scan `toml:"scan"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		InputExt:      ".p7m",
		OutputExt:     ".pdf",
		Recursive:     true,
		Workers:       1,
		OpenSSLBinary: "openssl",
		LogLevel:      "info",
		Scan: Scan{
			ClamdAddress: "localhost:3310",
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "p7mx", "config.toml")
}

// Load reads the TOML file at path over the defaults. An empty path falls
// back to DefaultPath; a missing file at that fallback is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate normalizes and checks the configuration.
func (c *Config) Validate() error {
	c.InputExt = normalizeExt(c.InputExt)
	c.OutputExt = normalizeExt(c.OutputExt)

	if c.InputExt == "." {
		return errors.New("input_ext must not be empty")
	}
	if c.OutputExt == "." {
		return errors.New("output_ext must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if strings.TrimSpace(c.OpenSSLBinary) == "" {
		return errors.New("openssl_binary must not be empty")
	}
	return nil
}

// normalizeExt lowercases and ensures a leading dot.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Sample returns the annotated sample configuration file.
func Sample() string {
	return sampleConfig
}
