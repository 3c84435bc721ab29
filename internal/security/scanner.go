// Package security provides the optional ClamAV pre-scan of queued input
// files. An unreachable daemon disables scanning; it never blocks a run.
package security

import (
	"fmt"
	"io"
	"os"

	clamd "github.com/dutchcoders/go-clamd"
)

// DefaultClamdAddress is the conventional local clamd TCP endpoint.
const DefaultClamdAddress = "localhost:3310"

// Scanner scans input files through a clamd daemon before extraction.
type Scanner struct {
	enabled bool
	client  *clamd.Clamd
}

// ScanResult contains the result of scanning one file.
type ScanResult struct {
	Scanned  bool
	Infected bool
	Threats  []string
}

// NewScanner connects to the clamd daemon at address (empty means
// DefaultClamdAddress). When the daemon is unreachable a disabled scanner
// is returned along with the connection error, so the caller can warn and
// continue without scanning.
func NewScanner(address string) (*Scanner, error) {
	if address == "" {
		address = DefaultClamdAddress
	}

	client := clamd.NewClamd(address)
	if err := client.Ping(); err != nil {
		return &Scanner{}, fmt.Errorf("connect to clamd at %s: %w", address, err)
	}
	return &Scanner{enabled: true, client: client}, nil
}

// Disabled returns a scanner that performs no scans.
func Disabled() *Scanner {
	return &Scanner{}
}

// Enabled reports whether scans will actually run.
func (s *Scanner) Enabled() bool {
	return s != nil && s.enabled
}

// ScanFile scans one file. A disabled scanner returns an unscanned result.
func (s *Scanner) ScanFile(path string) (*ScanResult, error) {
	if !s.Enabled() {
		return &ScanResult{}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s for scanning: %w", path, err)
	}
	defer file.Close()

	return s.scanReader(file)
}

func (s *Scanner) scanReader(r io.Reader) (*ScanResult, error) {
	responses, err := s.client.ScanStream(r, make(chan bool))
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	result := &ScanResult{Scanned: true}
	for resp := range responses {
		if resp.Status == "FOUND" {
			result.Infected = true
			result.Threats = append(result.Threats, resp.Description)
		}
	}
	return result, nil
}
