package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDisabledScannerSkipsScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.p7m")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Disabled().ScanFile(path)
	if err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	if res.Scanned || res.Infected {
		t.Errorf("disabled scanner produced %+v", res)
	}
}

func TestNilScannerEnabled(t *testing.T) {
	var s *Scanner
	if s.Enabled() {
		t.Error("nil scanner reports enabled")
	}
}
