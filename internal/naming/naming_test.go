package naming

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"p7mx/internal/queue"
)

func item(dir, name string) queue.Item {
	return queue.Item{
		FileName:   name,
		SourceDir:  dir,
		SourcePath: filepath.Join(dir, name),
	}
}

func TestResolveSameDirectory(t *testing.T) {
	dir := t.TempDir()
	got, err := Resolve(item(dir, "report.p7m"), "", ".pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(dir, "report.pdf")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestResolveOverrideDirectory(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	got, err := Resolve(item(src, "report.p7m"), dest, ".pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(dest, "report.pdf")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestResolveUppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	got, err := Resolve(item(dir, "REPORT.P7M"), "", ".pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(got) != "REPORT.pdf" {
		t.Errorf("got %s, want REPORT.pdf", filepath.Base(got))
	}
}

func TestResolveMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := Resolve(item(dir, "report.p7m"), filepath.Join(dir, "missing"), ".pdf")
	var pe *PathError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PathError", err)
	}
	if pe.Reason != "does not exist" {
		t.Errorf("reason = %q", pe.Reason)
	}
}

func TestResolveDestinationIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Resolve(item(dir, "report.p7m"), file, ".pdf")
	var pe *PathError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PathError", err)
	}
}

func TestValidateDestinationUnwritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks do not apply")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	err := ValidateDestination(dir)
	var pe *PathError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PathError", err)
	}
}
