// Package naming resolves output paths for extracted payloads.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"p7mx/internal/queue"
)

// PathError describes a destination directory that cannot receive output.
// It marks the affected item as failed without aborting the run.
type PathError struct {
	Dir    string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("destination %s: %s", e.Dir, e.Reason)
}

// Resolve computes the output path for an item: the source base name with
// its extension replaced by outExt, placed in overrideDir when non-empty or
// the item's own source directory otherwise. The directory must already
// exist and be writable; Resolve never creates it.
func Resolve(item queue.Item, overrideDir, outExt string) (string, error) {
	dir := item.SourceDir
	if overrideDir != "" {
		dir = overrideDir
	}
	if err := ValidateDestination(dir); err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(item.FileName, filepath.Ext(item.FileName))
	return filepath.Join(dir, stem+outExt), nil
}

// ValidateDestination checks that dir exists, is a directory, and is
// writable by the current process.
func ValidateDestination(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &PathError{Dir: dir, Reason: "does not exist"}
		}
		return &PathError{Dir: dir, Reason: err.Error()}
	}
	if !info.IsDir() {
		return &PathError{Dir: dir, Reason: "not a directory"}
	}
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return &PathError{Dir: dir, Reason: "not writable"}
	}
	return nil
}
