// Package scan expands file and directory arguments into candidate input
// paths for the extraction queue.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Options controls discovery.
type Options struct {
	// Extension is the candidate file extension including the leading dot,
	// matched case-insensitively (e.g. ".p7m").
	Extension string
	// Recursive walks directory arguments at any depth. When false only the
	// direct children of a directory argument are considered.
	Recursive bool
}

// Result is the outcome of a discovery pass.
type Result struct {
	// Candidates lists matching regular files in traversal order. The list
	// is not deduplicated; the queue is responsible for that.
	Candidates []string
	// Skipped counts paths that could not be read (missing arguments,
	// unreadable subtrees). Skips are per-path and never abort discovery.
	Skipped int
}

// Discover expands each argument: a regular file with a matching extension
// is a candidate; a directory is walked and every matching regular file in
// it is a candidate. Unreadable subtrees are skipped and counted, other
// arguments continue to be processed. Symlink cycles are not protected
// against.
func Discover(paths []string, opts Options) Result {
	var res Result
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			res.Skipped++
			continue
		}
		if info.Mode().IsRegular() {
			if matches(path, opts.Extension) {
				res.Candidates = append(res.Candidates, path)
			}
			continue
		}
		if info.IsDir() {
			res.walkDir(path, opts)
		}
	}
	return res
}

func (r *Result) walkDir(root string, opts Options) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.Skipped++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !opts.Recursive && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && matches(path, opts.Extension) {
			r.Candidates = append(r.Candidates, path)
		}
		return nil
	})
}

func matches(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}
