// Package openssl wraps invocation of the external openssl binary used to
// unwrap DER-encoded PKCS#7 signed envelopes. The tool is treated as a
// black box: exit status zero means the payload was written, anything else
// is a failure with captured stderr as the diagnostic.
package openssl

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the executable name resolved via PATH when the
// configuration does not name one.
const DefaultBinary = "openssl"

// maxDetailLen caps the stderr excerpt carried across the event boundary.
const maxDetailLen = 300

// ErrNotFound indicates the external binary could not be located on PATH.
var ErrNotFound = fmt.Errorf("%s not found on PATH", DefaultBinary)

// VerifierError is the per-item failure of a single extraction attempt.
// Spawn failures and nonzero exits share this type; Detail distinguishes
// them for display.
type VerifierError struct {
	Detail string
	Err    error
}

func (e *VerifierError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("verifier: %s", e.Detail)
	}
	return fmt.Sprintf("verifier: %v", e.Err)
}

func (e *VerifierError) Unwrap() error { return e.Err }

// Client invokes the extraction utility as a subprocess.
type Client struct {
	// Binary is the executable name or path. Empty means DefaultBinary.
	Binary string
	// VerifyChain enables signer certificate chain validation. Off by
	// default: the tool is used for extraction, not trust evaluation.
	VerifyChain bool
}

// NewClient returns a client for the given binary name ("" for the default).
func NewClient(binary string, verifyChain bool) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{Binary: binary, VerifyChain: verifyChain}
}

// Check verifies the binary can be located. A failed check means no
// extraction run can start.
func (c *Client) Check() error {
	if _, err := exec.LookPath(c.Binary); err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return nil
}

// Version returns the first line of `<binary> version` output.
func (c *Client) Version() (string, error) {
	out, err := exec.Command(c.Binary, "version").Output()
	if err != nil {
		return "", fmt.Errorf("query %s version: %w", c.Binary, err)
	}
	line := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(line, '\n'); idx > 0 {
		line = line[:idx]
	}
	return line, nil
}

// args builds the fixed argument template for unwrapping inPath to outPath.
func (c *Client) args(inPath, outPath string) []string {
	args := []string{"smime", "-verify"}
	if !c.VerifyChain {
		args = append(args, "-noverify")
	}
	return append(args, "-binary", "-inform", "DER", "-in", inPath, "-out", outPath)
}

// Extract runs a single extraction attempt. There is no retry; a failure
// marks the item and the run moves on. The subprocess is killed if ctx is
// cancelled mid-run.
func (c *Client) Extract(ctx context.Context, inPath, outPath string) error {
	cmd := exec.CommandContext(ctx, c.Binary, c.args(inPath, outPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &VerifierError{
			Detail: diagnostic(stderr.String(), err),
			Err:    err,
		}
	}
	return nil
}

// diagnostic condenses captured stderr (or, failing that, the exec error)
// into a short single-line detail string. Stderr is never parsed for
// semantics, only trimmed for display.
func diagnostic(stderr string, err error) string {
	s := strings.TrimSpace(stderr)
	if s == "" {
		return err.Error()
	}
	s = strings.ReplaceAll(s, "\n", "; ")
	if len(s) > maxDetailLen {
		s = s[:maxDetailLen] + "..."
	}
	return s
}
