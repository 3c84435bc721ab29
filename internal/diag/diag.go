// Package diag reports runtime statistics for long batch runs.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// Snapshot captures process-level runtime statistics.
type Snapshot struct {
	PID        int
	Goroutines int
	HeapInUse  uint64
	HeapSys    uint64
	NumGC      uint32
	Elapsed    time.Duration
}

// Take reads the current runtime statistics.
func Take(startTime time.Time) Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Snapshot{
		PID:        os.Getpid(),
		Goroutines: runtime.NumGoroutine(),
		HeapInUse:  m.HeapInuse,
		HeapSys:    m.HeapSys,
		NumGC:      m.NumGC,
		Elapsed:    time.Since(startTime),
	}
}

// Log writes the snapshot through the given logger.
func (s Snapshot) Log(log *slog.Logger) {
	log.Info("diagnostics",
		"pid", s.PID,
		"goroutines", s.Goroutines,
		"heap_in_use", FormatBytes(s.HeapInUse),
		"heap_sys", FormatBytes(s.HeapSys),
		"gc_cycles", s.NumGC,
		"elapsed", s.Elapsed.Round(time.Second))
}

// Monitor logs a snapshot every interval until ctx is cancelled.
func Monitor(ctx context.Context, log *slog.Logger, startTime time.Time, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				Take(startTime).Log(log)
			}
		}
	}()
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
