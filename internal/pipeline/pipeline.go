package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"p7mx/internal/naming"
	"p7mx/internal/queue"
	"p7mx/internal/security"
)

// ErrBusy is returned when the queue is mutated, or a second run is
// started, while a run is active.
var ErrBusy = errors.New("extraction is running")

// StartupError prevents a run from beginning. No item is touched.
type StartupError struct {
	Reason string
	Err    error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("cannot start extraction: %s", e.Reason)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Extractor is the external unwrap tool as the pipeline sees it: a
// presence check and a per-file extraction call.
type Extractor interface {
	Check() error
	Extract(ctx context.Context, inPath, outPath string) error
}

// Options configures a Pipeline.
type Options struct {
	// DestinationDir overrides the per-item output directory when
	// non-empty. Validated at run start.
	DestinationDir string
	// OutputExt is the output file extension including the leading dot.
	// Defaults to ".pdf".
	OutputExt string
	// Workers bounds concurrent extractions. Defaults to 1 (sequential,
	// the reference behavior).
	Workers int
	// Scanner optionally pre-scans inputs; infected items are marked as
	// errors without invoking the extractor.
	Scanner *security.Scanner
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// EventBuffer sizes the event channel. Defaults to 64.
	EventBuffer int
}

// Summary aggregates the outcome of one run.
type Summary struct {
	RunID     string
	Total     int
	Done      int
	Failed    int
	Cancelled bool
	Elapsed   time.Duration
}

// Pipeline owns the queue store and runs extractions over it.
type Pipeline struct {
	store   *queue.Store
	ext     Extractor
	opts    Options
	log     *slog.Logger
	events  chan Event
	running atomic.Bool
}

// New builds a pipeline over store using ext for extraction.
func New(store *queue.Store, ext Extractor, opts Options) *Pipeline {
	if opts.OutputExt == "" {
		opts.OutputExt = ".pdf"
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	return &Pipeline{
		store:  store,
		ext:    ext,
		opts:   opts,
		log:    opts.Logger,
		events: make(chan Event, opts.EventBuffer),
	}
}

// Events returns the event stream. The consumer must keep draining it
// while a run is active; sends block once the buffer fills.
func (p *Pipeline) Events() <-chan Event {
	return p.events
}

// Store exposes the underlying queue for read access.
func (p *Pipeline) Store() *queue.Store {
	return p.store
}

// Add queues one path. Returns ErrBusy while a run is active; reports
// false for duplicates.
func (p *Pipeline) Add(path string) (queue.Item, bool, error) {
	if p.running.Load() {
		return queue.Item{}, false, ErrBusy
	}
	item, ok := p.store.Add(path)
	if ok {
		p.emit(Event{Kind: EventItemAdded, Item: item})
	}
	return item, ok, nil
}

// AddPaths queues every path, skipping duplicates, and returns the number
// actually added.
func (p *Pipeline) AddPaths(paths []string) (int, error) {
	added := 0
	for _, path := range paths {
		_, ok, err := p.Add(path)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// Clear empties the queue. Returns ErrBusy while a run is active.
func (p *Pipeline) Clear() error {
	if p.running.Load() {
		return ErrBusy
	}
	p.store.Clear()
	return nil
}

// Run processes every queued item once. Per-item failures mark the item
// and continue; only a failed startup check returns an error. Cancelling
// ctx stops the run between items, leaving unstarted items pending.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	if !p.running.CompareAndSwap(false, true) {
		return Summary{}, ErrBusy
	}
	defer p.running.Store(false)

	runID := uuid.NewString()
	start := time.Now()
	log := p.log.With("run_id", runID)

	if err := p.startupCheck(); err != nil {
		log.Error("extraction refused to start", "reason", err.Reason)
		p.emit(Event{Kind: EventFailedToStart, RunID: runID, Reason: err.Reason})
		return Summary{RunID: runID}, err
	}

	// Snapshot: items added after this point belong to the next run.
	items := p.store.Items()
	total := len(items)
	log.Info("extraction started", "items", total, "workers", p.opts.Workers)

	var (
		doneCount atomic.Int64
		failCount atomic.Int64
		wg        sync.WaitGroup

		// progressMu serializes the completed counter and its event so the
		// reported fraction never decreases.
		progressMu sync.Mutex
		completed  int
	)

	jobs := make(chan int)
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				status := p.processItem(ctx, runID, idx, items[idx], log)
				if status == queue.StatusDone {
					doneCount.Add(1)
				} else {
					failCount.Add(1)
				}

				progressMu.Lock()
				completed++
				p.emit(Event{
					Kind:     EventProgress,
					RunID:    runID,
					Fraction: float64(completed) / float64(total),
				})
				progressMu.Unlock()
			}
		}()
	}

	cancelled := false
feed:
	for idx := range items {
		// Cancellation is cooperative and checked between items; an item
		// already handed to a worker still runs to a terminal status.
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		select {
		case <-ctx.Done():
			cancelled = true
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	fraction := 1.0
	if total > 0 {
		fraction = float64(completed) / float64(total)
	}
	sum := Summary{
		RunID:     runID,
		Total:     total,
		Done:      int(doneCount.Load()),
		Failed:    int(failCount.Load()),
		Cancelled: cancelled,
		Elapsed:   time.Since(start),
	}
	p.emit(Event{Kind: EventCompleted, RunID: runID, Fraction: fraction, Cancelled: cancelled})
	log.Info("extraction finished",
		"done", sum.Done, "failed", sum.Failed,
		"cancelled", sum.Cancelled, "elapsed", sum.Elapsed.Round(time.Millisecond))
	return sum, nil
}

// startupCheck validates the preconditions that make a run pointless to
// attempt: the external tool and, when set, the destination override.
func (p *Pipeline) startupCheck() *StartupError {
	if err := p.ext.Check(); err != nil {
		return &StartupError{Reason: err.Error(), Err: err}
	}
	if p.opts.DestinationDir != "" {
		if err := naming.ValidateDestination(p.opts.DestinationDir); err != nil {
			return &StartupError{Reason: err.Error(), Err: err}
		}
	}
	return nil
}

// processItem drives one item to a terminal status and returns it.
func (p *Pipeline) processItem(ctx context.Context, runID string, idx int, item queue.Item, log *slog.Logger) queue.Status {
	p.setStatus(runID, idx, item, queue.StatusProcessing, "")

	if p.opts.Scanner.Enabled() {
		res, err := p.opts.Scanner.ScanFile(item.SourcePath)
		switch {
		case err != nil:
			log.Warn("virus scan failed, continuing unscanned", "file", item.FileName, "error", err)
		case res.Infected:
			detail := "malware detected"
			if len(res.Threats) > 0 {
				detail = "malware detected: " + res.Threats[0]
			}
			log.Warn("skipping infected input", "file", item.FileName, "detail", detail)
			return p.setStatus(runID, idx, item, queue.StatusError, detail)
		}
	}

	outPath, err := naming.Resolve(item, p.opts.DestinationDir, p.opts.OutputExt)
	if err != nil {
		log.Warn("cannot resolve output path", "file", item.FileName, "error", err)
		return p.setStatus(runID, idx, item, queue.StatusError, err.Error())
	}

	if err := p.ext.Extract(ctx, item.SourcePath, outPath); err != nil {
		log.Warn("extraction failed", "file", item.FileName, "error", err)
		return p.setStatus(runID, idx, item, queue.StatusError, err.Error())
	}

	log.Debug("extracted", "file", item.FileName, "output", outPath)
	return p.setStatus(runID, idx, item, queue.StatusDone, "")
}

func (p *Pipeline) setStatus(runID string, idx int, item queue.Item, status queue.Status, detail string) queue.Status {
	p.store.SetStatus(idx, status, detail)
	item.Status = status
	item.Detail = detail
	p.emit(Event{Kind: EventItemStatus, RunID: runID, Item: item})
	return status
}

func (p *Pipeline) emit(evt Event) {
	p.events <- evt
}
