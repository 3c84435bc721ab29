// Package queue holds the in-memory store of files waiting for, or finished
// with, extraction. Items are ordered by insertion and deduplicated by their
// absolute source path; the whole queue is cleared as a unit (there is no
// individual removal).
package queue

import (
	"path/filepath"
	"sync"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Item is one queued input file.
type Item struct {
	// SequenceID is the 1-based display index, assigned at append time.
	// IDs are only reset when the whole queue is cleared.
	SequenceID int
	FileName   string
	SourceDir  string
	// SourcePath is the absolute input path and the dedup key.
	SourcePath string
	Status     Status
	// Detail carries a short diagnostic for items that ended in error.
	Detail string
}

// Counts summarizes the queue by status.
type Counts struct {
	Total      int
	Pending    int
	Processing int
	Done       int
	Error      int
}

// Store is an ordered, deduplicated collection of queue items. All methods
// are safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	items  []Item
	index  map[string]struct{}
	nextID int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		index:  make(map[string]struct{}),
		nextID: 1,
	}
}

// Add appends a new pending item for path. The path is made absolute before
// insertion so the same file cannot enter the queue under two spellings.
// Returns the item and true on insertion, or the zero item and false when
// the path is already queued (no mutation).
func (s *Store) Add(path string) (Item, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.index[abs]; dup {
		return Item{}, false
	}

	item := Item{
		SequenceID: s.nextID,
		FileName:   filepath.Base(abs),
		SourceDir:  filepath.Dir(abs),
		SourcePath: abs,
		Status:     StatusPending,
	}
	s.items = append(s.items, item)
	s.index[abs] = struct{}{}
	s.nextID++
	return item, true
}

// Clear removes all items and resets the sequence counter.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.index = make(map[string]struct{})
	s.nextID = 1
}

// Len returns the number of queued items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ItemAt returns a copy of the item at index i (0-based insertion order).
func (s *Store) ItemAt(i int) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return Item{}, false
	}
	return s.items[i], true
}

// SetStatus updates the status and diagnostic detail of the item at index i.
func (s *Store) SetStatus(i int, status Status, detail string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return false
	}
	s.items[i].Status = status
	s.items[i].Detail = detail
	return true
}

// Items returns a snapshot copy of all items in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Counts returns per-status totals.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Counts{Total: len(s.items)}
	for _, item := range s.items {
		switch item.Status {
		case StatusPending:
			c.Pending++
		case StatusProcessing:
			c.Processing++
		case StatusDone:
			c.Done++
		case StatusError:
			c.Error++
		}
	}
	return c
}
