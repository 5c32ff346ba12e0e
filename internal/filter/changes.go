package filter

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vburojevic/obcall/internal/domain"
)

// ChangeFilter collapses repeated identical record snapshots while polling.
type ChangeFilter struct {
	mu       sync.Mutex
	clock    clock.Clock
	last     *domain.Record
	repeats  int
	lastEmit time.Time
}

// ChangeResult holds the result of a change check
type ChangeResult struct {
	ShouldEmit bool      // Whether this snapshot differs from the last emitted one
	Repeats    int       // Identical snapshots suppressed since the last emit
	LastEmit   time.Time // When the last snapshot was emitted
}

// NewChangeFilter creates a filter; a nil clock uses wall time.
func NewChangeFilter(clk clock.Clock) *ChangeFilter {
	if clk == nil {
		clk = clock.New()
	}
	return &ChangeFilter{clock: clk}
}

// Check determines if rec should be emitted or suppressed
func (f *ChangeFilter) Check(rec *domain.Record) ChangeResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.last != nil && f.last.Equal(rec) {
		f.repeats++
		return ChangeResult{ShouldEmit: false, Repeats: f.repeats, LastEmit: f.lastEmit}
	}

	f.last = rec.Clone()
	f.repeats = 0
	f.lastEmit = f.clock.Now()
	return ChangeResult{ShouldEmit: true, LastEmit: f.lastEmit}
}

// Reset forgets the last emitted snapshot
func (f *ChangeFilter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = nil
	f.repeats = 0
}
