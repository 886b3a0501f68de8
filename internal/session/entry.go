package session

import (
	"sync"
	"time"

	"github.com/yousuf/mapindex/internal/sourcemap"
)

// Entry is a cached source map with its access bookkeeping.
type Entry struct {
	Locator   string
	Map       *sourcemap.SourceMap
	DecodedAt time.Time

	mu   sync.Mutex
	used time.Time
}

func newEntry(locator string, sm *sourcemap.SourceMap, now time.Time) *Entry {
	return &Entry{Locator: locator, Map: sm, DecodedAt: now, used: now}
}

func (e *Entry) touch(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if now.After(e.used) {
		e.used = now
	}
}

func (e *Entry) lastUsed() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.used
}
