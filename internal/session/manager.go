package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yousuf/mapindex/internal/host"
	"github.com/yousuf/mapindex/internal/sourcemap"
)

// Decoder decodes a source map by locator.
type Decoder interface {
	Decode(mapFile string) (*sourcemap.SourceMap, error)
}

// Manager caches decoded source maps by absolute locator. Decoded maps are
// immutable so callers share them freely.
type Manager struct {
	entries    map[string]*Entry
	mu         sync.RWMutex
	decoder    Decoder
	logger     logrus.FieldLogger
	maxEntries int
	now        func() time.Time
}

// NewManager creates a new manager. maxEntries of zero disables eviction.
func NewManager(decoder Decoder, logger logrus.FieldLogger, maxEntries int) *Manager {
	return &Manager{
		entries:    make(map[string]*Entry),
		decoder:    decoder,
		logger:     logger,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func key(locator string) string {
	if abs, err := host.Absolute(locator); err == nil {
		return abs
	}
	return locator
}

// GetOrDecode returns the cached map for locator or decodes it.
func (m *Manager) GetOrDecode(ctx context.Context, locator string) (*sourcemap.SourceMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := key(locator)

	m.mu.RLock()
	entry, exists := m.entries[k]
	m.mu.RUnlock()

	if exists {
		entry.touch(m.now())
		return entry.Map, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if entry, exists := m.entries[k]; exists {
		entry.touch(m.now())
		return entry.Map, nil
	}

	sm, err := m.decoder.Decode(k)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", locator, err)
	}
	if err := sm.Err(); err != nil {
		m.logger.WithError(err).WithField("map", k).Warn("Source map decoded with failed sections")
	}

	m.entries[k] = newEntry(k, sm, m.now())
	m.evict()
	return sm, nil
}

// evict drops least recently used entries above maxEntries. Callers hold
// the write lock.
func (m *Manager) evict() {
	for m.maxEntries > 0 && len(m.entries) > m.maxEntries {
		var oldest *Entry
		for _, e := range m.entries {
			if oldest == nil || e.lastUsed().Before(oldest.lastUsed()) {
				oldest = e
			}
		}
		delete(m.entries, oldest.Locator)
		m.logger.WithField("map", oldest.Locator).Debug("Evicted source map")
	}
}

// Get returns a cached entry without decoding.
func (m *Manager) Get(locator string) *Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[key(locator)]
}

// Entries returns a snapshot of the cached entries.
func (m *Manager) Entries() []*Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out
}

// Evict removes a map from the cache.
func (m *Manager) Evict(locator string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(locator)
	if _, exists := m.entries[k]; !exists {
		return fmt.Errorf("source map %q not cached", locator)
	}
	delete(m.entries, k)
	return nil
}

// Clear empties the cache.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*Entry)
}
