package store

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/tiercache/observe"
)

// Store is the concurrent key→entry index. All access goes through
// its methods; the underlying map and lock are never exposed.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	log     observe.Logger
}

// New creates an empty store. A nil logger disables logging.
func New(log observe.Logger) *Store {
	if log == nil {
		log = observe.NewNopLogger()
	}
	return &Store{
		entries: make(map[string]*Entry),
		log:     log,
	}
}

// Set installs e under key and returns the displaced entry, if any.
func (s *Store) Set(key string, e *Entry) *Entry {
	e.assertValid()

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.entries[key]
	s.entries[key] = e
	return old
}

// Get looks up key and returns the entry's payload (nil once demoted)
// and disk path. With touch set, the entry's access bookkeeping is
// refreshed; this applies to disk-resident entries too, so reads from
// either tier count toward eviction ordering.
func (s *Store) Get(key string, touch bool) (payload []byte, diskPath string, ok bool) {
	if touch {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}

	e, ok := s.entries[key]
	if !ok {
		return nil, "", false
	}
	e.assertValid()

	if touch {
		e.LastAccess = time.Now().UnixNano()
		e.AccessCount++
	}
	return e.Payload, e.DiskPath, true
}

// Delete removes key from the index and returns the removed entry, or
// nil if the key was absent. The entry's on-disk data, if any, is the
// caller's to clean up.
func (s *Store) Delete(key string) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	delete(s.entries, key)
	return e
}

// Len returns the number of entries in the index.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// DiskUsage sums the disk footprints of all entries. A per-key stat
// failure is logged and that key skipped; one bad entry must not hide
// the usage of the rest.
func (s *Store) DiskUsage(ctx context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total uint64
	for key, e := range s.entries {
		size, err := e.DiskFootprint()
		if err != nil {
			s.log.Warn(ctx, "skipping entry: disk footprint unavailable",
				observe.F("cache.key", key),
				observe.F("error", err.Error()),
			)
			continue
		}
		total += size
	}
	return total
}
