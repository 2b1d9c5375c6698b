package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonwraymond/tiercache/observe"
)

// CacheFileName is the name of the data file inside a key's directory.
const CacheFileName = "cachefile"

// candidate is one row of a cleanup snapshot: everything the sort and
// the walk need, captured under the write lock before any mutation.
type candidate struct {
	key      string
	count    uint64
	last     int64
	memSize  uint64
	diskSize uint64
	resident bool
	diskErr  error
}

// snapshotLocked captures every entry's cleanup-relevant state. Keys
// are visited in lexicographic order so residual ties after the
// stable sort resolve the same way on every run. Footprint I/O errors
// are recorded per key, not raised; the walk decides what to skip.
// Callers must hold the write lock.
func (s *Store) snapshotLocked() []candidate {
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	cands := make([]candidate, 0, len(keys))
	for _, key := range keys {
		e := s.entries[key]
		diskSize, diskErr := e.DiskFootprint()
		cands = append(cands, candidate{
			key:      key,
			count:    e.AccessCount,
			last:     e.LastAccess,
			memSize:  e.MemoryFootprint(),
			diskSize: diskSize,
			resident: e.Resident(),
			diskErr:  diskErr,
		})
	}
	return cands
}

// sortCandidates orders cands ascending by the strategy's key(s):
// coldest/least-used first. The sort is stable so entries the strategy
// cannot distinguish keep their snapshot order.
func sortCandidates(cands []candidate, strategy Strategy) {
	switch strategy {
	case LastAccess:
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].last < cands[j].last
		})
	case LeastUsed:
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].count < cands[j].count
		})
	default: // Combined
		sort.SliceStable(cands, func(i, j int) bool {
			if cands[i].count != cands[j].count {
				return cands[i].count < cands[j].count
			}
			return cands[i].last < cands[j].last
		})
	}
}

// CleanupMemory demotes memory-resident entries to disk in strategy
// order until toFree bytes of memory footprint have been reclaimed or
// no candidates remain. Entries already on disk are left untouched.
// It returns the bytes actually moved so the caller can update its
// accounting; on a write failure the entries demoted so far stay
// demoted and the error is returned with the partial total.
func (s *Store) CleanupMemory(ctx context.Context, strategy Strategy, toFree uint64, dir string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cands := s.snapshotLocked()
	sortCandidates(cands, strategy)

	var moved uint64
	remaining := toFree
	for _, c := range cands {
		if remaining == 0 {
			break
		}
		if c.diskErr != nil {
			s.log.Warn(ctx, "skipping entry: disk footprint unavailable",
				observe.F("cache.key", c.key),
				observe.F("error", c.diskErr.Error()),
			)
			continue
		}
		if c.diskSize != 0 || !c.resident {
			// Already demoted; no memory left to reclaim here.
			continue
		}

		e := s.entries[c.key]
		path, err := writeCacheFile(dir, c.key, e.Payload)
		if err != nil {
			return moved, fmt.Errorf("store: demote %q: %w", c.key, err)
		}
		e.DiskPath = path
		e.Payload = nil

		moved += c.memSize
		if c.memSize >= remaining {
			remaining = 0
		} else {
			remaining -= c.memSize
		}

		s.log.Debug(ctx, "demoted entry to disk",
			observe.F("cache.key", c.key),
			observe.F("bytes", observe.FormatBytes(c.memSize)),
			observe.F("left_to_free", observe.FormatBytes(remaining)),
		)
	}
	return moved, nil
}

// CleanupDisk fully evicts entries in strategy order until toFree
// bytes of disk usage have been reclaimed or no disk-backed
// candidates remain. Unlike the memory pass this removes entries from
// the index entirely, deleting their backing directories. It returns
// the disk bytes reclaimed and the memory footprint of any evicted
// entries that were still resident, so the caller can fix both tiers'
// accounting.
func (s *Store) CleanupDisk(ctx context.Context, strategy Strategy, toFree uint64) (diskFreed, memFreed uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cands := s.snapshotLocked()
	sortCandidates(cands, strategy)

	remaining := toFree
	for _, c := range cands {
		if remaining == 0 {
			break
		}
		if c.diskErr != nil {
			s.log.Warn(ctx, "skipping entry: disk footprint unavailable",
				observe.F("cache.key", c.key),
				observe.F("error", c.diskErr.Error()),
			)
			continue
		}
		if c.diskSize == 0 {
			// Nothing on disk to reclaim from this entry.
			continue
		}

		e := s.entries[c.key]
		if rerr := os.RemoveAll(filepath.Dir(e.DiskPath)); rerr != nil {
			return diskFreed, memFreed, fmt.Errorf("store: evict %q: %w", c.key, rerr)
		}
		delete(s.entries, c.key)

		diskFreed += c.diskSize
		if c.resident {
			memFreed += c.memSize
		}
		if c.diskSize >= remaining {
			remaining = 0
		} else {
			remaining -= c.diskSize
		}

		s.log.Debug(ctx, "evicted entry",
			observe.F("cache.key", c.key),
			observe.F("bytes", observe.FormatBytes(c.diskSize)),
			observe.F("left_to_free", observe.FormatBytes(remaining)),
		)
	}
	return diskFreed, memFreed, nil
}

// EvictBefore fully evicts every entry whose last access is older
// than cutoff (unix nanoseconds). The sweep is best-effort: a failure
// to delete one entry's disk data is logged and that entry kept, so a
// bad path cannot block the rest of the pass.
func (s *Store) EvictBefore(ctx context.Context, cutoff int64) (removed int, memFreed, diskFreed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if e.LastAccess >= cutoff {
			continue
		}

		diskSize, err := e.DiskFootprint()
		if err != nil {
			s.log.Warn(ctx, "skipping entry: disk footprint unavailable",
				observe.F("cache.key", key),
				observe.F("error", err.Error()),
			)
			continue
		}
		if e.DiskPath != "" {
			if rerr := os.RemoveAll(filepath.Dir(e.DiskPath)); rerr != nil {
				s.log.Warn(ctx, "skipping entry: disk data not removable",
					observe.F("cache.key", key),
					observe.F("error", rerr.Error()),
				)
				continue
			}
		}
		delete(s.entries, key)

		removed++
		diskFreed += diskSize
		if e.Resident() {
			memFreed += e.MemoryFootprint()
		}
	}
	return removed, memFreed, diskFreed
}

// writeCacheFile recreates dir/<key> and writes payload to its single
// cachefile, returning the file's path. The directory is removed
// first so a previous demotion can never leave a second file behind.
func writeCacheFile(dir, key string, payload []byte) (string, error) {
	folder := filepath.Join(dir, key)
	if err := os.RemoveAll(folder); err != nil {
		return "", err
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(folder, CacheFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return "", err
	}
	dropPageCache(f)
	return path, f.Close()
}
