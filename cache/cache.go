package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonwraymond/tiercache/observe"
	"github.com/jonwraymond/tiercache/store"
)

// EntryInfo describes a cache entry at a point in time. Set returns
// it for the entry it displaced.
type EntryInfo struct {
	// AccessCount is how many reads the entry had served.
	AccessCount uint64

	// LastAccess is when the entry was last read or written.
	LastAccess time.Time

	// Bytes is the entry's memory footprint, including the fixed
	// per-entry overhead.
	Bytes uint64

	// OnDisk reports whether the entry had been demoted to disk.
	OnDisk bool
}

// Stats is a point-in-time snapshot of cache usage.
type Stats struct {
	Entries  int
	RAMUsed  uint64
	DiskUsed uint64
}

// Cache is the two-tier cache facade. It owns the configuration, the
// running memory accounting, and one store; all methods are safe for
// concurrent use.
//
// Lookups share a read lock and run concurrently; Set, Remove, and
// the cleanup-triggering operations are exclusive. Resize in
// particular blocks every other operation until its cleanup passes
// complete, so run it off the hot request path.
type Cache struct {
	mu         sync.RWMutex
	maxRAM     uint64
	maxDisk    uint64
	decacheAge time.Duration
	dir        string
	strategy   Strategy
	ramUsed    uint64

	store   *store.Store
	log     observe.Logger
	metrics observe.Metrics
}

// New creates a cache from cfg, creating the cache directory if it
// does not exist.
func New(cfg Config) (*Cache, error) {
	log := cfg.Logger
	if log == nil {
		log = observe.NewNopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.NewNopMetrics()
	}

	dir := cfg.Dir
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("cache: resolve default directory: %w", err)
		}
		dir = filepath.Join(base, "tiercache")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}

	decacheAge := cfg.DecacheAge
	if decacheAge <= 0 {
		decacheAge = DefaultDecacheAge
	}

	return &Cache{
		maxRAM:     cfg.MaxRAM,
		maxDisk:    cfg.MaxDisk,
		decacheAge: decacheAge,
		dir:        dir,
		strategy:   cfg.Strategy,
		store:      store.New(log),
		log:        log,
		metrics:    metrics,
	}, nil
}

// Set stores value under key, replacing any existing entry. The
// displaced entry's on-disk data, if any, is deleted before the new
// value is installed; its description is returned, or nil if the key
// was new. Set never triggers eviction; budgets are enforced by
// Resize and EnforceBudgets.
func (c *Cache) Set(ctx context.Context, key string, value []byte) (*EntryInfo, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, err := c.removeLocked(key)
	if err != nil {
		return nil, err
	}

	e := store.NewEntry(value)
	c.store.Set(key, e)
	c.ramUsed += e.MemoryFootprint()

	c.metrics.RecordSet(ctx)
	c.metrics.RecordRAMUsed(ctx, c.ramUsed)
	return prev, nil
}

// Get returns the value stored under key, refreshing the entry's
// access bookkeeping. Memory-resident entries are returned directly;
// demoted entries are read back from disk. A recorded disk file that
// no longer exists is a miss, not an error; something outside the
// cache removed it. Any other disk read failure is returned.
//
// The returned slice is the caller's own copy; mutating it does not
// affect the cached value.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	payload, diskPath, ok := c.store.Get(key, true)
	if !ok {
		c.metrics.RecordGet(ctx, false)
		return nil, false, nil
	}
	if payload != nil {
		c.metrics.RecordGet(ctx, true)
		return bytes.Clone(payload), true, nil
	}

	data, err := os.ReadFile(diskPath)
	if errors.Is(err, fs.ErrNotExist) {
		c.metrics.RecordGet(ctx, false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: read disk tier for %q: %w", key, err)
	}

	c.log.Debug(ctx, "served from disk tier", observe.F("cache.key", key))
	c.metrics.RecordGet(ctx, true)
	return data, true, nil
}

// Remove deletes the entry under key along with its on-disk data.
// Removing a missing key is not an error.
func (c *Cache) Remove(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.removeLocked(key); err != nil {
		return err
	}

	c.metrics.RecordRemove(ctx)
	c.metrics.RecordRAMUsed(ctx, c.ramUsed)
	return nil
}

// removeLocked deletes key from the index, adjusts the memory
// accounting, and removes the entry's disk directory if present.
// Callers must hold the write lock.
func (c *Cache) removeLocked(key string) (*EntryInfo, error) {
	old := c.store.Delete(key)
	if old == nil {
		return nil, nil
	}

	if old.Resident() {
		c.ramUsed -= old.MemoryFootprint()
	}
	if old.DiskPath != "" {
		if err := os.RemoveAll(filepath.Dir(old.DiskPath)); err != nil {
			return nil, fmt.Errorf("cache: remove disk data for %q: %w", key, err)
		}
	}

	return &EntryInfo{
		AccessCount: old.AccessCount,
		LastAccess:  time.Unix(0, old.LastAccess),
		Bytes:       old.MemoryFootprint(),
		OnDisk:      old.DiskPath != "",
	}, nil
}

// Resize updates the budgets and strategy, then runs whatever cleanup
// the new budgets require: a memory pass when current usage exceeds
// the new memory budget, a disk pass when disk usage exceeds the new
// disk budget. A nil parameter keeps the current value.
//
// Resize is globally blocking: no other cache operation proceeds
// until its cleanup passes complete. On an I/O failure the pass stops
// where it is; entries already demoted or evicted stay that way.
func (c *Cache) Resize(ctx context.Context, maxRAM, maxDisk *uint64, strategy *Strategy) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Warn(ctx, "resizing cache; all operations are blocked until cleanup completes")

	if maxRAM != nil {
		c.maxRAM = *maxRAM
	}
	if maxDisk != nil {
		c.maxDisk = *maxDisk
	}
	if strategy != nil {
		c.strategy = *strategy
	}

	if err := c.enforceLocked(ctx); err != nil {
		return err
	}

	c.log.Warn(ctx, "cache resized; operations resumed",
		observe.F("max_ram", observe.FormatBytes(c.maxRAM)),
		observe.F("max_disk", observe.FormatBytes(c.maxDisk)),
		observe.F("cache.strategy", c.strategy.String()),
	)
	return nil
}

// EnforceBudgets runs the cleanup passes against the current budgets.
// It is what a periodic maintenance sweep calls; like Resize it
// blocks all other operations while it runs.
func (c *Cache) EnforceBudgets(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enforceLocked(ctx)
}

// enforceLocked brings both tiers under their budgets: memory first
// (demotion grows the disk tier), then disk. Callers must hold the
// write lock.
func (c *Cache) enforceLocked(ctx context.Context) error {
	if c.ramUsed > c.maxRAM {
		toFree := c.ramUsed - c.maxRAM
		c.log.Info(ctx, "cleaning memory tier",
			observe.F("ram_used", observe.FormatBytes(c.ramUsed)),
			observe.F("max_ram", observe.FormatBytes(c.maxRAM)),
			observe.F("to_free", observe.FormatBytes(toFree)),
			observe.F("cache.strategy", c.strategy.String()),
		)

		moved, err := c.store.CleanupMemory(ctx, c.strategy, toFree, c.dir)
		c.ramUsed -= moved
		c.metrics.RecordDemotion(ctx, moved, c.strategy.String())
		c.metrics.RecordRAMUsed(ctx, c.ramUsed)
		if err != nil {
			return err
		}
	}

	diskUsed := c.store.DiskUsage(ctx)
	if diskUsed > c.maxDisk {
		toFree := diskUsed - c.maxDisk
		c.log.Info(ctx, "cleaning disk tier",
			observe.F("disk_used", observe.FormatBytes(diskUsed)),
			observe.F("max_disk", observe.FormatBytes(c.maxDisk)),
			observe.F("to_free", observe.FormatBytes(toFree)),
			observe.F("cache.strategy", c.strategy.String()),
		)

		diskFreed, memFreed, err := c.store.CleanupDisk(ctx, c.strategy, toFree)
		c.ramUsed -= memFreed
		c.metrics.RecordEviction(ctx, diskFreed, c.strategy.String())
		c.metrics.RecordRAMUsed(ctx, c.ramUsed)
		if err != nil {
			return err
		}
	}
	return nil
}

// EvictExpired fully evicts every entry that has gone unread for
// longer than the decache age, returning how many were removed. The
// pass is best-effort; entries whose disk data cannot be deleted are
// kept and logged.
func (c *Cache) EvictExpired(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.decacheAge).UnixNano()
	removed, memFreed, diskFreed := c.store.EvictBefore(ctx, cutoff)
	c.ramUsed -= memFreed

	if removed > 0 {
		c.metrics.RecordEviction(ctx, diskFreed, c.strategy.String())
		c.metrics.RecordRAMUsed(ctx, c.ramUsed)
		c.log.Info(ctx, "evicted expired entries",
			observe.F("removed", removed),
			observe.F("mem_freed", observe.FormatBytes(memFreed)),
			observe.F("disk_freed", observe.FormatBytes(diskFreed)),
		)
	}
	return removed
}

// SetDirectory changes where future demotions write their files,
// creating the directory if needed. Files already written under the
// previous directory are neither migrated nor deleted; entries
// demoted there keep working, but cleaning that directory up is the
// caller's responsibility.
func (c *Cache) SetDirectory(ctx context.Context, path string) error {
	if path == "" {
		return ErrInvalidDir
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("cache: create directory: %w", err)
	}

	c.log.Info(ctx, "cache directory changed",
		observe.F("old", c.dir),
		observe.F("new", path),
	)
	c.dir = path
	return nil
}

// RAMUsed returns the memory footprint of all memory-resident entries.
func (c *Cache) RAMUsed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ramUsed
}

// MaxRAM returns the current memory-tier budget.
func (c *Cache) MaxRAM() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxRAM
}

// MaxDisk returns the current disk-tier budget.
func (c *Cache) MaxDisk() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxDisk
}

// Dir returns the current cache directory.
func (c *Cache) Dir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dir
}

// Len returns the number of entries across both tiers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Len()
}

// Stats returns a usage snapshot. Disk usage is measured from the
// filesystem on every call.
func (c *Cache) Stats(ctx context.Context) Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Entries:  c.store.Len(),
		RAMUsed:  c.ramUsed,
		DiskUsed: c.store.DiskUsage(ctx),
	}
}
