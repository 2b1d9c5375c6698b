package cache

import (
	"time"

	"github.com/jonwraymond/tiercache/observe"
	"github.com/jonwraymond/tiercache/store"
)

// Byte-size units.
const (
	KiB uint64 = 1 << 10
	MiB uint64 = KiB << 10
	GiB uint64 = MiB << 10
)

// Defaults applied by DefaultConfig.
const (
	DefaultMaxRAM     = 1 * GiB
	DefaultMaxDisk    = 10 * GiB
	DefaultDecacheAge = 24 * time.Hour
)

// Strategy selects which entries are demoted or evicted first during
// a cleanup pass.
type Strategy = store.Strategy

const (
	// Combined orders by access count, breaking ties by last access.
	Combined = store.Combined
	// LastAccess orders by last access time, oldest first.
	LastAccess = store.LastAccess
	// LeastUsed orders by access count, least used first.
	LeastUsed = store.LeastUsed
)

// Config configures a Cache. Budgets are taken literally: a zero
// budget is a real (empty) budget, not a request for the default.
// Start from DefaultConfig when the defaults are wanted.
type Config struct {
	// MaxRAM is the memory-tier byte ceiling.
	MaxRAM uint64

	// MaxDisk is the disk-tier byte ceiling.
	MaxDisk uint64

	// DecacheAge is how long an entry may go unread before a
	// maintenance sweep force-evicts it regardless of budget. The
	// cache itself only stores the value; enforcement belongs to the
	// sweep (see the maintain package). Zero means DefaultDecacheAge.
	DecacheAge time.Duration

	// Dir is the root under which demoted entries are stored, one
	// subdirectory per key. Empty means a "tiercache" directory under
	// the OS cache directory.
	Dir string

	// Strategy is the cleanup ordering. The zero value is Combined.
	Strategy Strategy

	// Logger receives structured logs. nil disables logging.
	Logger observe.Logger

	// Metrics records cache activity. nil disables recording.
	Metrics observe.Metrics
}

// DefaultConfig returns the default configuration: 1 GiB of memory,
// 10 GiB of disk, a one-day decache age, and the Combined strategy.
func DefaultConfig() Config {
	return Config{
		MaxRAM:     DefaultMaxRAM,
		MaxDisk:    DefaultMaxDisk,
		DecacheAge: DefaultDecacheAge,
		Strategy:   Combined,
	}
}
