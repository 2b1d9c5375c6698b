package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jonwraymond/tiercache/observe"
)

// entryOverhead is the fixed per-entry bookkeeping cost added to every
// memory footprint: the access counter, the timestamp, and the slots
// for the optional payload and disk path. The exact value matters less
// than its consistency: the same constant is applied when adding to
// and subtracting from the running memory total, or accounting drifts.
const entryOverhead = 48

// Entry is one cached item: its payload while resident in memory, or
// the location of its data file once demoted to disk.
//
// An entry reachable from the index always has Payload or DiskPath
// set; one with neither is logically deleted and must not exist.
type Entry struct {
	// Payload holds the value while the entry is memory-resident.
	// nil once the entry has been demoted to disk.
	Payload []byte

	// LastAccess is the unix-nanosecond time of the last read or write.
	LastAccess int64

	// AccessCount is incremented on every successful read.
	AccessCount uint64

	// DiskPath is the entry's data file once demoted; "" while the
	// entry is purely in-memory.
	DiskPath string
}

// NewEntry constructs a memory-resident entry for value. The access
// count always starts at zero. A nil value is stored as empty bytes,
// so it stays memory-resident like any other payload; Payload's
// nil-means-demoted encoding is reserved for the demotion path.
func NewEntry(value []byte) *Entry {
	if value == nil {
		value = []byte{}
	}
	return &Entry{
		Payload:    value,
		LastAccess: time.Now().UnixNano(),
	}
}

// Resident reports whether the entry's payload is held in memory.
func (e *Entry) Resident() bool {
	return e.Payload != nil
}

// MemoryFootprint is the accounted memory size of the entry: payload
// length plus the fixed per-entry overhead.
func (e *Entry) MemoryFootprint() uint64 {
	return uint64(len(e.Payload)) + entryOverhead
}

// DiskFootprint is the current size of the entry's data file. It is
// queried from the filesystem on every call, never cached. An absent
// file (or no disk path at all) is 0; any other stat failure is
// returned as an error, never masked as 0.
func (e *Entry) DiskFootprint() (uint64, error) {
	if e.DiskPath == "" {
		return 0, nil
	}
	info, err := os.Stat(e.DiskPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

func (e *Entry) String() string {
	return fmt.Sprintf("disk_path: %q, last_access: %s, access_count: %d, resident: %t, mem_size: %s",
		e.DiskPath,
		observe.FormatNanos(e.LastAccess),
		e.AccessCount,
		e.Resident(),
		observe.FormatBytes(e.MemoryFootprint()),
	)
}

// assertValid panics when the entry violates the tier invariant. A
// reachable entry with neither payload nor disk location means the
// accounting guarantees no longer hold; that is an internal bug, not
// a recoverable condition.
func (e *Entry) assertValid() {
	if e.Payload == nil && e.DiskPath == "" {
		panic("store: entry has neither payload nor disk location")
	}
}
