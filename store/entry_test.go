package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewEntry_Defaults verifies a fresh entry is memory-resident
// with a zero access count.
func TestNewEntry_Defaults(t *testing.T) {
	e := NewEntry([]byte("value"))

	if !e.Resident() {
		t.Error("new entry should be memory-resident")
	}
	if e.AccessCount != 0 {
		t.Errorf("access count = %d, want 0", e.AccessCount)
	}
	if e.LastAccess == 0 {
		t.Error("last access should be initialized")
	}
	if e.DiskPath != "" {
		t.Errorf("disk path = %q, want empty", e.DiskPath)
	}
}

// TestNewEntry_NilValue verifies a nil value behaves exactly like an
// empty slice: the entry is resident, not mistaken for a demoted one.
func TestNewEntry_NilValue(t *testing.T) {
	e := NewEntry(nil)

	if !e.Resident() {
		t.Error("entry for nil value should be memory-resident")
	}
	if got := e.MemoryFootprint(); got != entryOverhead {
		t.Errorf("MemoryFootprint() = %d, want %d", got, entryOverhead)
	}
	e.assertValid()
}

// TestEntry_MemoryFootprint verifies the footprint formula is payload
// length plus a fixed constant, for all payload sizes. The same
// formula is used on insert and removal, so any inconsistency here
// would drift the cache's running total.
func TestEntry_MemoryFootprint(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", []byte{}},
		{"small", []byte("abc")},
		{"10KiB", make([]byte, 10*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEntry(tt.payload)
			want := uint64(len(tt.payload)) + entryOverhead
			if got := e.MemoryFootprint(); got != want {
				t.Errorf("MemoryFootprint() = %d, want %d", got, want)
			}
		})
	}
}

// TestEntry_MemoryFootprint_AfterDemotion verifies a demoted entry's
// footprint collapses to the fixed overhead.
func TestEntry_MemoryFootprint_AfterDemotion(t *testing.T) {
	e := &Entry{DiskPath: "/tmp/whatever/cachefile", LastAccess: 1}
	if got := e.MemoryFootprint(); got != entryOverhead {
		t.Errorf("MemoryFootprint() = %d, want %d", got, entryOverhead)
	}
	if e.Resident() {
		t.Error("demoted entry should not be resident")
	}
}

// TestEntry_DiskFootprint covers the no-path, absent-file, and
// real-file cases.
func TestEntry_DiskFootprint(t *testing.T) {
	t.Run("no path", func(t *testing.T) {
		e := NewEntry([]byte("x"))
		size, err := e.DiskFootprint()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if size != 0 {
			t.Errorf("size = %d, want 0", size)
		}
	})

	t.Run("absent file", func(t *testing.T) {
		e := &Entry{DiskPath: filepath.Join(t.TempDir(), "gone", "cachefile"), LastAccess: 1}
		size, err := e.DiskFootprint()
		if err != nil {
			t.Fatalf("absent file should not error: %v", err)
		}
		if size != 0 {
			t.Errorf("size = %d, want 0", size)
		}
	})

	t.Run("real file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cachefile")
		if err := os.WriteFile(path, make([]byte, 123), 0o644); err != nil {
			t.Fatal(err)
		}
		e := &Entry{DiskPath: path, LastAccess: 1}
		size, err := e.DiskFootprint()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if size != 123 {
			t.Errorf("size = %d, want 123", size)
		}
	})
}

// TestEntry_AssertValid_Panics verifies the tier invariant is fatal.
func TestEntry_AssertValid_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for entry with neither payload nor disk path")
		}
	}()
	e := &Entry{LastAccess: 1}
	e.assertValid()
}

// TestEntry_String verifies the debug rendering carries the counters.
func TestEntry_String(t *testing.T) {
	e := NewEntry([]byte("abc"))
	e.AccessCount = 7

	s := e.String()
	if !strings.Contains(s, "access_count: 7") {
		t.Errorf("String() missing access count: %q", s)
	}
	if !strings.Contains(s, "resident: true") {
		t.Errorf("String() missing residency: %q", s)
	}
}
