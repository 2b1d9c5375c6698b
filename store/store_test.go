package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

// TestStore_SetGetDelete covers the basic index operations.
func TestStore_SetGetDelete(t *testing.T) {
	s := New(nil)

	if old := s.Set("k", NewEntry([]byte{0, 1})); old != nil {
		t.Errorf("first set displaced %v, want nil", old)
	}

	payload, diskPath, ok := s.Get("k", false)
	if !ok {
		t.Fatal("key not found after set")
	}
	if !bytes.Equal(payload, []byte{0, 1}) {
		t.Errorf("payload = %v, want [0 1]", payload)
	}
	if diskPath != "" {
		t.Errorf("disk path = %q, want empty", diskPath)
	}

	if e := s.Delete("k"); e == nil {
		t.Fatal("delete returned nil for existing key")
	}
	if _, _, ok := s.Get("k", false); ok {
		t.Error("key still present after delete")
	}
	if e := s.Delete("k"); e != nil {
		t.Errorf("second delete returned %v, want nil", e)
	}
}

// TestStore_Set_ReturnsDisplaced verifies overwrite surfaces the old
// entry for the caller's accounting.
func TestStore_Set_ReturnsDisplaced(t *testing.T) {
	s := New(nil)

	first := NewEntry([]byte("first"))
	s.Set("k", first)

	old := s.Set("k", NewEntry([]byte("second")))
	if old != first {
		t.Errorf("displaced entry = %v, want the first entry", old)
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}

// TestStore_Get_Touch verifies access bookkeeping is refreshed only
// when asked.
func TestStore_Get_Touch(t *testing.T) {
	s := New(nil)
	e := NewEntry([]byte("v"))
	before := e.LastAccess
	s.Set("k", e)

	s.Get("k", false)
	if e.AccessCount != 0 {
		t.Errorf("untouched get bumped access count to %d", e.AccessCount)
	}

	s.Get("k", true)
	s.Get("k", true)
	if e.AccessCount != 2 {
		t.Errorf("access count = %d, want 2", e.AccessCount)
	}
	if e.LastAccess < before {
		t.Error("last access went backwards")
	}
}

// TestStore_DiskUsage sums real file sizes and treats missing files
// as zero.
func TestStore_DiskUsage(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()

	path := filepath.Join(dir, "k1", CacheFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, 200), 0o644); err != nil {
		t.Fatal(err)
	}

	s.Set("k1", &Entry{DiskPath: path, LastAccess: 1})
	s.Set("k2", NewEntry([]byte("memory only")))
	s.Set("k3", &Entry{DiskPath: filepath.Join(dir, "k3", CacheFileName), LastAccess: 1})

	if got := s.DiskUsage(context.Background()); got != 200 {
		t.Errorf("DiskUsage() = %d, want 200", got)
	}
}
