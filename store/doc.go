// Package store implements the cache's storage engine: a concurrent
// key→entry index, exact per-entry footprint accounting, and the
// strategy-driven cleanup passes that demote entries to disk or evict
// them entirely under a byte budget.
//
// The index is guarded by a single reader/writer lock. Lookups take
// the read lock; mutations and both cleanup passes take the write
// lock for their full duration so cleanup always observes a
// consistent snapshot. Neither the lock nor the map ever escapes this
// package.
package store
