// Package cache provides an embeddable two-tier (RAM + disk) byte
// cache. Values live in memory until the configured memory budget is
// exceeded, at which point a cleanup pass demotes the coldest entries
// to files under the cache directory; reads are served transparently
// from whichever tier holds the data.
//
// Budget enforcement is explicit: Set never evicts. Call Resize (or
// EnforceBudgets, typically from the maintain package's background
// sweeper) to bring usage back under budget. Both are stop-the-world
// operations: no other cache call proceeds while a cleanup pass runs.
package cache
