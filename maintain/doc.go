// Package maintain runs cache upkeep off the request path: a
// background sweeper periodically evicts entries past their decache
// age and re-enforces the byte budgets, so request-serving goroutines
// are never the ones paying for cleanup.
package maintain
