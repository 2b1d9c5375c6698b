//go:build !linux

package store

import "os"

// dropPageCache is a no-op on platforms without a page-cache advisory
// interface; demoted files stay in the OS cache there. Performance,
// not correctness.
func dropPageCache(*os.File) {}
