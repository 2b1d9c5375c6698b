//go:build linux

package store

import (
	"os"

	"golang.org/x/sys/unix"
)

// dropPageCache asks the kernel to evict its cached pages for f. The
// cache manages its own memory tier; a second copy in the OS page
// cache would double-buffer every demoted payload. Best-effort only:
// failures are ignored, the data is already durable at this point.
func dropPageCache(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
}
