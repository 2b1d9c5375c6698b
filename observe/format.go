package observe

import (
	"fmt"
	"time"
)

// FormatBytes renders a byte count with a binary prefix ("1.5 MiB").
// Counts below 1 KiB are rendered as plain bytes.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatNanos renders a unix-nanosecond timestamp as a UTC wall time.
func FormatNanos(nanos int64) string {
	return time.Unix(0, nanos).UTC().Format("2006-01-02 15:04:05.000000000")
}
