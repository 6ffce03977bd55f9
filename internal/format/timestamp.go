package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/sqldef/tablegen/internal/value"
)

// formatTimestamp renders a Timestamp as 'YYYY-MM-DD HH:MM:SS[.uuuuuu]'
// (unquoted), converted to the value's own zone.
func formatTimestamp(ts value.Timestamp) string {
	t := ts.Instant.In(ts.Zone)
	out := t.Format("2006-01-02 15:04:05")
	if ns := t.Nanosecond(); ns != 0 {
		out += fmt.Sprintf(".%06d", ns/1000)
	}
	return out
}

// formatInterval renders an Interval as '[-][d ]HH:MM:SS[.uuuuuu]' at
// microsecond precision.
func formatInterval(iv value.Interval) string {
	micros := int64(iv)
	if micros == math.MinInt64 {
		// -2^63 microseconds has no positive counterpart to negate into.
		return "-106751991 04:00:54.775808"
	}
	var sb strings.Builder
	if micros < 0 {
		sb.WriteByte('-')
		micros = -micros
	}
	days := micros / (86400 * 1_000_000)
	rem := micros % (86400 * 1_000_000)
	totalSecs := rem / 1_000_000
	fracMicros := rem % 1_000_000
	hours := totalSecs / 3600
	minutes := (totalSecs % 3600) / 60
	secs := totalSecs % 60
	if days != 0 {
		fmt.Fprintf(&sb, "%d ", days)
	}
	fmt.Fprintf(&sb, "%02d:%02d:%02d", hours, minutes, secs)
	if fracMicros != 0 {
		fmt.Fprintf(&sb, ".%06d", fracMicros)
	}
	return sb.String()
}
