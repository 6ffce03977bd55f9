package writepipe

import (
	"io"
	"sync/atomic"
)

// countingWriter is the innermost layer of the shard output stack
// (file -> counting wrapper -> buffered writer -> ...): it forwards every
// write untouched but adds the byte count to a shared, process-wide atomic
// so the progress reporter can read it without synchronizing with any
// shard.
type countingWriter struct {
	w     io.Writer
	total *int64
}

func newCountingWriter(w io.Writer, total *int64) *countingWriter {
	return &countingWriter{w: w, total: total}
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	atomic.AddInt64(c.total, int64(n))
	return n, err
}
