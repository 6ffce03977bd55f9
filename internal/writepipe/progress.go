package writepipe

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// progress holds the three process-wide atomics (finished flag, row
// counter, byte counter) written by shards and read by the reporter.
// Shards never read each other's atomics; only the reporter goroutine
// does.
type progress struct {
	rows     int64
	bytes    int64
	finished int32
}

func newProgress() *progress { return &progress{} }

func (p *progress) addRows(n int64)  { atomic.AddInt64(&p.rows, n) }
func (p *progress) addBytes(n int64) { atomic.AddInt64(&p.bytes, n) }
func (p *progress) finish()          { atomic.StoreInt32(&p.finished, 1) }
func (p *progress) done() bool       { return atomic.LoadInt32(&p.finished) == 1 }
func (p *progress) snapshot() (rows, bytes int64) {
	return atomic.LoadInt64(&p.rows), atomic.LoadInt64(&p.bytes)
}

// runReporter polls p every ~500ms and renders a two-line progress display
// until p is marked finished. When stdout is not a terminal (CI,
// redirected output) it prints a single summary line per tick instead of
// repainting in place. When quiet is set, no reporter runs and nothing is
// printed.
func runReporter(p *progress, totalRows int64, quiet bool) (stop func()) {
	if quiet {
		return func() {}
	}
	out := colorable.NewColorableStdout()
	interactive := isatty.IsTerminal(os.Stdout.Fd())
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				renderTick(out, p, totalRows, interactive)
				if p.done() {
					renderTick(out, p, totalRows, interactive)
					return
				}
			case <-done:
				renderTick(out, p, totalRows, interactive)
				return
			}
		}
	}()
	return func() { close(done) }
}

func renderTick(out io.Writer, p *progress, totalRows int64, interactive bool) {
	rows, bytes := p.snapshot()
	width := 80
	if interactive {
		if w, _, err := term.GetSize(1); err == nil && w > 0 {
			width = w
		}
	}
	pct := 0.0
	if totalRows > 0 {
		pct = 100 * float64(rows) / float64(totalRows)
	}
	bar := renderBar(pct, width-20)
	if interactive {
		fmt.Fprintf(out, "\r%s %6.2f%%", bar, pct)
		fmt.Fprintf(out, "\n%d/%d rows, %d bytes written\033[1A", rows, totalRows, bytes)
	} else {
		fmt.Fprintf(out, "%d/%d rows, %d bytes written (%.1f%%)\n", rows, totalRows, bytes, pct)
	}
}

func renderBar(pct float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	b := make([]byte, width)
	for i := range b {
		if i < filled {
			b[i] = '='
		} else {
			b[i] = ' '
		}
	}
	return "[" + string(b) + "]"
}
