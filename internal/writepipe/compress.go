package writepipe

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression selects the optional output codec.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionXZ   Compression = "xz"
	CompressionZstd Compression = "zstd"
)

// Extension returns the suffix Compression appends to a shard's filename,
// on top of the format extension.
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionXZ:
		return ".xz"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// newEncoder wraps w with c's codec at the given level (0-9 for gzip/xz,
// 1-21 for zstd), returning the io.WriteCloser the shard
// writes formatted output through. Close must run before the underlying
// file is closed, so the compressor can flush its trailer/checksum.
func newEncoder(w io.Writer, c Compression, level int) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriterLevel(w, level)
	case CompressionXZ:
		cfg := xz.WriterConfig{DictCap: xzDictCapForLevel(level)}
		if err := cfg.Verify(); err != nil {
			return nil, err
		}
		return cfg.NewWriter(w)
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstdLevelFor(level)))
	default:
		return nil, fmt.Errorf("writepipe: unknown compression %q", c)
	}
}

// xzDictCapForLevel maps the CLI's flat 0-9 level knob onto ulikunitz/xz's
// dictionary-capacity parameter, since that library's notion of "level" is
// dictionary size rather than a 0-9 scale. The mapping only needs to be
// monotonic (higher level => more memory, better ratio); it does not match
// any reference xz implementation's exact preset table.
func xzDictCapForLevel(level int) int {
	if level < 0 {
		level = 0
	}
	if level > 9 {
		level = 9
	}
	const minDict = 1 << 16 // 64 KiB, xz.MinDictCap
	cap := minDict << uint(level)
	const maxDict = 1 << 26 // 64 MiB, a sane ceiling well under xz.MaxDictCap
	if cap > maxDict {
		cap = maxDict
	}
	return cap
}

// zstdLevelFor maps the CLI's 1-21 zstd level knob onto the klauspost/compress
// package's coarser four-bucket EncoderLevel enum.
func zstdLevelFor(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 6:
		return zstd.SpeedDefault
	case level <= 12:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}
