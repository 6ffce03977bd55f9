package regexgen

import (
	"sort"

	"github.com/sqldef/tablegen/internal/randengine"
)

type literalSampler string

func (l literalSampler) Sample(_ randengine.Engine, out []byte) []byte {
	return append(out, l...)
}

type concatSampler struct{ parts []Sampler }

func (c *concatSampler) Sample(e randengine.Engine, out []byte) []byte {
	for _, p := range c.parts {
		out = p.Sample(e, out)
	}
	return out
}

type alternateSampler struct{ branches []Sampler }

func (a *alternateSampler) Sample(e randengine.Engine, out []byte) []byte {
	i := uniformInt(e, 0, len(a.branches)-1)
	return a.branches[i].Sample(e, out)
}

type repeatSampler struct {
	inner   Sampler
	min, max int
}

func (r *repeatSampler) Sample(e randengine.Engine, out []byte) []byte {
	n := uniformInt(e, r.min, r.max)
	for i := 0; i < n; i++ {
		out = r.inner.Sample(e, out)
	}
	return out
}

// surrogateLo/Hi bound the UTF-16 surrogate gap that Unicode code-point
// samplers must skip at generation time.
const surrogateLo, surrogateHi = 0xD800, 0xDFFF

// classSampler normalises a character class's (possibly many) rune ranges
// into a virtual [0,total) domain with a sorted list of break-points
// giving the offset to add back to recover the real code point.
type classSampler struct {
	breaks []int64 // breaks[i] is the cumulative count of code points covered by ranges[0:i+1]
	ranges [][2]rune
	total  int64
}

func newClassSampler(pairs []rune) (*classSampler, error) {
	c := &classSampler{}
	for i := 0; i+1 < len(pairs); i += 2 {
		lo, hi := pairs[i], pairs[i+1]
		for _, seg := range splitSurrogateGap(lo, hi) {
			count := int64(seg[1]-seg[0]) + 1
			if count <= 0 {
				continue
			}
			c.ranges = append(c.ranges, seg)
			c.total += count
			c.breaks = append(c.breaks, c.total)
		}
	}
	return c, nil
}

// splitSurrogateGap removes [0xD800,0xDFFF] from a rune range, producing
// zero, one, or two remaining ranges.
func splitSurrogateGap(lo, hi rune) [][2]rune {
	if hi < surrogateLo || lo > surrogateHi {
		return [][2]rune{{lo, hi}}
	}
	var out [][2]rune
	if lo < surrogateLo {
		out = append(out, [2]rune{lo, surrogateLo - 1})
	}
	if hi > surrogateHi {
		out = append(out, [2]rune{surrogateHi + 1, hi})
	}
	return out
}

func (c *classSampler) Sample(e randengine.Engine, out []byte) []byte {
	if c.total == 0 {
		return out
	}
	offset := int64(e.Uint64() % uint64(c.total))
	idx := sort.Search(len(c.breaks), func(i int) bool { return c.breaks[i] > offset })
	rangeStart := int64(0)
	if idx > 0 {
		rangeStart = c.breaks[idx-1]
	}
	r := c.ranges[idx][0] + rune(offset-rangeStart)
	return append(out, string(r)...)
}

// stripVerbose implements the 'x' flag: strip unescaped whitespace and
// '#'-to-end-of-line comments outside character classes.
func stripVerbose(pattern string) string {
	var out []byte
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			out = append(out, c, pattern[i+1])
			i++
		case c == '[':
			inClass = true
			out = append(out, c)
		case c == ']':
			inClass = false
			out = append(out, c)
		case !inClass && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
			// skip
		case !inClass && c == '#':
			for i < len(pattern) && pattern[i] != '\n' {
				i++
			}
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
