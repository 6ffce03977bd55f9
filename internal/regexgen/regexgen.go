// Package regexgen compiles a regex pattern into a Sampler that produces
// byte strings conforming to it. It walks the tree produced by the
// standard library's regexp/syntax parser and lowers it into a small
// sampler tree of its own, since regexp/syntax's tree is built for
// matching, not generation.
package regexgen

import (
	"fmt"
	"regexp/syntax"

	"github.com/sqldef/tablegen/internal/randengine"
)

// Flags holds the accepted flag letters for rand.regex's flags argument.
type Flags struct {
	Octal         bool // o
	ASCII         bool // a: byte regex / no unicode
	Unicode       bool // u
	Verbose       bool // x
	CaseInsens    bool // i
	Multiline     bool // m
	DotMatchesNL  bool // s
	SwapGreediness bool // U
}

func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, c := range s {
		switch c {
		case 'o':
			f.Octal = true
		case 'a':
			f.ASCII = true
		case 'u':
			f.Unicode = true
		case 'x':
			f.Verbose = true
		case 'i':
			f.CaseInsens = true
		case 'm':
			f.Multiline = true
		case 's':
			f.DotMatchesNL = true
		case 'U':
			f.SwapGreediness = true
		default:
			return f, fmt.Errorf("unknown regex flag %q", string(c))
		}
	}
	return f, nil
}

// Compile parses pattern under the given flags and lowers it to a Sampler.
// maxRepeat bounds unbounded repetition (`*`, `+`, `{n,}`).
func Compile(pattern string, flags Flags, maxRepeat int) (Sampler, error) {
	if flags.Verbose {
		pattern = stripVerbose(pattern)
	}
	synFlags := syntax.Perl
	if flags.CaseInsens {
		synFlags |= syntax.FoldCase
	}
	if !flags.Multiline {
		synFlags |= syntax.OneLine
	}
	if flags.DotMatchesNL {
		synFlags |= syntax.DotNL
	}
	if flags.ASCII {
		synFlags &^= syntax.UnicodeGroups
	} else {
		synFlags |= syntax.UnicodeGroups
	}

	re, err := syntax.Parse(pattern, synFlags)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	re = re.Simplify()
	c := &compiler{maxRepeat: maxRepeat, ascii: flags.ASCII, swapGreed: flags.SwapGreediness}
	return c.compile(re)
}

type compiler struct {
	maxRepeat int
	ascii     bool
	swapGreed bool
}

func (c *compiler) compile(re *syntax.Regexp) (Sampler, error) {
	switch re.Op {
	case syntax.OpLiteral:
		return literalSampler(string(re.Rune)), nil

	case syntax.OpEmptyMatch:
		return literalSampler(""), nil

	case syntax.OpConcat:
		return c.compileConcat(re.Sub)

	case syntax.OpAlternate:
		var branches []Sampler
		for _, sub := range flattenAlternate(re.Sub) {
			s, err := c.compile(sub)
			if err != nil {
				return nil, err
			}
			branches = append(branches, s)
		}
		return &alternateSampler{branches: branches}, nil

	case syntax.OpCharClass:
		return newClassSampler(re.Rune)

	case syntax.OpAnyChar:
		return newClassSampler([]rune{0, 0x10FFFF})
	case syntax.OpAnyCharNotNL:
		return newClassSampler([]rune{0, '\n' - 1, '\n' + 1, 0x10FFFF})

	case syntax.OpStar:
		return c.compileRepeat(re.Sub[0], 0, c.maxRepeat)
	case syntax.OpPlus:
		return c.compileRepeat(re.Sub[0], 1, 1+c.maxRepeat)
	case syntax.OpQuest:
		return c.compileRepeat(re.Sub[0], 0, 1)
	case syntax.OpRepeat:
		max := re.Max
		if max < 0 {
			max = re.Min + c.maxRepeat
		}
		return c.compileRepeat(re.Sub[0], re.Min, max)

	case syntax.OpCapture:
		return c.compile(re.Sub[0])

	case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return nil, &UnsupportedElementError{Element: re.Op.String()}

	default:
		return nil, &UnsupportedElementError{Element: re.Op.String()}
	}
}

func flattenAlternate(subs []*syntax.Regexp) []*syntax.Regexp {
	var out []*syntax.Regexp
	for _, s := range subs {
		if s.Op == syntax.OpAlternate {
			out = append(out, flattenAlternate(s.Sub)...)
		} else {
			out = append(out, s)
		}
	}
	return out
}

// compileConcat flattens nested sequences and concatenates adjacent
// literals.
func (c *compiler) compileConcat(subs []*syntax.Regexp) (Sampler, error) {
	var parts []Sampler
	var pendingLit []rune
	flush := func() {
		if len(pendingLit) > 0 {
			parts = append(parts, literalSampler(string(pendingLit)))
			pendingLit = nil
		}
	}
	var walk func([]*syntax.Regexp) error
	walk = func(nodes []*syntax.Regexp) error {
		for _, n := range nodes {
			if n.Op == syntax.OpConcat {
				if err := walk(n.Sub); err != nil {
					return err
				}
				continue
			}
			if n.Op == syntax.OpLiteral {
				pendingLit = append(pendingLit, n.Rune...)
				continue
			}
			flush()
			s, err := c.compile(n)
			if err != nil {
				return err
			}
			parts = append(parts, s)
		}
		return nil
	}
	if err := walk(subs); err != nil {
		return nil, err
	}
	flush()
	if len(parts) == 1 {
		return parts[0], nil
	}
	return &concatSampler{parts: parts}, nil
}

// compileRepeat implements the "expand to pre-repeated literal" fast path
// when min == max and the inner compiles to a literal.
func (c *compiler) compileRepeat(sub *syntax.Regexp, min, max int) (Sampler, error) {
	inner, err := c.compile(sub)
	if err != nil {
		return nil, err
	}
	if min == max {
		if lit, ok := inner.(literalSampler); ok {
			repeated := make([]byte, 0, len(lit)*min)
			for i := 0; i < min; i++ {
				repeated = append(repeated, []byte(lit)...)
			}
			return literalSampler(repeated), nil
		}
	}
	return &repeatSampler{inner: inner, min: min, max: max}, nil
}

type UnsupportedElementError struct{ Element string }

func (e *UnsupportedElementError) Error() string {
	return "unsupported regex element: " + e.Element
}

// Sampler produces a conforming byte string from an RNG.
type Sampler interface {
	Sample(e randengine.Engine, out []byte) []byte
}

func uniformInt(e randengine.Engine, lo, hi int) int { // inclusive [lo,hi]
	if hi <= lo {
		return lo
	}
	span := uint64(hi-lo) + 1
	return lo + int(e.Uint64()%span)
}
