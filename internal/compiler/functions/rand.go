package functions

import (
	"encoding/binary"
	"math"
	mrand "math/rand"
	"time"

	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/randengine"
	"github.com/sqldef/tablegen/internal/regexgen"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// uniformUint64 draws an unbiased value in [0,bound) using rejection
// sampling against the nearest power-of-two-free modulus bias.
func uniformUint64(e randengine.Engine, bound uint64) uint64 {
	if bound == 0 {
		return 0
	}
	limit := (^uint64(0) - (^uint64(0) % bound))
	for {
		v := e.Uint64()
		if v < limit {
			return v % bound
		}
	}
}

// registerRand installs the rand.* distribution family. All of these are
// impure (Pure()==false): even with constant arguments they must draw fresh
// on every Eval, so the registry's generic fold path is bypassed and each
// Compile call builds a *compiler.GenericCall directly after checking the
// argument count; argument types are checked on each Eval.
func registerRand(reg *compiler.Registry) {
	reg.Register("rand.range", rangeFunc("rand.range", false))
	reg.Register("rand.range_inclusive", rangeFunc("rand.range_inclusive", true))

	reg.Register("rand.uniform", uniformFloatFunc("rand.uniform", false))
	reg.Register("rand.uniform_inclusive", uniformFloatFunc("rand.uniform_inclusive", true))

	reg.Register("rand.zipf", newImpureFunc("rand.zipf", 2, 2, func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		n, err := argInt64(args[0], sp, "rand.zipf")
		if err != nil {
			return value.Value{}, err
		}
		s, err := argFloat64(args[1], sp, "rand.zipf")
		if err != nil {
			return value.Value{}, err
		}
		if n <= 0 || s <= 0 {
			return value.Value{}, errs.New(errs.KindInvalidArguments, sp, "rand.zipf requires n>0 and s>0")
		}
		r := randengine.NewRand(ctx.RNG())
		// math/rand.Zipf requires s>1; values in (0,1] are nudged just above
		// 1 so small-skew requests still produce a (near-uniform) result
		// instead of panicking.
		zs := s
		if zs <= 1 {
			zs = 1 + 1e-6
		}
		z := mrand.NewZipf(r, zs, 1, uint64(n-1))
		return value.FromNumber(value.NewUint(1 + z.Uint64())), nil
	}))

	reg.Register("rand.log_normal", newImpureFunc("rand.log_normal", 2, 2, func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		mu, err := argFloat64(args[0], sp, "rand.log_normal")
		if err != nil {
			return value.Value{}, err
		}
		sigma, err := argFloat64(args[1], sp, "rand.log_normal")
		if err != nil {
			return value.Value{}, err
		}
		if sigma < 0 {
			sigma = -sigma
		}
		r := randengine.NewRand(ctx.RNG())
		f := math.Exp(mu + sigma*r.NormFloat64())
		n, err := value.FloatResult(f)
		if err != nil {
			return value.Value{}, errs.Wrap(errs.KindIntegerOverflow, sp, err, "rand.log_normal")
		}
		return value.FromNumber(n), nil
	}))

	reg.Register("rand.bool", newImpureFunc("rand.bool", 1, 1, func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		p, err := argFloat64(args[0], sp, "rand.bool")
		if err != nil {
			return value.Value{}, err
		}
		if p < 0 || p > 1 {
			return value.Value{}, errs.New(errs.KindInvalidArguments, sp, "rand.bool requires 0<=p<=1")
		}
		draw := float64(uniformUint64(ctx.RNG(), math.MaxUint64)) / float64(math.MaxUint64)
		return boolVal(draw < p), nil
	}))

	reg.Register("rand.finite_f64", newImpureFunc("rand.finite_f64", 0, 0, func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		return finiteFloat(ctx, 64), nil
	}))
	reg.Register("rand.finite_f32", newImpureFunc("rand.finite_f32", 0, 0, func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		return finiteFloat(ctx, 32), nil
	}))

	reg.Register("rand.u31_timestamp", newImpureFunc("rand.u31_timestamp", 0, 0, func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		const max31 = uint64(1)<<31 - 1
		secs := 1 + uniformUint64(ctx.RNG(), max31)
		ts := value.Timestamp{Instant: time.Unix(int64(secs), 0).UTC(), Zone: ctx.Zone()}
		return value.FromTimestamp(ts), nil
	}))

	reg.Register("rand.regex", regexFunc())

	reg.Register("rand.uuid", newImpureFunc("rand.uuid", 0, 0, func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		var b [16]byte
		binary.BigEndian.PutUint64(b[0:8], ctx.RNG().Uint64())
		binary.BigEndian.PutUint64(b[8:16], ctx.RNG().Uint64())
		b[6] = (b[6] & 0x0f) | 0x40 // version 4
		b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant
		return value.FromString(formatUUID(b)), nil
	}))

	reg.Register("rand.shuffle", newImpureFunc("rand.shuffle", 1, 1, func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		arr, err := argArray(args[0], sp, "rand.shuffle")
		if err != nil {
			return value.Value{}, err
		}
		seed := ctx.RNG().Uint64()
		perm := value.NewPermutation(arr.Len(), seed)
		return value.FromArray(value.NewPermutedArray(arr, perm)), nil
	}))
}

func rangeFunc(name string, inclusive bool) compiler.Func {
	return newImpureFunc(name, 2, 2, func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		lo, err := argNumber(args[0], sp, name)
		if err != nil {
			return value.Value{}, err
		}
		hi, err := argNumber(args[1], sp, name)
		if err != nil {
			return value.Value{}, err
		}
		if inclusive {
			if lo.Cmp(hi) > 0 {
				return value.Value{}, errs.New(errs.KindInvalidArguments, sp, "%s requires lo<=hi", name)
			}
		} else if lo.Cmp(hi) >= 0 {
			return value.Value{}, errs.New(errs.KindInvalidArguments, sp, "%s requires lo<hi", name)
		}
		if loU, ok := lo.AsUint64(); ok {
			if hiU, ok2 := hi.AsUint64(); ok2 {
				span := hiU - loU
				if inclusive {
					if span == math.MaxUint64 {
						return value.FromNumber(value.NewUint(ctx.RNG().Uint64())), nil
					}
					span++
				}
				return value.FromNumber(value.NewUint(loU + uniformUint64(ctx.RNG(), span))), nil
			}
		}
		loI, ok1 := lo.Int64()
		hiI, ok2 := hi.Int64()
		if !ok1 || !ok2 {
			return value.Value{}, errs.New(errs.KindIntegerOverflow, sp, "%s: bounds do not fit a 64-bit integer", name)
		}
		spanU := uint64(hiI - loI)
		if inclusive {
			if spanU == math.MaxUint64 {
				return value.FromNumber(value.NewInt(int64(ctx.RNG().Uint64()))), nil
			}
			spanU++
		}
		return value.FromNumber(value.NewInt(loI + int64(uniformUint64(ctx.RNG(), spanU)))), nil
	})
}

func uniformFloatFunc(name string, inclusive bool) compiler.Func {
	return newImpureFunc(name, 2, 2, func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		lo, err := argFloat64(args[0], sp, name)
		if err != nil {
			return value.Value{}, err
		}
		hi, err := argFloat64(args[1], sp, name)
		if err != nil {
			return value.Value{}, err
		}
		// rand.Float64 is in [0,1); for a continuous distribution the
		// inclusive/exclusive distinction at the upper bound has
		// probability zero and is not worth special-casing.
		r := randengine.NewRand(ctx.RNG())
		f := lo + r.Float64()*(hi-lo)
		n, err := value.FloatResult(f)
		if err != nil {
			return value.Value{}, errs.Wrap(errs.KindIntegerOverflow, sp, err, name)
		}
		return value.FromNumber(n), nil
	})
}

func finiteFloat(ctx compiler.EvalContext, bits int) value.Value {
	e := ctx.RNG()
	for {
		var f float64
		if bits == 32 {
			bits32 := uint32(e.Uint64())
			f = float64(math.Float32frombits(bits32))
		} else {
			f = math.Float64frombits(e.Uint64())
		}
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			return value.FromNumber(value.NewFloat(f))
		}
	}
}

func regexFunc() compiler.Func {
	return impureFunc{
		name: "rand.regex",
		min:  1, max: 3,
		apply: func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
			pat, err := argBytes(args[0], sp, "rand.regex")
			if err != nil {
				return value.Value{}, err
			}
			var flags regexgen.Flags
			if len(args) >= 2 && !args[1].IsNull() {
				fb, err := argBytes(args[1], sp, "rand.regex")
				if err != nil {
					return value.Value{}, err
				}
				flags, err = regexgen.ParseFlags(fb.String())
				if err != nil {
					return value.Value{}, errs.Wrap(errs.KindUnknownRegexFlag, sp, err, "rand.regex")
				}
			}
			maxRepeat := 100
			if len(args) == 3 && !args[2].IsNull() {
				mr, err := argInt64(args[2], sp, "rand.regex")
				if err != nil {
					return value.Value{}, err
				}
				maxRepeat = int(mr)
			}
			sampler, err := regexgen.Compile(pat.String(), flags, maxRepeat)
			if err != nil {
				return value.Value{}, errs.Wrap(errs.KindInvalidRegex, sp, err, "rand.regex")
			}
			out := sampler.Sample(ctx.RNG(), nil)
			return value.FromBytes(value.NewByteString(out)), nil
		},
	}
}
