package functions

import (
	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// clampRange implements the substring boundary rules: a start before the
// first element clamps to it, and a negative length clamps to empty,
// rather than erroring.
func clampRange(total, start1Based, length int, hasLength bool) (begin, end int) {
	start0 := start1Based - 1
	if start0 < 0 {
		start0 = 0
	}
	if start0 > total {
		start0 = total
	}
	if !hasLength {
		return start0, total
	}
	if length < 0 {
		length = 0
	}
	end0 := start0 + length
	if end0 > total {
		end0 = total
	}
	return start0, end0
}

func registerStringFuncs(reg *compiler.Registry) {
	reg.Register("substring_using_characters", newFunc("substring_using_characters", true, 2, 3, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() {
			return value.Null(), nil
		}
		b, err := argBytes(args[0], sp, "substring_using_characters")
		if err != nil {
			return value.Value{}, err
		}
		start, err := argInt64(args[1], sp, "substring_using_characters")
		if err != nil {
			return value.Value{}, err
		}
		hasLen := len(args) == 3 && !args[2].IsNull()
		length := 0
		if hasLen {
			l, err := argInt64(args[2], sp, "substring_using_characters")
			if err != nil {
				return value.Value{}, err
			}
			length = int(l)
		}
		begin, end := clampRange(b.CharLen(), int(start), length, hasLen)
		return value.FromBytes(b.CharRange(begin, end)), nil
	}))

	reg.Register("substring_using_octets", newFunc("substring_using_octets", true, 2, 3, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() {
			return value.Null(), nil
		}
		b, err := argBytes(args[0], sp, "substring_using_octets")
		if err != nil {
			return value.Value{}, err
		}
		start, err := argInt64(args[1], sp, "substring_using_octets")
		if err != nil {
			return value.Value{}, err
		}
		hasLen := len(args) == 3 && !args[2].IsNull()
		length := 0
		if hasLen {
			l, err := argInt64(args[2], sp, "substring_using_octets")
			if err != nil {
				return value.Value{}, err
			}
			length = int(l)
		}
		begin, end := clampRange(b.Len(), int(start), length, hasLen)
		raw := b.Bytes()[begin:end]
		return value.FromBytes(value.NewByteString(append([]byte(nil), raw...))), nil
	}))

	reg.Register("char_length", newFunc("char_length", true, 1, 1, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() {
			return value.Null(), nil
		}
		b, err := argBytes(args[0], sp, "char_length")
		if err != nil {
			return value.Value{}, err
		}
		return value.FromNumber(value.NewInt(int64(b.CharLen()))), nil
	}))

	reg.Register("octet_length", newFunc("octet_length", true, 1, 1, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() {
			return value.Null(), nil
		}
		b, err := argBytes(args[0], sp, "octet_length")
		if err != nil {
			return value.Value{}, err
		}
		return value.FromNumber(value.NewInt(int64(b.Len()))), nil
	}))
}
