package functions

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

func registerCodecFuncs(reg *compiler.Registry) {
	reg.Register("encode.hex", codecFunc("encode.hex", func(b []byte) (string, error) {
		return strings.ToUpper(hex.EncodeToString(b)), nil
	}))
	reg.Register("decode.hex", codecBytesFunc("decode.hex", hex.DecodeString))

	reg.Register("encode.base64", codecFunc("encode.base64", func(b []byte) (string, error) {
		return base64.StdEncoding.EncodeToString(b), nil
	}))
	reg.Register("decode.base64", codecBytesFunc("decode.base64", base64.StdEncoding.DecodeString))

	reg.Register("encode.base64url", codecFunc("encode.base64url", func(b []byte) (string, error) {
		return base64.URLEncoding.EncodeToString(b), nil
	}))
}

func codecFunc(name string, fn func([]byte) (string, error)) *simpleFunc {
	return newFunc(name, true, 1, 1, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() {
			return value.Null(), nil
		}
		b, err := argBytes(args[0], sp, name)
		if err != nil {
			return value.Value{}, err
		}
		s, err := fn(b.Bytes())
		if err != nil {
			return value.Value{}, errs.Wrap(errs.KindInvalidArguments, sp, err, name)
		}
		return value.FromString(s), nil
	})
}

func codecBytesFunc(name string, fn func(string) ([]byte, error)) *simpleFunc {
	return newFunc(name, true, 1, 1, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() {
			return value.Null(), nil
		}
		b, err := argBytes(args[0], sp, name)
		if err != nil {
			return value.Value{}, err
		}
		out, err := fn(b.String())
		if err != nil {
			return value.Value{}, errs.Wrap(errs.KindInvalidArguments, sp, err, name)
		}
		return value.FromBytes(value.NewByteString(out)), nil
	})
}
