// Package errs defines the disjoint error kinds shared by the parser,
// compiler, evaluator, and write pipeline. Every error value is annotated
// with a span; causal chains use plain fmt.Errorf %w wrapping rather than
// a bespoke error-chain library.
package errs

import (
	"errors"
	"fmt"

	"github.com/sqldef/tablegen/internal/span"
)

type Kind int

const (
	KindParseTemplate Kind = iota
	KindUnknownFunction
	KindUnknownSqlFunction
	KindUnknownIdentifier
	KindIntegerOverflow
	KindNotEnoughArguments
	KindInvalidArgumentType
	KindInvalidArguments
	KindInvalidRegex
	KindUnknownRegexFlag
	KindUnsupportedRegexElement
	KindInvalidTimestampString
	KindDivisionByZero
	KindIO
	KindPanic
)

func (k Kind) String() string {
	switch k {
	case KindParseTemplate:
		return "ParseTemplate"
	case KindUnknownFunction:
		return "UnknownFunction"
	case KindUnknownSqlFunction:
		return "UnknownSqlFunction"
	case KindUnknownIdentifier:
		return "UnknownIdentifier"
	case KindIntegerOverflow:
		return "IntegerOverflow"
	case KindNotEnoughArguments:
		return "NotEnoughArguments"
	case KindInvalidArgumentType:
		return "InvalidArgumentType"
	case KindInvalidArguments:
		return "InvalidArguments"
	case KindInvalidRegex:
		return "InvalidRegex"
	case KindUnknownRegexFlag:
		return "UnknownRegexFlag"
	case KindUnsupportedRegexElement:
		return "UnsupportedRegexElement"
	case KindInvalidTimestampString:
		return "InvalidTimestampString"
	case KindDivisionByZero:
		return "DivisionByZero"
	case KindIO:
		return "Io"
	case KindPanic:
		return "Panic"
	default:
		return "Unknown"
	}
}

// Error is the single error type produced anywhere in the compiler,
// evaluator, or row writer. It always carries a Kind and a Span (Null for
// out-of-template errors) and supports the usual errors.Is/As/Unwrap chain.
type Error struct {
	Kind  Kind
	Span  span.Span
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, sp span.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Span: sp, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, sp span.Span, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Span: sp, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind of err if it (or something it wraps) is an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Causes renders err and each wrapped cause on its own line, preceded by
// the given snippet, for user-visible failure output.
func Causes(snippet string, err error) string {
	out := snippet + "\n"
	for err != nil {
		out += "  " + err.Error() + "\n"
		err = errors.Unwrap(err)
	}
	return out
}
