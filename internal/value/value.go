package value

import (
	"fmt"
	"time"
)

type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindBytes
	KindTimestamp
	KindInterval
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBytes:
		return "bytes"
	case KindTimestamp:
		return "timestamp"
	case KindInterval:
		return "interval"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Timestamp is a naive instant paired with a named IANA zone used only for
// formatting; arithmetic is performed in UTC.
type Timestamp struct {
	Instant time.Time // always stored as UTC wall-clock
	Zone    *time.Location
}

// Interval is a signed microsecond duration.
type Interval int64 // microseconds

// Value is the tagged scalar shared by the evaluator, the function
// registry, and the formatters.
type Value struct {
	kind Kind
	num  Number
	str  ByteString
	ts   Timestamp
	iv   Interval
	arr  *Array
}

func Null() Value { return Value{kind: KindNull} }

func FromNumber(n Number) Value { return Value{kind: KindNumber, num: n} }

func FromBytes(b ByteString) Value { return Value{kind: KindBytes, str: b} }

func FromString(s string) Value { return FromBytes(NewByteStringFromString(s)) }

func FromTimestamp(t Timestamp) Value { return Value{kind: KindTimestamp, ts: t} }

func FromInterval(iv Interval) Value { return Value{kind: KindInterval, iv: iv} }

func FromArray(a *Array) Value { return Value{kind: KindArray, arr: a} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Number() (Number, bool) {
	if v.kind != KindNumber {
		return Number{}, false
	}
	return v.num, true
}

func (v Value) Bytes() (ByteString, bool) {
	if v.kind != KindBytes {
		return ByteString{}, false
	}
	return v.str, true
}

func (v Value) Timestamp() (Timestamp, bool) {
	if v.kind != KindTimestamp {
		return Timestamp{}, false
	}
	return v.ts, true
}

func (v Value) Interval() (Interval, bool) {
	if v.kind != KindInterval {
		return 0, false
	}
	return v.iv, true
}

func (v Value) Array() (*Array, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// Ordering is the result of a SQL-style three-valued comparison.
type Ordering int

const (
	OrdNull Ordering = iota
	OrdLess
	OrdEqual
	OrdGreater
)

// SQLCmp implements the spec's cross-type comparison: Null propagates,
// numbers compare by value, strings/bytes compare lexicographically,
// mixed string/bytes compares as bytes, otherwise type mismatch is an error.
func (v Value) SQLCmp(o Value) (Ordering, error) {
	if v.IsNull() || o.IsNull() {
		return OrdNull, nil
	}
	switch v.kind {
	case KindNumber:
		if o.kind != KindNumber {
			return OrdNull, fmt.Errorf("cannot compare %s with %s", v.kind, o.kind)
		}
		return ordFromInt(v.num.Cmp(o.num)), nil
	case KindBytes:
		if o.kind != KindBytes {
			return OrdNull, fmt.Errorf("cannot compare %s with %s", v.kind, o.kind)
		}
		return ordFromInt(v.str.Cmp(o.str)), nil
	case KindTimestamp:
		if o.kind != KindTimestamp {
			return OrdNull, fmt.Errorf("cannot compare %s with %s", v.kind, o.kind)
		}
		switch {
		case v.ts.Instant.Before(o.ts.Instant):
			return OrdLess, nil
		case v.ts.Instant.After(o.ts.Instant):
			return OrdGreater, nil
		default:
			return OrdEqual, nil
		}
	case KindInterval:
		if o.kind != KindInterval {
			return OrdNull, fmt.Errorf("cannot compare %s with %s", v.kind, o.kind)
		}
		return ordFromInt(int(v.iv - o.iv)), nil
	default:
		return OrdNull, fmt.Errorf("cannot compare %s with %s", v.kind, o.kind)
	}
}

func ordFromInt(c int) Ordering {
	switch {
	case c < 0:
		return OrdLess
	case c > 0:
		return OrdGreater
	default:
		return OrdEqual
	}
}

// IdentityEqual implements `IS`/`IS NOT`: unlike SQLCmp, NULL IS NULL is
// true rather than propagating NULL.
func (v Value) IdentityEqual(o Value) bool {
	if v.IsNull() || o.IsNull() {
		return v.IsNull() == o.IsNull()
	}
	ord, err := v.SQLCmp(o)
	return err == nil && ord == OrdEqual
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindNumber:
		return v.num.String()
	case KindBytes:
		return v.str.String()
	case KindTimestamp:
		return v.ts.Instant.In(v.ts.Zone).Format("2006-01-02 15:04:05.999999")
	case KindInterval:
		return fmt.Sprintf("%dus", int64(v.iv))
	case KindArray:
		return "ARRAY"
	default:
		return "?"
	}
}
