package value

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// ParseNumberLiteral parses the raw text of a numeric literal token into a
// Number, preferring an exact integer parse and falling back to float.
// Integer literals beyond the exact 128-bit range parse as floats, the
// same fallback arithmetic overflow takes.
func ParseNumberLiteral(text string) (Number, error) {
	if !strings.ContainsAny(text, ".eE") {
		if i, ok := new(big.Int).SetString(text, 10); ok && fitsInt128(i) {
			return NewBigInt(i), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Number{}, fmt.Errorf("invalid numeric literal %q: %w", text, err)
	}
	return NewFloat(f), nil
}

// timestampLayouts are tried in order; a trailing IANA zone name is
// detected and stripped separately, before any layout is tried.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a naive or zone-qualified timestamp string. When
// zoneName is empty and text ends in a space-separated name that
// time.LoadLocation accepts, that name is stripped from text and used as
// zoneName. A non-empty zoneName is looked up via time.LoadLocation and
// attached to the result; otherwise defaultZone is used for display
// purposes only (the instant itself is parsed and stored as UTC wall-clock).
func ParseTimestamp(text string, zoneName string, defaultZone *time.Location) (Timestamp, error) {
	raw := text
	if zoneName == "" {
		if idx := strings.LastIndexByte(text, ' '); idx >= 0 {
			if loc, err := time.LoadLocation(text[idx+1:]); err == nil {
				zoneName = text[idx+1:]
				raw = text[:idx]
				_ = loc
			}
		}
	}
	var t time.Time
	var err error
	for _, layout := range timestampLayouts {
		t, err = time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", text, err)
	}
	zone := defaultZone
	if zoneName != "" {
		loc, lerr := time.LoadLocation(zoneName)
		if lerr != nil {
			return Timestamp{}, fmt.Errorf("unknown time zone %q: %w", zoneName, lerr)
		}
		zone = loc
	}
	return Timestamp{Instant: t, Zone: zone}, nil
}
