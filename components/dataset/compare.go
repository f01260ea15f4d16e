package dataset

import (
	"strings"
	"time"
)

// Comparator orders two field values. It returns a negative number when a
// sorts before b, zero when they are equal and a positive number otherwise.
type Comparator func(a, b any) int

// Comparator names accepted by ComparatorByName and manifests.
const (
	CompareAuto    = "auto"
	CompareNumeric = "numeric"
	CompareLexical = "lexical"
	CompareDate    = "date"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"Jan 2006",
}

// Numeric compares both values after coercing them with Number.
func Numeric(a, b any) int {
	return compareFloat(Number(a), Number(b))
}

// Lexical compares the stringified values case-insensitively, breaking ties
// with a case-sensitive comparison so the order stays total.
func Lexical(a, b any) int {
	sa, sb := Stringify(a), Stringify(b)
	if c := strings.Compare(strings.ToLower(sa), strings.ToLower(sb)); c != 0 {
		return c
	}
	return strings.Compare(sa, sb)
}

// Date compares values as timestamps. Values that do not parse sort first.
func Date(a, b any) int {
	ta, okA := ParseTime(a)
	tb, okB := ParseTime(b)
	switch {
	case !okA && !okB:
		return Lexical(a, b)
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return ta.Compare(tb)
}

// Auto compares numbers numerically and falls back to Lexical for any other
// pairing.
func Auto(a, b any) int {
	if IsNumeric(a) && IsNumeric(b) {
		return Numeric(a, b)
	}
	return Lexical(a, b)
}

// ComparatorByName resolves a comparator from its manifest name.
func ComparatorByName(name string) (Comparator, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CompareAuto:
		return Auto, true
	case CompareNumeric:
		return Numeric, true
	case CompareLexical:
		return Lexical, true
	case CompareDate:
		return Date, true
	default:
		return nil, false
	}
}

// ParseTime reads time.Time values and common date string layouts.
func ParseTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, true
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
