package query

import (
	"cmp"
	"strings"
	"time"

	"github.com/asaidimu/go-tabula/core/schema"
)

// Normalize reads a value as the comparable kind of a field type: float64 for
// numeric columns, time.Time for dates, string for text and enums, bool for
// booleans. It returns false for nil and for values of the wrong kind.
func Normalize(v any, t schema.FieldType) (any, bool) {
	switch {
	case t.IsNumeric():
		f, ok := ToFloat64(v)
		return f, ok
	case t.IsTextual():
		s, ok := ToString(v)
		return s, ok
	case t == schema.FieldTypeDate:
		ts, ok := ToTime(v)
		return ts, ok
	case t == schema.FieldTypeBoolean:
		b, ok := ToBool(v)
		return b, ok
	default:
		return nil, false
	}
}

// Compare orders two values of a column type and returns -1, 0 or 1. Strings are
// ordered by Unicode code point, which for UTF-8 is the byte order used by
// strings.Compare. The boolean is false when either value cannot be read as the
// type.
func Compare(a, b any, t schema.FieldType) (int, bool) {
	na, ok := Normalize(a, t)
	if !ok {
		return 0, false
	}
	nb, ok := Normalize(b, t)
	if !ok {
		return 0, false
	}
	return compareNormalized(na, nb), true
}

// compareNormalized compares two values produced by Normalize for the same type.
func compareNormalized(a, b any) int {
	switch av := a.(type) {
	case float64:
		return cmp.Compare(av, b.(float64))
	case string:
		return strings.Compare(av, b.(string))
	case time.Time:
		return av.Compare(b.(time.Time))
	case bool:
		bv := b.(bool)
		// false < true
		if !av && bv {
			return -1
		} else if av && !bv {
			return 1
		}
		return 0
	default:
		return 0
	}
}
