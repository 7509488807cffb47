// Package query provides a set of utility functions to support the view builder
// and processor. These helpers convert record and filter values into the few
// kinds the engine compares: float64, time.Time, string and bool.
package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/asaidimu/go-tabula/core/schema"
)

// dateLayouts are tried in order when a date is parsed from text.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
}

// ToFloat64 converts a value of any numeric kind, including named numeric types
// and json.Number, to a float64. Strings are not parsed: a textual value does not
// count as a number.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// ToTime converts a time.Time or a non-nil *time.Time to a time.Time.
func ToTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, true
	default:
		return time.Time{}, false
	}
}

// ToString converts a value of string kind, including named string types such
// as enum statuses, to a string.
func ToString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// ToBool converts a value of bool kind to a bool.
func ToBool(v any) (bool, bool) {
	if v == nil {
		return false, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

// SearchText renders a value as the text global search looks into. Values that
// have no sensible textual form return false.
func SearchText(v any) (string, bool) {
	if s, ok := ToString(v); ok {
		return s, true
	}
	switch val := v.(type) {
	case nil:
		return "", false
	case time.Time:
		return val.Format(time.DateOnly), true
	case fmt.Stringer:
		return val.String(), true
	}
	if f, ok := ToFloat64(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

// ParseValue converts text typed by a user into a value of the given field type.
func ParseValue(s string, t schema.FieldType) (any, error) {
	s = strings.TrimSpace(s)
	switch {
	case t == schema.FieldTypeInteger:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not an integer: %w", s, err)
		}
		return i, nil
	case t.IsNumeric():
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a number: %w", s, err)
		}
		return f, nil
	case t == schema.FieldTypeBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a boolean: %w", s, err)
		}
		return b, nil
	case t == schema.FieldTypeDate:
		return ParseTime(s)
	default:
		return s, nil
	}
}

// ParseConstraint converts the textual values of a constraint to the given field
// type, as ParseValue does. Values that are not strings are kept as they are.
func ParseConstraint(c Constraint, t schema.FieldType) (Constraint, error) {
	parse := func(v FilterValue) (FilterValue, error) {
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		return ParseValue(s, t)
	}

	out := c.Clone()
	var err error
	if out.Value, err = parse(c.Value); err != nil {
		return c, err
	}
	for i, v := range out.Values {
		if out.Values[i], err = parse(v); err != nil {
			return c, err
		}
	}
	if out.From, err = parse(c.From); err != nil {
		return c, err
	}
	if out.To, err = parse(c.To); err != nil {
		return c, err
	}
	return out, nil
}

// ParseTime parses a timestamp or a plain date.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("'%s' is not a recognised date", s)
}
