package table

import (
	"strings"

	"github.com/goliatone/go-dataview/components/dataset"
)

// FilterFunc decides whether a record passes a column filter. field is the
// column's accessor path (its ID unless Accessor is set) and value is the
// filter value currently stored for the column.
type FilterFunc func(rec dataset.Record, field string, value any) bool

// MultiFieldFilter matches the filter text, case-insensitively, as a
// substring of the primary field or any of the secondary fields.
func MultiFieldFilter(secondary ...string) FilterFunc {
	fields := append([]string(nil), secondary...)
	return func(rec dataset.Record, field string, value any) bool {
		needle := strings.ToLower(strings.TrimSpace(dataset.Stringify(value)))
		if needle == "" {
			return true
		}
		if containsFold(rec.Value(field), needle) {
			return true
		}
		for _, f := range fields {
			if containsFold(rec.Value(f), needle) {
				return true
			}
		}
		return false
	}
}

// StatusFilter keeps records whose field value is one of the accepted values.
// An empty selection accepts every record.
func StatusFilter() FilterFunc {
	return func(rec dataset.Record, field string, value any) bool {
		accepted := filterValues(value)
		if len(accepted) == 0 {
			return true
		}
		current := dataset.Stringify(rec.Value(field))
		for _, v := range accepted {
			if v == current {
				return true
			}
		}
		return false
	}
}

func includesFilter(rec dataset.Record, field string, value any) bool {
	needle := strings.ToLower(strings.TrimSpace(dataset.Stringify(value)))
	if needle == "" {
		return true
	}
	return containsFold(rec.Value(field), needle)
}

func containsFold(v any, lowerNeedle string) bool {
	if v == nil {
		return false
	}
	return strings.Contains(strings.ToLower(dataset.Stringify(v)), lowerNeedle)
}

// filterValues normalizes set-style filter values.
func filterValues(value any) []string {
	switch val := value.(type) {
	case nil:
		return nil
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, dataset.Stringify(item))
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		return []string{dataset.Stringify(val)}
	}
}

func isEmptyFilter(value any) bool {
	switch val := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}
