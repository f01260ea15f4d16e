package chart

import (
	"math"
	"sort"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-dataview/components/dataset"
)

// MaxDefaultSeries caps how many numeric fields InitializeSeries picks.
const MaxDefaultSeries = 5

// DefaultTickSteps is the number of intervals on the Y axis.
const DefaultTickSteps = 5

// Palette is the fixed color rotation used for derived series.
var Palette = []string{
	"#3b82f6",
	"#10b981",
	"#f59e0b",
	"#ef4444",
	"#8b5cf6",
	"#ec4899",
	"#14b8a6",
	"#f97316",
}

// ExtractAvailableFields returns the sorted union of keys across all points.
func ExtractAvailableFields(data []dataset.Record) []string {
	seen := map[string]struct{}{}
	for _, rec := range data {
		for key := range rec {
			seen[key] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// NumericFields returns the fields whose every non-nil value is a number.
func NumericFields(data []dataset.Record) []string {
	out := []string{}
	for _, field := range ExtractAvailableFields(data) {
		seen := false
		numeric := true
		for _, rec := range data {
			v, ok := rec[field]
			if !ok || v == nil {
				continue
			}
			seen = true
			if !dataset.IsNumeric(v) {
				numeric = false
				break
			}
		}
		if seen && numeric {
			out = append(out, field)
		}
	}
	return out
}

// DefaultXField picks the first non-numeric field, or the first field when
// every field is numeric.
func DefaultXField(data []dataset.Record) string {
	fields := ExtractAvailableFields(data)
	if len(fields) == 0 {
		return ""
	}
	numeric := map[string]bool{}
	for _, f := range NumericFields(data) {
		numeric[f] = true
	}
	for _, f := range fields {
		if !numeric[f] && f != dataset.IDField {
			return f
		}
	}
	return fields[0]
}

// InitializeSeries derives up to MaxDefaultSeries series from the numeric
// fields of data, skipping the X-axis field. Colors rotate through Palette.
func InitializeSeries(data []dataset.Record, xField string) []Series {
	out := []Series{}
	for _, field := range NumericFields(data) {
		if field == xField {
			continue
		}
		out = append(out, Series{
			Key:         field,
			Label:       strcase.ToCase(field, strcase.TitleCase, ' '),
			Color:       Palette[len(out)%len(Palette)],
			Aggregation: AggregateSum,
		})
		if len(out) == MaxDefaultSeries {
			break
		}
	}
	return out
}

// ApplyFilters keeps the points that satisfy every filter, preserving order.
func ApplyFilters(data []dataset.Record, filters []Filter) []dataset.Record {
	out := make([]dataset.Record, 0, len(data))
	for _, rec := range data {
		if matchesAll(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesAll(rec dataset.Record, filters []Filter) bool {
	for _, f := range filters {
		if f.Field == "" {
			continue
		}
		if !f.Matches(rec) {
			return false
		}
	}
	return true
}

// Matches evaluates the filter against one point. Numeric operators reject
// points where either side is not a number; unknown operators accept everything.
func (f Filter) Matches(rec dataset.Record) bool {
	value := rec.Value(f.Field)
	switch f.Operator {
	case OpEquals:
		return looseEqual(value, f.Value)
	case OpNotEquals:
		return !looseEqual(value, f.Value)
	case OpGreaterThan, OpLessThan:
		left, ok := dataset.ParseNumber(value)
		if !ok {
			return false
		}
		right, ok := dataset.ParseNumber(f.Value)
		if !ok {
			return false
		}
		if f.Operator == OpGreaterThan {
			return left > right
		}
		return left < right
	case OpContains:
		return strings.Contains(
			strings.ToLower(dataset.Stringify(value)),
			strings.ToLower(dataset.Stringify(f.Value)),
		)
	default:
		return true
	}
}

func looseEqual(a, b any) bool {
	if dataset.Stringify(a) == dataset.Stringify(b) {
		return true
	}
	fa, okA := dataset.ParseNumber(a)
	fb, okB := dataset.ParseNumber(b)
	return okA && okB && fa == fb
}

// SortData returns a copy of data stably ordered by field. A nil comparator
// uses dataset.Auto; SortNone keeps the input order.
func SortData(data []dataset.Record, field string, direction SortDirection, cmp dataset.Comparator) []dataset.Record {
	out := append([]dataset.Record(nil), data...)
	if field == "" || (direction != SortAsc && direction != SortDesc) {
		return out
	}
	if cmp == nil {
		cmp = dataset.Auto
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i].Value(field), out[j].Value(field))
		if direction == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// CalculateMaxValue returns the largest value across the active series,
// rounded up to the nearest thousand. Empty input yields 0.
func CalculateMaxValue(data []dataset.Record, series []Series, active ActiveSet) float64 {
	max := 0.0
	for _, s := range series {
		if !active.Has(s.Key) {
			continue
		}
		for _, rec := range data {
			if v := dataset.Number(rec.Value(s.Key)); v > max {
				max = v
			}
		}
	}
	return math.Ceil(max/1000) * 1000
}

// MaxValue returns the largest aggregated point, rounded up to the nearest
// thousand. Buckets that merge repeated x values can exceed any raw value.
func (a Aggregated) MaxValue() float64 {
	max := 0.0
	for _, s := range a.Series {
		for _, p := range s.Points {
			if p.Value > max {
				max = p.Value
			}
		}
	}
	return math.Ceil(max/1000) * 1000
}

// GenerateYAxisTicks divides [0, max] into steps equal intervals and returns
// the steps+1 boundaries. steps <= 0 uses DefaultTickSteps.
func GenerateYAxisTicks(max float64, steps int) []float64 {
	if steps <= 0 {
		steps = DefaultTickSteps
	}
	ticks := make([]float64, steps+1)
	for i := range ticks {
		ticks[i] = max * float64(i) / float64(steps)
	}
	return ticks
}

// Point is one aggregated value on the X axis.
type Point struct {
	X     string  `json:"x"`
	Value float64 `json:"value"`
}

// AggregatedSeries is a series reduced to one value per category.
type AggregatedSeries struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Group  string  `json:"group,omitempty"`
	Points []Point `json:"points"`
}

// Values returns the point values in category order.
func (s AggregatedSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Aggregated is the renderable form of a working set.
type Aggregated struct {
	Categories []string           `json:"categories"`
	Series     []AggregatedSeries `json:"series"`
}

// Aggregate buckets data by the stringified X value (in first-seen order) and
// reduces every series with its aggregation. A series with GroupBy expands to
// one aggregated series per distinct group value.
func Aggregate(data []dataset.Record, xField string, series []Series) Aggregated {
	var out Aggregated
	index := map[string]int{}
	for _, rec := range data {
		x := dataset.Stringify(rec.Value(xField))
		if _, ok := index[x]; !ok {
			index[x] = len(out.Categories)
			out.Categories = append(out.Categories, x)
		}
	}

	for _, s := range series {
		if s.GroupBy == "" {
			out.Series = append(out.Series, reduceSeries(s, "", data, xField, out.Categories, index))
			continue
		}
		groups := []string{}
		byGroup := map[string][]dataset.Record{}
		for _, rec := range data {
			g := dataset.Stringify(rec.Value(s.GroupBy))
			if _, ok := byGroup[g]; !ok {
				groups = append(groups, g)
			}
			byGroup[g] = append(byGroup[g], rec)
		}
		for _, g := range groups {
			out.Series = append(out.Series, reduceSeries(s, g, byGroup[g], xField, out.Categories, index))
		}
	}
	return out
}

func reduceSeries(s Series, group string, data []dataset.Record, xField string, categories []string, index map[string]int) AggregatedSeries {
	buckets := make([][]float64, len(categories))
	for _, rec := range data {
		i := index[dataset.Stringify(rec.Value(xField))]
		buckets[i] = append(buckets[i], dataset.Number(rec.Value(s.Key)))
	}
	agg := AggregatedSeries{
		Key:    s.Key,
		Label:  s.Label,
		Color:  s.Color,
		Group:  group,
		Points: make([]Point, len(categories)),
	}
	if agg.Label == "" {
		agg.Label = strcase.ToCase(s.Key, strcase.TitleCase, ' ')
	}
	if group != "" {
		agg.Key = s.Key + ":" + group
		agg.Label = agg.Label + " (" + group + ")"
	}
	for i, x := range categories {
		agg.Points[i] = Point{X: x, Value: reduce(s.Aggregation, buckets[i])}
	}
	return agg
}

func reduce(method Aggregation, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch method {
	case AggregateCount:
		return float64(len(values))
	case AggregateAverage:
		return sum(values) / float64(len(values))
	case AggregateMin:
		out := values[0]
		for _, v := range values[1:] {
			out = math.Min(out, v)
		}
		return out
	case AggregateMax:
		out := values[0]
		for _, v := range values[1:] {
			out = math.Max(out, v)
		}
		return out
	default:
		return sum(values)
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
