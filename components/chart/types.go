package chart

import (
	"sort"
	"strings"
)

// Shape selects the chart primitive a configuration renders to.
type Shape string

const (
	ShapeLine Shape = "line"
	ShapeBar  Shape = "bar"
	ShapeArea Shape = "area"
)

// ParseShape normalizes a shape name. Unknown names fall back to ShapeLine.
func ParseShape(v string) Shape {
	switch Shape(strings.ToLower(strings.TrimSpace(v))) {
	case ShapeBar:
		return ShapeBar
	case ShapeArea:
		return ShapeArea
	default:
		return ShapeLine
	}
}

// Aggregation reduces the values that share an X-axis bucket.
type Aggregation string

const (
	AggregateSum     Aggregation = "sum"
	AggregateAverage Aggregation = "average"
	AggregateMin     Aggregation = "min"
	AggregateMax     Aggregation = "max"
	AggregateCount   Aggregation = "count"
)

// Valid reports whether the aggregation is one of the supported methods.
func (a Aggregation) Valid() bool {
	switch a {
	case AggregateSum, AggregateAverage, AggregateMin, AggregateMax, AggregateCount:
		return true
	}
	return false
}

// Operator is a filter comparison.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpContains    Operator = "contains"
)

// SortDirection orders the working set along the X-axis field.
type SortDirection string

const (
	SortNone SortDirection = "none"
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Series is one plotted Y-axis field.
type Series struct {
	Key         string      `json:"key" yaml:"key"`
	Label       string      `json:"label" yaml:"label"`
	Color       string      `json:"color" yaml:"color"`
	Aggregation Aggregation `json:"aggregation" yaml:"aggregation"`
	GroupBy     string      `json:"group_by,omitempty" yaml:"group_by,omitempty"`
}

// SeriesPatch is a partial Series update; nil fields are left untouched.
type SeriesPatch struct {
	Label       *string      `json:"label,omitempty"`
	Color       *string      `json:"color,omitempty"`
	Aggregation *Aggregation `json:"aggregation,omitempty"`
	GroupBy     *string      `json:"group_by,omitempty"`
}

// Filter narrows the working set. Filters are ANDed.
type Filter struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value" yaml:"value"`
}

// ActiveSet tracks which series keys are visible.
type ActiveSet map[string]bool

// NewActiveSet returns a set holding every series key.
func NewActiveSet(series []Series) ActiveSet {
	out := make(ActiveSet, len(series))
	for _, s := range series {
		out[s.Key] = true
	}
	return out
}

// Has reports whether key is visible.
func (a ActiveSet) Has(key string) bool {
	return a[key]
}

// Keys returns the visible keys in sorted order.
func (a ActiveSet) Keys() []string {
	out := make([]string, 0, len(a))
	for k, on := range a {
		if on {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Clone copies the set.
func (a ActiveSet) Clone() ActiveSet {
	out := make(ActiveSet, len(a))
	for k, on := range a {
		if on {
			out[k] = true
		}
	}
	return out
}

// Config is the full chart configuration a Dashboard derives its working set
// and rendering from.
type Config struct {
	XField        string        `json:"x_field" yaml:"x_field"`
	Shape         Shape         `json:"shape" yaml:"shape"`
	Series        []Series      `json:"series" yaml:"series"`
	Active        ActiveSet     `json:"active" yaml:"active"`
	Filters       []Filter      `json:"filters" yaml:"filters"`
	SortDirection SortDirection `json:"sort_direction" yaml:"sort_direction"`
	Comparator    string        `json:"comparator,omitempty" yaml:"comparator,omitempty"`
	ShowGrid      bool          `json:"show_grid" yaml:"show_grid"`
	ShowLegend    bool          `json:"show_legend" yaml:"show_legend"`
	ShowTooltip   bool          `json:"show_tooltip" yaml:"show_tooltip"`
}

func (c Config) clone() Config {
	out := c
	out.Series = append([]Series(nil), c.Series...)
	out.Filters = append([]Filter(nil), c.Filters...)
	if c.Active != nil {
		out.Active = c.Active.Clone()
	}
	return out
}

// ActiveSeries returns the configured series that are currently visible, in
// configuration order.
func (c Config) ActiveSeries() []Series {
	out := make([]Series, 0, len(c.Series))
	for _, s := range c.Series {
		if c.Active.Has(s.Key) {
			out = append(out, s)
		}
	}
	return out
}
