package chart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-dataview/components/dataset"
)

var (
	ErrUnknownField     = errors.New("chart: unknown field")
	ErrUnknownSeries    = errors.New("chart: unknown series")
	ErrDuplicateSeries  = errors.New("chart: series already configured")
	ErrInvalidOperator  = errors.New("chart: invalid filter operator")
	ErrFilterIndex      = errors.New("chart: filter index out of range")
	ErrUnknownComparer  = errors.New("chart: unknown comparator")
	ErrInvalidDirection = errors.New("chart: invalid sort direction")
)

// DashboardOptions configures a Dashboard. A nil Config derives defaults from
// the data.
type DashboardOptions struct {
	ID        string
	Config    *Config
	Renderer  Renderer
	TickSteps int
}

// Dashboard holds a dataset plus its chart configuration and derives the
// filtered and sorted working set, axis ticks and rendered markup from them.
type Dashboard struct {
	mu       sync.RWMutex
	id       string
	title    string
	data     []dataset.Record
	cfg      Config
	renderer Renderer
	steps    int
}

// DefaultConfig derives the initial configuration for data: the first
// non-numeric field on X, up to five numeric series (all visible), line shape,
// no sort and every display toggle on.
func DefaultConfig(data []dataset.Record) Config {
	x := DefaultXField(data)
	series := InitializeSeries(data, x)
	return Config{
		XField:        x,
		Shape:         ShapeLine,
		Series:        series,
		Active:        NewActiveSet(series),
		SortDirection: SortNone,
		ShowGrid:      true,
		ShowLegend:    true,
		ShowTooltip:   true,
	}
}

// NewDashboard builds a dashboard over data.
func NewDashboard(title string, data []dataset.Record, opts DashboardOptions) *Dashboard {
	cfg := DefaultConfig(data)
	if opts.Config != nil {
		cfg = normalizeConfig(opts.Config.clone())
	}
	if opts.Renderer == nil {
		opts.Renderer = NewEChartsRenderer()
	}
	if opts.TickSteps <= 0 {
		opts.TickSteps = DefaultTickSteps
	}
	return &Dashboard{
		id:       opts.ID,
		title:    title,
		data:     append([]dataset.Record(nil), data...),
		cfg:      cfg,
		renderer: opts.Renderer,
		steps:    opts.TickSteps,
	}
}

func normalizeConfig(cfg Config) Config {
	cfg.Shape = ParseShape(string(cfg.Shape))
	if cfg.SortDirection == "" {
		cfg.SortDirection = SortNone
	}
	for i := range cfg.Series {
		if !cfg.Series[i].Aggregation.Valid() {
			cfg.Series[i].Aggregation = AggregateSum
		}
		if cfg.Series[i].Color == "" {
			cfg.Series[i].Color = Palette[i%len(Palette)]
		}
	}
	if cfg.Active == nil {
		cfg.Active = NewActiveSet(cfg.Series)
	}
	return cfg
}

// ID returns the dashboard identifier.
func (d *Dashboard) ID() string { return d.id }

// Title returns the chart title.
func (d *Dashboard) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

// SetTitle replaces the chart title.
func (d *Dashboard) SetTitle(title string) {
	d.mu.Lock()
	d.title = title
	d.mu.Unlock()
}

// Data returns a copy of the source records.
func (d *Dashboard) Data() []dataset.Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]dataset.Record(nil), d.data...)
}

// SetData replaces the source records, keeping the configuration.
func (d *Dashboard) SetData(data []dataset.Record) {
	d.mu.Lock()
	d.data = append([]dataset.Record(nil), data...)
	d.mu.Unlock()
}

// Config returns a copy of the configuration.
func (d *Dashboard) Config() Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg.clone()
}

// Configure replaces the whole configuration.
func (d *Dashboard) Configure(cfg Config) error {
	if _, ok := dataset.ComparatorByName(cfg.Comparator); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComparer, cfg.Comparator)
	}
	for _, f := range cfg.Filters {
		if !validOperator(f.Operator) {
			return fmt.Errorf("%w: %s", ErrInvalidOperator, f.Operator)
		}
	}
	d.mu.Lock()
	d.cfg = normalizeConfig(cfg.clone())
	d.mu.Unlock()
	return nil
}

// AvailableFields lists every field present in the data.
func (d *Dashboard) AvailableFields() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return ExtractAvailableFields(d.data)
}

// SetXField moves the X axis to field.
func (d *Dashboard) SetXField(field string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !containsString(ExtractAvailableFields(d.data), field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	d.cfg.XField = field
	return nil
}

// SetShape switches between line, bar and area.
func (d *Dashboard) SetShape(shape Shape) {
	d.mu.Lock()
	d.cfg.Shape = ParseShape(string(shape))
	d.mu.Unlock()
}

// SetSortDirection orders the working set along the X field.
func (d *Dashboard) SetSortDirection(dir SortDirection) error {
	switch dir {
	case SortAsc, SortDesc, SortNone:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDirection, dir)
	}
	d.mu.Lock()
	d.cfg.SortDirection = dir
	d.mu.Unlock()
	return nil
}

// SetComparator selects the comparator used for sorting by name.
func (d *Dashboard) SetComparator(name string) error {
	if _, ok := dataset.ComparatorByName(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComparer, name)
	}
	d.mu.Lock()
	d.cfg.Comparator = strings.ToLower(strings.TrimSpace(name))
	d.mu.Unlock()
	return nil
}

// SetDisplay toggles grid lines, legend and tooltip together.
func (d *Dashboard) SetDisplay(grid, legend, tooltip bool) {
	d.mu.Lock()
	d.cfg.ShowGrid, d.cfg.ShowLegend, d.cfg.ShowTooltip = grid, legend, tooltip
	d.mu.Unlock()
}

// AddFilter appends a filter.
func (d *Dashboard) AddFilter(f Filter) error {
	if strings.TrimSpace(f.Field) == "" {
		return fmt.Errorf("%w: empty", ErrUnknownField)
	}
	if !validOperator(f.Operator) {
		return fmt.Errorf("%w: %s", ErrInvalidOperator, f.Operator)
	}
	d.mu.Lock()
	d.cfg.Filters = append(d.cfg.Filters, f)
	d.mu.Unlock()
	return nil
}

// RemoveFilter drops the filter at index.
func (d *Dashboard) RemoveFilter(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.cfg.Filters) {
		return fmt.Errorf("%w: %d", ErrFilterIndex, index)
	}
	d.cfg.Filters = append(d.cfg.Filters[:index:index], d.cfg.Filters[index+1:]...)
	return nil
}

// ClearFilters drops every filter.
func (d *Dashboard) ClearFilters() {
	d.mu.Lock()
	d.cfg.Filters = nil
	d.mu.Unlock()
}

// AddSeries appends s and makes it visible.
func (d *Dashboard) AddSeries(s Series) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("%w: empty key", ErrUnknownSeries)
	}
	if hasSeries(d.cfg.Series, s.Key) {
		return fmt.Errorf("%w: %s", ErrDuplicateSeries, s.Key)
	}
	d.cfg.Series = AddSeries(d.cfg.Series, s)
	d.cfg.Active[s.Key] = true
	return nil
}

// RemoveSeries drops the series and its visibility flag.
func (d *Dashboard) RemoveSeries(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !hasSeries(d.cfg.Series, key) {
		return fmt.Errorf("%w: %s", ErrUnknownSeries, key)
	}
	d.cfg.Series = RemoveSeries(d.cfg.Series, key)
	delete(d.cfg.Active, key)
	return nil
}

// UpdateSeries merges patch into the series identified by key.
func (d *Dashboard) UpdateSeries(key string, patch SeriesPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !hasSeries(d.cfg.Series, key) {
		return fmt.Errorf("%w: %s", ErrUnknownSeries, key)
	}
	d.cfg.Series = UpdateSeries(d.cfg.Series, key, patch)
	return nil
}

// ToggleSeries flips the visibility of key.
func (d *Dashboard) ToggleSeries(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !hasSeries(d.cfg.Series, key) {
		return fmt.Errorf("%w: %s", ErrUnknownSeries, key)
	}
	d.cfg.Active = ToggleSeriesVisibility(d.cfg.Active, key)
	return nil
}

// Working returns the filtered and sorted data.
func (d *Dashboard) Working() []dataset.Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.working()
}

func (d *Dashboard) working() []dataset.Record {
	cmp, _ := dataset.ComparatorByName(d.cfg.Comparator)
	filtered := ApplyFilters(d.data, d.cfg.Filters)
	return SortData(filtered, d.cfg.XField, d.cfg.SortDirection, cmp)
}

// MaxValue is the rounded maximum over the active series of the working set.
func (d *Dashboard) MaxValue() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return CalculateMaxValue(d.working(), d.cfg.Series, d.cfg.Active)
}

// Ticks returns the Y-axis tick marks for the current working set.
func (d *Dashboard) Ticks() []float64 {
	return GenerateYAxisTicks(d.MaxValue(), d.steps)
}

// Spec builds the render input for the current state.
func (d *Dashboard) Spec() RenderSpec {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data := Aggregate(d.working(), d.cfg.XField, d.cfg.ActiveSeries())
	max := data.MaxValue()
	return RenderSpec{
		ID:          d.id,
		Title:       d.title,
		Shape:       d.cfg.Shape,
		XLabel:      d.cfg.XField,
		Data:        data,
		Max:         max,
		Ticks:       GenerateYAxisTicks(max, d.steps),
		ShowGrid:    d.cfg.ShowGrid,
		ShowLegend:  d.cfg.ShowLegend,
		ShowTooltip: d.cfg.ShowTooltip,
	}
}

// Render draws the current state with the configured renderer.
func (d *Dashboard) Render(ctx context.Context) (string, error) {
	return d.renderer.Render(ctx, d.Spec())
}

// Answer runs the insight generator over the working set.
func (d *Dashboard) Answer(query string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return GenerateResponse(query, d.working(), d.cfg.Active, d.cfg.Series, d.cfg.XField)
}

// NewChat opens a chat session answered by this dashboard.
func (d *Dashboard) NewChat(opts ChatOptions) *Chat {
	return NewChat(d.Answer, opts)
}

func validOperator(op Operator) bool {
	switch op {
	case OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpContains:
		return true
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
