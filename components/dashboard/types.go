package dashboard

import (
	"context"
	"time"

	"github.com/goliatone/go-dataview/components/chart"
	"github.com/goliatone/go-dataview/components/dataset"
	"github.com/goliatone/go-dataview/components/table"
)

// Kind selects the view a widget definition opens.
type Kind string

const (
	KindTable Kind = "table"
	KindChart Kind = "chart"
)

// Valid reports whether k is a supported widget kind.
func (k Kind) Valid() bool {
	return k == KindTable || k == KindChart
}

// Authorizer determines if a viewer can open a widget.
type Authorizer interface {
	CanView(ctx context.Context, viewer ViewerContext, def WidgetDefinition) bool
}

// RecordSource loads the records a widget session is built over.
type RecordSource interface {
	Records(ctx context.Context, meta SourceContext) ([]dataset.Record, error)
}

// RecordSourceFunc adapts a function to RecordSource.
type RecordSourceFunc func(ctx context.Context, meta SourceContext) ([]dataset.Record, error)

// Records implements RecordSource.
func (f RecordSourceFunc) Records(ctx context.Context, meta SourceContext) ([]dataset.Record, error) {
	return f(ctx, meta)
}

// SourceContext contains the metadata needed by record sources.
type SourceContext struct {
	Definition    WidgetDefinition
	Viewer        ViewerContext
	Configuration map[string]any
}

// ProviderRegistry stores widget definitions and the sources backing them.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterSource(code string, source RecordSource) error
	Definition(code string) (WidgetDefinition, bool)
	Source(code string) (RecordSource, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook notifies transports (REST/WebSocket) about view changes.
type RefreshHook interface {
	ViewUpdated(ctx context.Context, event ViewEvent) error
}

// WidgetDefinition describes a table or chart widget.
type WidgetDefinition struct {
	Code                 string            `json:"code" yaml:"code"`
	Kind                 Kind              `json:"kind" yaml:"kind"`
	Name                 string            `json:"name" yaml:"name"`
	NameLocalized        map[string]string `json:"name_localized,omitempty" yaml:"name_localized,omitempty"`
	Description          string            `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionLocalized map[string]string `json:"description_localized,omitempty" yaml:"description_localized,omitempty"`
	Category             string            `json:"category,omitempty" yaml:"category,omitempty"`
	// Source names the host dataset used when no RecordSource is registered
	// for the code.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Roles restricts the widget to viewers holding one of the roles.
	Roles  []string       `json:"roles,omitempty" yaml:"roles,omitempty"`
	Schema map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Table  *TableSpec     `json:"table,omitempty" yaml:"table,omitempty"`
	Chart  *ChartSpec     `json:"chart,omitempty" yaml:"chart,omitempty"`
}

// TableSpec is the static configuration of a table widget. Columns left
// empty are derived from the record keys.
type TableSpec struct {
	Columns             []table.Column `json:"columns,omitempty" yaml:"columns,omitempty"`
	SearchColumn        string         `json:"search_column,omitempty" yaml:"search_column,omitempty"`
	SearchFields        []string       `json:"search_fields,omitempty" yaml:"search_fields,omitempty"`
	StatusColumn        string         `json:"status_column,omitempty" yaml:"status_column,omitempty"`
	PageSize            int            `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	PageSizeOptions     []int          `json:"page_size_options,omitempty" yaml:"page_size_options,omitempty"`
	DisableRowSelection bool           `json:"disable_row_selection,omitempty" yaml:"disable_row_selection,omitempty"`
	Virtualize          bool           `json:"virtualize,omitempty" yaml:"virtualize,omitempty"`
	RowHeight           float64        `json:"row_height,omitempty" yaml:"row_height,omitempty"`
}

// ChartSpec is the static configuration of a chart widget. Zero values
// fall back to the defaults derived from the data.
type ChartSpec struct {
	Title         string              `json:"title,omitempty" yaml:"title,omitempty"`
	XField        string              `json:"x_field,omitempty" yaml:"x_field,omitempty"`
	Shape         chart.Shape         `json:"shape,omitempty" yaml:"shape,omitempty"`
	Series        []chart.Series      `json:"series,omitempty" yaml:"series,omitempty"`
	Filters       []chart.Filter      `json:"filters,omitempty" yaml:"filters,omitempty"`
	SortDirection chart.SortDirection `json:"sort_direction,omitempty" yaml:"sort_direction,omitempty"`
	Comparator    string              `json:"comparator,omitempty" yaml:"comparator,omitempty"`
	HideGrid      bool                `json:"hide_grid,omitempty" yaml:"hide_grid,omitempty"`
	HideLegend    bool                `json:"hide_legend,omitempty" yaml:"hide_legend,omitempty"`
	HideTooltip   bool                `json:"hide_tooltip,omitempty" yaml:"hide_tooltip,omitempty"`
}

// ViewerContext captures the active user/locale information needed to render views.
type ViewerContext struct {
	UserID string   `json:"user_id,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	Locale string   `json:"locale,omitempty"`
}

// ViewEvent describes changes that transports might care about.
type ViewEvent struct {
	SessionID string    `json:"session_id"`
	Code      string    `json:"code"`
	Kind      Kind      `json:"kind"`
	UserID    string    `json:"user_id,omitempty"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}
