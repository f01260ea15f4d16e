package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-dataview/components/chart"
	"github.com/goliatone/go-dataview/components/dataset"
	"github.com/goliatone/go-dataview/components/table"
)

var (
	ErrUnknownWidget  = errors.New("dashboard: unknown widget")
	ErrForbidden      = errors.New("dashboard: viewer cannot open widget")
	ErrNoSource       = errors.New("dashboard: widget has no record source")
	ErrUnknownSession = errors.New("dashboard: unknown session")
	ErrWrongKind      = errors.New("dashboard: operation does not match widget kind")
)

// DatasetFetcher loads a named host dataset. pkg/hostapi clients satisfy it.
type DatasetFetcher interface {
	FetchDataset(ctx context.Context, name string) ([]dataset.Record, error)
}

// RowsHandler receives the records a viewer bulk-deleted from a table widget.
type RowsHandler func(ctx context.Context, def WidgetDefinition, records []dataset.Record) error

// RowActionHandler receives row actions that have no handler of their own.
type RowActionHandler func(ctx context.Context, def WidgetDefinition, action string, rec dataset.Record) error

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Providers       ProviderRegistry
	Datasets        DatasetFetcher
	Authorizer      Authorizer
	StateStore      StateStore
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Translator      Translator
	ChartRenderer   chart.Renderer
	ChatClock       chart.Clock
	ChatDelay       time.Duration
	// OnDeleteRows enables row selection on table widgets. Without it every
	// table opens with selection disabled.
	OnDeleteRows RowsHandler
	OnRowAction  RowActionHandler
	OnAddItem    func(ctx context.Context, def WidgetDefinition) error
	NewID        func() string
	Now          func() time.Time
}

// Service opens per-viewer table and chart sessions over registered widgets.
type Service struct {
	opts     Options
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = RoleAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.StateStore == nil {
		opts.StateStore = NewInMemoryStateStore()
	}
	if opts.ChartRenderer == nil {
		opts.ChartRenderer = chart.NewEChartsRenderer(chart.WithChartCache(chart.NewChartCache(time.Minute)))
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{opts: opts, sessions: map[string]*Session{}}
}

// Session is one viewer's open widget: a table view or a chart dashboard.
type Session struct {
	ID            string           `json:"id"`
	Definition    WidgetDefinition `json:"definition"`
	Viewer        ViewerContext    `json:"viewer"`
	Configuration map[string]any   `json:"configuration,omitempty"`
	OpenedAt      time.Time        `json:"opened_at"`

	table *table.View
	chart *chart.Dashboard

	chatMu sync.Mutex
	chat   *chart.Chat
}

// Kind returns the widget kind.
func (s *Session) Kind() Kind { return s.Definition.Kind }

// Table returns the table view, nil for chart sessions.
func (s *Session) Table() *table.View { return s.table }

// Chart returns the chart dashboard, nil for table sessions.
func (s *Session) Chart() *chart.Dashboard { return s.chart }

// OpenRequest selects the widget to open and its configuration.
type OpenRequest struct {
	Code          string         `json:"code"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

// Definitions lists the widgets the viewer may open, ordered by code, with
// names and descriptions resolved for the viewer locale.
func (s *Service) Definitions(ctx context.Context, viewer ViewerContext) []WidgetDefinition {
	var out []WidgetDefinition
	for _, def := range s.opts.Providers.Definitions() {
		if !s.opts.Authorizer.CanView(ctx, viewer, def) {
			continue
		}
		out = append(out, s.localize(ctx, def, viewer.Locale))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Open loads the widget records and builds a session with the viewer's
// remembered state applied.
func (s *Service) Open(ctx context.Context, viewer ViewerContext, req OpenRequest) (*Session, error) {
	def, ok := s.opts.Providers.Definition(req.Code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWidget, req.Code)
	}
	if !s.opts.Authorizer.CanView(ctx, viewer, def) {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, def.Code)
	}
	config := ApplySchemaDefaults(def, req.Configuration)
	if err := s.opts.ConfigValidator.Validate(def, config); err != nil {
		return nil, err
	}
	records, err := s.load(ctx, def, viewer, config)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:            s.opts.NewID(),
		Definition:    def,
		Viewer:        viewer,
		Configuration: config,
		OpenedAt:      s.opts.Now(),
	}
	switch def.Kind {
	case KindChart:
		sess.chart, err = s.buildChart(ctx, sess, records)
	default:
		sess.table, err = s.buildTable(sess, records)
	}
	if err != nil {
		return nil, err
	}
	s.restoreState(ctx, sess)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if err := s.notify(ctx, sess, "open"); err != nil {
		s.mu.Lock()
		delete(s.sessions, sess.ID)
		s.mu.Unlock()
		return nil, err
	}
	s.recordTelemetry(ctx, "dashboard.session.open", map[string]any{
		"code":    def.Code,
		"kind":    string(def.Kind),
		"viewer":  viewer.UserID,
		"records": len(records),
	})
	return sess, nil
}

// Session returns an open session.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return sess, nil
}

// Refresh reloads the session records from its source, keeping view state.
func (s *Service) Refresh(ctx context.Context, id string) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	if err := s.reload(ctx, sess); err != nil {
		return err
	}
	return s.notify(ctx, sess, "refresh")
}

// Close remembers the session state, stops any pending chat reply and drops
// the session.
func (s *Service) Close(ctx context.Context, id string) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	s.saveState(ctx, sess)
	sess.chatMu.Lock()
	if sess.chat != nil {
		sess.chat.Close()
	}
	sess.chatMu.Unlock()

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	if err := s.notify(ctx, sess, "close"); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.session.close", map[string]any{"code": sess.Definition.Code})
	return nil
}

// NotifyViewUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyViewUpdated(ctx context.Context, event ViewEvent) error {
	if event.At.IsZero() {
		event.At = s.opts.Now()
	}
	if err := s.opts.RefreshHook.ViewUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.view.event", map[string]any{
		"session_id": event.SessionID,
		"code":       event.Code,
		"reason":     event.Reason,
	})
	return nil
}

func (s *Service) load(ctx context.Context, def WidgetDefinition, viewer ViewerContext, config map[string]any) ([]dataset.Record, error) {
	var (
		records []dataset.Record
		err     error
	)
	if source, ok := s.opts.Providers.Source(def.Code); ok && source != nil {
		records, err = source.Records(ctx, SourceContext{Definition: def, Viewer: viewer, Configuration: config})
	} else if def.Source != "" && s.opts.Datasets != nil {
		records, err = s.opts.Datasets.FetchDataset(ctx, def.Source)
	} else {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, def.Code)
	}
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.source.error", map[string]any{
			"code":  def.Code,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("dashboard: load records for %s: %w", def.Code, err)
	}
	return records, nil
}

func (s *Service) reload(ctx context.Context, sess *Session) error {
	records, err := s.load(ctx, sess.Definition, sess.Viewer, sess.Configuration)
	if err != nil {
		return err
	}
	if sess.table != nil {
		sess.table.SetData(records)
	}
	if sess.chart != nil {
		sess.chart.SetData(records)
	}
	return nil
}

func (s *Service) buildTable(sess *Session, records []dataset.Record) (*table.View, error) {
	def := sess.Definition
	spec := TableSpec{}
	if def.Table != nil {
		spec = *def.Table
	}
	columns := spec.Columns
	if len(columns) == 0 {
		columns = DeriveColumns(records)
	}
	opts := table.Options{
		SearchColumn:        spec.SearchColumn,
		SearchFields:        spec.SearchFields,
		StatusColumn:        spec.StatusColumn,
		PageSize:            spec.PageSize,
		PageSizeOptions:     spec.PageSizeOptions,
		DisableRowSelection: spec.DisableRowSelection || s.opts.OnDeleteRows == nil,
		Virtualize:          spec.Virtualize,
		RowHeight:           spec.RowHeight,
	}
	if size, ok := configInt(sess.Configuration, "page_size"); ok && size > 0 {
		opts.PageSize = size
		if !containsInt(opts.PageSizeOptions, size) && len(opts.PageSizeOptions) > 0 {
			opts.PageSizeOptions = append(append([]int(nil), opts.PageSizeOptions...), size)
			sort.Ints(opts.PageSizeOptions)
		}
	}
	if !opts.DisableRowSelection {
		opts.OnDeleteRows = func(ctx context.Context, recs []dataset.Record) error {
			return s.opts.OnDeleteRows(ctx, def, recs)
		}
	}
	if s.opts.OnRowAction != nil {
		opts.OnRowAction = func(ctx context.Context, action string, rec dataset.Record) error {
			return s.opts.OnRowAction(ctx, def, action, rec)
		}
	}
	if s.opts.OnAddItem != nil {
		opts.OnAddItem = func(ctx context.Context) error {
			return s.opts.OnAddItem(ctx, def)
		}
	}
	view, err := table.NewView(records, columns, opts)
	if err != nil {
		return nil, fmt.Errorf("dashboard: build table %s: %w", def.Code, err)
	}
	if search, ok := configString(sess.Configuration, "search"); ok && search != "" && spec.SearchColumn != "" {
		if err := view.SetSearch(search); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (s *Service) buildChart(ctx context.Context, sess *Session, records []dataset.Record) (*chart.Dashboard, error) {
	def := sess.Definition
	spec := ChartSpec{}
	if def.Chart != nil {
		spec = *def.Chart
	}
	title := spec.Title
	if value, ok := configString(sess.Configuration, "title"); ok && value != "" {
		title = value
	}
	if title == "" {
		title = s.localize(ctx, def, sess.Viewer.Locale).Name
	}
	cfg := chart.DefaultConfig(records)
	if spec.XField != "" {
		cfg.XField = spec.XField
	}
	if value, ok := configString(sess.Configuration, "x_field"); ok && value != "" {
		cfg.XField = value
	}
	if spec.Shape != "" {
		cfg.Shape = chart.ParseShape(string(spec.Shape))
	}
	if value, ok := configString(sess.Configuration, "shape"); ok && value != "" {
		cfg.Shape = chart.ParseShape(value)
	}
	if len(spec.Series) > 0 {
		cfg.Series = append([]chart.Series(nil), spec.Series...)
		cfg.Active = chart.NewActiveSet(cfg.Series)
	}
	if len(spec.Filters) > 0 {
		cfg.Filters = append([]chart.Filter(nil), spec.Filters...)
	}
	if spec.SortDirection != "" {
		cfg.SortDirection = spec.SortDirection
	}
	cfg.Comparator = spec.Comparator
	cfg.ShowGrid = !spec.HideGrid
	cfg.ShowLegend = !spec.HideLegend
	cfg.ShowTooltip = !spec.HideTooltip

	board := chart.NewDashboard(title, records, chart.DashboardOptions{
		ID:       sess.ID,
		Renderer: s.opts.ChartRenderer,
	})
	if err := board.Configure(cfg); err != nil {
		return nil, fmt.Errorf("dashboard: configure chart %s: %w", def.Code, err)
	}
	return board, nil
}

// DeriveColumns builds sortable columns for every field present in records,
// id first. Numeric fields compare numerically.
func DeriveColumns(records []dataset.Record) []table.Column {
	fields := chart.ExtractAvailableFields(records)
	numeric := map[string]bool{}
	for _, f := range chart.NumericFields(records) {
		numeric[f] = true
	}
	columns := make([]table.Column, 0, len(fields))
	for _, field := range fields {
		col := table.Column{
			ID:       field,
			Header:   table.HeaderLabel(field),
			Sortable: true,
			Hideable: field != dataset.IDField,
		}
		if numeric[field] {
			col.Compare = dataset.CompareNumeric
		}
		if field == dataset.IDField {
			columns = append([]table.Column{col}, columns...)
			continue
		}
		columns = append(columns, col)
	}
	return columns
}

func (s *Service) restoreState(ctx context.Context, sess *Session) {
	if sess.Viewer.UserID == "" {
		return
	}
	state, err := s.opts.StateStore.LoadViewState(ctx, sess.Viewer, sess.Definition.Code)
	if err != nil || state.IsZero() {
		return
	}
	if state.Table != nil && sess.table != nil {
		err = sess.table.Restore(*state.Table)
	}
	if err == nil && state.Chart != nil && sess.chart != nil {
		err = sess.chart.Configure(*state.Chart)
	}
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.state.discarded", map[string]any{
			"code":  sess.Definition.Code,
			"error": err.Error(),
		})
	}
}

func (s *Service) saveState(ctx context.Context, sess *Session) {
	if sess.Viewer.UserID == "" {
		return
	}
	var state ViewState
	if sess.table != nil {
		snapshot := sess.table.State()
		state.Table = &snapshot
	}
	if sess.chart != nil {
		cfg := sess.chart.Config()
		state.Chart = &cfg
	}
	if err := s.opts.StateStore.SaveViewState(ctx, sess.Viewer, sess.Definition.Code, state); err != nil {
		s.recordTelemetry(ctx, "dashboard.state.save_error", map[string]any{
			"code":  sess.Definition.Code,
			"error": err.Error(),
		})
	}
}

func (s *Service) notify(ctx context.Context, sess *Session, reason string) error {
	return s.opts.RefreshHook.ViewUpdated(ctx, ViewEvent{
		SessionID: sess.ID,
		Code:      sess.Definition.Code,
		Kind:      sess.Definition.Kind,
		UserID:    sess.Viewer.UserID,
		Reason:    reason,
		At:        s.opts.Now(),
	})
}

func (s *Service) localize(ctx context.Context, def WidgetDefinition, locale string) WidgetDefinition {
	return Localizer{Translator: s.opts.Translator}.Widget(ctx, def, locale)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// RoleAuthorizer lets viewers open widgets whose Roles list is empty or
// shares a role with the viewer.
type RoleAuthorizer struct{}

// CanView implements Authorizer.
func (RoleAuthorizer) CanView(_ context.Context, viewer ViewerContext, def WidgetDefinition) bool {
	if len(def.Roles) == 0 {
		return true
	}
	for _, want := range def.Roles {
		for _, have := range viewer.Roles {
			if want == have {
				return true
			}
		}
	}
	return false
}

type noopRefreshHook struct{}

func (noopRefreshHook) ViewUpdated(context.Context, ViewEvent) error {
	return nil
}

func configString(config map[string]any, key string) (string, bool) {
	v, ok := config[key].(string)
	return v, ok
}

func configInt(config map[string]any, key string) (int, bool) {
	v, ok := config[key]
	if !ok || v == nil {
		return 0, false
	}
	n, ok := dataset.ParseNumber(v)
	if !ok {
		return 0, false
	}
	return int(n), true
}

func containsInt(values []int, v int) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
