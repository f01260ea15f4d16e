package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-dataview/components/chart"
	"github.com/goliatone/go-dataview/components/table"
)

var errMissingViewerID = errors.New("dashboard: viewer context missing user id")

// ViewState is the per-viewer state remembered for a widget between sessions.
// Row selection is never persisted.
type ViewState struct {
	Table *table.State  `json:"table,omitempty"`
	Chart *chart.Config `json:"chart,omitempty"`
}

// IsZero reports whether nothing is stored.
func (s ViewState) IsZero() bool {
	return s.Table == nil && s.Chart == nil
}

// StateStore returns remembered view state per viewer and widget.
type StateStore interface {
	LoadViewState(ctx context.Context, viewer ViewerContext, code string) (ViewState, error)
	SaveViewState(ctx context.Context, viewer ViewerContext, code string, state ViewState) error
}

// InMemoryStateStore provides a concurrency-safe default store.
type InMemoryStateStore struct {
	mu   sync.RWMutex
	data map[string]ViewState
}

// NewInMemoryStateStore creates an empty state store.
func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{
		data: make(map[string]ViewState),
	}
}

// LoadViewState returns the stored state or a zero ViewState. Anonymous
// viewers never have stored state.
func (s *InMemoryStateStore) LoadViewState(_ context.Context, viewer ViewerContext, code string) (ViewState, error) {
	if viewer.UserID == "" {
		return ViewState{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneViewState(s.data[s.key(viewer, code)]), nil
}

// SaveViewState persists state for a viewer.
func (s *InMemoryStateStore) SaveViewState(_ context.Context, viewer ViewerContext, code string, state ViewState) error {
	if viewer.UserID == "" {
		return errMissingViewerID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.key(viewer, code)] = cloneViewState(state)
	return nil
}

func (s *InMemoryStateStore) key(viewer ViewerContext, code string) string {
	return viewer.UserID + "::" + code
}

func cloneViewState(state ViewState) ViewState {
	var out ViewState
	if state.Table != nil {
		t := *state.Table
		t.ColumnFilters = cloneAnyMap(t.ColumnFilters)
		t.ColumnVisibility = cloneBoolMap(t.ColumnVisibility)
		t.Sorting = append([]table.SortRule(nil), t.Sorting...)
		t.RowSelection = nil
		out.Table = &t
	}
	if state.Chart != nil {
		c := *state.Chart
		c.Series = append([]chart.Series(nil), c.Series...)
		c.Filters = append([]chart.Filter(nil), c.Filters...)
		c.Active = c.Active.Clone()
		out.Chart = &c
	}
	return out
}

func cloneAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if values, ok := v.([]string); ok {
			v = append([]string(nil), values...)
		}
		out[k] = v
	}
	return out
}

func cloneBoolMap(in map[string]bool) map[string]bool {
	if in == nil {
		return nil
	}
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
