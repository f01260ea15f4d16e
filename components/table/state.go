package table

import "github.com/goliatone/go-dataview/components/dataset"

// SortRule is one entry of the active sort, applied in order.
type SortRule struct {
	ColumnID string `json:"id"`
	Desc     bool   `json:"desc"`
}

// Pagination holds the zero-based page position.
type Pagination struct {
	PageIndex int `json:"page_index"`
	PageSize  int `json:"page_size"`
}

// State is the transient view state owned by a View.
type State struct {
	ColumnFilters    map[string]any  `json:"column_filters"`
	ColumnVisibility map[string]bool `json:"column_visibility"`
	Sorting          []SortRule      `json:"sorting"`
	Pagination       Pagination      `json:"pagination"`
	RowSelection     map[string]bool `json:"row_selection"`
}

func (s State) clone() State {
	out := State{
		ColumnFilters:    make(map[string]any, len(s.ColumnFilters)),
		ColumnVisibility: make(map[string]bool, len(s.ColumnVisibility)),
		Sorting:          append([]SortRule(nil), s.Sorting...),
		Pagination:       s.Pagination,
		RowSelection:     make(map[string]bool, len(s.RowSelection)),
	}
	for k, v := range s.ColumnFilters {
		if values, ok := v.([]string); ok {
			v = append([]string(nil), values...)
		}
		out.ColumnFilters[k] = v
	}
	for k, v := range s.ColumnVisibility {
		out.ColumnVisibility[k] = v
	}
	for k, v := range s.RowSelection {
		if v {
			out.RowSelection[k] = true
		}
	}
	return out
}

func (s *State) normalize() {
	if s.ColumnFilters == nil {
		s.ColumnFilters = map[string]any{}
	}
	if s.ColumnVisibility == nil {
		s.ColumnVisibility = map[string]bool{}
	}
	if s.RowSelection == nil {
		s.RowSelection = map[string]bool{}
	}
}

// Facet is one distinct column value and the number of rows holding it.
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Row is a record rendered on the current page.
type Row struct {
	Index    int            `json:"index"`
	ID       string         `json:"id"`
	Record   dataset.Record `json:"record"`
	Selected bool           `json:"selected"`
}

// Page is the paginated (or fully virtualized) row model.
type Page struct {
	Rows          []Row `json:"rows"`
	PageIndex     int   `json:"page_index"`
	PageSize      int   `json:"page_size"`
	PageCount     int   `json:"page_count"`
	TotalRows     int   `json:"total_rows"`
	FilteredRows  int   `json:"filtered_rows"`
	SelectedCount int   `json:"selected_count"`
	CanPrevious   bool  `json:"can_previous"`
	CanNext       bool  `json:"can_next"`
}
