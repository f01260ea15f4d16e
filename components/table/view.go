package table

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-dataview/components/dataset"
)

var defaultPageSizeOptions = []int{10, 20, 30, 40, 50}

var (
	errNoColumns             = errors.New("table: at least one column is required")
	errMissingDeleteHandler  = errors.New("table: OnDeleteRows is required when row selection is enabled")
	errSelectionDisabled     = errors.New("table: row selection is disabled")
	errPaginationDisabled    = errors.New("table: pagination is not available for this view")
	errVirtualizationOff     = errors.New("table: view is not virtualized")
	errInvalidPageSize       = errors.New("table: invalid page size")
	errUnknownRow            = errors.New("table: unknown row id")
	errMissingRowActionRoute = errors.New("table: row action has no handler")
)

// Options configures a View. Features that are on by default are switched
// off through the Disable* flags.
type Options struct {
	SearchColumn            string
	SearchFields            []string
	StatusColumn            string
	PageSize                int
	PageSizeOptions         []int
	DisableRowSelection     bool
	DisablePagination       bool
	DisableColumnVisibility bool
	Virtualize              bool
	RowHeight               float64
	Overscan                int
	RowActions              RowActionSets
	OnAddItem               func(ctx context.Context) error
	OnDeleteRows            func(ctx context.Context, records []dataset.Record) error
	OnRowAction             func(ctx context.Context, action string, rec dataset.Record) error
}

// View owns the filter, sort, pagination, visibility and selection state for
// a list of uniquely identified records. It never mutates the records it is
// given; structural changes are delegated to the host callbacks.
type View struct {
	mu      sync.RWMutex
	opts    Options
	columns []Column
	byID    map[string]int
	data    []dataset.Record
	rowIDs  map[string]struct{}
	state   State
}

// NewView validates the configuration and builds a view with default state:
// the first sortable column ascending and the first page.
func NewView(data []dataset.Record, columns []Column, opts Options) (*View, error) {
	if len(columns) == 0 {
		return nil, errNoColumns
	}
	if !opts.DisableRowSelection && opts.OnDeleteRows == nil {
		return nil, errMissingDeleteHandler
	}
	if len(opts.PageSizeOptions) == 0 {
		opts.PageSizeOptions = append([]int(nil), defaultPageSizeOptions...)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = opts.PageSizeOptions[0]
	}
	if opts.Virtualize {
		opts.DisablePagination = true
	}

	v := &View{
		opts:    opts,
		columns: materializeColumns(columns, !opts.DisableRowSelection),
	}
	v.byID = make(map[string]int, len(v.columns))
	for i, col := range v.columns {
		if col.ID == "" {
			return nil, fmt.Errorf("table: column at index %d is missing an id", i)
		}
		if _, dup := v.byID[col.ID]; dup {
			return nil, fmt.Errorf("table: duplicate column id %q", col.ID)
		}
		v.byID[col.ID] = i
	}
	if opts.SearchColumn != "" {
		if _, ok := v.byID[opts.SearchColumn]; !ok {
			return nil, fmt.Errorf("table: search column %q not found", opts.SearchColumn)
		}
	}
	if opts.StatusColumn != "" {
		if _, ok := v.byID[opts.StatusColumn]; !ok {
			return nil, fmt.Errorf("table: status column %q not found", opts.StatusColumn)
		}
	}

	v.state.normalize()
	v.state.Pagination = Pagination{PageIndex: 0, PageSize: opts.PageSize}
	for _, col := range v.columns {
		if col.Sortable {
			v.state.Sorting = []SortRule{{ColumnID: col.ID}}
			break
		}
	}
	v.replaceData(data)
	return v, nil
}

// Columns returns the materialized columns, including the selection column.
func (v *View) Columns() []Column {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]Column(nil), v.columns...)
}

// VisibleColumns returns the columns not hidden by the visibility state.
func (v *View) VisibleColumns() []Column {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Column, 0, len(v.columns))
	for _, col := range v.columns {
		if visible, ok := v.state.ColumnVisibility[col.ID]; ok && !visible {
			continue
		}
		out = append(out, col)
	}
	return out
}

// Options returns the effective configuration.
func (v *View) Options() Options {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.opts
}

// ToggleColumnVisibility flips a hideable column between shown and hidden.
func (v *View) ToggleColumnVisibility(columnID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.opts.DisableColumnVisibility {
		return errors.New("table: column visibility is disabled")
	}
	col, ok := v.column(columnID)
	if !ok {
		return fmt.Errorf("table: unknown column %q", columnID)
	}
	if !col.Hideable {
		return fmt.Errorf("table: column %q cannot be hidden", columnID)
	}
	visible, set := v.state.ColumnVisibility[columnID]
	v.state.ColumnVisibility[columnID] = set && !visible
	return nil
}

// SetData replaces the backing records. Selected ids that are not present in
// the new data are dropped.
func (v *View) SetData(data []dataset.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.replaceData(data)
	v.clampPage()
}

func (v *View) replaceData(data []dataset.Record) {
	v.data = append([]dataset.Record(nil), data...)
	v.rowIDs = make(map[string]struct{}, len(data))
	for _, rec := range v.data {
		v.rowIDs[rec.ID()] = struct{}{}
	}
	for id := range v.state.RowSelection {
		if _, ok := v.rowIDs[id]; !ok {
			delete(v.state.RowSelection, id)
		}
	}
}

// Data returns a copy of the backing records.
func (v *View) Data() []dataset.Record {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]dataset.Record(nil), v.data...)
}

// State returns a snapshot of the view state.
func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state.clone()
}

// Restore replaces the view state with a snapshot. Filters on unknown
// columns and selections of missing rows are dropped; sort rules on
// unsortable columns are rejected.
func (v *View) Restore(state State) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := state.clone()
	for id := range next.ColumnFilters {
		if _, ok := v.column(id); !ok {
			delete(next.ColumnFilters, id)
		}
	}
	for _, rule := range next.Sorting {
		col, ok := v.column(rule.ColumnID)
		if !ok || !col.Sortable {
			return fmt.Errorf("table: column %q is not sortable", rule.ColumnID)
		}
	}
	if len(next.Sorting) == 0 {
		next.Sorting = append([]SortRule(nil), v.state.Sorting...)
	}
	if next.Pagination.PageSize <= 0 {
		next.Pagination.PageSize = v.opts.PageSize
	}
	for id := range next.RowSelection {
		if _, ok := v.rowIDs[id]; !ok {
			delete(next.RowSelection, id)
		}
	}
	v.state = next
	v.clampPage()
	return nil
}

// SetSearch sets the text filter on the configured search column.
func (v *View) SetSearch(text string) error {
	if v.opts.SearchColumn == "" {
		return errors.New("table: no search column configured")
	}
	return v.SetColumnFilter(v.opts.SearchColumn, text)
}

// SetStatusFilter sets the accepted values of the configured status column.
func (v *View) SetStatusFilter(values []string) error {
	if v.opts.StatusColumn == "" {
		return errors.New("table: no status column configured")
	}
	return v.SetColumnFilter(v.opts.StatusColumn, append([]string(nil), values...))
}

// SetColumnFilter stores a filter value for a column; empty values clear it.
// Changing a filter returns to the first page.
func (v *View) SetColumnFilter(columnID string, value any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.column(columnID); !ok {
		return fmt.Errorf("table: unknown column %q", columnID)
	}
	if isEmptyFilter(value) {
		delete(v.state.ColumnFilters, columnID)
	} else {
		v.state.ColumnFilters[columnID] = value
	}
	v.state.Pagination.PageIndex = 0
	return nil
}

// ResetFilters clears every column filter.
func (v *View) ResetFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.ColumnFilters = map[string]any{}
	v.state.Pagination.PageIndex = 0
}

// Rows returns every record passing the filters, in sort order.
func (v *View) Rows() []dataset.Record {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sortedRows()
}

// Facets counts the distinct values of a column over the rows that pass
// every filter except the column's own.
func (v *View) Facets(columnID string) ([]Facet, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	col, ok := v.column(columnID)
	if !ok {
		return nil, fmt.Errorf("table: unknown column %q", columnID)
	}
	counts := map[string]int{}
	for _, rec := range v.filter(columnID) {
		counts[dataset.Stringify(col.Value(rec))]++
	}
	facets := make([]Facet, 0, len(counts))
	for value, count := range counts {
		facets = append(facets, Facet{Value: value, Count: count})
	}
	sort.Slice(facets, func(i, j int) bool { return facets[i].Value < facets[j].Value })
	return facets, nil
}

// ToggleSorting cycles a sortable column between ascending and descending.
// With multi set the column is added to (or flipped within) the existing
// rules; otherwise it replaces them. The sort is never removed.
func (v *View) ToggleSorting(columnID string, multi bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	col, ok := v.column(columnID)
	if !ok {
		return fmt.Errorf("table: unknown column %q", columnID)
	}
	if !col.Sortable {
		return fmt.Errorf("table: column %q is not sortable", columnID)
	}
	idx := -1
	for i, rule := range v.state.Sorting {
		if rule.ColumnID == columnID {
			idx = i
			break
		}
	}
	switch {
	case idx >= 0 && multi:
		v.state.Sorting[idx].Desc = !v.state.Sorting[idx].Desc
	case idx >= 0:
		v.state.Sorting = []SortRule{{ColumnID: columnID, Desc: !v.state.Sorting[idx].Desc}}
	case multi:
		v.state.Sorting = append(v.state.Sorting, SortRule{ColumnID: columnID})
	default:
		v.state.Sorting = []SortRule{{ColumnID: columnID}}
	}
	v.state.Pagination.PageIndex = 0
	return nil
}

// SetSorting replaces the sort rules. An empty list is rejected because a
// view always keeps an active sort once one exists.
func (v *View) SetSorting(rules []SortRule) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(rules) == 0 && len(v.state.Sorting) > 0 {
		return errors.New("table: sorting cannot be removed")
	}
	for _, rule := range rules {
		col, ok := v.column(rule.ColumnID)
		if !ok || !col.Sortable {
			return fmt.Errorf("table: column %q is not sortable", rule.ColumnID)
		}
	}
	v.state.Sorting = append([]SortRule(nil), rules...)
	v.state.Pagination.PageIndex = 0
	return nil
}

// Sorting returns the active sort rules.
func (v *View) Sorting() []SortRule {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]SortRule(nil), v.state.Sorting...)
}

// SetPageIndex moves to a page, clamped to the valid range.
func (v *View) SetPageIndex(index int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.opts.DisablePagination {
		return errPaginationDisabled
	}
	v.state.Pagination.PageIndex = index
	v.clampPage()
	return nil
}

// NextPage advances one page when possible.
func (v *View) NextPage() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.opts.DisablePagination {
		return errPaginationDisabled
	}
	v.state.Pagination.PageIndex++
	v.clampPage()
	return nil
}

// PreviousPage goes back one page when possible.
func (v *View) PreviousPage() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.opts.DisablePagination {
		return errPaginationDisabled
	}
	v.state.Pagination.PageIndex--
	v.clampPage()
	return nil
}

// SetPageSize changes the page size, keeping the first row of the current
// page visible.
func (v *View) SetPageSize(size int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.opts.DisablePagination {
		return errPaginationDisabled
	}
	if size <= 0 || !containsInt(v.opts.PageSizeOptions, size) {
		return fmt.Errorf("%w: %d", errInvalidPageSize, size)
	}
	top := v.state.Pagination.PageIndex * v.state.Pagination.PageSize
	v.state.Pagination.PageSize = size
	v.state.Pagination.PageIndex = top / size
	v.clampPage()
	return nil
}

// PageCount returns the number of pages for the filtered rows.
func (v *View) PageCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pageCount(len(v.filter("")))
}

// Page returns the current page of the sorted, filtered rows. Virtualized
// and unpaginated views return every row on a single page.
func (v *View) Page() Page {
	v.mu.RLock()
	defer v.mu.RUnlock()
	rows := v.sortedRows()
	start, end := v.pageBounds(len(rows))
	page := Page{
		Rows:          make([]Row, 0, end-start),
		PageIndex:     v.state.Pagination.PageIndex,
		PageSize:      v.state.Pagination.PageSize,
		PageCount:     v.pageCount(len(rows)),
		TotalRows:     len(v.data),
		FilteredRows:  len(rows),
		SelectedCount: len(v.state.RowSelection),
	}
	if v.opts.DisablePagination {
		page.PageIndex = 0
		page.PageSize = len(rows)
	}
	for i := start; i < end; i++ {
		id := rows[i].ID()
		page.Rows = append(page.Rows, Row{
			Index:    i,
			ID:       id,
			Record:   rows[i],
			Selected: v.state.RowSelection[id],
		})
	}
	page.CanPrevious = !v.opts.DisablePagination && page.PageIndex > 0
	page.CanNext = !v.opts.DisablePagination && page.PageIndex < page.PageCount-1
	return page
}

// VirtualPage is the mounted slice of a virtualized view.
type VirtualPage struct {
	Window VirtualWindow `json:"window"`
	Rows   []Row         `json:"rows"`
}

// Window returns the rows to mount for a scroll position in a virtualized
// view, each paired with its absolute offset.
func (v *View) Window(offset, viewport float64) (VirtualPage, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.opts.Virtualize {
		return VirtualPage{}, errVirtualizationOff
	}
	rows := v.sortedRows()
	window := Virtualizer{
		Count:        len(rows),
		EstimateSize: v.opts.RowHeight,
		Overscan:     v.opts.Overscan,
	}.Range(offset, viewport)
	out := VirtualPage{Window: window, Rows: make([]Row, 0, len(window.Items))}
	for _, item := range window.Items {
		id := rows[item.Index].ID()
		out.Rows = append(out.Rows, Row{
			Index:    item.Index,
			ID:       id,
			Record:   rows[item.Index],
			Selected: v.state.RowSelection[id],
		})
	}
	return out, nil
}

// SetRowSelected marks a row as selected or not.
func (v *View) SetRowSelected(id string, selected bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.opts.DisableRowSelection {
		return errSelectionDisabled
	}
	if _, ok := v.rowIDs[id]; !ok {
		return fmt.Errorf("%w: %s", errUnknownRow, id)
	}
	if selected {
		v.state.RowSelection[id] = true
	} else {
		delete(v.state.RowSelection, id)
	}
	return nil
}

// ToggleRowSelected flips the selection of a row.
func (v *View) ToggleRowSelected(id string) error {
	return v.SetRowSelected(id, !v.IsSelected(id))
}

// ToggleAllPageRowsSelected selects or clears every row on the current page.
// Selections on other pages are left alone.
func (v *View) ToggleAllPageRowsSelected(selected bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.opts.DisableRowSelection {
		return errSelectionDisabled
	}
	for _, rec := range v.pageRows() {
		if selected {
			v.state.RowSelection[rec.ID()] = true
		} else {
			delete(v.state.RowSelection, rec.ID())
		}
	}
	return nil
}

// IsAllPageRowsSelected reports whether every row on the page is selected.
func (v *View) IsAllPageRowsSelected() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	rows := v.pageRows()
	if len(rows) == 0 {
		return false
	}
	for _, rec := range rows {
		if !v.state.RowSelection[rec.ID()] {
			return false
		}
	}
	return true
}

// IsSomePageRowsSelected reports whether the page has a partial selection.
func (v *View) IsSomePageRowsSelected() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	selected := 0
	rows := v.pageRows()
	for _, rec := range rows {
		if v.state.RowSelection[rec.ID()] {
			selected++
		}
	}
	return selected > 0 && selected < len(rows)
}

// IsSelected reports whether the row id is selected.
func (v *View) IsSelected(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state.RowSelection[id]
}

// SelectedRecords returns the selected original records in data order,
// regardless of which page they are on.
func (v *View) SelectedRecords() []dataset.Record {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selectedRecords()
}

// ClearSelection drops every selected id.
func (v *View) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.RowSelection = map[string]bool{}
}

// DeleteSelected hands every selected record to OnDeleteRows and clears their
// selection once the host accepts them. The records are not removed from the
// view; the host is expected to call SetData with its updated list.
func (v *View) DeleteSelected(ctx context.Context) ([]dataset.Record, error) {
	v.mu.RLock()
	if v.opts.DisableRowSelection {
		v.mu.RUnlock()
		return nil, errSelectionDisabled
	}
	records := v.selectedRecords()
	handler := v.opts.OnDeleteRows
	v.mu.RUnlock()

	if len(records) == 0 {
		return nil, nil
	}
	if err := handler(ctx, records); err != nil {
		return nil, err
	}

	v.mu.Lock()
	for _, rec := range records {
		delete(v.state.RowSelection, rec.ID())
	}
	v.mu.Unlock()
	return records, nil
}

// AddItem invokes the host's OnAddItem callback, if any.
func (v *View) AddItem(ctx context.Context) error {
	v.mu.RLock()
	handler := v.opts.OnAddItem
	v.mu.RUnlock()
	if handler == nil {
		return nil
	}
	return handler(ctx)
}

// RowActions returns the action menu resolved for a row.
func (v *View) RowActions(id string) ([]RowAction, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	rec, ok := v.record(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownRow, id)
	}
	return v.opts.RowActions.Resolve(rec), nil
}

// RunRowAction runs a row's action by label. Actions without their own
// handler are routed to OnRowAction.
func (v *View) RunRowAction(ctx context.Context, id, label string) error {
	v.mu.RLock()
	rec, ok := v.record(id)
	if !ok {
		v.mu.RUnlock()
		return fmt.Errorf("%w: %s", errUnknownRow, id)
	}
	action, found := findAction(v.opts.RowActions.Resolve(rec), label)
	fallback := v.opts.OnRowAction
	v.mu.RUnlock()

	if !found {
		return fmt.Errorf("table: action %q not available for row %s", label, id)
	}
	if action.Handler != nil {
		return action.Handler(ctx, rec)
	}
	if fallback != nil {
		return fallback(ctx, label, rec)
	}
	return errMissingRowActionRoute
}

func (v *View) column(id string) (Column, bool) {
	idx, ok := v.byID[id]
	if !ok {
		return Column{}, false
	}
	return v.columns[idx], true
}

func (v *View) record(id string) (dataset.Record, bool) {
	if _, ok := v.rowIDs[id]; !ok {
		return nil, false
	}
	for _, rec := range v.data {
		if rec.ID() == id {
			return rec, true
		}
	}
	return nil, false
}

func (v *View) selectedRecords() []dataset.Record {
	out := make([]dataset.Record, 0, len(v.state.RowSelection))
	for _, rec := range v.data {
		if v.state.RowSelection[rec.ID()] {
			out = append(out, rec)
		}
	}
	return out
}

// filter applies every column filter except skip.
func (v *View) filter(skip string) []dataset.Record {
	out := make([]dataset.Record, 0, len(v.data))
	for _, rec := range v.data {
		if v.matches(rec, skip) {
			out = append(out, rec)
		}
	}
	return out
}

func (v *View) matches(rec dataset.Record, skip string) bool {
	for id, value := range v.state.ColumnFilters {
		if id == skip || isEmptyFilter(value) {
			continue
		}
		col, ok := v.column(id)
		if !ok {
			continue
		}
		if !v.filterFor(col)(rec, col.Path(), value) {
			return false
		}
	}
	return true
}

func (v *View) filterFor(col Column) FilterFunc {
	if col.Filter != nil {
		return col.Filter
	}
	switch col.ID {
	case v.opts.SearchColumn:
		return MultiFieldFilter(v.opts.SearchFields...)
	case v.opts.StatusColumn:
		return StatusFilter()
	}
	return includesFilter
}

type sortKey struct {
	col  Column
	cmp  dataset.Comparator
	desc bool
}

func (v *View) sortedRows() []dataset.Record {
	rows := v.filter("")
	if len(v.state.Sorting) == 0 {
		return rows
	}
	keys := make([]sortKey, 0, len(v.state.Sorting))
	for _, rule := range v.state.Sorting {
		col, ok := v.column(rule.ColumnID)
		if !ok {
			continue
		}
		keys = append(keys, sortKey{col: col, cmp: col.comparator(), desc: rule.Desc})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range keys {
			c := key.cmp(key.col.Value(rows[i]), key.col.Value(rows[j]))
			if c == 0 {
				continue
			}
			if key.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return rows
}

func (v *View) pageRows() []dataset.Record {
	rows := v.sortedRows()
	start, end := v.pageBounds(len(rows))
	return rows[start:end]
}

func (v *View) pageBounds(total int) (int, int) {
	if v.opts.DisablePagination {
		return 0, total
	}
	size := v.state.Pagination.PageSize
	start := v.state.Pagination.PageIndex * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

func (v *View) pageCount(total int) int {
	if v.opts.DisablePagination || total == 0 {
		return 1
	}
	size := v.state.Pagination.PageSize
	return (total + size - 1) / size
}

func (v *View) clampPage() {
	if v.opts.DisablePagination {
		v.state.Pagination.PageIndex = 0
		return
	}
	last := v.pageCount(len(v.filter(""))) - 1
	v.state.Pagination.PageIndex = clamp(v.state.Pagination.PageIndex, 0, last)
}

func containsInt(values []int, v int) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
