package dashboard

import (
	"context"
	"fmt"

	"github.com/goliatone/go-dataview/components/table"
)

// TableOp names a table mutation.
type TableOp string

const (
	TableSearch         TableOp = "search"
	TableStatus         TableOp = "status"
	TableFilter         TableOp = "filter"
	TableResetFilters   TableOp = "reset_filters"
	TableSort           TableOp = "sort"
	TablePage           TableOp = "page"
	TableNextPage       TableOp = "next_page"
	TablePreviousPage   TableOp = "previous_page"
	TablePageSize       TableOp = "page_size"
	TableSelectRow      TableOp = "select_row"
	TableSelectPage     TableOp = "select_page"
	TableClearSelection TableOp = "clear_selection"
	TableDeleteSelected TableOp = "delete_selected"
	TableRowAction      TableOp = "row_action"
	TableToggleColumn   TableOp = "toggle_column"
	TableAddItem        TableOp = "add_item"
)

// TableCommand is one table mutation. Only the fields the op reads are used.
type TableCommand struct {
	Op       TableOp  `json:"op"`
	Column   string   `json:"column,omitempty"`
	Value    string   `json:"value,omitempty"`
	Values   []string `json:"values,omitempty"`
	Multi    bool     `json:"multi,omitempty"`
	Index    int      `json:"index,omitempty"`
	Size     int      `json:"size,omitempty"`
	RowID    string   `json:"row_id,omitempty"`
	Action   string   `json:"action,omitempty"`
	Selected bool     `json:"selected,omitempty"`
}

// ColumnView is a column as presented to the viewer.
type ColumnView struct {
	ID       string `json:"id"`
	Header   string `json:"header"`
	Accessor string `json:"accessor"`
	Width    int    `json:"width,omitempty"`
	Sortable bool   `json:"sortable"`
	Hideable bool   `json:"hideable"`
	Visible  bool   `json:"visible"`
	Sort     string `json:"sort,omitempty"`
	Select   bool   `json:"select,omitempty"`
}

// TableSnapshot is the rendered state of a table session.
type TableSnapshot struct {
	SessionID       string                       `json:"session_id"`
	Code            string                       `json:"code"`
	Title           string                       `json:"title"`
	Columns         []ColumnView                 `json:"columns"`
	Page            table.Page                   `json:"page"`
	Search          string                       `json:"search,omitempty"`
	Status          []string                     `json:"status,omitempty"`
	Facets          []table.Facet                `json:"facets,omitempty"`
	PageSizeOptions []int                        `json:"page_size_options"`
	Selectable      bool                         `json:"selectable"`
	AllSelected     bool                         `json:"all_selected"`
	SomeSelected    bool                         `json:"some_selected"`
	Actions         map[string][]table.RowAction `json:"actions,omitempty"`
}

// ApplyTable runs cmd against a table session, remembers the resulting state
// and notifies the refresh hook.
func (s *Service) ApplyTable(ctx context.Context, sessionID string, cmd TableCommand) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	if sess.table == nil {
		return fmt.Errorf("%w: %s is a %s", ErrWrongKind, sess.Definition.Code, sess.Definition.Kind)
	}
	if err := s.runTable(ctx, sess, cmd); err != nil {
		return err
	}
	s.saveState(ctx, sess)
	if err := s.notify(ctx, sess, "table."+string(cmd.Op)); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.table."+string(cmd.Op), map[string]any{
		"code":       sess.Definition.Code,
		"session_id": sess.ID,
	})
	return nil
}

func (s *Service) runTable(ctx context.Context, sess *Session, cmd TableCommand) error {
	view := sess.table
	switch cmd.Op {
	case TableSearch:
		return view.SetSearch(cmd.Value)
	case TableStatus:
		return view.SetStatusFilter(cmd.Values)
	case TableFilter:
		if len(cmd.Values) > 0 {
			return view.SetColumnFilter(cmd.Column, cmd.Values)
		}
		return view.SetColumnFilter(cmd.Column, cmd.Value)
	case TableResetFilters:
		view.ResetFilters()
		return nil
	case TableSort:
		return view.ToggleSorting(cmd.Column, cmd.Multi)
	case TablePage:
		return view.SetPageIndex(cmd.Index)
	case TableNextPage:
		return view.NextPage()
	case TablePreviousPage:
		return view.PreviousPage()
	case TablePageSize:
		return view.SetPageSize(cmd.Size)
	case TableSelectRow:
		return view.SetRowSelected(cmd.RowID, cmd.Selected)
	case TableSelectPage:
		return view.ToggleAllPageRowsSelected(cmd.Selected)
	case TableClearSelection:
		view.ClearSelection()
		return nil
	case TableDeleteSelected:
		deleted, err := view.DeleteSelected(ctx)
		if err != nil {
			return err
		}
		if len(deleted) == 0 {
			return nil
		}
		return s.reload(ctx, sess)
	case TableRowAction:
		return view.RunRowAction(ctx, cmd.RowID, cmd.Action)
	case TableToggleColumn:
		return view.ToggleColumnVisibility(cmd.Column)
	case TableAddItem:
		return view.AddItem(ctx)
	default:
		return fmt.Errorf("dashboard: unknown table op %q", cmd.Op)
	}
}

// TableSnapshot renders the current page of a table session for the
// session viewer's locale.
func (s *Service) TableSnapshot(ctx context.Context, sessionID string) (TableSnapshot, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return TableSnapshot{}, err
	}
	view := sess.table
	if view == nil {
		return TableSnapshot{}, fmt.Errorf("%w: %s is a %s", ErrWrongKind, sess.Definition.Code, sess.Definition.Kind)
	}
	opts := view.Options()
	state := view.State()
	page := view.Page()

	snap := TableSnapshot{
		SessionID:       sess.ID,
		Code:            sess.Definition.Code,
		Title:           s.localize(ctx, sess.Definition, sess.Viewer.Locale).Name,
		Page:            page,
		PageSizeOptions: append([]int(nil), opts.PageSizeOptions...),
		Selectable:      !opts.DisableRowSelection,
		AllSelected:     view.IsAllPageRowsSelected(),
		SomeSelected:    view.IsSomePageRowsSelected(),
		Actions:         make(map[string][]table.RowAction, len(page.Rows)),
	}
	sorts := make(map[string]string, len(state.Sorting))
	for _, rule := range state.Sorting {
		sorts[rule.ColumnID] = "asc"
		if rule.Desc {
			sorts[rule.ColumnID] = "desc"
		}
	}
	visible := map[string]bool{}
	for _, col := range view.VisibleColumns() {
		visible[col.ID] = true
	}
	for _, col := range view.Columns() {
		snap.Columns = append(snap.Columns, ColumnView{
			ID:       col.ID,
			Header:   Localizer{Translator: s.opts.Translator}.Column(ctx, sess.Definition.Code, col, sess.Viewer.Locale),
			Accessor: col.Path(),
			Width:    col.Width,
			Sortable: col.Sortable,
			Hideable: col.Hideable,
			Visible:  visible[col.ID],
			Sort:     sorts[col.ID],
			Select:   col.IsSelect(),
		})
	}
	if opts.SearchColumn != "" {
		snap.Search, _ = state.ColumnFilters[opts.SearchColumn].(string)
	}
	if opts.StatusColumn != "" {
		snap.Status, _ = state.ColumnFilters[opts.StatusColumn].([]string)
		facets, err := view.Facets(opts.StatusColumn)
		if err != nil {
			return TableSnapshot{}, err
		}
		snap.Facets = facets
	}
	for _, row := range page.Rows {
		actions, err := view.RowActions(row.ID)
		if err != nil {
			return TableSnapshot{}, err
		}
		snap.Actions[row.ID] = actions
	}
	return snap, nil
}

// TableWindow returns the mounted rows of a virtualized table session.
func (s *Service) TableWindow(sessionID string, offset, viewport float64) (table.VirtualPage, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return table.VirtualPage{}, err
	}
	if sess.table == nil {
		return table.VirtualPage{}, fmt.Errorf("%w: %s is a %s", ErrWrongKind, sess.Definition.Code, sess.Definition.Kind)
	}
	return sess.table.Window(offset, viewport)
}
