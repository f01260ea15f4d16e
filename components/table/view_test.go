package table

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dataview/components/dataset"
)

func memberColumns() []Column {
	return []Column{
		{ID: "name", Sortable: true},
		{ID: "email", Sortable: true, Hideable: true},
		{ID: "status", Hideable: true},
		{ID: "joined", Sortable: true, Compare: dataset.CompareNumeric},
	}
}

func noopDelete(context.Context, []dataset.Record) error { return nil }

func newMembersView(t *testing.T, data []dataset.Record, opts Options) *View {
	t.Helper()
	if opts.OnDeleteRows == nil {
		opts.OnDeleteRows = noopDelete
	}
	if opts.SearchColumn == "" {
		opts.SearchColumn = "name"
		opts.SearchFields = []string{"email"}
	}
	if opts.StatusColumn == "" {
		opts.StatusColumn = "status"
	}
	view, err := NewView(data, memberColumns(), opts)
	require.NoError(t, err)
	return view
}

// 25 members: ids m-00..m-24. Names containing "team" for i%2==0 (13) minus
// one renamed below gives 12 matches; of those, "Active" for i%3 != 0.
func fixtureMembers() []dataset.Record {
	out := make([]dataset.Record, 0, 25)
	for i := 0; i < 25; i++ {
		name := fmt.Sprintf("user %02d", i)
		if i%2 == 0 && i != 24 {
			name = fmt.Sprintf("team user %02d", i)
		}
		status := "Active"
		if i%3 == 0 {
			status = "Inactive"
		}
		out = append(out, dataset.Record{
			"id":     fmt.Sprintf("m-%02d", i),
			"name":   name,
			"email":  fmt.Sprintf("user%02d@example.com", i),
			"status": status,
			"joined": 25 - i,
		})
	}
	return out
}

func TestNewViewDefaults(t *testing.T) {
	view := newMembersView(t, fixtureMembers(), Options{})

	cols := view.Columns()
	require.Len(t, cols, 5)
	assert.Equal(t, SelectColumnID, cols[0].ID)
	assert.False(t, cols[0].Sortable)
	assert.False(t, cols[0].Hideable)

	assert.Equal(t, []SortRule{{ColumnID: "name"}}, view.Sorting())
	page := view.Page()
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 3, page.PageCount)
	assert.Equal(t, "m-00", page.Rows[0].ID)
}

func TestNewViewValidation(t *testing.T) {
	_, err := NewView(nil, nil, Options{DisableRowSelection: true})
	require.Error(t, err)

	_, err = NewView(nil, memberColumns(), Options{})
	require.ErrorIs(t, err, errMissingDeleteHandler)

	_, err = NewView(nil, memberColumns(), Options{DisableRowSelection: true, SearchColumn: "nope"})
	require.Error(t, err)

	_, err = NewView(nil, []Column{{ID: "a"}, {ID: "a"}}, Options{DisableRowSelection: true})
	require.Error(t, err)
}

func TestFilterSortPaginateComposition(t *testing.T) {
	view := newMembersView(t, fixtureMembers(), Options{PageSize: 5, PageSizeOptions: []int{5, 10}})

	require.NoError(t, view.SetSearch("team"))
	assert.Len(t, view.Rows(), 12)

	require.NoError(t, view.SetStatusFilter([]string{"Active"}))
	rows := view.Rows()
	require.Len(t, rows, 8)

	page := view.Page()
	assert.Equal(t, 2, page.PageCount)
	require.Len(t, page.Rows, 5)
	for i, row := range page.Rows {
		assert.Equal(t, rows[i].ID(), row.ID)
	}

	require.NoError(t, view.NextPage())
	page = view.Page()
	require.Len(t, page.Rows, 3)
	assert.Equal(t, rows[5].ID(), page.Rows[0].ID)
	assert.False(t, page.CanNext)
	assert.True(t, page.CanPrevious)
}

func TestSearchMatchesSecondaryFields(t *testing.T) {
	view := newMembersView(t, fixtureMembers(), Options{})
	require.NoError(t, view.SetSearch("USER07@"))
	rows := view.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "m-07", rows[0].ID())
}

func TestFacetsExcludeOwnFilter(t *testing.T) {
	data := make([]dataset.Record, 0, 10)
	for i := 0; i < 10; i++ {
		status := "Active"
		if i >= 7 {
			status = "Inactive"
		}
		name := "alpha"
		if i == 0 || i == 7 {
			name = "beta"
		}
		data = append(data, dataset.Record{"id": fmt.Sprint(i), "name": name, "status": status})
	}
	view := newMembersView(t, data, Options{})

	facets, err := view.Facets("status")
	require.NoError(t, err)
	assert.Equal(t, []Facet{{Value: "Active", Count: 7}, {Value: "Inactive", Count: 3}}, facets)

	require.NoError(t, view.SetSearch("alpha"))
	require.NoError(t, view.SetStatusFilter([]string{"Inactive"}))

	facets, err = view.Facets("status")
	require.NoError(t, err)
	assert.Equal(t, []Facet{{Value: "Active", Count: 6}, {Value: "Inactive", Count: 2}}, facets)
	assert.Len(t, view.Rows(), 2)
}

func TestSelectionPersistsAcrossPages(t *testing.T) {
	data := fixtureMembers()
	view := newMembersView(t, data, Options{})

	require.NoError(t, view.SetRowSelected("m-02", true))
	require.NoError(t, view.NextPage())
	assert.True(t, view.IsSelected("m-02"))
	require.NoError(t, view.ToggleAllPageRowsSelected(true))
	require.NoError(t, view.PreviousPage())

	assert.True(t, view.IsSelected("m-02"))
	assert.Len(t, view.SelectedRecords(), 11)
	assert.True(t, view.IsSomePageRowsSelected())
	assert.False(t, view.IsAllPageRowsSelected())

	require.NoError(t, view.ToggleAllPageRowsSelected(false))
	assert.False(t, view.IsSelected("m-02"))
	assert.Len(t, view.SelectedRecords(), 10)
}

func TestSortNeverRemoves(t *testing.T) {
	view := newMembersView(t, fixtureMembers(), Options{})

	require.NoError(t, view.ToggleSorting("joined", false))
	for i := 0; i < 6; i++ {
		rules := view.Sorting()
		require.Len(t, rules, 1)
		assert.Equal(t, "joined", rules[0].ColumnID)
		assert.Equal(t, i%2 == 0, !rules[0].Desc)
		require.NoError(t, view.ToggleSorting("joined", false))
	}
	require.Error(t, view.SetSorting(nil))
	require.Error(t, view.ToggleSorting("status", false))
}

func TestSortUsesColumnComparator(t *testing.T) {
	data := []dataset.Record{
		{"id": "a", "name": "a", "joined": "10"},
		{"id": "b", "name": "b", "joined": "9"},
		{"id": "c", "name": "c", "joined": "100"},
	}
	view := newMembersView(t, data, Options{})
	require.NoError(t, view.ToggleSorting("joined", false))
	assert.Equal(t, []string{"b", "a", "c"}, dataset.IDs(view.Rows()))

	require.NoError(t, view.ToggleSorting("joined", false))
	assert.Equal(t, []string{"c", "a", "b"}, dataset.IDs(view.Rows()))
}

func TestMultiColumnSortIsStable(t *testing.T) {
	data := []dataset.Record{
		{"id": "1", "name": "b", "email": "x"},
		{"id": "2", "name": "a", "email": "y"},
		{"id": "3", "name": "a", "email": "x"},
		{"id": "4", "name": "b", "email": "x"},
	}
	view := newMembersView(t, data, Options{})
	require.NoError(t, view.SetSorting([]SortRule{{ColumnID: "email"}}))
	require.NoError(t, view.ToggleSorting("name", true))
	assert.Equal(t, []string{"3", "1", "4", "2"}, dataset.IDs(view.Rows()))
}

func TestSetPageSizeKeepsValidPage(t *testing.T) {
	view := newMembersView(t, fixtureMembers(), Options{PageSize: 5, PageSizeOptions: []int{5, 20}})
	require.NoError(t, view.SetPageIndex(4))
	require.NoError(t, view.SetPageSize(20))
	page := view.Page()
	assert.Equal(t, 1, page.PageIndex)
	assert.Len(t, page.Rows, 5)

	err := view.SetPageSize(7)
	require.ErrorIs(t, err, errInvalidPageSize)

	require.NoError(t, view.SetPageIndex(99))
	assert.Equal(t, 1, view.Page().PageIndex)
}

func TestDeleteSelectedHandsOriginalRecordsToHost(t *testing.T) {
	var got []dataset.Record
	view := newMembersView(t, fixtureMembers(), Options{
		OnDeleteRows: func(_ context.Context, records []dataset.Record) error {
			got = records
			return nil
		},
	})
	require.NoError(t, view.SetRowSelected("m-02", true))
	require.NoError(t, view.SetPageIndex(2))
	require.NoError(t, view.SetRowSelected("m-22", true))

	deleted, err := view.DeleteSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"m-02", "m-22"}, dataset.IDs(got))
	assert.Equal(t, got, deleted)
	assert.Empty(t, view.SelectedRecords())
	assert.Len(t, view.Data(), 25, "the view never deletes on its own")
}

func TestDeleteSelectedKeepsSelectionOnHostError(t *testing.T) {
	view := newMembersView(t, fixtureMembers(), Options{
		OnDeleteRows: func(context.Context, []dataset.Record) error { return errors.New("boom") },
	})
	require.NoError(t, view.SetRowSelected("m-03", true))
	_, err := view.DeleteSelected(context.Background())
	require.Error(t, err)
	assert.True(t, view.IsSelected("m-03"))
}

func TestSetDataDropsStaleSelection(t *testing.T) {
	data := fixtureMembers()
	view := newMembersView(t, data, Options{})
	require.NoError(t, view.SetRowSelected("m-01", true))
	require.NoError(t, view.SetRowSelected("m-02", true))

	view.SetData(data[2:])
	assert.False(t, view.IsSelected("m-01"))
	assert.True(t, view.IsSelected("m-02"))
	require.Error(t, view.SetRowSelected("m-01", true))
}

func TestColumnVisibility(t *testing.T) {
	view := newMembersView(t, fixtureMembers(), Options{})
	require.NoError(t, view.ToggleColumnVisibility("email"))
	for _, col := range view.VisibleColumns() {
		assert.NotEqual(t, "email", col.ID)
	}
	require.NoError(t, view.ToggleColumnVisibility("email"))
	assert.Len(t, view.VisibleColumns(), 5)
	require.Error(t, view.ToggleColumnVisibility("name"))
	require.Error(t, view.ToggleColumnVisibility(SelectColumnID))
}

func TestVirtualizedViewWindow(t *testing.T) {
	data := make([]dataset.Record, 0, 1000)
	for i := 0; i < 1000; i++ {
		data = append(data, dataset.Record{"id": fmt.Sprintf("r-%04d", i), "name": fmt.Sprintf("row %04d", i)})
	}
	view := newMembersView(t, data, Options{Virtualize: true, RowHeight: 40})

	page := view.Page()
	assert.Len(t, page.Rows, 1000)
	require.ErrorIs(t, view.NextPage(), errPaginationDisabled)

	win, err := view.Window(4000, 400)
	require.NoError(t, err)
	assert.Equal(t, 40000.0, win.Window.TotalSize)
	assert.Equal(t, 90, win.Window.StartIndex)
	assert.Equal(t, 119, win.Window.EndIndex)
	require.Len(t, win.Rows, 30)
	assert.Equal(t, "r-0090", win.Rows[0].ID)
	assert.Equal(t, 3600.0, win.Window.Items[0].Start)

	paged := newMembersView(t, data, Options{})
	_, err = paged.Window(0, 100)
	require.ErrorIs(t, err, errVirtualizationOff)
}

func TestRowActionsResolvePerCategory(t *testing.T) {
	var routed string
	ownerActions := []RowAction{{Label: "Transfer ownership"}}
	view := newMembersView(t, []dataset.Record{
		{"id": "1", "name": "owner", "role": "owner"},
		{"id": "2", "name": "member", "role": "member"},
	}, Options{
		RowActions: RowActionSets{
			Category: func(rec dataset.Record) string { return dataset.Stringify(rec["role"]) },
			Sets:     map[string][]RowAction{"owner": ownerActions},
		},
		OnRowAction: func(_ context.Context, action string, rec dataset.Record) error {
			routed = action + ":" + rec.ID()
			return nil
		},
	})

	actions, err := view.RowActions("1")
	require.NoError(t, err)
	assert.Equal(t, ownerActions, actions)

	actions, err = view.RowActions("2")
	require.NoError(t, err)
	assert.Len(t, actions, 7)
	assert.True(t, actions[6].Destructive)

	require.NoError(t, view.RunRowAction(context.Background(), "2", "Share"))
	assert.Equal(t, "Share:2", routed)
	require.Error(t, view.RunRowAction(context.Background(), "1", "Share"))
}

func TestRestoreState(t *testing.T) {
	view := newMembersView(t, fixtureMembers(), Options{})
	require.NoError(t, view.SetSearch("team"))
	require.NoError(t, view.SetRowSelected("m-00", true))
	snapshot := view.State()

	other := newMembersView(t, fixtureMembers(), Options{})
	snapshot.RowSelection["ghost"] = true
	require.NoError(t, other.Restore(snapshot))
	assert.Len(t, other.Rows(), 12)
	assert.True(t, other.IsSelected("m-00"))
	assert.False(t, other.IsSelected("ghost"))

	snapshot.Sorting = []SortRule{{ColumnID: "status"}}
	require.Error(t, other.Restore(snapshot))
}
