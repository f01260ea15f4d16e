package webhooks

import (
	"context"

	"github.com/goliatone/go-dataview/components/dataset"
	"github.com/goliatone/go-dataview/components/table"
)

// Row action labels offered on the webhooks table.
const (
	ActionTest    = "Send test"
	ActionDisable = "Disable"
	ActionEnable  = "Enable"
	ActionCopyURL = "Copy URL"
	ActionDelete  = "Delete"
)

// ViewOptions customizes WebhooksView.
type ViewOptions struct {
	PageSize    int
	OnRowAction func(ctx context.Context, action string, hook Webhook) error
	OnAddItem   func(ctx context.Context) error
	// OnTested receives every completed test run from the row action.
	OnTested func(ctx context.Context, result TestResult)
}

// Columns is the column set of the webhooks table.
func Columns() []table.Column {
	return []table.Column{
		{ID: "name", Header: "Name", Sortable: true},
		{ID: "hook_name", Header: "Hook", Sortable: true, Hideable: true},
		{ID: "url", Header: "URL", Hideable: true},
		{ID: "events", Header: "Events", Sortable: true, Hideable: true, Compare: dataset.CompareNumeric, Width: 90},
		{ID: "status", Header: "Status", Sortable: true, Hideable: true, Width: 110},
		{ID: "created_at", Header: "Created", Sortable: true, Hideable: true, Compare: dataset.CompareDate},
	}
}

// WebhooksView builds the webhooks table: search over name, hook and url, a
// status facet, and actions chosen by status.
func (s *Service) WebhooksView(ctx context.Context, opts ViewOptions) (*table.View, error) {
	hooks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var view *table.View
	reload := func(ctx context.Context) error {
		fresh, err := s.store.List(ctx)
		if err != nil {
			return err
		}
		view.SetData(records(fresh))
		return nil
	}
	remove := func(ctx context.Context, recs []dataset.Record) error {
		if err := s.Delete(ctx, dataset.IDs(recs)); err != nil {
			return err
		}
		return reload(ctx)
	}
	setStatus := func(status Status) func(ctx context.Context, rec dataset.Record) error {
		return func(ctx context.Context, rec dataset.Record) error {
			if _, err := s.SetStatus(ctx, rec.ID(), status); err != nil {
				return err
			}
			return reload(ctx)
		}
	}
	test := func(ctx context.Context, rec dataset.Record) error {
		result, err := s.Test(ctx, rec.ID())
		if err != nil {
			return err
		}
		if opts.OnTested != nil {
			opts.OnTested(ctx, result)
		}
		return reload(ctx)
	}
	del := table.RowAction{
		Label:       ActionDelete,
		Icon:        "trash",
		Destructive: true,
		Handler: func(ctx context.Context, rec dataset.Record) error {
			return remove(ctx, []dataset.Record{rec})
		},
	}
	copyURL := table.RowAction{Label: ActionCopyURL, Icon: "link"}

	var route func(ctx context.Context, action string, rec dataset.Record) error
	if opts.OnRowAction != nil {
		route = func(ctx context.Context, action string, rec dataset.Record) error {
			hook, err := s.store.Get(ctx, rec.ID())
			if err != nil {
				return err
			}
			return opts.OnRowAction(ctx, action, hook)
		}
	}

	view, err = table.NewView(records(hooks), Columns(), table.Options{
		SearchColumn: "name",
		SearchFields: []string{"hook_name", "url"},
		StatusColumn: "status",
		PageSize:     opts.PageSize,
		RowActions: table.RowActionSets{
			Category: func(rec dataset.Record) string { return dataset.Stringify(rec.Value("status")) },
			Sets: map[string][]table.RowAction{
				string(StatusActive): {
					{Label: ActionTest, Icon: "send", Handler: test},
					{Label: ActionDisable, Icon: "pause", Handler: setStatus(StatusInactive)},
					copyURL,
					del,
				},
				string(StatusInactive): {
					{Label: ActionEnable, Icon: "play", Handler: setStatus(StatusActive)},
					copyURL,
					del,
				},
			},
		},
		OnAddItem:    opts.OnAddItem,
		OnDeleteRows: remove,
		OnRowAction:  route,
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func records(hooks []Webhook) []dataset.Record {
	out := make([]dataset.Record, len(hooks))
	for i, h := range hooks {
		out[i] = h.Record()
	}
	return out
}
