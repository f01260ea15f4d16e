package teams

import (
	"context"

	"github.com/goliatone/go-dataview/components/dataset"
	"github.com/goliatone/go-dataview/components/table"
)

// Row action labels offered on the members table.
const (
	ActionViewProfile  = "View profile"
	ActionChangeRole   = "Change role"
	ActionCopyEmail    = "Copy email"
	ActionRemoveMember = "Remove member"
)

// MembersViewOptions customizes MembersView.
type MembersViewOptions struct {
	PageSize int
	// OnRowAction receives actions the service does not handle itself
	// (profile, role dialog, copy email).
	OnRowAction func(ctx context.Context, action string, member Member) error
	OnAddItem   func(ctx context.Context) error
}

// MemberColumns is the column set used by the members table.
func MemberColumns() []table.Column {
	return []table.Column{
		{ID: "name", Header: "Name", Sortable: true},
		{ID: "email", Header: "Email", Sortable: true, Hideable: true},
		{ID: "role", Header: "Role", Sortable: true, Hideable: true, Width: 120},
		{ID: "joined_at", Header: "Joined", Sortable: true, Hideable: true, Compare: dataset.CompareDate},
	}
}

// MembersView builds a table view over a team's members: search on name and
// email, a role facet, and row actions chosen by role. Deleting selected rows
// removes the members through the service and reloads the view.
func (s *Service) MembersView(ctx context.Context, teamID string, opts MembersViewOptions) (*table.View, error) {
	members, err := s.store.Members(ctx, teamID)
	if err != nil {
		return nil, err
	}

	var view *table.View
	reload := func(ctx context.Context) error {
		fresh, err := s.store.Members(ctx, teamID)
		if err != nil {
			return err
		}
		view.SetData(MemberRecords(fresh))
		return nil
	}
	remove := func(ctx context.Context, records []dataset.Record) error {
		if err := s.RemoveMembers(ctx, dataset.IDs(records)); err != nil {
			return err
		}
		return reload(ctx)
	}

	var route func(ctx context.Context, action string, rec dataset.Record) error
	if opts.OnRowAction != nil {
		route = func(ctx context.Context, action string, rec dataset.Record) error {
			member, err := s.store.Member(ctx, rec.ID())
			if err != nil {
				return err
			}
			return opts.OnRowAction(ctx, action, member)
		}
	}

	view, err = table.NewView(MemberRecords(members), MemberColumns(), table.Options{
		SearchColumn: "name",
		SearchFields: []string{"email"},
		StatusColumn: "role",
		PageSize:     opts.PageSize,
		RowActions:   memberRowActions(remove),
		OnAddItem:    opts.OnAddItem,
		OnDeleteRows: remove,
		OnRowAction:  route,
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func memberRowActions(remove func(ctx context.Context, records []dataset.Record) error) table.RowActionSets {
	return table.RowActionSets{
		Category: func(rec dataset.Record) string {
			return dataset.Stringify(rec.Value("role"))
		},
		Sets: map[string][]table.RowAction{
			RoleOwner: {
				{Label: ActionViewProfile, Icon: "user"},
			},
		},
		Default: []table.RowAction{
			{Label: ActionViewProfile, Icon: "user"},
			{Label: ActionChangeRole, Icon: "shield"},
			{Label: ActionCopyEmail, Icon: "mail"},
			{
				Label:       ActionRemoveMember,
				Icon:        "trash",
				Destructive: true,
				Handler: func(ctx context.Context, rec dataset.Record) error {
					return remove(ctx, []dataset.Record{rec})
				},
			},
		},
	}
}

// RolesView lists roles with a search over name and description.
func (s *Service) RolesView(ctx context.Context) (*table.View, error) {
	roles, err := s.store.Roles(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]dataset.Record, len(roles))
	for i, r := range roles {
		records[i] = r.Record()
	}
	return table.NewView(records, []table.Column{
		{ID: "name", Header: "Role", Sortable: true},
		{ID: "description", Header: "Description", Hideable: true},
		{ID: "permissions", Header: "Permissions", Sortable: true, Compare: dataset.CompareNumeric},
	}, table.Options{
		SearchColumn:        "name",
		SearchFields:        []string{"description"},
		DisableRowSelection: true,
	})
}

// PermissionsView lists the permission catalogue faceted by category.
func (s *Service) PermissionsView(ctx context.Context) (*table.View, error) {
	perms, err := s.store.Permissions(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]dataset.Record, len(perms))
	for i, p := range perms {
		records[i] = p.Record()
	}
	return table.NewView(records, []table.Column{
		{ID: "name", Header: "Permission", Sortable: true},
		{ID: "description", Header: "Description", Hideable: true},
		{ID: "category", Header: "Category", Sortable: true},
	}, table.Options{
		SearchColumn:        "name",
		SearchFields:        []string{"description"},
		StatusColumn:        "category",
		DisableRowSelection: true,
		DisablePagination:   true,
	})
}
