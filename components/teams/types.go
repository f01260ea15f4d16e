package teams

import (
	"time"

	"github.com/goliatone/go-dataview/components/dataset"
)

// Built-in role names.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// Team groups members.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Member belongs to one team and holds one role.
type Member struct {
	ID       string    `json:"id"`
	TeamID   string    `json:"team_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// Record exposes the member to table views.
func (m Member) Record() dataset.Record {
	return dataset.Record{
		dataset.IDField: m.ID,
		"team_id":       m.TeamID,
		"name":          m.Name,
		"email":         m.Email,
		"role":          m.Role,
		"joined_at":     m.JoinedAt,
	}
}

// MemberRecords converts members for a table view.
func MemberRecords(members []Member) []dataset.Record {
	out := make([]dataset.Record, len(members))
	for i, m := range members {
		out[i] = m.Record()
	}
	return out
}

// Role is a named permission bundle.
type Role struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	BuiltIn     bool     `json:"built_in"`
}

// Record exposes the role to table views.
func (r Role) Record() dataset.Record {
	return dataset.Record{
		dataset.IDField: r.Name,
		"name":          r.Name,
		"description":   r.Description,
		"permissions":   len(r.Permissions),
		"built_in":      r.BuiltIn,
	}
}

// Permission is a single grantable capability.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Record exposes the permission to table views.
func (p Permission) Record() dataset.Record {
	return dataset.Record{
		dataset.IDField: p.ID,
		"name":          p.Name,
		"description":   p.Description,
		"category":      p.Category,
	}
}

// DefaultPermissions is the catalogue seeded into new stores.
func DefaultPermissions() []Permission {
	return []Permission{
		{ID: "members.read", Name: "View members", Description: "See team members and their roles", Category: "members"},
		{ID: "members.write", Name: "Manage members", Description: "Invite, remove and change member roles", Category: "members"},
		{ID: "webhooks.read", Name: "View webhooks", Description: "See webhook configurations", Category: "webhooks"},
		{ID: "webhooks.write", Name: "Manage webhooks", Description: "Create, test and delete webhooks", Category: "webhooks"},
		{ID: "metrics.read", Name: "View metrics", Description: "Open dashboards and charts", Category: "metrics"},
		{ID: "billing.manage", Name: "Manage billing", Description: "Change plan and payment details", Category: "billing"},
	}
}

// DefaultRoles are the built-in roles seeded into new stores.
func DefaultRoles() []Role {
	return []Role{
		{Name: RoleOwner, Description: "Full access including billing", BuiltIn: true, Permissions: []string{
			"members.read", "members.write", "webhooks.read", "webhooks.write", "metrics.read", "billing.manage",
		}},
		{Name: RoleAdmin, Description: "Manage members and webhooks", BuiltIn: true, Permissions: []string{
			"members.read", "members.write", "webhooks.read", "webhooks.write", "metrics.read",
		}},
		{Name: RoleMember, Description: "Work with webhooks and metrics", BuiltIn: true, Permissions: []string{
			"members.read", "webhooks.read", "webhooks.write", "metrics.read",
		}},
		{Name: RoleViewer, Description: "Read-only access", BuiltIn: true, Permissions: []string{
			"members.read", "webhooks.read", "metrics.read",
		}},
	}
}
