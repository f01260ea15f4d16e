package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dataview/components/teams"
)

type teamService interface {
	AddMember(ctx context.Context, teamID, name, email, role string) (teams.Member, error)
	UpdateRole(ctx context.Context, memberID, role string) (teams.Member, error)
	AddRole(ctx context.Context, name, description string, permissions []string) (teams.Role, error)
	RemoveMembers(ctx context.Context, ids []string) error
}

// AddMemberInput invites a member to a team.
type AddMemberInput struct {
	TeamID string        `json:"team_id"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Role   string        `json:"role"`
	Result *teams.Member `json:"-"`
}

// AddMemberCommand wraps teams.Service.AddMember.
type AddMemberCommand struct {
	service   teamService
	telemetry Telemetry
}

// NewAddMemberCommand creates the command.
func NewAddMemberCommand(service teamService, telemetry Telemetry) *AddMemberCommand {
	return &AddMemberCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddMemberInput] = (*AddMemberCommand)(nil)

// Execute adds the member.
func (c *AddMemberCommand) Execute(ctx context.Context, msg AddMemberInput) error {
	if c.service == nil {
		return errors.New("add member command requires service")
	}
	member, err := c.service.AddMember(ctx, msg.TeamID, msg.Name, msg.Email, msg.Role)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = member
	}
	c.telemetry.Record(ctx, "teams.member.add", map[string]any{
		"team_id":   member.TeamID,
		"member_id": member.ID,
		"role":      member.Role,
	})
	return nil
}

// UpdateRoleInput changes a member's role.
type UpdateRoleInput struct {
	MemberID string `json:"member_id"`
	Role     string `json:"role"`
}

// UpdateRoleCommand wraps teams.Service.UpdateRole.
type UpdateRoleCommand struct {
	service   teamService
	telemetry Telemetry
}

// NewUpdateRoleCommand creates the command.
func NewUpdateRoleCommand(service teamService, telemetry Telemetry) *UpdateRoleCommand {
	return &UpdateRoleCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateRoleInput] = (*UpdateRoleCommand)(nil)

// Execute updates the role.
func (c *UpdateRoleCommand) Execute(ctx context.Context, msg UpdateRoleInput) error {
	if c.service == nil {
		return errors.New("update role command requires service")
	}
	if msg.MemberID == "" {
		return errors.New("update role command requires member id")
	}
	member, err := c.service.UpdateRole(ctx, msg.MemberID, msg.Role)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "teams.member.role", map[string]any{
		"member_id": member.ID,
		"role":      member.Role,
	})
	return nil
}

// AddRoleInput defines a custom role.
type AddRoleInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// AddRoleCommand wraps teams.Service.AddRole.
type AddRoleCommand struct {
	service   teamService
	telemetry Telemetry
}

// NewAddRoleCommand creates the command.
func NewAddRoleCommand(service teamService, telemetry Telemetry) *AddRoleCommand {
	return &AddRoleCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddRoleInput] = (*AddRoleCommand)(nil)

// Execute creates the role.
func (c *AddRoleCommand) Execute(ctx context.Context, msg AddRoleInput) error {
	if c.service == nil {
		return errors.New("add role command requires service")
	}
	role, err := c.service.AddRole(ctx, msg.Name, msg.Description, msg.Permissions)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "teams.role.add", map[string]any{
		"role":        role.Name,
		"permissions": len(role.Permissions),
	})
	return nil
}

// RemoveMembersInput removes members by id.
type RemoveMembersInput struct {
	MemberIDs []string `json:"member_ids"`
}

// RemoveMembersCommand wraps teams.Service.RemoveMembers.
type RemoveMembersCommand struct {
	service   teamService
	telemetry Telemetry
}

// NewRemoveMembersCommand creates the command.
func NewRemoveMembersCommand(service teamService, telemetry Telemetry) *RemoveMembersCommand {
	return &RemoveMembersCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveMembersInput] = (*RemoveMembersCommand)(nil)

// Execute removes the members.
func (c *RemoveMembersCommand) Execute(ctx context.Context, msg RemoveMembersInput) error {
	if c.service == nil {
		return errors.New("remove members command requires service")
	}
	if len(msg.MemberIDs) == 0 {
		return errors.New("remove members command requires member ids")
	}
	if err := c.service.RemoveMembers(ctx, msg.MemberIDs); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "teams.member.remove", map[string]any{"count": len(msg.MemberIDs)})
	return nil
}
