package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dataview/components/teams"
	"github.com/goliatone/go-dataview/components/webhooks"
)

type memberService interface {
	Members(ctx context.Context, teamID string) ([]teams.Member, error)
	Roles(ctx context.Context) ([]teams.Role, error)
}

// MembersInput selects a team.
type MembersInput struct {
	TeamID string `json:"team_id"`
}

// MembersQuery lists a team's members.
type MembersQuery struct {
	service memberService
}

// NewMembersQuery builds the query.
func NewMembersQuery(service memberService) *MembersQuery {
	return &MembersQuery{service: service}
}

var _ gocommand.Querier[MembersInput, []teams.Member] = (*MembersQuery)(nil)

// Query returns the members.
func (q *MembersQuery) Query(ctx context.Context, input MembersInput) ([]teams.Member, error) {
	return q.service.Members(ctx, input.TeamID)
}

// RolesQuery lists built-in and custom roles.
type RolesQuery struct {
	service memberService
}

// NewRolesQuery builds the query.
func NewRolesQuery(service memberService) *RolesQuery {
	return &RolesQuery{service: service}
}

var _ gocommand.Querier[struct{}, []teams.Role] = (*RolesQuery)(nil)

// Query returns the roles.
func (q *RolesQuery) Query(ctx context.Context, _ struct{}) ([]teams.Role, error) {
	return q.service.Roles(ctx)
}

type webhookLister interface {
	List(ctx context.Context) ([]webhooks.Webhook, error)
}

// WebhooksQuery lists configured webhooks.
type WebhooksQuery struct {
	service webhookLister
}

// NewWebhooksQuery builds the query.
func NewWebhooksQuery(service webhookLister) *WebhooksQuery {
	return &WebhooksQuery{service: service}
}

var _ gocommand.Querier[struct{}, []webhooks.Webhook] = (*WebhooksQuery)(nil)

// Query returns the webhooks.
func (q *WebhooksQuery) Query(ctx context.Context, _ struct{}) ([]webhooks.Webhook, error) {
	return q.service.List(ctx)
}
