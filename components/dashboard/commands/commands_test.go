package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-dataview/components/chart"
	dashboard "github.com/goliatone/go-dataview/components/dashboard"
	"github.com/goliatone/go-dataview/components/teams"
	"github.com/goliatone/go-dataview/components/webhooks"
)

type stubTelemetry struct {
	calls  int
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.calls++
	s.events = append(s.events, event)
}

func openOrders(t *testing.T, svc *dashboard.Service) OpenSessionResult {
	t.Helper()
	var result OpenSessionResult
	cmd := NewOpenSessionCommand(svc, nil)
	err := cmd.Execute(context.Background(), OpenSessionInput{
		Viewer: dashboard.ViewerContext{UserID: "u1"},
		Code:   dashboard.OrdersTableCode,
		Result: &result,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	return result
}

func TestOpenSessionCommand(t *testing.T) {
	svc := dashboard.NewService(dashboard.Options{})
	result := openOrders(t, svc)
	if result.SessionID == "" || result.Kind != dashboard.KindTable {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := svc.Session(result.SessionID); err != nil {
		t.Fatalf("expected session to be open: %v", err)
	}

	cmd := NewOpenSessionCommand(svc, nil)
	if err := cmd.Execute(context.Background(), OpenSessionInput{}); err == nil {
		t.Fatalf("expected error without widget code")
	}
	err := cmd.Execute(context.Background(), OpenSessionInput{Code: "missing"})
	if !errors.Is(err, dashboard.ErrUnknownWidget) {
		t.Fatalf("expected unknown widget error, got %v", err)
	}
}

func TestApplyTableCommand(t *testing.T) {
	svc := dashboard.NewService(dashboard.Options{})
	result := openOrders(t, svc)
	telemetry := &stubTelemetry{}
	cmd := NewApplyTableCommand(svc, telemetry)

	err := cmd.Execute(context.Background(), ApplyTableInput{
		SessionID: result.SessionID,
		Command:   dashboard.TableCommand{Op: dashboard.TableStatus, Values: []string{"refunded"}},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	sess, _ := svc.Session(result.SessionID)
	if got := sess.Table().Page().FilteredRows; got != 2 {
		t.Fatalf("expected 2 refunded orders, got %d", got)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry call, got %d", telemetry.calls)
	}
	if err := cmd.Execute(context.Background(), ApplyTableInput{SessionID: result.SessionID}); err == nil {
		t.Fatalf("expected error without op")
	}
	if err := cmd.Execute(context.Background(), ApplyTableInput{Command: dashboard.TableCommand{Op: dashboard.TableNextPage}}); !errors.Is(err, errMissingSessionID) {
		t.Fatalf("expected missing session error, got %v", err)
	}
}

func TestApplyChartAndAskCommands(t *testing.T) {
	svc := dashboard.NewService(dashboard.Options{ChatDelay: -1})
	var result OpenSessionResult
	if err := NewOpenSessionCommand(svc, nil).Execute(context.Background(), OpenSessionInput{
		Code:   dashboard.SalesChartCode,
		Result: &result,
	}); err != nil {
		t.Fatalf("open returned error: %v", err)
	}

	err := NewApplyChartCommand(svc, nil).Execute(context.Background(), ApplyChartInput{
		SessionID: result.SessionID,
		Command:   dashboard.ChartCommand{Op: dashboard.ChartShape, Shape: chart.ShapeBar},
	})
	if err != nil {
		t.Fatalf("chart Execute returned error: %v", err)
	}
	snap, err := svc.ChartSnapshot(result.SessionID)
	if err != nil {
		t.Fatalf("ChartSnapshot returned error: %v", err)
	}
	if snap.Config.Shape != chart.ShapeBar {
		t.Fatalf("expected bar shape, got %s", snap.Config.Shape)
	}

	var reply chart.Message
	if err := NewAskCommand(svc, nil).Execute(context.Background(), AskInput{
		SessionID: result.SessionID,
		Query:     "help",
		Reply:     &reply,
	}); err != nil {
		t.Fatalf("ask Execute returned error: %v", err)
	}
	if reply.Role != chart.RoleAssistant || reply.Content == "" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestRefreshAndCloseSessionCommands(t *testing.T) {
	svc := dashboard.NewService(dashboard.Options{})
	result := openOrders(t, svc)
	telemetry := &stubTelemetry{}

	if err := NewRefreshSessionCommand(svc, telemetry).Execute(context.Background(), RefreshSessionInput{SessionID: result.SessionID}); err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if err := NewCloseSessionCommand(svc, telemetry).Execute(context.Background(), CloseSessionInput{SessionID: result.SessionID}); err != nil {
		t.Fatalf("close returned error: %v", err)
	}
	if _, err := svc.Session(result.SessionID); !errors.Is(err, dashboard.ErrUnknownSession) {
		t.Fatalf("expected session to be closed, got %v", err)
	}
	if telemetry.calls != 2 {
		t.Fatalf("expected 2 telemetry calls, got %d", telemetry.calls)
	}
	if err := NewCloseSessionCommand(svc, nil).Execute(context.Background(), CloseSessionInput{}); !errors.Is(err, errMissingSessionID) {
		t.Fatalf("expected missing session error, got %v", err)
	}
}

type stubNotifier struct {
	events []dashboard.ViewEvent
}

func (s *stubNotifier) NotifyViewUpdated(_ context.Context, event dashboard.ViewEvent) error {
	s.events = append(s.events, event)
	return nil
}

func TestNotifyViewCommand(t *testing.T) {
	service := &stubNotifier{}
	cmd := NewNotifyViewCommand(service, nil)
	event := dashboard.ViewEvent{Code: dashboard.OrdersTableCode, Reason: "external"}
	if err := cmd.Execute(context.Background(), NotifyViewInput{Event: event}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.events) != 1 {
		t.Fatalf("expected notify call")
	}
	if err := NewNotifyViewCommand(nil, nil).Execute(context.Background(), NotifyViewInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}

type stubTeams struct {
	added   []string
	roles   map[string]string
	created []string
	removed []string
	err     error
}

func (s *stubTeams) AddMember(_ context.Context, teamID, name, email, role string) (teams.Member, error) {
	if s.err != nil {
		return teams.Member{}, s.err
	}
	s.added = append(s.added, email)
	return teams.Member{ID: "m-" + name, TeamID: teamID, Name: name, Email: email, Role: role}, nil
}

func (s *stubTeams) UpdateRole(_ context.Context, memberID, role string) (teams.Member, error) {
	if s.roles == nil {
		s.roles = map[string]string{}
	}
	s.roles[memberID] = role
	return teams.Member{ID: memberID, Role: role}, nil
}

func (s *stubTeams) AddRole(_ context.Context, name, description string, permissions []string) (teams.Role, error) {
	s.created = append(s.created, name)
	return teams.Role{Name: name, Description: description, Permissions: permissions}, nil
}

func (s *stubTeams) RemoveMembers(_ context.Context, ids []string) error {
	s.removed = append(s.removed, ids...)
	return nil
}

func TestTeamCommands(t *testing.T) {
	service := &stubTeams{}
	telemetry := &stubTelemetry{}
	ctx := context.Background()

	var member teams.Member
	if err := NewAddMemberCommand(service, telemetry).Execute(ctx, AddMemberInput{
		TeamID: "t1", Name: "ada", Email: "ada@example.com", Role: teams.RoleMember, Result: &member,
	}); err != nil {
		t.Fatalf("add member returned error: %v", err)
	}
	if member.ID != "m-ada" {
		t.Fatalf("expected result to be filled, got %+v", member)
	}
	if err := NewUpdateRoleCommand(service, telemetry).Execute(ctx, UpdateRoleInput{MemberID: "m-ada", Role: teams.RoleAdmin}); err != nil {
		t.Fatalf("update role returned error: %v", err)
	}
	if service.roles["m-ada"] != teams.RoleAdmin {
		t.Fatalf("expected admin role, got %q", service.roles["m-ada"])
	}
	if err := NewUpdateRoleCommand(service, nil).Execute(ctx, UpdateRoleInput{Role: teams.RoleAdmin}); err == nil {
		t.Fatalf("expected error without member id")
	}
	if err := NewAddRoleCommand(service, telemetry).Execute(ctx, AddRoleInput{Name: "auditor", Permissions: []string{"billing.read"}}); err != nil {
		t.Fatalf("add role returned error: %v", err)
	}
	if err := NewRemoveMembersCommand(service, telemetry).Execute(ctx, RemoveMembersInput{MemberIDs: []string{"m-ada"}}); err != nil {
		t.Fatalf("remove members returned error: %v", err)
	}
	if err := NewRemoveMembersCommand(service, nil).Execute(ctx, RemoveMembersInput{}); err == nil {
		t.Fatalf("expected error without member ids")
	}
	if len(service.removed) != 1 || telemetry.calls != 4 {
		t.Fatalf("unexpected state removed=%v telemetry=%d", service.removed, telemetry.calls)
	}

	service.err = errors.New("invite failed")
	if err := NewAddMemberCommand(service, telemetry).Execute(ctx, AddMemberInput{TeamID: "t1"}); err == nil {
		t.Fatalf("expected backend error to surface")
	}
	if telemetry.calls != 4 {
		t.Fatalf("expected no telemetry on failure, got %d", telemetry.calls)
	}
}

type stubWebhooks struct {
	statuses map[string]webhooks.Status
	deleted  []string
	tested   []string
}

func (s *stubWebhooks) Create(_ context.Context, form webhooks.CreateForm) (webhooks.Webhook, error) {
	if err := webhooks.ValidateCreate(form); err != nil {
		return webhooks.Webhook{}, err
	}
	return webhooks.Webhook{ID: "wh-1", Name: form.Name, HookName: form.HookName, Events: form.Events, Status: webhooks.StatusActive}, nil
}

func (s *stubWebhooks) SetStatus(_ context.Context, id string, status webhooks.Status) (webhooks.Webhook, error) {
	if s.statuses == nil {
		s.statuses = map[string]webhooks.Status{}
	}
	s.statuses[id] = status
	return webhooks.Webhook{ID: id, Status: status}, nil
}

func (s *stubWebhooks) Delete(_ context.Context, ids []string) error {
	s.deleted = append(s.deleted, ids...)
	return nil
}

func (s *stubWebhooks) Test(_ context.Context, id string) (webhooks.TestResult, error) {
	s.tested = append(s.tested, id)
	return webhooks.TestResult{WebhookID: id, Success: true, StatusCode: 200}, nil
}

func TestWebhookCommands(t *testing.T) {
	service := &stubWebhooks{}
	ctx := context.Background()

	var hook webhooks.Webhook
	err := NewCreateWebhookCommand(service, nil).Execute(ctx, CreateWebhookInput{
		Form: webhooks.CreateForm{
			Name:     "Members",
			Secret:   "s3cret",
			HookName: "members",
			Events:   []string{"member.created"},
			Schema:   `{"type":"object","properties":{"keyHook":{"type":"string"}}}`,
		},
		Result: &hook,
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if hook.ID != "wh-1" {
		t.Fatalf("expected created webhook, got %+v", hook)
	}

	err = NewCreateWebhookCommand(service, nil).Execute(ctx, CreateWebhookInput{
		Form: webhooks.CreateForm{Name: "Bad", Secret: "s", HookName: "bad", Schema: `{"type":"object","properties":{"id":{"type":"string"}}}`},
	})
	if err == nil {
		t.Fatalf("expected schema without keyHook to be rejected")
	}

	if err := NewSetWebhookStatusCommand(service, nil).Execute(ctx, SetWebhookStatusInput{WebhookID: "wh-1", Status: webhooks.StatusInactive}); err != nil {
		t.Fatalf("status returned error: %v", err)
	}
	if service.statuses["wh-1"] != webhooks.StatusInactive {
		t.Fatalf("expected inactive status")
	}

	var result webhooks.TestResult
	if err := NewTestWebhookCommand(service, nil).Execute(ctx, TestWebhookInput{WebhookID: "wh-1", Result: &result}); err != nil {
		t.Fatalf("test returned error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected successful test result")
	}

	if err := NewDeleteWebhooksCommand(service, nil).Execute(ctx, DeleteWebhooksInput{}); !errors.Is(err, errMissingWebhookID) {
		t.Fatalf("expected missing id error, got %v", err)
	}
	if err := NewDeleteWebhooksCommand(service, nil).Execute(ctx, DeleteWebhooksInput{WebhookIDs: []string{"wh-1"}}); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if len(service.deleted) != 1 {
		t.Fatalf("expected delete call")
	}
}
