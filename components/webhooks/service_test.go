package webhooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dataview/components/table"
	"github.com/goliatone/go-dataview/pkg/activity"
	"github.com/goliatone/go-dataview/pkg/toast"
)

type stubBackend struct {
	mu       sync.Mutex
	err      error
	created  []Webhook
	deleted  [][]string
	statuses map[string]Status
}

func (b *stubBackend) CreateWebhook(_ context.Context, hook Webhook) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.created = append(b.created, hook)
	return nil
}

func (b *stubBackend) DeleteWebhooks(_ context.Context, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.deleted = append(b.deleted, ids)
	return nil
}

func (b *stubBackend) SetWebhookStatus(_ context.Context, id string, status Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	if b.statuses == nil {
		b.statuses = map[string]Status{}
	}
	b.statuses[id] = status
	return nil
}

type apiError struct{ message string }

func (e apiError) Error() string      { return "remote error 422" }
func (e apiError) APIMessage() string { return e.message }

type fixture struct {
	svc      *Service
	backend  *stubBackend
	toasts   *toast.Recorder
	captured *activity.CaptureHook
	random   *scriptedRandom
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	backend := &stubBackend{}
	recorder := &toast.Recorder{}
	capture := &activity.CaptureHook{}
	random := &scriptedRandom{}
	seq := 0
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewService(Options{
		Store:    NewInMemoryStore(),
		Backend:  backend,
		Notifier: recorder,
		Activity: activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true}),
		Tester:   NewTester(TesterOptions{Clock: &stepClock{now: clock}, Random: random}),
		NewID: func() string {
			seq++
			return fmt.Sprintf("wh-%d", seq)
		},
		Now: func() time.Time {
			clock = clock.Add(time.Hour)
			return clock
		},
	})
	require.NoError(t, err)
	return fixture{svc: svc, backend: backend, toasts: recorder, captured: capture, random: random}
}

func TestCreateRejectsMissingKeyHookBeforeBackend(t *testing.T) {
	f := newFixture(t)
	form := validForm(t)
	form.Schema = BuildSchema([]SchemaField{{Name: "event", Type: "string"}})

	_, err := f.svc.Create(context.Background(), form)
	require.ErrorIs(t, err, ErrKeyHookMissing)
	assert.Empty(t, f.backend.created)

	hooks, _ := f.svc.List(context.Background())
	assert.Empty(t, hooks)
	last, _ := f.toasts.Last()
	assert.Equal(t, toast.VariantDestructive, last.Variant)
	assert.Equal(t, "Invalid webhook", last.Title)
	assert.Contains(t, last.Description, "keyHook")
	assert.Empty(t, f.captured.Snapshot())
}

func TestCreateStoresWebhook(t *testing.T) {
	f := newFixture(t)

	hook, err := f.svc.Create(context.Background(), validForm(t))
	require.NoError(t, err)
	assert.Equal(t, "wh-1", hook.ID)
	assert.Equal(t, StatusActive, hook.Status)
	assert.Equal(t, "s3cret", hook.Secret)
	require.Len(t, f.backend.created, 1)
	assert.Equal(t, hook, f.backend.created[0])

	_, hasSecret := hook.Record()["secret"]
	assert.False(t, hasSecret)

	last, _ := f.toasts.Last()
	assert.Equal(t, toast.Success("Webhook created", "CRM sync will receive 3 event(s)."), last)
	events := f.captured.Snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "webhooks.webhook.create", events[0].DefinitionCode)
}

func TestCreateSurfacesAPIMessage(t *testing.T) {
	f := newFixture(t)
	f.backend.err = fmt.Errorf("hostapi: create webhook: %w", apiError{message: "URL is not reachable"})

	_, err := f.svc.Create(context.Background(), validForm(t))
	require.Error(t, err)
	last, _ := f.toasts.Last()
	assert.Equal(t, "Failed to create webhook", last.Title)
	assert.Equal(t, "URL is not reachable", last.Description)

	hooks, _ := f.svc.List(context.Background())
	assert.Empty(t, hooks)
}

func TestSetStatusAndDelete(t *testing.T) {
	f := newFixture(t)
	hook, err := f.svc.Create(context.Background(), validForm(t))
	require.NoError(t, err)

	_, err = f.svc.SetStatus(context.Background(), hook.ID, "paused")
	require.ErrorIs(t, err, ErrInvalidStatus)

	updated, err := f.svc.SetStatus(context.Background(), hook.ID, StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, updated.Status)
	assert.Equal(t, StatusInactive, f.backend.statuses[hook.ID])

	require.ErrorIs(t, f.svc.Delete(context.Background(), nil), ErrNoWebhooks)
	require.ErrorIs(t, f.svc.Delete(context.Background(), []string{"missing"}), ErrWebhookNotFound)

	require.NoError(t, f.svc.Delete(context.Background(), []string{hook.ID}))
	hooks, _ := f.svc.List(context.Background())
	assert.Empty(t, hooks)
}

func TestServiceTestRecordsRun(t *testing.T) {
	f := newFixture(t)
	hook, err := f.svc.Create(context.Background(), validForm(t))
	require.NoError(t, err)

	f.random.floats = []float64{0.01}
	result, err := f.svc.Test(context.Background(), hook.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)

	last, _ := f.toasts.Last()
	assert.Equal(t, toast.VariantDestructive, last.Variant)
	assert.Contains(t, last.Description, "HTTP 400")

	stored, err := f.svc.store.Get(context.Background(), hook.ID)
	require.NoError(t, err)
	assert.Equal(t, result.At, stored.LastRunAt)

	result, err = f.svc.Test(context.Background(), hook.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	last, _ = f.toasts.Last()
	assert.Equal(t, "Test delivered", last.Title)

	events := f.captured.Snapshot()
	assert.Equal(t, activity.VerbTest, events[len(events)-1].Verb)
}

func TestWebhooksViewActionsByStatus(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.Create(context.Background(), validForm(t))
	require.NoError(t, err)
	form := validForm(t)
	form.Name = "Alerts"
	form.URL = "https://alerts.example.com/hook"
	b, err := f.svc.Create(context.Background(), form)
	require.NoError(t, err)

	var tested []TestResult
	var routed []string
	view, err := f.svc.WebhooksView(context.Background(), ViewOptions{
		OnTested: func(_ context.Context, r TestResult) { tested = append(tested, r) },
		OnRowAction: func(_ context.Context, action string, hook Webhook) error {
			routed = append(routed, action+":"+hook.URL)
			return nil
		},
	})
	require.NoError(t, err)

	actions, err := view.RowActions(a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ActionTest, ActionDisable, ActionCopyURL, ActionDelete}, actionLabels(actions))

	require.NoError(t, view.RunRowAction(context.Background(), a.ID, ActionDisable))
	actions, err = view.RowActions(a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ActionEnable, ActionCopyURL, ActionDelete}, actionLabels(actions))

	facets, err := view.Facets("status")
	require.NoError(t, err)
	assert.Equal(t, []table.Facet{{Value: "active", Count: 1}, {Value: "inactive", Count: 1}}, facets)

	require.NoError(t, view.RunRowAction(context.Background(), b.ID, ActionTest))
	require.Len(t, tested, 1)
	assert.Equal(t, b.ID, tested[0].WebhookID)

	require.NoError(t, view.RunRowAction(context.Background(), b.ID, ActionCopyURL))
	assert.Equal(t, []string{ActionCopyURL + ":https://alerts.example.com/hook"}, routed)

	require.NoError(t, view.SetSearch("alerts.example"))
	require.Len(t, view.Rows(), 1)

	require.NoError(t, view.SetRowSelected(a.ID, true))
	_, err = view.DeleteSelected(context.Background())
	require.NoError(t, err)
	assert.Len(t, view.Data(), 1)
}

func TestWebhooksViewDeleteFailureKeepsRows(t *testing.T) {
	f := newFixture(t)
	hook, err := f.svc.Create(context.Background(), validForm(t))
	require.NoError(t, err)
	view, err := f.svc.WebhooksView(context.Background(), ViewOptions{})
	require.NoError(t, err)

	f.backend.err = errors.New("backend offline")
	err = view.RunRowAction(context.Background(), hook.ID, ActionDelete)
	require.Error(t, err)
	assert.Len(t, view.Data(), 1)
	last, _ := f.toasts.Last()
	assert.Equal(t, "backend offline", last.Description)
}

func actionLabels(actions []table.RowAction) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Label
	}
	return out
}
