package webhooks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-dataview/pkg/activity"
	"github.com/goliatone/go-dataview/pkg/toast"
)

var (
	ErrStoreRequired = errors.New("webhooks: store is required")
	ErrPending       = errors.New("webhooks: operation already in progress")
	ErrNoWebhooks    = errors.New("webhooks: no webhooks selected")
	ErrInvalidStatus = errors.New("webhooks: invalid status")
)

// Backend is the host API behind the webhook screens.
type Backend interface {
	CreateWebhook(ctx context.Context, hook Webhook) error
	DeleteWebhooks(ctx context.Context, ids []string) error
	SetWebhookStatus(ctx context.Context, id string, status Status) error
}

// Options wires a Service.
type Options struct {
	Store     Store
	Backend   Backend
	Notifier  toast.Notifier
	Activity  *activity.Emitter
	Tester    *Tester
	Templates []Template
	NewID     func() string
	Now       func() time.Time
}

// Service implements the webhook list, create wizard and tester.
type Service struct {
	store     Store
	backend   Backend
	notifier  toast.Notifier
	activity  *activity.Emitter
	tester    *Tester
	templates []Template
	newID     func() string
	now       func() time.Time

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, ErrStoreRequired
	}
	if opts.Tester == nil {
		opts.Tester = NewTester(TesterOptions{})
	}
	if len(opts.Templates) == 0 {
		opts.Templates = DefaultTemplates()
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:     opts.Store,
		backend:   opts.Backend,
		notifier:  toast.Normalize(opts.Notifier),
		activity:  opts.Activity,
		tester:    opts.Tester,
		templates: append([]Template(nil), opts.Templates...),
		newID:     opts.NewID,
		now:       opts.Now,
		pending:   map[string]struct{}{},
	}, nil
}

// Templates lists the wizard templates.
func (s *Service) Templates() []Template {
	return append([]Template(nil), s.templates...)
}

// Template finds a template by id.
func (s *Service) Template(id string) (Template, bool) {
	for _, tpl := range s.templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return Template{}, false
}

// List returns the configured webhooks.
func (s *Service) List(ctx context.Context) ([]Webhook, error) {
	return s.store.List(ctx)
}

// Create validates the form and registers the webhook with the backend. An
// invalid form never reaches the backend.
func (s *Service) Create(ctx context.Context, form CreateForm) (Webhook, error) {
	if err := ValidateCreate(form); err != nil {
		s.notifier.Notify(ctx, toast.Error("Invalid webhook", err, ""))
		return Webhook{}, err
	}
	const title = "Failed to create webhook"

	done, err := s.begin("create")
	if err != nil {
		return Webhook{}, err
	}
	defer done()

	hook := Webhook{
		ID:        s.newID(),
		Name:      strings.TrimSpace(form.Name),
		URL:       strings.TrimSpace(form.URL),
		HookName:  strings.TrimSpace(form.HookName),
		Events:    append([]string(nil), form.Events...),
		Schema:    form.Schema,
		Secret:    form.Secret,
		Status:    StatusActive,
		CreatedAt: s.now().UTC(),
	}
	if s.backend != nil {
		if err := s.backend.CreateWebhook(ctx, hook); err != nil {
			return Webhook{}, s.fail(ctx, title, err)
		}
	}
	if err := s.store.Save(ctx, hook); err != nil {
		return Webhook{}, s.fail(ctx, title, err)
	}
	s.notifier.Notify(ctx, toast.Success("Webhook created", fmt.Sprintf("%s will receive %d event(s).", hook.Name, len(hook.Events))))
	s.emit(ctx, activity.VerbCreate, hook.ID, map[string]any{
		"name":      hook.Name,
		"hook_name": hook.HookName,
		"events":    hook.Events,
	})
	return hook, nil
}

// SetStatus activates or deactivates a webhook.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Webhook, error) {
	const title = "Failed to update webhook"
	if status != StatusActive && status != StatusInactive {
		return Webhook{}, s.fail(ctx, title, fmt.Errorf("%w: %q", ErrInvalidStatus, status))
	}
	hook, err := s.store.Get(ctx, id)
	if err != nil {
		return Webhook{}, s.fail(ctx, title, err)
	}
	if hook.Status == status {
		return hook, nil
	}

	done, err := s.begin("status:" + id)
	if err != nil {
		return Webhook{}, err
	}
	defer done()

	if s.backend != nil {
		if err := s.backend.SetWebhookStatus(ctx, id, status); err != nil {
			return Webhook{}, s.fail(ctx, title, err)
		}
	}
	hook.Status = status
	if err := s.store.Save(ctx, hook); err != nil {
		return Webhook{}, s.fail(ctx, title, err)
	}
	s.notifier.Notify(ctx, toast.Success("Webhook updated", fmt.Sprintf("%s is now %s.", hook.Name, status)))
	s.emit(ctx, activity.VerbUpdate, id, map[string]any{"status": string(status)})
	return hook, nil
}

// Delete removes webhooks by id.
func (s *Service) Delete(ctx context.Context, ids []string) error {
	const title = "Failed to delete webhooks"
	if len(ids) == 0 {
		return ErrNoWebhooks
	}
	for _, id := range ids {
		if _, err := s.store.Get(ctx, id); err != nil {
			return s.fail(ctx, title, err)
		}
	}

	done, err := s.begin("delete")
	if err != nil {
		return err
	}
	defer done()

	if s.backend != nil {
		if err := s.backend.DeleteWebhooks(ctx, ids); err != nil {
			return s.fail(ctx, title, err)
		}
	}
	if err := s.store.Delete(ctx, ids); err != nil {
		return s.fail(ctx, title, err)
	}
	s.notifier.Notify(ctx, toast.Success("Webhooks deleted", fmt.Sprintf("%d webhook(s) deleted.", len(ids))))
	for _, id := range ids {
		s.emit(ctx, activity.VerbDelete, id, nil)
	}
	return nil
}

// Test runs a simulated delivery and records when it ran. A failed delivery
// is a result, not an error; errors mean the test could not run.
func (s *Service) Test(ctx context.Context, id string) (TestResult, error) {
	const title = "Webhook test failed"
	hook, err := s.store.Get(ctx, id)
	if err != nil {
		return TestResult{}, s.fail(ctx, title, err)
	}

	done, err := s.begin("test:" + id)
	if err != nil {
		return TestResult{}, err
	}
	defer done()

	result, err := s.tester.Test(ctx, hook)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, ErrTesterClosed) {
			return TestResult{}, err
		}
		return TestResult{}, s.fail(ctx, title, err)
	}
	hook.LastRunAt = result.At
	if err := s.store.Save(ctx, hook); err != nil {
		return TestResult{}, s.fail(ctx, title, err)
	}
	summary := fmt.Sprintf("HTTP %d in %dms", result.StatusCode, result.Latency.Milliseconds())
	if result.Success {
		s.notifier.Notify(ctx, toast.Success("Test delivered", summary))
	} else {
		s.notifier.Notify(ctx, toast.Toast{Variant: toast.VariantDestructive, Title: title, Description: summary})
	}
	s.emit(ctx, activity.VerbTest, id, map[string]any{
		"status_code": result.StatusCode,
		"success":     result.Success,
	})
	return result, nil
}

func (s *Service) begin(key string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.pending[key]; busy {
		return nil, fmt.Errorf("%w: %s", ErrPending, key)
	}
	s.pending[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()
	}, nil
}

func (s *Service) fail(ctx context.Context, title string, err error) error {
	s.notifier.Notify(ctx, toast.Error(title, err, title+". Please try again."))
	return err
}

func (s *Service) emit(ctx context.Context, verb, id string, meta map[string]any) {
	if !s.activity.Enabled() {
		return
	}
	_ = s.activity.Emit(ctx, activity.Event{
		Verb:           verb,
		ObjectType:     "webhook",
		ObjectID:       id,
		DefinitionCode: "webhooks.webhook." + verb,
		Metadata:       meta,
	})
}
