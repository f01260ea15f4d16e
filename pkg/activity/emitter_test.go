package activity

import (
	"context"
	"testing"
	"time"
)

type recordingHook struct {
	events []Event
}

func (h *recordingHook) Notify(_ context.Context, evt Event) error {
	h.events = append(h.events, evt)
	return nil
}

func TestEmitterDefaultsChannelAndEmits(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true})
	if !em.Enabled() {
		t.Fatalf("expected emitter enabled")
	}
	err := em.Emit(context.Background(), Event{
		Verb:       "verb",
		ObjectType: "object",
		ObjectID:   "id",
	})
	if err != nil {
		t.Fatalf("emit returned error: %v", err)
	}
	if len(hook.events) != 1 {
		t.Fatalf("expected event emitted, got %d", len(hook.events))
	}
	if hook.events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel %s, got %q", DefaultChannel, hook.events[0].Channel)
	}
}

func TestEmitterDisabledWithoutHooks(t *testing.T) {
	em := NewEmitter(nil, Config{Enabled: true})
	if em.Enabled() {
		t.Fatalf("expected emitter disabled without hooks")
	}
}

func TestEmitterStampsTimestampAndKeepsChannel(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true, Channel: "webhooks"})
	fixed := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	em.now = func() time.Time { return fixed }

	if err := em.Emit(context.Background(), Event{Verb: VerbCreate, ObjectType: "webhook", ObjectID: "w-1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := em.Emit(context.Background(), Event{Verb: VerbCreate, Channel: "custom"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got := hook.events[0]; got.Channel != "webhooks" || !got.OccurredAt.Equal(fixed) {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if hook.events[1].Channel != "custom" {
		t.Fatalf("expected explicit channel preserved, got %q", hook.events[1].Channel)
	}
}

func TestEmitterDisabledByConfig(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{})
	if err := em.Emit(context.Background(), Event{Verb: VerbCreate}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(hook.events) != 0 {
		t.Fatalf("expected nothing emitted when disabled")
	}
	var nilEmitter *Emitter
	if nilEmitter.Enabled() {
		t.Fatalf("nil emitter must be disabled")
	}
}

func TestEmitterFillsActorFromContext(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true})
	ctx := ContextWithActor(context.Background(), Actor{ActorID: "a-1", TenantID: "t-1"})

	if err := em.Emit(ctx, Event{Verb: VerbUpdate, ObjectType: "role", UserID: "u-9"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := hook.events[0]
	if got.ActorID != "a-1" || got.TenantID != "t-1" || got.UserID != "u-9" {
		t.Fatalf("unexpected actor fields: %+v", got)
	}
	if ActorFrom(context.Background()) != (Actor{}) {
		t.Fatalf("expected empty actor without context value")
	}
}
