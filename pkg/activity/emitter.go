package activity

import (
	"context"
	"time"
)

// DefaultChannel tags events that do not name a channel.
const DefaultChannel = "dataview"

// Config toggles emission.
type Config struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Channel string `json:"channel" yaml:"channel"`
}

// Emitter stamps events with defaults and forwards them to hooks.
type Emitter struct {
	hooks Hooks
	cfg   Config
	now   func() time.Time
}

// NewEmitter builds an emitter. It is disabled when cfg.Enabled is false or
// no hooks are given.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, cfg: cfg, now: time.Now}
}

// Enabled reports whether Emit delivers anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit fills channel, timestamp and actor defaults (from ContextWithActor)
// and notifies every hook.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	actor := ActorFrom(ctx)
	if evt.ActorID == "" {
		evt.ActorID = actor.ActorID
	}
	if evt.UserID == "" {
		evt.UserID = actor.UserID
	}
	if evt.TenantID == "" {
		evt.TenantID = actor.TenantID
	}
	if evt.Channel == "" {
		evt.Channel = e.cfg.Channel
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = e.now().UTC()
	}
	return e.hooks.Notify(ctx, evt)
}
