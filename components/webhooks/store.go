package webhooks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrWebhookNotFound = errors.New("webhooks: webhook not found")

// Store persists webhook configurations.
type Store interface {
	List(ctx context.Context) ([]Webhook, error)
	Get(ctx context.Context, id string) (Webhook, error)
	Save(ctx context.Context, hook Webhook) error
	Delete(ctx context.Context, ids []string) error
}

// InMemoryStore is a concurrency-safe Store.
type InMemoryStore struct {
	mu    sync.RWMutex
	hooks map[string]Webhook
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{hooks: map[string]Webhook{}}
}

// List returns webhooks by creation time.
func (s *InMemoryStore) List(context.Context) ([]Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Webhook, 0, len(s.hooks))
	for _, h := range s.hooks {
		out = append(out, cloneWebhook(h))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hooks[id]
	if !ok {
		return Webhook{}, fmt.Errorf("%w: %s", ErrWebhookNotFound, id)
	}
	return cloneWebhook(h), nil
}

func (s *InMemoryStore) Save(_ context.Context, hook Webhook) error {
	s.mu.Lock()
	s.hooks[hook.ID] = cloneWebhook(hook)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.hooks, id)
	}
	return nil
}

func cloneWebhook(h Webhook) Webhook {
	h.Events = append([]string(nil), h.Events...)
	return h
}
