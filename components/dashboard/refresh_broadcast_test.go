package dashboard

import (
	"context"
	"testing"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := ViewEvent{SessionID: "s-1", Code: OrdersTableCode, Reason: "table.sort"}
	if err := hook.ViewUpdated(context.Background(), event); err != nil {
		t.Fatalf("ViewUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.Reason != event.Reason {
			t.Fatalf("expected reason %s, got %s", event.Reason, e.Reason)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookSessionFilter(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.SubscribeFiltered(SessionFilter("s-2"))
	defer cancel()

	_ = hook.ViewUpdated(context.Background(), ViewEvent{SessionID: "s-1", Reason: "open"})
	_ = hook.ViewUpdated(context.Background(), ViewEvent{SessionID: "s-2", Reason: "open"})

	select {
	case e := <-ch:
		if e.SessionID != "s-2" {
			t.Fatalf("expected only s-2 events, got %s", e.SessionID)
		}
	default:
		t.Fatalf("expected s-2 event to be delivered")
	}
	select {
	case e := <-ch:
		t.Fatalf("unexpected extra event %+v", e)
	default:
	}
	if SessionFilter("") != nil {
		t.Fatalf("expected empty session id to disable filtering")
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	if hook.Subscribers() != 1 {
		t.Fatalf("expected one subscriber, got %d", hook.Subscribers())
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
	if hook.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", hook.Subscribers())
	}
}

func TestBroadcastHookDropsWhenSubscriberIsSlow(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()
	for i := 0; i < 32; i++ {
		if err := hook.ViewUpdated(context.Background(), ViewEvent{Reason: "refresh"}); err != nil {
			t.Fatalf("ViewUpdated returned error: %v", err)
		}
	}
}
