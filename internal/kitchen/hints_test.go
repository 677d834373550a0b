package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/appetiteclub/pos/pkg/event"
	"github.com/aquamarinepk/aqm/events"
)

// MockSubscriber implements events.Subscriber for testing
type MockSubscriber struct {
	topic    string
	handler  events.HandlerFunc
	handlers map[string]events.HandlerFunc
	err      error
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	if m.err != nil {
		return m.err
	}
	if m.handlers == nil {
		m.handlers = make(map[string]events.HandlerFunc)
	}
	m.topic = topic
	m.handler = handler
	m.handlers[topic] = handler
	return nil
}

// MockPublisher implements events.Publisher for testing
type MockPublisher struct {
	topic    string
	messages [][]byte
	err      error
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.err != nil {
		return m.err
	}
	m.topic = topic
	m.messages = append(m.messages, msg)
	return nil
}

func fired(h *Hints) bool {
	select {
	case <-h.C():
		return true
	default:
		return false
	}
}

func TestHintsForwardsForeignHints(t *testing.T) {
	sub := &MockSubscriber{}
	h := NewHints(sub, nil, "", "terminal-a", nil)
	ctx := context.Background()

	if err := h.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if sub.topic != event.KitchenTicketsTopic {
		t.Errorf("subscribed to %q, want %q", sub.topic, event.KitchenTicketsTopic)
	}

	tests := []struct {
		name string
		msg  string
		want bool
	}{
		{name: "foreignHint", msg: `{"event_type":"kitchen.ticket.status_changed","source":"terminal-b"}`, want: true},
		{name: "kitchenServiceEvent", msg: `{"event_type":"kitchen.ticket.created","ticket_id":"t1","table_number":"4"}`, want: true},
		{name: "ownHint", msg: `{"event_type":"kitchen.ticket.status_changed","source":"terminal-a"}`, want: false},
		{name: "noEventType", msg: `{"order_id":"o1"}`, want: false},
		{name: "garbage", msg: `not json`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sub.handler(ctx, []byte(tt.msg)); err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if got := fired(h); got != tt.want {
				t.Errorf("fired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHintsWatchOrders(t *testing.T) {
	sub := &MockSubscriber{}
	h := NewHints(sub, nil, "", "terminal-a", nil).WatchOrders(event.OrderItemsTopic)
	ctx := context.Background()

	if err := h.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	handler, ok := sub.handlers[event.OrderItemsTopic]
	if !ok {
		t.Fatalf("not subscribed to %q", event.OrderItemsTopic)
	}
	if _, ok := sub.handlers[event.KitchenTicketsTopic]; !ok {
		t.Errorf("not subscribed to %q", event.KitchenTicketsTopic)
	}

	tests := []struct {
		name string
		msg  string
		want bool
	}{
		{name: "itemCreated", msg: `{"event_type":"order.item.created","order_id":"o1"}`, want: true},
		{name: "itemCancelled", msg: `{"event_type":"order.item.cancelled","order_id":"o1"}`, want: true},
		{name: "tableEvent", msg: `{"event_type":"order.table.rejected"}`, want: false},
		{name: "garbage", msg: `[]`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := handler(ctx, []byte(tt.msg)); err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if got := fired(h); got != tt.want {
				t.Errorf("fired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHintsCoalesceBursts(t *testing.T) {
	sub := &MockSubscriber{}
	h := NewHints(sub, nil, "kitchen.test", "", nil)
	h.Start(context.Background())

	for i := 0; i < 5; i++ {
		sub.handler(context.Background(), []byte(`{"event_type":"x"}`))
	}
	if !fired(h) {
		t.Fatal("no signal after burst")
	}
	if fired(h) {
		t.Error("burst produced more than one signal")
	}
}

func TestHintsStartError(t *testing.T) {
	h := NewHints(&MockSubscriber{err: errors.New("down")}, nil, "", "", nil)
	if err := h.Start(context.Background()); err == nil {
		t.Error("Start() error = nil, want error")
	}
}

func TestHintsNotify(t *testing.T) {
	pub := &MockPublisher{}
	h := NewHints(nil, pub, "", "terminal-a", nil)

	h.Notify(context.Background(), event.NewStatusChangedHint("", []string{"i1"}, "ready"))

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	var hint event.KitchenHint
	if err := json.Unmarshal(pub.messages[0], &hint); err != nil {
		t.Fatalf("published payload not JSON: %v", err)
	}
	if hint.Source != "terminal-a" || hint.Status != "ready" {
		t.Errorf("hint = %+v, want source terminal-a status ready", hint)
	}

	pub.err = errors.New("down")
	h.Notify(context.Background(), event.NewOrderSubmittedHint("", "o1"))
}

func TestHintsNil(t *testing.T) {
	var h *Hints
	if err := h.Start(context.Background()); err != nil {
		t.Errorf("Start() error = %v, want nil", err)
	}
	if h.C() != nil {
		t.Error("C() on nil hints should be nil")
	}
	h.Notify(context.Background(), event.KitchenHint{EventType: "x"})
}
