package kitchen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/pos/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
)

// Hints turns kitchen bus messages into refresh signals and announces this
// terminal's own changes. A nil *Hints is valid and does nothing.
type Hints struct {
	subscriber events.Subscriber
	publisher  events.Publisher
	topic      string
	orderTopic string
	source     string
	signal     chan struct{}
	logger     aqm.Logger
}

func NewHints(subscriber events.Subscriber, publisher events.Publisher, topic, source string, logger aqm.Logger) *Hints {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if topic == "" {
		topic = event.KitchenTicketsTopic
	}
	return &Hints{
		subscriber: subscriber,
		publisher:  publisher,
		topic:      topic,
		source:     source,
		signal:     make(chan struct{}, 1),
		logger:     logger,
	}
}

// WatchOrders also treats order item events on topic as refresh signals.
func (h *Hints) WatchOrders(topic string) *Hints {
	if h != nil {
		h.orderTopic = topic
	}
	return h
}

// Start subscribes to the hint topic and, when set, the order items topic.
func (h *Hints) Start(ctx context.Context) error {
	if h == nil || h.subscriber == nil {
		return nil
	}
	if err := h.subscriber.Subscribe(ctx, h.topic, h.handle); err != nil {
		return fmt.Errorf("subscribe kitchen hints: %w", err)
	}
	h.logger.Info("listening for kitchen hints", "topic", h.topic)

	if h.orderTopic == "" {
		return nil
	}
	if err := h.subscriber.Subscribe(ctx, h.orderTopic, h.handleOrderItem); err != nil {
		return fmt.Errorf("subscribe order items: %w", err)
	}
	h.logger.Info("listening for order item events", "topic", h.orderTopic)
	return nil
}

// C fires once per burst of hints. Nil hints return a nil channel.
func (h *Hints) C() <-chan struct{} {
	if h == nil {
		return nil
	}
	return h.signal
}

func (h *Hints) handle(ctx context.Context, msg []byte) error {
	hint, err := event.ParseKitchenHint(msg)
	if err != nil {
		h.logger.Debug("ignoring kitchen message", "error", err)
		return nil
	}
	if h.source != "" && hint.Source == h.source {
		return nil
	}
	h.fire()
	return nil
}

func (h *Hints) handleOrderItem(ctx context.Context, msg []byte) error {
	evt, err := event.ParseOrderItemEvent(msg)
	if err != nil {
		h.logger.Debug("ignoring order message", "error", err)
		return nil
	}
	h.logger.Debug("order item changed", "order_id", evt.OrderID, "event_type", evt.EventType)
	h.fire()
	return nil
}

func (h *Hints) fire() {
	select {
	case h.signal <- struct{}{}:
	default:
	}
}

// Notify publishes a hint for other terminals. Publish failures are logged;
// polling covers for lost hints.
func (h *Hints) Notify(ctx context.Context, hint event.KitchenHint) {
	if h == nil || h.publisher == nil {
		return
	}
	if hint.Source == "" {
		hint.Source = h.source
	}

	payload, err := json.Marshal(hint)
	if err != nil {
		h.logger.Error("cannot encode kitchen hint", "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, h.topic, payload); err != nil {
		h.logger.Error("cannot publish kitchen hint", "event_type", hint.EventType, "error", err)
	}
}
