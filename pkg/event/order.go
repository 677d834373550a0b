package event

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	OrderItemsTopic         = "orders.items"
	EventOrderItemCreated   = "order.item.created"
	EventOrderItemUpdated   = "order.item.updated"
	EventOrderItemCancelled = "order.item.cancelled"
)

// OrderItemEvent is the part of an order service item event a terminal reads.
type OrderItemEvent struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	OrderID     string    `json:"order_id"`
	OrderItemID string    `json:"order_item_id"`
	Quantity    int       `json:"quantity,omitempty"`
}

// ParseOrderItemEvent decodes an order item event. Other event types on the
// topic are rejected.
func ParseOrderItemEvent(data []byte) (OrderItemEvent, error) {
	var evt OrderItemEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return OrderItemEvent{}, fmt.Errorf("decode order item event: %w", err)
	}
	switch evt.EventType {
	case EventOrderItemCreated, EventOrderItemUpdated, EventOrderItemCancelled:
		return evt, nil
	default:
		return OrderItemEvent{}, fmt.Errorf("unexpected order event type %q", evt.EventType)
	}
}
