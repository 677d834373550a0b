package event

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	KitchenTicketsTopic            = "kitchen.tickets"
	EventKitchenTicketCreated      = "kitchen.ticket.created"
	EventKitchenTicketStatusChange = "kitchen.ticket.status_changed"
	EventOrderItemsSubmitted       = "order.items.submitted"
)

// KitchenHint tells kitchen displays that the queue changed. It carries no
// authoritative state; receivers refetch the queue.
type KitchenHint struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id,omitempty"`
	ItemIDs    []string  `json:"item_ids,omitempty"`
	Status     string    `json:"status,omitempty"`
	Source     string    `json:"source,omitempty"`
}

func NewStatusChangedHint(source string, itemIDs []string, status string) KitchenHint {
	return KitchenHint{
		EventType:  EventKitchenTicketStatusChange,
		OccurredAt: time.Now().UTC(),
		ItemIDs:    itemIDs,
		Status:     status,
		Source:     source,
	}
}

func NewOrderSubmittedHint(source, orderID string) KitchenHint {
	return KitchenHint{
		EventType:  EventOrderItemsSubmitted,
		OccurredAt: time.Now().UTC(),
		OrderID:    orderID,
		Source:     source,
	}
}

// ParseKitchenHint decodes a hint. Any JSON object with an event_type is
// accepted so that events published by the kitchen service also count.
func ParseKitchenHint(data []byte) (KitchenHint, error) {
	var hint KitchenHint
	if err := json.Unmarshal(data, &hint); err != nil {
		return KitchenHint{}, fmt.Errorf("decode kitchen hint: %w", err)
	}
	if hint.EventType == "" {
		return KitchenHint{}, fmt.Errorf("kitchen hint without event_type")
	}
	return hint, nil
}
