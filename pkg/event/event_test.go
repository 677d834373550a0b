package event

import "testing"

func TestParseKitchenHint(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		want    string
		wantErr bool
	}{
		{name: "statusChanged", msg: `{"event_type":"kitchen.ticket.status_changed","item_ids":["a"]}`, want: EventKitchenTicketStatusChange},
		{name: "foreignFields", msg: `{"event_type":"kitchen.ticket.created","ticket_id":"t1"}`, want: EventKitchenTicketCreated},
		{name: "missingType", msg: `{"order_id":"o1"}`, wantErr: true},
		{name: "garbage", msg: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint, err := ParseKitchenHint([]byte(tt.msg))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKitchenHint() error = %v, wantErr %v", err, tt.wantErr)
			}
			if hint.EventType != tt.want {
				t.Errorf("EventType = %q, want %q", hint.EventType, tt.want)
			}
		})
	}
}

func TestParseOrderItemEvent(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		wantErr bool
	}{
		{name: "created", msg: `{"event_type":"order.item.created","order_id":"o1","order_item_id":"i1","quantity":2}`},
		{name: "cancelled", msg: `{"event_type":"order.item.cancelled","order_id":"o1"}`},
		{name: "otherType", msg: `{"event_type":"order.table.rejected"}`, wantErr: true},
		{name: "garbage", msg: `nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOrderItemEvent([]byte(tt.msg))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseOrderItemEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHintConstructors(t *testing.T) {
	h := NewStatusChangedHint("t1", []string{"a", "b"}, "ready")
	if h.EventType != EventKitchenTicketStatusChange || h.Status != "ready" || len(h.ItemIDs) != 2 {
		t.Errorf("NewStatusChangedHint() = %+v", h)
	}
	if h.OccurredAt.IsZero() {
		t.Error("NewStatusChangedHint() left OccurredAt zero")
	}

	o := NewOrderSubmittedHint("t1", "o9")
	if o.EventType != EventOrderItemsSubmitted || o.OrderID != "o9" || o.Source != "t1" {
		t.Errorf("NewOrderSubmittedHint() = %+v", o)
	}
}
