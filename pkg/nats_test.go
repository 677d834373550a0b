package pkg

import (
	"context"
	"testing"
)

func TestNATSBusNotConnected(t *testing.T) {
	tests := []struct {
		name string
		bus  *NATSBus
	}{
		{name: "nilBus", bus: nil},
		{name: "noConnection", bus: &NATSBus{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if err := tt.bus.Publish(ctx, "kitchen.tickets", []byte(`{}`)); err == nil {
				t.Error("Publish() error = nil, want error")
			}
			if err := tt.bus.Subscribe(ctx, "kitchen.tickets", func(context.Context, []byte) error { return nil }); err == nil {
				t.Error("Subscribe() error = nil, want error")
			}
			if err := tt.bus.Close(); err != nil {
				t.Errorf("Close() error = %v, want nil", err)
			}
		})
	}
}

func TestConnectNATSUnreachable(t *testing.T) {
	if _, err := ConnectNATS("nats://127.0.0.1:1", "pos-test", nil); err == nil {
		t.Error("ConnectNATS() error = nil, want error")
	}
}
