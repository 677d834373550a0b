package pkg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/nats-io/nats.go"
)

// NATSBus publishes and subscribes over a single NATS connection.
type NATSBus struct {
	conn   *nats.Conn
	logger aqm.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

// ConnectNATS dials url and keeps reconnecting for as long as the bus lives.
func ConnectNATS(url, name string, logger aqm.Logger) (*NATSBus, error) {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Info("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSBus{conn: conn, logger: logger}, nil
}

func (b *NATSBus) Publish(ctx context.Context, topic string, msg []byte) error {
	if b == nil || b.conn == nil {
		return fmt.Errorf("nats bus not connected")
	}
	return b.conn.Publish(topic, msg)
}

// Subscribe delivers every message on topic to handler until ctx ends.
// Handler errors are logged and the message is dropped.
func (b *NATSBus) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	if b == nil || b.conn == nil {
		return fmt.Errorf("nats bus not connected")
	}

	sub, err := b.conn.Subscribe(topic, func(msg *nats.Msg) {
		if err := handler(ctx, msg.Data); err != nil {
			b.logger.Error("nats handler failed", "topic", topic, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
	}()
	return nil
}

func (b *NATSBus) Close() error {
	if b == nil || b.conn == nil {
		return nil
	}

	b.mu.Lock()
	for _, sub := range b.subs {
		sub.Unsubscribe()
	}
	b.subs = nil
	b.mu.Unlock()

	return b.conn.Drain()
}
