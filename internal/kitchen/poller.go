package kitchen

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aquamarinepk/aqm"
)

const DefaultPollInterval = 8 * time.Second

// Poller refreshes a queue on a fixed interval and whenever a hint arrives.
// Only one refresh runs at a time; triggers that land while one is in flight
// are dropped.
type Poller struct {
	queue    *Queue
	interval time.Duration
	hints    <-chan struct{}
	logger   aqm.Logger

	busy    atomic.Bool
	wg      sync.WaitGroup
	dropped atomic.Int64
	onDone  func(error)
}

func NewPoller(queue *Queue, interval time.Duration, hints <-chan struct{}, logger aqm.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Poller{
		queue:    queue,
		interval: interval,
		hints:    hints,
		logger:   logger,
	}
}

// OnRefresh registers fn to run after every refresh with its result. It must
// be set before Run.
func (p *Poller) OnRefresh(fn func(error)) *Poller {
	p.onDone = fn
	return p
}

// Run refreshes immediately and then keeps polling until ctx ends. It waits
// for an in-flight refresh before returning.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer func() {
		ticker.Stop()
		p.wg.Wait()
	}()

	p.Trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Trigger(ctx)
		case <-p.hints:
			p.logger.Debug("kitchen hint received")
			p.Trigger(ctx)
		}
	}
}

// Trigger starts a refresh unless one is already running and reports whether
// it did.
func (p *Poller) Trigger(ctx context.Context) bool {
	if !p.busy.CompareAndSwap(false, true) {
		p.dropped.Add(1)
		return false
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.busy.Store(false)

		err := p.queue.Refresh(ctx)
		if err != nil && ctx.Err() == nil {
			p.logger.Error("kitchen poll failed", "error", err)
		}
		if p.onDone != nil {
			p.onDone(err)
		}
	}()
	return true
}

// Dropped counts triggers skipped because a refresh was running.
func (p *Poller) Dropped() int64 {
	return p.dropped.Load()
}
