package kitchen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/pos/pkg/enums/kitchenstatus"
	"github.com/appetiteclub/pos/pkg/enums/station"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/aquamarinepk/aqm"
)

var (
	ErrUnknownItem     = errors.New("item is not on the kitchen queue")
	ErrUnknownGroup    = errors.New("group is not on the kitchen queue")
	ErrNothingSelected = errors.New("no kitchen items selected")
)

// Snapshot is the queue as last fetched, grouped for display.
type Snapshot struct {
	Groups      []Group   `json:"groups"`
	Selected    []string  `json:"selected"`
	Compile     bool      `json:"compile"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Queue mirrors the backend kitchen queue and the local item selection.
type Queue struct {
	mu          sync.RWMutex
	da          *DataAccess
	selection   *Selection
	hints       *Hints
	items       []KitchenOrderItem
	compile     bool
	refreshedAt time.Time
	logger      aqm.Logger
	now         func() time.Time
}

func NewQueue(da *DataAccess, selection *Selection, hints *Hints, logger aqm.Logger) *Queue {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if selection == nil {
		selection = NewSelection(nil)
	}
	return &Queue{
		da:        da,
		selection: selection,
		hints:     hints,
		logger:    logger,
		now:       time.Now,
	}
}

// Refresh refetches the queue. Delivered items are dropped and the selection
// is pruned to items still present.
func (q *Queue) Refresh(ctx context.Context) error {
	items, err := q.da.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("refresh kitchen queue: %w", err)
	}

	active := make([]KitchenOrderItem, 0, len(items))
	present := make(map[string]bool, len(items))
	for _, item := range items {
		if !item.Status().Active() {
			continue
		}
		active = append(active, item)
		present[item.ID] = true
	}

	q.mu.Lock()
	q.items = active
	q.refreshedAt = q.now()
	q.mu.Unlock()

	if n, err := q.selection.Prune(present); err != nil {
		q.logger.Error("cannot persist kitchen selection", "error", err)
	} else if n > 0 {
		q.logger.Debug("pruned kitchen selection", "removed", n)
	}
	return nil
}

func (q *Queue) Snapshot() Snapshot {
	q.mu.RLock()
	items := q.items
	q.mu.RUnlock()
	return q.snapshot(items)
}

// StationSnapshot is the queue restricted to the items of one station.
func (q *Queue) StationSnapshot(st station.Station) Snapshot {
	q.mu.RLock()
	var items []KitchenOrderItem
	for _, item := range q.items {
		if item.ProductionStation() == st {
			items = append(items, item)
		}
	}
	q.mu.RUnlock()
	return q.snapshot(items)
}

func (q *Queue) snapshot(items []KitchenOrderItem) Snapshot {
	q.mu.RLock()
	defer q.mu.RUnlock()

	groups := GroupItems(items)
	if q.compile {
		for i := range groups {
			groups[i].Compiled = Compile(groups[i].Items)
		}
	}
	return Snapshot{
		Groups:      groups,
		Selected:    q.selection.IDs(),
		Compile:     q.compile,
		RefreshedAt: q.refreshedAt,
	}
}

// Item looks an item up by id.
func (q *Queue) Item(id string) (KitchenOrderItem, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, item := range q.items {
		if item.ID == id {
			return item, true
		}
	}
	return KitchenOrderItem{}, false
}

// Toggle flips the selection of one queued item.
func (q *Queue) Toggle(id string) (bool, error) {
	if _, ok := q.Item(id); !ok {
		return false, ErrUnknownItem
	}
	return q.selection.Toggle(id)
}

// SelectGroup selects every item of a group and returns how many there are.
func (q *Queue) SelectGroup(key string) (int, error) {
	q.mu.RLock()
	var ids []string
	for _, item := range q.items {
		if GroupKey(item) == key {
			ids = append(ids, item.ID)
		}
	}
	q.mu.RUnlock()

	if len(ids) == 0 {
		return 0, ErrUnknownGroup
	}
	return len(ids), q.selection.Add(ids...)
}

func (q *Queue) ClearSelection() error {
	return q.selection.Clear()
}

func (q *Queue) Selection() []string {
	return q.selection.IDs()
}

// Transition moves every selected item to status with one backend call, then
// clears the selection and refetches.
func (q *Queue) Transition(ctx context.Context, status kitchenstatus.Status) error {
	ids := q.selection.IDs()
	if len(ids) == 0 {
		return ErrNothingSelected
	}

	if err := q.da.UpdateStatus(ctx, ids, status); err != nil {
		return fmt.Errorf("update kitchen status: %w", err)
	}
	q.logger.Info("kitchen items moved", "items", len(ids), "status", status.Code())

	if err := q.selection.Clear(); err != nil {
		q.logger.Error("cannot persist kitchen selection", "error", err)
	}
	q.hints.Notify(ctx, event.NewStatusChangedHint("", ids, status.Code()))

	return q.Refresh(ctx)
}

// LoadCompileSettings fetches the compile flag from the backend.
func (q *Queue) LoadCompileSettings(ctx context.Context) (CompileSettings, error) {
	settings, err := q.da.GetCompileSettings(ctx)
	if err != nil {
		return CompileSettings{}, err
	}
	q.mu.Lock()
	q.compile = settings.Enabled
	q.mu.Unlock()
	return settings, nil
}

// SaveCompileSettings stores the compile flag and applies what the backend kept.
func (q *Queue) SaveCompileSettings(ctx context.Context, settings CompileSettings) (CompileSettings, error) {
	saved, err := q.da.SaveCompileSettings(ctx, settings)
	if err != nil {
		return CompileSettings{}, err
	}
	q.mu.Lock()
	q.compile = saved.Enabled
	q.mu.Unlock()
	return saved, nil
}

// Elapsed is the time an item has spent in its current stage.
func (q *Queue) Elapsed(item KitchenOrderItem) time.Duration {
	return Elapsed(item, q.now())
}
