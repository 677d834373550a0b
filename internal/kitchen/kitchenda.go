package kitchen

import (
	"context"
	"fmt"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/appetiteclub/pos/pkg/enums/kitchenstatus"
)

// CompileSettings controls whether identical lines are merged on the queue.
type CompileSettings struct {
	Enabled bool `json:"enabled"`
}

type statusUpdate struct {
	ItemIDs       []string `json:"item_ids"`
	KitchenStatus string   `json:"kitchen_status"`
}

// DataAccess wraps the kitchen endpoints of the backend.
type DataAccess struct {
	client *api.Client
}

func NewDataAccess(client *api.Client) *DataAccess {
	return &DataAccess{client: client}
}

func (da *DataAccess) ListItems(ctx context.Context) ([]KitchenOrderItem, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("kitchen client not configured")
	}

	var items []KitchenOrderItem
	if err := da.client.Get(ctx, "/kitchen-orders", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus moves every listed item to status in one call.
func (da *DataAccess) UpdateStatus(ctx context.Context, ids []string, status kitchenstatus.Status) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("kitchen client not configured")
	}
	if len(ids) == 0 {
		return fmt.Errorf("no kitchen items given")
	}
	if kitchenstatus.ByName(status.Code()) == nil {
		return fmt.Errorf("unknown kitchen status %q", status.Code())
	}

	body := statusUpdate{ItemIDs: ids, KitchenStatus: status.Code()}
	return da.client.Put(ctx, "/order-items/kitchen-status", body, nil)
}

func (da *DataAccess) GetCompileSettings(ctx context.Context) (CompileSettings, error) {
	if da == nil || da.client == nil {
		return CompileSettings{}, fmt.Errorf("kitchen client not configured")
	}

	var settings CompileSettings
	if err := da.client.Get(ctx, "/kitchen/compile-settings", &settings); err != nil {
		return CompileSettings{}, err
	}
	return settings, nil
}

// SaveCompileSettings returns what the backend echoes back, or the input when
// it answers with an empty body.
func (da *DataAccess) SaveCompileSettings(ctx context.Context, settings CompileSettings) (CompileSettings, error) {
	if da == nil || da.client == nil {
		return CompileSettings{}, fmt.Errorf("kitchen client not configured")
	}

	saved := settings
	if err := da.client.Post(ctx, "/kitchen/compile-settings", settings, &saved); err != nil {
		return CompileSettings{}, err
	}
	return saved, nil
}
