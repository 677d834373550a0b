package stock

import (
	"context"
	"fmt"
	"net/url"

	"github.com/appetiteclub/pos/internal/api"
)

// DataAccess wraps the /stock endpoints.
type DataAccess struct {
	client *api.Client
}

func NewDataAccess(client *api.Client) *DataAccess {
	return &DataAccess{client: client}
}

func (da *DataAccess) List(ctx context.Context) ([]StockItem, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("stock client not configured")
	}

	var items []StockItem
	if err := da.client.Get(ctx, "/stock", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Update sends only the changed fields.
func (da *DataAccess) Update(ctx context.Context, id string, patch Patch) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("stock client not configured")
	}
	if id == "" {
		return fmt.Errorf("missing stock item id")
	}
	if patch.Empty() {
		return fmt.Errorf("empty stock update")
	}

	return da.client.Patch(ctx, "/stock/"+url.PathEscape(id), patch, nil)
}

func (da *DataAccess) Delete(ctx context.Context, id string) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("stock client not configured")
	}
	if id == "" {
		return fmt.Errorf("missing stock item id")
	}

	return da.client.Delete(ctx, "/stock/"+url.PathEscape(id), nil)
}
