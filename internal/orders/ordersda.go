package orders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/shopspring/decimal"
)

// SubmitItem is a pending cart line as sent to the backend.
type SubmitItem struct {
	ClientLineID string          `json:"client_line_id"`
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Extras       []Extra         `json:"extras,omitempty"`
	Note         string          `json:"note,omitempty"`
}

// CreateOrderRequest creates an order, or appends to OrderID when set.
type CreateOrderRequest struct {
	OrderID     string       `json:"order_id,omitempty"`
	Type        string       `json:"type"`
	TableNumber int          `json:"table_number,omitempty"`
	Customer    *Customer    `json:"customer,omitempty"`
	Items       []SubmitItem `json:"items"`
}

type PayRequest struct {
	ItemIDs       []string `json:"item_ids"`
	PaymentMethod string   `json:"payment_method"`
}

// DataAccess wraps the order endpoints of the backend.
type DataAccess struct {
	client *api.Client
}

func NewDataAccess(client *api.Client) *DataAccess {
	return &DataAccess{client: client}
}

func (da *DataAccess) ListOrders(ctx context.Context, filter Filter) ([]Order, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}

	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.TableNumber > 0 {
		query.Set("table_number", strconv.Itoa(filter.TableNumber))
	}
	if !filter.From.IsZero() {
		query.Set("from", filter.From.Format(time.RFC3339))
	}
	if !filter.To.IsZero() {
		query.Set("to", filter.To.Format(time.RFC3339))
	}

	var orders []Order
	if err := da.client.GetQuery(ctx, "/orders", query, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (da *DataAccess) GetOrder(ctx context.Context, id string) (*Order, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}
	if id == "" {
		return nil, fmt.Errorf("missing order id")
	}

	var order Order
	if err := da.client.Get(ctx, "/orders/"+url.PathEscape(id), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (da *DataAccess) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}
	if orderID == "" {
		return nil, fmt.Errorf("missing order id")
	}

	var items []OrderItem
	path := fmt.Sprintf("/orders/%s/items", url.PathEscape(orderID))
	if err := da.client.Get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (da *DataAccess) CreateOrder(ctx context.Context, payload CreateOrderRequest) (*Order, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}
	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("order has no items")
	}

	var order Order
	if err := da.client.Post(ctx, "/orders", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (da *DataAccess) Pay(ctx context.Context, orderID string, payload PayRequest) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("order client not configured")
	}
	if orderID == "" {
		return fmt.Errorf("missing order id")
	}

	path := fmt.Sprintf("/orders/%s/pay", url.PathEscape(orderID))
	return da.client.Put(ctx, path, payload, nil)
}

func (da *DataAccess) Close(ctx context.Context, orderID, paymentMethod string) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("order client not configured")
	}
	if orderID == "" {
		return fmt.Errorf("missing order id")
	}

	path := fmt.Sprintf("/orders/%s/close", url.PathEscape(orderID))
	body := map[string]string{"payment_method": paymentMethod}
	return da.client.Post(ctx, path, body, nil)
}

func (da *DataAccess) Cancel(ctx context.Context, orderID, reason string) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("order client not configured")
	}
	if orderID == "" {
		return fmt.Errorf("missing order id")
	}

	path := fmt.Sprintf("/orders/%s/cancel", url.PathEscape(orderID))
	body := map[string]string{"reason": reason}
	return da.client.Patch(ctx, path, body, nil)
}
