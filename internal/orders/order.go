package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusOpen      = "open"
	StatusClosed    = "closed"
	StatusCancelled = "cancelled"
)

// Extra is an add-on attached to a cart line. Its quantity is per unit of the line.
type Extra struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
}

// Order mirrors the order aggregate returned by the backend.
type Order struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	TableNumber    int             `json:"table_number,omitempty"`
	Customer       *Customer       `json:"customer,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Items          []OrderItem     `json:"items,omitempty"`
	PaymentMethods []string        `json:"payment_methods,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`
}

// OrderItem is a persisted order line. ClientLineID echoes the cart line the
// item was submitted from when the backend keeps it.
type OrderItem struct {
	ID            string          `json:"id"`
	ClientLineID  string          `json:"client_line_id,omitempty"`
	OrderID       string          `json:"order_id"`
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Extras        []Extra         `json:"extras,omitempty"`
	Note          string          `json:"note,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaidMethod    string          `json:"paid_method,omitempty"`
	KitchenStatus string          `json:"kitchen_status,omitempty"`
}

// LineTotal is price×quantity plus every extra's price×quantity, scaled by the
// line quantity.
func LineTotal(price decimal.Decimal, quantity int, extras []Extra) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))
	total := price.Mul(qty)
	for _, e := range extras {
		total = total.Add(e.Price.Mul(decimal.NewFromInt(int64(e.Quantity))).Mul(qty))
	}
	return total
}

// Filter narrows ListOrders.
type Filter struct {
	Status      string
	Type        string
	TableNumber int
	From        time.Time
	To          time.Time
}
