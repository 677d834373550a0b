package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/appetiteclub/pos/internal/api"
)

func TestDataAccessNilClient(t *testing.T) {
	ctx := context.Background()
	var nilDA *DataAccess
	empty := NewDataAccess(nil)

	for _, da := range []*DataAccess{nilDA, empty} {
		if _, err := da.ListOrders(ctx, Filter{}); err == nil {
			t.Error("ListOrders() error = nil, want error")
		}
		if _, err := da.GetOrder(ctx, "o1"); err == nil {
			t.Error("GetOrder() error = nil, want error")
		}
		if _, err := da.ListOrderItems(ctx, "o1"); err == nil {
			t.Error("ListOrderItems() error = nil, want error")
		}
		if _, err := da.CreateOrder(ctx, CreateOrderRequest{Items: []SubmitItem{{}}}); err == nil {
			t.Error("CreateOrder() error = nil, want error")
		}
		if err := da.Pay(ctx, "o1", PayRequest{}); err == nil {
			t.Error("Pay() error = nil, want error")
		}
		if err := da.Close(ctx, "o1", "cash"); err == nil {
			t.Error("Close() error = nil, want error")
		}
		if err := da.Cancel(ctx, "o1", ""); err == nil {
			t.Error("Cancel() error = nil, want error")
		}
	}
}

func TestDataAccessValidatesInput(t *testing.T) {
	da := NewDataAccess(api.NewClient("http://127.0.0.1:1"))
	ctx := context.Background()

	if _, err := da.CreateOrder(ctx, CreateOrderRequest{Type: "table"}); err == nil {
		t.Error("CreateOrder(no items) error = nil, want error")
	}
	if _, err := da.GetOrder(ctx, ""); err == nil {
		t.Error("GetOrder(\"\") error = nil, want error")
	}
	if err := da.Pay(ctx, "", PayRequest{}); err == nil {
		t.Error("Pay(\"\") error = nil, want error")
	}
}

func TestListOrdersQuery(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		json.NewEncoder(w).Encode([]Order{{ID: "o1", Status: StatusOpen}})
	}))
	defer server.Close()

	da := NewDataAccess(api.NewClient(server.URL))
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	orders, err := da.ListOrders(context.Background(), Filter{
		Status:      StatusOpen,
		Type:        "table",
		TableNumber: 4,
		From:        from,
	})
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "o1" {
		t.Errorf("ListOrders() = %+v", orders)
	}

	want := map[string]string{
		"status":       "open",
		"type":         "table",
		"table_number": "4",
		"from":         "2026-03-01T00:00:00Z",
	}
	if len(got) != len(want) {
		t.Errorf("query = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("query[%s] = %q, want %q", k, got[k], v)
		}
	}
}
