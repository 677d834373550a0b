package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/appetiteclub/pos/internal/config"
	"github.com/aquamarinepk/aqm"
)

func newTestEnv(t *testing.T, handler http.Handler) (*Env, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	s := config.Load(nil, nil)
	s.APIURL = server.URL
	s.TokenPath = filepath.Join(dir, "token")
	s.PrefsPath = filepath.Join(dir, "prefs.yaml")

	var out bytes.Buffer
	return NewEnv(s, aqm.NewNoopLogger(), &out), &out
}

func backendMux() *http.ServeMux {
	mux := http.NewServeMux()
	respond := func(v interface{}) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{"data": v})
		}
	}
	mux.HandleFunc("GET /settings/localization", respond(map[string]string{"language": "en", "currency": "USD", "currency_symbol": "$"}))
	mux.HandleFunc("GET /orders", respond([]map[string]interface{}{
		{"id": "o1", "type": "table", "status": "open", "table_number": 4, "total": "18.5", "created_at": time.Now()},
	}))
	mux.HandleFunc("GET /kitchen-orders", respond([]map[string]interface{}{
		{"id": "k1", "order_id": "o1", "order_type": "table", "table_number": 4, "product_name": "Kebab", "quantity": 2, "kitchen_status": "new", "created_at": time.Now()},
	}))
	mux.HandleFunc("GET /kitchen/compile-settings", respond(map[string]bool{"enabled": false}))
	mux.HandleFunc("GET /stock", respond([]map[string]interface{}{
		{"id": "s1", "name": "Flour", "unit": "kg", "quantity": "1", "price_per_unit": "2", "critical_level": "3", "reorder_level": "5"},
	}))
	mux.HandleFunc("GET /staff", respond([]map[string]interface{}{
		{"id": "st1", "name": "Ana", "role": "cook", "salary": "1000"},
	}))
	mux.HandleFunc("GET /staff/{id}/payments", respond([]map[string]interface{}{
		{"id": "p1", "amount": "1000", "paid_at": time.Now()},
	}))
	mux.HandleFunc("GET /reports/summary", respond(map[string]interface{}{"total_sales": "250", "order_count": 10, "average_ticket": "25", "items_sold": 30}))
	mux.HandleFunc("GET /reports/top-products", respond([]map[string]interface{}{{"product_id": "p1", "name": "Kebab", "quantity": 12, "total": "150"}}))
	return mux
}

func TestLoginLogout(t *testing.T) {
	env, out := newTestEnv(t, http.NotFoundHandler())

	if err := Login(env, "  secret  "); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	raw, err := os.ReadFile(env.Tokens.Path())
	if err != nil || strings.TrimSpace(string(raw)) != "secret" {
		t.Errorf("stored token = %q, %v", raw, err)
	}

	if err := Login(env, " "); err == nil {
		t.Error("Login(blank) error = nil, want error")
	}

	if err := Logout(env); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := os.Stat(env.Tokens.Path()); !os.IsNotExist(err) {
		t.Errorf("token file still present: %v", err)
	}
	if !strings.Contains(out.String(), "Logged out") {
		t.Errorf("output = %q, want logout message", out.String())
	}
}

func TestOrders(t *testing.T) {
	env, out := newTestEnv(t, backendMux())

	if err := Orders(context.Background(), env); err != nil {
		t.Fatalf("Orders() error = %v", err)
	}
	for _, want := range []string{"o1", "table 4", "$18.50"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Orders() output missing %q:\n%s", want, out.String())
		}
	}
}

func TestKitchen(t *testing.T) {
	env, out := newTestEnv(t, backendMux())

	if err := Kitchen(context.Background(), env, false); err != nil {
		t.Fatalf("Kitchen() error = %v", err)
	}
	for _, want := range []string{"Table 4", "2x Kebab", "[new]"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Kitchen() output missing %q:\n%s", want, out.String())
		}
	}
}

func TestKitchenWatchStopsWithContext(t *testing.T) {
	env, out := newTestEnv(t, backendMux())
	env.Settings.PollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := Kitchen(ctx, env, true); err != nil {
		t.Errorf("Kitchen(watch) error = %v", err)
	}
	if n := strings.Count(out.String(), "Kitchen queue at"); n < 2 {
		t.Errorf("Kitchen(watch) printed the queue %d times, want at least 2", n)
	}
}

func TestKitchenWatchBackendDown(t *testing.T) {
	env, _ := newTestEnv(t, http.NotFoundHandler())

	if err := Kitchen(context.Background(), env, true); err == nil {
		t.Error("Kitchen(watch) error = nil, want error")
	}
}

func TestReports(t *testing.T) {
	env, out := newTestEnv(t, backendMux())

	if err := Reports(context.Background(), env, "week"); err != nil {
		t.Fatalf("Reports() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"Report week", "$250.00", "Kebab", "Unavailable sections"} {
		if !strings.Contains(got, want) {
			t.Errorf("Reports() output missing %q:\n%s", want, got)
		}
	}
	if tf := env.Prefs.Get().ReportTimeframe; tf != "week" {
		t.Errorf("remembered timeframe = %q, want week", tf)
	}

	if err := Reports(context.Background(), env, "decade"); err == nil {
		t.Error("Reports(decade) error = nil, want error")
	}
}

func TestStockAndStaff(t *testing.T) {
	env, out := newTestEnv(t, backendMux())
	ctx := context.Background()

	if err := Stock(ctx, env); err != nil {
		t.Fatalf("Stock() error = %v", err)
	}
	if err := Staff(ctx, env); err != nil {
		t.Fatalf("Staff() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"Flour", "critical", "Total value $2.00", "Ana", "settled"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestBackendDown(t *testing.T) {
	env, _ := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))

	if err := Orders(context.Background(), env); err == nil {
		t.Error("Orders() error = nil, want error")
	}
	if err := Stock(context.Background(), env); err == nil {
		t.Error("Stock() error = nil, want error")
	}
}
