package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/appetiteclub/pos/internal/prefs"
	"github.com/aquamarinepk/aqm"
)

func TestResolveRange(t *testing.T) {
	// Thursday
	now := time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)
	day := func(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name      string
		timeframe string
		want      Range
		wantErr   bool
	}{
		{name: "today", timeframe: Today, want: Range{From: day(10, 15), To: day(10, 16)}},
		{name: "yesterday", timeframe: Yesterday, want: Range{From: day(10, 14), To: day(10, 15)}},
		{name: "week", timeframe: Week, want: Range{From: day(10, 12), To: day(10, 19)}},
		{name: "month", timeframe: Month, want: Range{From: day(10, 1), To: day(11, 1)}},
		{name: "custom", timeframe: Custom, wantErr: true},
		{name: "unknown", timeframe: "decade", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRange(tt.timeframe, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveRange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !got.From.Equal(tt.want.From) || !got.To.Equal(tt.want.To) {
				t.Errorf("ResolveRange() = %v..%v, want %v..%v", got.From, got.To, tt.want.From, tt.want.To)
			}
		})
	}
}

func TestResolveRangeWeekOnSunday(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	got, _ := ResolveRange(Week, sunday)
	if got.From.Weekday() != time.Monday || got.From.Day() != 12 {
		t.Errorf("week From = %v, want Monday 12th", got.From)
	}
	if got.Days() != 7 {
		t.Errorf("Days() = %d, want 7", got.Days())
	}
}

func TestCustomRange(t *testing.T) {
	first := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

	got, err := CustomRange(first, last)
	if err != nil {
		t.Fatalf("CustomRange() error = %v", err)
	}
	if got.Days() != 3 {
		t.Errorf("Days() = %d, want 3", got.Days())
	}

	if _, err := CustomRange(last, first); err == nil {
		t.Error("CustomRange(reversed) error = nil, want error")
	}
}

type reportsBackend struct {
	mu      sync.Mutex
	failing map[string]bool
	queries []string
}

func (b *reportsBackend) handler() http.Handler {
	bodies := map[string]interface{}{
		"/reports/summary":         map[string]interface{}{"total_sales": "120.50", "order_count": 4, "average_ticket": 30.125, "items_sold": 11},
		"/reports/sales-by-day":    []map[string]interface{}{{"date": "2026-10-15", "total": 120.5, "orders": 4}},
		"/reports/top-products":    []map[string]interface{}{{"product_id": "p1", "name": "Soup", "quantity": 5, "total": 20}},
		"/reports/payment-methods": []map[string]interface{}{{"key": "cash", "count": 3, "total": 90}},
		"/reports/order-types":     []map[string]interface{}{{"key": "table", "count": 4, "total": 120.5}},
		"/reports/staff":           []map[string]interface{}{{"staff_id": "s1", "name": "Lea", "orders": 4, "total": 120.5}},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.queries = append(b.queries, r.URL.RawQuery)
		fail := b.failing[r.URL.Path]
		b.mu.Unlock()

		if fail {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"data": body})
	})
}

func testRange() Range {
	return Range{
		From: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
	}
}

func TestLoadAllSections(t *testing.T) {
	b := &reportsBackend{}
	server := httptest.NewServer(b.handler())
	defer server.Close()

	da := NewDataAccess(api.NewClient(server.URL), aqm.NewNoopLogger())
	report, err := da.Load(context.Background(), testRange())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !report.Complete() {
		t.Errorf("Failed = %v, want none", report.Failed)
	}
	if report.Summary == nil || report.Summary.OrderCount != 4 || report.Summary.TotalSales.String() != "120.5" {
		t.Errorf("Summary = %+v", report.Summary)
	}
	if len(report.SalesByDay) != 1 || len(report.TopProducts) != 1 || len(report.PaymentMethods) != 1 ||
		len(report.OrderTypes) != 1 || len(report.Staff) != 1 {
		t.Errorf("sections not all decoded: %+v", report)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queries) != 6 {
		t.Fatalf("backend saw %d requests, want 6", len(b.queries))
	}
	for _, q := range b.queries {
		if q != "from=2026-10-15T00%3A00%3A00Z&to=2026-10-16T00%3A00%3A00Z" {
			t.Errorf("query = %s", q)
		}
	}
}

func TestLoadSwallowsSectionFailures(t *testing.T) {
	b := &reportsBackend{failing: map[string]bool{
		"/reports/summary":      true,
		"/reports/top-products": true,
	}}
	server := httptest.NewServer(b.handler())
	defer server.Close()

	da := NewDataAccess(api.NewClient(server.URL), nil)
	report, err := da.Load(context.Background(), testRange())
	if err != nil {
		t.Fatalf("Load() error = %v, want partial report", err)
	}

	if len(report.Failed) != 2 || report.Failed[0] != "summary" || report.Failed[1] != "top-products" {
		t.Errorf("Failed = %v, want [summary top-products]", report.Failed)
	}
	if report.Summary != nil {
		t.Error("Summary set although its request failed")
	}
	if len(report.SalesByDay) != 1 || len(report.Staff) != 1 {
		t.Error("successful sections missing from partial report")
	}
}

func TestLoadNilClient(t *testing.T) {
	var da *DataAccess
	if _, err := da.Load(context.Background(), testRange()); err == nil {
		t.Error("Load() error = nil, want error")
	}
}

func TestServiceRemembersTimeframe(t *testing.T) {
	b := &reportsBackend{}
	server := httptest.NewServer(b.handler())
	defer server.Close()

	path := filepath.Join(t.TempDir(), "prefs.yaml")
	store, err := prefs.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	svc := NewService(NewDataAccess(api.NewClient(server.URL), nil), store, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if got := svc.Timeframe(); got != Today {
		t.Errorf("Timeframe() = %s, want %s", got, Today)
	}

	report, err := svc.Load(ctx, Month)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if report.Timeframe != Month || report.Range.Days() != 31 {
		t.Errorf("report = %s over %d days, want month over 31", report.Timeframe, report.Range.Days())
	}

	reopened, _ := prefs.Open(path)
	if got := reopened.Get().ReportTimeframe; got != Month {
		t.Errorf("persisted timeframe = %s, want %s", got, Month)
	}

	report, err = svc.Load(ctx, "")
	if err != nil || report.Timeframe != Month {
		t.Errorf("Load(\"\") = %v, %v, want remembered month", report, err)
	}

	if _, err := svc.Load(ctx, "fortnight"); err == nil {
		t.Error("Load(unknown) error = nil, want error")
	}
	if got := svc.Timeframe(); got != Month {
		t.Errorf("unknown timeframe overwrote remembered one: %s", got)
	}

	custom, err := svc.LoadCustom(ctx, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("LoadCustom() error = %v", err)
	}
	if custom.Timeframe != Custom || custom.Range.Days() != 7 {
		t.Errorf("custom report = %s over %d days", custom.Timeframe, custom.Range.Days())
	}
}
