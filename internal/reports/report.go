package reports

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/aquamarinepk/aqm"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Summary struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	OrderCount    int             `json:"order_count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	ItemsSold     int             `json:"items_sold"`
}

type DaySales struct {
	Date   string          `json:"date"`
	Total  decimal.Decimal `json:"total"`
	Orders int             `json:"orders"`
}

type ProductSales struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

// Breakdown is a total keyed by payment method or order type.
type Breakdown struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type StaffSales struct {
	StaffID string          `json:"staff_id"`
	Name    string          `json:"name"`
	Orders  int             `json:"orders"`
	Total   decimal.Decimal `json:"total"`
}

// Report holds whatever sections resolved. Failed names the sections whose
// request failed.
type Report struct {
	Timeframe      string         `json:"timeframe"`
	Range          Range          `json:"range"`
	Summary        *Summary       `json:"summary,omitempty"`
	SalesByDay     []DaySales     `json:"sales_by_day,omitempty"`
	TopProducts    []ProductSales `json:"top_products,omitempty"`
	PaymentMethods []Breakdown    `json:"payment_methods,omitempty"`
	OrderTypes     []Breakdown    `json:"order_types,omitempty"`
	Staff          []StaffSales   `json:"staff,omitempty"`
	Failed         []string       `json:"failed,omitempty"`
}

// Complete reports whether every section loaded.
func (r *Report) Complete() bool {
	return len(r.Failed) == 0
}

// DataAccess wraps the /reports endpoints.
type DataAccess struct {
	client *api.Client
	logger aqm.Logger
}

func NewDataAccess(client *api.Client, logger aqm.Logger) *DataAccess {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &DataAccess{client: client, logger: logger}
}

type section struct {
	name string
	path string
	dest interface{}
}

// Load fetches every report section for rng in parallel. A failing section
// is logged and listed in Report.Failed; the others still render.
func (da *DataAccess) Load(ctx context.Context, rng Range) (*Report, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("reports client not configured")
	}

	report := &Report{Range: rng}
	var summary Summary
	sections := []section{
		{name: "summary", path: "/reports/summary", dest: &summary},
		{name: "sales-by-day", path: "/reports/sales-by-day", dest: &report.SalesByDay},
		{name: "top-products", path: "/reports/top-products", dest: &report.TopProducts},
		{name: "payment-methods", path: "/reports/payment-methods", dest: &report.PaymentMethods},
		{name: "order-types", path: "/reports/order-types", dest: &report.OrderTypes},
		{name: "staff", path: "/reports/staff", dest: &report.Staff},
	}

	query := url.Values{}
	query.Set("from", rng.From.Format(time.RFC3339))
	query.Set("to", rng.To.Format(time.RFC3339))

	var (
		mu     sync.Mutex
		failed []string
		g      errgroup.Group
	)
	for _, s := range sections {
		g.Go(func() error {
			if err := da.client.GetQuery(ctx, s.path, query, s.dest); err != nil {
				da.logger.Error("report section failed", "section", s.name, "error", err)
				mu.Lock()
				failed = append(failed, s.name)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	slices.Sort(failed)
	report.Failed = failed
	if !slices.Contains(failed, "summary") {
		report.Summary = &summary
	}
	return report, nil
}
