package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/cache"
	"github.com/appetiteclub/pos/internal/config"
	"github.com/appetiteclub/pos/internal/kitchen"
	"github.com/appetiteclub/pos/internal/orders"
	"github.com/appetiteclub/pos/internal/payroll"
	"github.com/appetiteclub/pos/internal/prefs"
	"github.com/appetiteclub/pos/internal/reports"
	"github.com/appetiteclub/pos/internal/settings"
	"github.com/appetiteclub/pos/internal/stock"
	"github.com/aquamarinepk/aqm"
)

// Env is what every command runs against.
type Env struct {
	Settings config.Settings
	Tokens   *auth.FileTokenStore
	Client   *api.Client
	Prefs    *prefs.Store
	Logger   aqm.Logger
	Out      io.Writer
}

// NewEnv builds the backend client and local stores from settings.
func NewEnv(s config.Settings, logger aqm.Logger, out io.Writer) *Env {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if out == nil {
		out = os.Stdout
	}

	tokens := auth.NewFileTokenStore(s.TokenPath)
	var source auth.TokenSource = tokens
	if s.APIToken != "" {
		source = auth.StaticToken(s.APIToken)
	}

	store, err := prefs.Open(s.PrefsPath)
	if err != nil {
		logger.Error("cannot read preferences, using defaults", "path", s.PrefsPath, "error", err)
		store = prefs.Memory()
	}

	return &Env{
		Settings: s,
		Tokens:   tokens,
		Client: api.NewClient(s.APIURL,
			api.WithTimeout(s.APITimeout),
			api.WithCache(cache.New(s.CacheTTL)),
			api.WithTokenSource(source),
			api.WithLogger(logger),
		),
		Prefs:  store,
		Logger: logger,
		Out:    out,
	}
}

func (e *Env) table() *tabwriter.Writer {
	return tabwriter.NewWriter(e.Out, 0, 4, 2, ' ', 0)
}

// money formats with the backend localization, or plain amounts when it
// cannot be read.
func (e *Env) money(ctx context.Context) *settings.Money {
	loc, err := settings.NewDataAccess(e.Client).GetLocalization(ctx)
	if err != nil {
		e.Logger.Debug("localization unavailable", "error", err)
	}
	return settings.NewMoney(loc)
}

// Login stores the bearer token used by later commands.
func Login(e *Env, token string) error {
	if err := e.Tokens.Save(token); err != nil {
		return err
	}
	fmt.Fprintf(e.Out, "Token saved to %s\n", e.Tokens.Path())
	return nil
}

func Logout(e *Env) error {
	if err := e.Tokens.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(e.Out, "Logged out")
	return nil
}

// Orders prints the open orders.
func Orders(ctx context.Context, e *Env) error {
	list, err := orders.NewDataAccess(e.Client).ListOrders(ctx, orders.Filter{Status: orders.StatusOpen})
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(e.Out, "No open orders")
		return nil
	}

	m := e.money(ctx)
	tw := e.table()
	fmt.Fprintln(tw, "ID\tTYPE\tWHERE\tTOTAL\tOPENED")
	for _, o := range list {
		where := "-"
		switch {
		case o.TableNumber > 0:
			where = fmt.Sprintf("table %d", o.TableNumber)
		case o.Customer != nil:
			where = o.Customer.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.Type, where, m.Format(o.Total), o.CreatedAt.Local().Format("15:04"))
	}
	return tw.Flush()
}

// Kitchen prints the grouped kitchen queue. With watch a poller keeps
// reprinting it after every refresh until ctx ends.
func Kitchen(ctx context.Context, e *Env, watch bool) error {
	queue := kitchen.NewQueue(kitchen.NewDataAccess(e.Client), kitchen.NewSelection(e.Prefs), nil, e.Logger)
	if _, err := queue.LoadCompileSettings(ctx); err != nil {
		e.Logger.Debug("compile settings unavailable", "error", err)
	}

	if err := queue.Refresh(ctx); err != nil {
		return err
	}
	if !watch {
		printQueue(e.Out, queue)
		return nil
	}

	poller := kitchen.NewPoller(queue, e.Settings.PollInterval, nil, e.Logger).OnRefresh(func(err error) {
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			fmt.Fprintf(e.Out, "refresh failed: %s\n", api.Message(err))
			return
		}
		printQueue(e.Out, queue)
		fmt.Fprintln(e.Out)
	})
	poller.Run(ctx)
	return nil
}

func printQueue(out io.Writer, queue *kitchen.Queue) {
	snap := queue.Snapshot()
	fmt.Fprintf(out, "Kitchen queue at %s\n", snap.RefreshedAt.Local().Format("15:04:05"))
	if len(snap.Groups) == 0 {
		fmt.Fprintln(out, "  nothing to cook")
		return
	}

	for _, g := range snap.Groups {
		fmt.Fprintf(out, "%s\n", g.Label)
		if snap.Compile {
			for _, l := range g.Compiled {
				fmt.Fprintf(out, "  %dx %s%s [%s]\n", l.Quantity, l.ProductName, noteSuffix(l.Note), l.KitchenStatus)
			}
			continue
		}
		for _, item := range g.Items {
			fmt.Fprintf(out, "  %dx %s%s [%s] %s\n", item.Quantity, item.ProductName, noteSuffix(item.Note),
				item.Status().Code(), queue.Elapsed(item).Truncate(time.Second))
		}
	}
}

func noteSuffix(note string) string {
	if note == "" {
		return ""
	}
	return " (" + note + ")"
}

// Reports prints a report for timeframe, or the remembered one when empty.
func Reports(ctx context.Context, e *Env, timeframe string) error {
	svc := reports.NewService(reports.NewDataAccess(e.Client, e.Logger), e.Prefs, e.Logger)
	report, err := svc.Load(ctx, timeframe)
	if err != nil {
		return err
	}

	m := e.money(ctx)
	fmt.Fprintf(e.Out, "Report %s (%s to %s)\n", report.Timeframe,
		report.Range.From.Format("2006-01-02"), report.Range.To.Add(-time.Nanosecond).Format("2006-01-02"))
	if s := report.Summary; s != nil {
		fmt.Fprintf(e.Out, "Sales %s over %d orders, average %s, %d items\n",
			m.Format(s.TotalSales), s.OrderCount, m.Format(s.AverageTicket), s.ItemsSold)
	}

	if len(report.TopProducts) > 0 {
		tw := e.table()
		fmt.Fprintln(tw, "PRODUCT\tQTY\tTOTAL")
		for _, p := range report.TopProducts {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", p.Name, p.Quantity, m.Format(p.Total))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	for _, b := range report.PaymentMethods {
		fmt.Fprintf(e.Out, "  %s: %d payments, %s\n", b.Key, b.Count, m.Format(b.Total))
	}
	if !report.Complete() {
		fmt.Fprintf(e.Out, "Unavailable sections: %s\n", strings.Join(report.Failed, ", "))
	}
	return nil
}

// Stock prints the stock list with its alerts.
func Stock(ctx context.Context, e *Env) error {
	inv := stock.NewInventory(stock.NewDataAccess(e.Client), e.Settings.StockExpiring, e.Logger)
	if err := inv.Refresh(ctx); err != nil {
		return err
	}

	m := e.money(ctx)
	tw := e.table()
	fmt.Fprintln(tw, "ITEM\tQUANTITY\tLEVEL\tVALUE")
	for _, item := range inv.Items() {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n", item.Name, item.Quantity.String(), item.Unit, item.Level(), m.Format(item.Value()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(e.Out, "Total value %s\n", m.Format(inv.TotalValue()))
	for _, a := range inv.Alerts() {
		fmt.Fprintf(e.Out, "! %s %s\n", a.Name, strings.TrimSpace(a.Level+" "+a.Expiry))
	}
	return nil
}

// Staff prints each staff member's ledger balance.
func Staff(ctx context.Context, e *Env) error {
	da := payroll.NewDataAccess(e.Client)
	staff, err := da.ListStaff(ctx)
	if err != nil {
		return err
	}

	m := e.money(ctx)
	tw := e.table()
	fmt.Fprintln(tw, "NAME\tROLE\tSALARY\tPAID\tDUE")
	for _, s := range staff {
		ledger, err := da.Ledger(ctx, s)
		if err != nil {
			e.Logger.Error("cannot load payments", "staff_id", s.ID, "error", err)
			fmt.Fprintf(tw, "%s\t%s\t%s\t?\t?\n", s.Name, s.Role, m.Format(s.Salary))
			continue
		}
		due := m.Format(ledger.AmountDue)
		if ledger.Settled {
			due = "settled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Name, s.Role, m.Format(ledger.Salary), m.Format(ledger.Paid), due)
	}
	return tw.Flush()
}
