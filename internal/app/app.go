package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/cache"
	"github.com/appetiteclub/pos/internal/catalog"
	"github.com/appetiteclub/pos/internal/config"
	"github.com/appetiteclub/pos/internal/kitchen"
	"github.com/appetiteclub/pos/internal/orders"
	"github.com/appetiteclub/pos/internal/payroll"
	"github.com/appetiteclub/pos/internal/prefs"
	"github.com/appetiteclub/pos/internal/reports"
	"github.com/appetiteclub/pos/internal/settings"
	"github.com/appetiteclub/pos/internal/stock"
	"github.com/appetiteclub/pos/internal/terminal"
	"github.com/appetiteclub/pos/pkg"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"
	"github.com/google/uuid"
)

const (
	AppName    = "pos"
	AppVersion = "0.1.0"
)

// App is the staff terminal: the HTTP surface over the restaurant backend plus
// the background kitchen poller.
type App struct {
	config   *aqm.Config
	logger   aqm.Logger
	settings config.Settings
	micro    *aqm.Micro

	bus     *pkg.NATSBus
	poller  *kitchen.Poller
	handler *terminal.Handler
}

func New(cfg *aqm.Config, logger aqm.Logger) (*App, error) {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &App{
		config: cfg,
		logger: logger,
	}, nil
}

// Initialize builds every component and the micro service running them.
func (a *App) Initialize(ctx context.Context) error {
	a.settings = config.Load(a.config, a.logger)

	store, err := prefs.Open(a.settings.PrefsPath)
	if err != nil {
		a.logger.Error("cannot read preferences, using defaults", "path", a.settings.PrefsPath, "error", err)
		store = prefs.Memory()
	}

	responses := cache.New(a.settings.CacheTTL)
	client := api.NewClient(a.settings.APIURL,
		api.WithTimeout(a.settings.APITimeout),
		api.WithCache(responses),
		api.WithTokenSource(a.tokenSource()),
		api.WithLogger(a.logger),
	)

	hints := a.connectHints()

	ordersDA := orders.NewDataAccess(client)
	queue := kitchen.NewQueue(kitchen.NewDataAccess(client), kitchen.NewSelection(store), hints, a.logger)
	a.poller = kitchen.NewPoller(queue, a.settings.PollInterval, hints.C(), a.logger)

	a.handler = terminal.NewHandler(terminal.HandlerDeps{
		Sessions: orders.NewRegistry(ordersDA, a.logger),
		Orders:   ordersDA,
		Catalog:  catalog.NewDataAccess(client),
		Kitchen:  queue,
		Hints:    hints,
		Reports:  reports.NewService(reports.NewDataAccess(client, a.logger), store, a.logger),
		Stock:    stock.NewInventory(stock.NewDataAccess(client), a.settings.StockExpiring, a.logger),
		Payroll:  payroll.NewDataAccess(client),
		Settings: settings.NewDataAccess(client),
		Prefs:    store,
	}, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})

	lifecycles := []interface{}{
		a.cacheLifecycle(responses),
		a.kitchenLifecycle(queue, hints),
	}
	if a.bus != nil {
		bus := a.bus
		lifecycles = append(lifecycles, aqm.LifecycleHooks{
			OnStop: func(context.Context) error { return bus.Close() },
		})
	}

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", a.handler),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	if a.micro == nil {
		return fmt.Errorf("%s not initialized", AppName)
	}
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}

// tokenSource prefers a configured token over the one saved by posctl login.
func (a *App) tokenSource() auth.TokenSource {
	if a.settings.APIToken != "" {
		return auth.StaticToken(a.settings.APIToken)
	}
	return auth.NewFileTokenStore(a.settings.TokenPath)
}

// connectHints joins the kitchen hint bus when one is configured. Without it
// the kitchen queue relies on polling alone.
func (a *App) connectHints() *kitchen.Hints {
	if a.settings.HintsURL == "" {
		return nil
	}

	source := AppName + "-" + uuid.NewString()
	bus, err := pkg.ConnectNATS(a.settings.HintsURL, source, a.logger)
	if err != nil {
		a.logger.Error("kitchen hints disabled", "url", a.settings.HintsURL, "error", err)
		return nil
	}
	a.bus = bus
	return kitchen.NewHints(bus, bus, a.settings.HintsTopic, source, a.logger).WatchOrders(a.settings.OrderTopic)
}

func (a *App) cacheLifecycle(responses *cache.ResponseCache) aqm.LifecycleHooks {
	var cancel context.CancelFunc
	return aqm.LifecycleHooks{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			responses.Start(ctx, a.settings.CacheSweep)
			return nil
		},
		OnStop: func(context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	}
}

// kitchenLifecycle loads the compile flag, subscribes to hints and runs the
// poller until stop.
func (a *App) kitchenLifecycle(queue *kitchen.Queue, hints *kitchen.Hints) aqm.LifecycleHooks {
	var (
		cancel context.CancelFunc
		wg     sync.WaitGroup
	)
	return aqm.LifecycleHooks{
		OnStart: func(startCtx context.Context) error {
			if _, err := queue.LoadCompileSettings(startCtx); err != nil {
				a.logger.Error("cannot load compile settings", "error", err)
			}

			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			if err := hints.Start(ctx); err != nil {
				a.logger.Error("kitchen hints not started", "error", err)
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				a.poller.Run(ctx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			if cancel != nil {
				cancel()
			}
			wg.Wait()
			return nil
		},
	}
}
