package terminal

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/appetiteclub/pos/internal/catalog"
	"github.com/appetiteclub/pos/internal/kitchen"
	"github.com/appetiteclub/pos/internal/orders"
	"github.com/appetiteclub/pos/internal/payroll"
	"github.com/appetiteclub/pos/internal/prefs"
	"github.com/appetiteclub/pos/internal/reports"
	"github.com/appetiteclub/pos/internal/settings"
	"github.com/appetiteclub/pos/internal/stock"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 20

// HandlerDeps groups what the terminal handler talks to. Missing parts make
// their routes answer 503.
type HandlerDeps struct {
	Sessions *orders.Registry
	Orders   *orders.DataAccess
	Catalog  *catalog.DataAccess
	Kitchen  *kitchen.Queue
	Hints    *kitchen.Hints
	Reports  *reports.Service
	Stock    *stock.Inventory
	Payroll  *payroll.DataAccess
	Settings *settings.DataAccess
	Prefs    *prefs.Store
}

type Handler struct {
	deps   HandlerDeps
	logger aqm.Logger
	tlm    *telemetry.HTTP
}

func NewHandler(deps HandlerDeps, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		deps:   deps,
		logger: logger,
		tlm:    telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.ListOrders)
	r.Get("/products", h.ListProducts)

	r.Route("/carts", func(r chi.Router) {
		r.Get("/", h.ListCarts)
		r.Post("/", h.OpenCart)
		r.Get("/{key}", h.GetCart)
		r.Post("/{key}/items", h.AddCartItem)
		r.Patch("/{key}/items/{line}", h.UpdateCartItem)
		r.Delete("/{key}/items/{line}", h.RemoveCartItem)
		r.Post("/{key}/submit", h.SubmitCart)
		r.Post("/{key}/select", h.SelectCartItems)
		r.Post("/{key}/pay", h.PayCart)
		r.Post("/{key}/close", h.CloseCart)
		r.Post("/{key}/cancel", h.CancelCart)
	})

	r.Route("/kitchen", func(r chi.Router) {
		r.Get("/queue", h.KitchenQueue)
		r.Post("/selection", h.KitchenSelection)
		r.Post("/transition", h.KitchenTransition)
		r.Get("/settings", h.GetKitchenSettings)
		r.Post("/settings", h.SaveKitchenSettings)
	})

	r.Get("/reports", h.GetReport)

	r.Route("/stock", func(r chi.Router) {
		r.Get("/", h.ListStock)
		r.Patch("/{id}", h.UpdateStock)
		r.Delete("/{id}", h.DeleteStock)
	})

	r.Route("/staff", func(r chi.Router) {
		r.Get("/", h.ListStaff)
		r.Get("/{id}/ledger", h.StaffLedger)
		r.Post("/{id}/payments", h.RecordStaffPayment)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/localization", h.GetLocalization)
		r.Get("/payments", h.GetPaymentSettings)
		r.Post("/payments", h.SavePaymentSettings)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

// decode reads an optional JSON body into dest.
func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dest); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}

func unavailable(w http.ResponseWriter, what string) {
	aqm.RespondError(w, http.StatusServiceUnavailable, what+" not available")
}

// respondBackendError maps a backend call failure to a response.
func respondBackendError(w http.ResponseWriter, log aqm.Logger, err error, action string) {
	log.Error("backend call failed", "action", action, "error", err)

	var statusErr *api.StatusError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		aqm.RespondError(w, http.StatusUnauthorized, api.Message(err))
	case errors.Is(err, api.ErrNotFound):
		aqm.RespondError(w, http.StatusNotFound, api.Message(err))
	case errors.Is(err, api.ErrNotConfigured):
		aqm.RespondError(w, http.StatusServiceUnavailable, api.Message(err))
	case errors.As(err, &statusErr) && statusErr.StatusCode < 500:
		msg := statusErr.BackendMessage()
		if msg == "" {
			msg = api.Message(err)
		}
		aqm.RespondError(w, statusErr.StatusCode, msg)
	default:
		aqm.RespondError(w, http.StatusBadGateway, api.Message(err))
	}
}
