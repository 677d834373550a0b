package terminal

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/appetiteclub/pos/internal/payroll"
	"github.com/appetiteclub/pos/internal/reports"
	"github.com/appetiteclub/pos/internal/settings"
	"github.com/appetiteclub/pos/internal/stock"
	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// GetReport loads a preset timeframe, or a custom range when from and to are
// given as dates.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetReport")
	defer finish()
	log := h.log(r)

	if h.deps.Reports == nil {
		unavailable(w, "Reports")
		return
	}

	q := r.URL.Query()
	var (
		report *reports.Report
		err    error
	)
	if q.Get("from") != "" || q.Get("to") != "" {
		first, fromErr := time.ParseInLocation(dateLayout, q.Get("from"), time.Local)
		last, toErr := time.ParseInLocation(dateLayout, q.Get("to"), time.Local)
		if fromErr != nil || toErr != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Dates must look like 2006-01-02")
			return
		}
		if last.Before(first) {
			aqm.RespondError(w, http.StatusBadRequest, "Range ends before it starts")
			return
		}
		report, err = h.deps.Reports.LoadCustom(r.Context(), first, last)
	} else {
		tf := q.Get("timeframe")
		if tf != "" && (tf == reports.Custom || !slices.Contains(reports.Timeframes, tf)) {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid timeframe")
			return
		}
		report, err = h.deps.Reports.Load(r.Context(), tf)
	}
	if err != nil {
		respondBackendError(w, log, err, "load report")
		return
	}
	aqm.Respond(w, http.StatusOK, report, nil)
}

type stockView struct {
	Items      []stockItemView `json:"items"`
	Alerts     []stock.Alert   `json:"alerts"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type stockItemView struct {
	stock.StockItem
	Level string          `json:"level"`
	Value decimal.Decimal `json:"value"`
}

func (h *Handler) viewStock() stockView {
	items := h.deps.Stock.Items()
	view := stockView{
		Items:      make([]stockItemView, 0, len(items)),
		Alerts:     h.deps.Stock.Alerts(),
		TotalValue: h.deps.Stock.TotalValue(),
	}
	if view.Alerts == nil {
		view.Alerts = []stock.Alert{}
	}
	for _, item := range items {
		view.Items = append(view.Items, stockItemView{StockItem: item, Level: item.Level(), Value: item.Value()})
	}
	return view
}

func respondStockError(w http.ResponseWriter, log aqm.Logger, err error, action string) {
	if errors.Is(err, stock.ErrItemNotFound) {
		aqm.RespondError(w, http.StatusNotFound, "Stock item not found")
		return
	}
	respondBackendError(w, log, err, action)
}

func (h *Handler) ListStock(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListStock")
	defer finish()
	log := h.log(r)

	if h.deps.Stock == nil {
		unavailable(w, "Stock")
		return
	}
	if err := h.deps.Stock.Refresh(r.Context()); err != nil {
		respondBackendError(w, log, err, "list stock")
		return
	}
	aqm.Respond(w, http.StatusOK, h.viewStock(), nil)
}

func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateStock")
	defer finish()
	log := h.log(r)

	if h.deps.Stock == nil {
		unavailable(w, "Stock")
		return
	}

	var patch stock.Patch
	if !decode(w, r, &patch) {
		return
	}
	if patch.Empty() {
		aqm.RespondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	item, err := h.deps.Stock.Apply(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondStockError(w, log, err, "update stock item")
		return
	}
	aqm.Respond(w, http.StatusOK, stockItemView{StockItem: item, Level: item.Level(), Value: item.Value()}, nil)
}

func (h *Handler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteStock")
	defer finish()
	log := h.log(r)

	if h.deps.Stock == nil {
		unavailable(w, "Stock")
		return
	}
	if err := h.deps.Stock.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStockError(w, log, err, "delete stock item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListStaff")
	defer finish()
	log := h.log(r)

	if h.deps.Payroll == nil {
		unavailable(w, "Payroll")
		return
	}
	staff, err := h.deps.Payroll.ListStaff(r.Context())
	if err != nil {
		respondBackendError(w, log, err, "list staff")
		return
	}
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"staff": staff}, nil)
}

func (h *Handler) StaffLedger(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.StaffLedger")
	defer finish()
	log := h.log(r)

	if h.deps.Payroll == nil {
		unavailable(w, "Payroll")
		return
	}

	staff, err := h.deps.Payroll.ListStaff(r.Context())
	if err != nil {
		respondBackendError(w, log, err, "list staff")
		return
	}
	id := chi.URLParam(r, "id")
	i := slices.IndexFunc(staff, func(s payroll.Staff) bool { return s.ID == id })
	if i < 0 {
		aqm.RespondError(w, http.StatusNotFound, "Staff member not found")
		return
	}

	ledger, err := h.deps.Payroll.Ledger(r.Context(), staff[i])
	if err != nil {
		respondBackendError(w, log, err, "load payments")
		return
	}
	aqm.Respond(w, http.StatusOK, ledger, nil)
}

func (h *Handler) RecordStaffPayment(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RecordStaffPayment")
	defer finish()
	log := h.log(r)

	if h.deps.Payroll == nil {
		unavailable(w, "Payroll")
		return
	}

	var payment payroll.NewPayment
	if !decode(w, r, &payment) {
		return
	}

	record, err := h.deps.Payroll.RecordPayment(r.Context(), chi.URLParam(r, "id"), payment)
	if errors.Is(err, payroll.ErrInvalidAmount) {
		aqm.RespondError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}
	if err != nil {
		respondBackendError(w, log, err, "record staff payment")
		return
	}
	aqm.Respond(w, http.StatusCreated, record, nil)
}

// GetLocalization returns the backend localization with a formatted sample
// amount so clients can check the currency rendering.
func (h *Handler) GetLocalization(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetLocalization")
	defer finish()
	log := h.log(r)

	if h.deps.Settings == nil {
		unavailable(w, "Settings")
		return
	}
	loc, err := h.deps.Settings.GetLocalization(r.Context())
	if err != nil {
		respondBackendError(w, log, err, "load localization")
		return
	}
	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"localization": loc,
		"sample":       settings.NewMoney(loc).Format(decimal.NewFromFloat(1234.5)),
	}, nil)
}

func (h *Handler) GetPaymentSettings(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetPaymentSettings")
	defer finish()
	log := h.log(r)

	if h.deps.Settings == nil {
		unavailable(w, "Settings")
		return
	}
	ps, err := h.deps.Settings.GetPayments(r.Context())
	if err != nil {
		respondBackendError(w, log, err, "load payment settings")
		return
	}
	aqm.Respond(w, http.StatusOK, ps, nil)
}

func (h *Handler) SavePaymentSettings(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SavePaymentSettings")
	defer finish()
	log := h.log(r)

	if h.deps.Settings == nil {
		unavailable(w, "Settings")
		return
	}

	var ps settings.PaymentSettings
	if !decode(w, r, &ps) {
		return
	}
	for _, m := range ps.Methods {
		if m.ID == "" {
			aqm.RespondError(w, http.StatusBadRequest, "Payment method without id")
			return
		}
	}

	saved, err := h.deps.Settings.SavePayments(r.Context(), ps)
	if err != nil {
		respondBackendError(w, log, err, "save payment settings")
		return
	}
	aqm.Respond(w, http.StatusOK, saved, nil)
}
