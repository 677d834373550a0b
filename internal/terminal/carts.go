package terminal

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/appetiteclub/pos/internal/orders"
	"github.com/appetiteclub/pos/internal/prefs"
	"github.com/appetiteclub/pos/pkg/enums/ordertype"
	"github.com/appetiteclub/pos/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type lineView struct {
	orders.Line
	Key       string          `json:"key"`
	LineTotal decimal.Decimal `json:"line_total"`
	Paid      bool            `json:"paid"`
	Selected  bool            `json:"selected"`
}

type cartView struct {
	Key           string           `json:"key"`
	Type          string           `json:"type"`
	Table         int              `json:"table,omitempty"`
	OrderID       string           `json:"order_id,omitempty"`
	Customer      *orders.Customer `json:"customer,omitempty"`
	Lines         []lineView       `json:"lines"`
	Selected      []string         `json:"selected"`
	Total         decimal.Decimal  `json:"total"`
	PaidTotal     decimal.Decimal  `json:"paid_total"`
	DueTotal      decimal.Decimal  `json:"due_total"`
	SelectedTotal decimal.Decimal  `json:"selected_total"`
	Warning       string           `json:"warning,omitempty"`
}

func viewCart(s *orders.Session) cartView {
	c := s.Cart()
	lines := c.Lines()
	view := cartView{
		Key:           s.Key(),
		Type:          s.Type().Code(),
		Table:         s.Table(),
		OrderID:       s.OrderID(),
		Customer:      s.Customer(),
		Lines:         make([]lineView, 0, len(lines)),
		Selected:      c.Selected(),
		Total:         c.Total(),
		PaidTotal:     c.PaidTotal(),
		DueTotal:      c.DueTotal(),
		SelectedTotal: c.SelectedTotal(),
	}
	if view.Selected == nil {
		view.Selected = []string{}
	}
	for _, l := range lines {
		key := l.Key()
		view.Lines = append(view.Lines, lineView{
			Line:      l,
			Key:       key,
			LineTotal: l.Total(),
			Paid:      c.IsPaid(key),
			Selected:  c.IsSelected(key),
		})
	}
	return view
}

// session resolves {key}, answering the request itself when it cannot.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*orders.Session, bool) {
	if h.deps.Sessions == nil {
		unavailable(w, "Orders")
		return nil, false
	}
	s, ok := h.deps.Sessions.Get(chi.URLParam(r, "key"))
	if !ok {
		aqm.RespondError(w, http.StatusNotFound, "Cart not found")
		return nil, false
	}
	return s, true
}

func respondCartError(w http.ResponseWriter, log aqm.Logger, err error, action string) {
	switch {
	case errors.Is(err, orders.ErrLineNotFound):
		aqm.RespondError(w, http.StatusNotFound, "Line not found")
	case errors.Is(err, orders.ErrItemPaid):
		aqm.RespondError(w, http.StatusConflict, "Item already paid")
	case errors.Is(err, orders.ErrExistingItem):
		aqm.RespondError(w, http.StatusConflict, "Item already sent to the kitchen")
	case errors.Is(err, orders.ErrPendingItem):
		aqm.RespondError(w, http.StatusConflict, "Submit the item before paying it")
	case errors.Is(err, orders.ErrInvalidQuantity):
		aqm.RespondError(w, http.StatusBadRequest, "Quantity must be positive")
	case errors.Is(err, orders.ErrNothingSelected):
		aqm.RespondError(w, http.StatusBadRequest, "No items selected")
	case errors.Is(err, orders.ErrNothingToSubmit):
		aqm.RespondError(w, http.StatusBadRequest, "No pending items to submit")
	case errors.Is(err, orders.ErrNoOrder):
		aqm.RespondError(w, http.StatusConflict, "No open order")
	default:
		respondBackendError(w, log, err, action)
	}
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()
	log := h.log(r)

	if h.deps.Orders == nil {
		unavailable(w, "Orders")
		return
	}

	q := r.URL.Query()
	filter := orders.Filter{Status: q.Get("status"), Type: q.Get("type")}
	if v := q.Get("table"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid table number")
			return
		}
		filter.TableNumber = n
	}

	list, err := h.deps.Orders.ListOrders(r.Context(), filter)
	if err != nil {
		respondBackendError(w, log, err, "list orders")
		return
	}
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"orders": list}, nil)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListProducts")
	defer finish()
	log := h.log(r)

	if h.deps.Catalog == nil {
		unavailable(w, "Catalog")
		return
	}

	menu, err := h.deps.Catalog.LoadMenu(r.Context())
	if err != nil {
		respondBackendError(w, log, err, "load menu")
		return
	}
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"categories": menu.ByCategory()}, nil)
}

func (h *Handler) ListCarts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListCarts")
	defer finish()

	if h.deps.Sessions == nil {
		unavailable(w, "Orders")
		return
	}
	resp := map[string]interface{}{"carts": h.deps.Sessions.Keys()}
	if h.deps.Prefs != nil {
		resp["last_table"] = h.deps.Prefs.Get().LastTable
	}
	aqm.Respond(w, http.StatusOK, resp, nil)
}

// rememberTable records the table last worked on so terminals can reopen it.
func (h *Handler) rememberTable(log aqm.Logger, s *orders.Session) {
	if h.deps.Prefs == nil || s.Table() == 0 || h.deps.Prefs.Get().LastTable == s.Table() {
		return
	}
	table := s.Table()
	if err := h.deps.Prefs.Update(func(p *prefs.Preferences) { p.LastTable = table }); err != nil {
		log.Error("cannot save last table", "error", err)
	}
}

// OpenCart starts an off-table cart, or resumes one for an existing order.
func (h *Handler) OpenCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.OpenCart")
	defer finish()
	log := h.log(r)

	if h.deps.Sessions == nil {
		unavailable(w, "Orders")
		return
	}

	var payload struct {
		Type     string           `json:"type"`
		OrderID  string           `json:"order_id"`
		Customer *orders.Customer `json:"customer"`
	}
	if !decode(w, r, &payload) {
		return
	}

	var (
		s   *orders.Session
		err error
	)
	if payload.OrderID != "" {
		if h.deps.Orders == nil {
			unavailable(w, "Orders")
			return
		}
		order, getErr := h.deps.Orders.GetOrder(r.Context(), payload.OrderID)
		if getErr != nil {
			respondBackendError(w, log, getErr, "get order")
			return
		}
		s, err = h.deps.Sessions.Resume(*order)
	} else {
		t := ordertype.ByName(payload.Type)
		if t == nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid order type")
			return
		}
		if t.DineIn() {
			aqm.RespondError(w, http.StatusBadRequest, "Table carts are addressed as table-<number>")
			return
		}
		s, err = h.deps.Sessions.Open(*t, payload.Customer)
	}
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.OrderID() != "" {
		if err := s.Refresh(r.Context()); err != nil {
			log.Error("cannot refresh resumed cart", "cart", s.Key(), "error", err)
		}
	}
	aqm.Respond(w, http.StatusCreated, viewCart(s), nil)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetCart")
	defer finish()
	log := h.log(r)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	h.rememberTable(log, s)

	view := viewCart(s)
	if err := s.Refresh(r.Context()); err != nil {
		log.Error("cannot refresh cart", "cart", s.Key(), "error", err)
		view.Warning = api.Message(err)
	} else {
		view = viewCart(s)
	}
	aqm.Respond(w, http.StatusOK, view, nil)
}

type extraRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddCartItem")
	defer finish()
	log := h.log(r)

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.deps.Catalog == nil {
		unavailable(w, "Catalog")
		return
	}

	var payload struct {
		ProductID string         `json:"product_id"`
		Quantity  int            `json:"quantity"`
		Extras    []extraRequest `json:"extras"`
		Note      string         `json:"note"`
	}
	if !decode(w, r, &payload) {
		return
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}

	menu, err := h.deps.Catalog.LoadMenu(r.Context())
	if err != nil {
		respondBackendError(w, log, err, "load menu")
		return
	}
	product, found := menu.Find(payload.ProductID)
	if !found || !product.Available {
		aqm.RespondError(w, http.StatusBadRequest, "Product not available")
		return
	}

	extras := make([]orders.Extra, 0, len(payload.Extras))
	for _, e := range payload.Extras {
		option, found := product.Extra(e.Name)
		if !found {
			aqm.RespondError(w, http.StatusBadRequest, "Unknown extra "+e.Name)
			return
		}
		qty := e.Quantity
		if qty == 0 {
			qty = 1
		}
		extras = append(extras, orders.Extra{Name: option.Name, Price: option.Price, Quantity: qty})
	}

	ref := orders.ProductRef{ID: product.ID, Name: product.Name, Price: product.Price}
	line, err := s.Cart().AddItem(ref, payload.Quantity, extras, payload.Note)
	if err != nil {
		respondCartError(w, log, err, "add item")
		return
	}

	aqm.Respond(w, http.StatusCreated, map[string]interface{}{
		"line": line.Key(),
		"cart": viewCart(s),
	}, nil)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateCartItem")
	defer finish()
	log := h.log(r)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		Quantity *int    `json:"quantity"`
		Note     *string `json:"note"`
	}
	if !decode(w, r, &payload) {
		return
	}
	if payload.Quantity == nil && payload.Note == nil {
		aqm.RespondError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	key := chi.URLParam(r, "line")
	if payload.Note != nil {
		if err := s.Cart().SetNote(key, *payload.Note); err != nil {
			respondCartError(w, log, err, "set note")
			return
		}
	}
	if payload.Quantity != nil {
		if err := s.Cart().SetQuantity(key, *payload.Quantity); err != nil {
			respondCartError(w, log, err, "set quantity")
			return
		}
	}
	aqm.Respond(w, http.StatusOK, viewCart(s), nil)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RemoveCartItem")
	defer finish()
	log := h.log(r)

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Cart().Remove(chi.URLParam(r, "line")); err != nil {
		respondCartError(w, log, err, "remove item")
		return
	}
	aqm.Respond(w, http.StatusOK, viewCart(s), nil)
}

func (h *Handler) SubmitCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SubmitCart")
	defer finish()
	log := h.log(r)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	err := s.Submit(r.Context())
	if err != nil && !errors.Is(err, orders.ErrRefetchFailed) {
		respondCartError(w, log, err, "submit order")
		return
	}
	h.deps.Hints.Notify(r.Context(), event.NewOrderSubmittedHint("", s.OrderID()))

	view := viewCart(s)
	if err != nil {
		log.Error("submitted order not refetched", "cart", s.Key(), "error", err)
		view.Warning = "Order sent, refresh to see the new items"
	}
	aqm.Respond(w, http.StatusOK, view, nil)
}

func (h *Handler) SelectCartItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SelectCartItems")
	defer finish()
	log := h.log(r)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		Action string   `json:"action"`
		Keys   []string `json:"keys"`
	}
	if !decode(w, r, &payload) {
		return
	}

	c := s.Cart()
	var err error
	switch strings.ToLower(payload.Action) {
	case "", "toggle":
		for _, key := range payload.Keys {
			if err = c.Toggle(key); err != nil {
				break
			}
		}
	case "select":
		for _, key := range payload.Keys {
			if err = c.Select(key); err != nil {
				break
			}
		}
	case "deselect":
		for _, key := range payload.Keys {
			if err = c.Deselect(key); err != nil {
				break
			}
		}
	case "all":
		c.SelectAllUnpaid()
	case "clear":
		c.ClearSelection()
	default:
		aqm.RespondError(w, http.StatusBadRequest, "Invalid selection action")
		return
	}
	if err != nil {
		respondCartError(w, log, err, "select items")
		return
	}
	aqm.Respond(w, http.StatusOK, viewCart(s), nil)
}

func (h *Handler) PayCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PayCart")
	defer finish()
	log := h.log(r)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		PaymentMethod string `json:"payment_method"`
	}
	if !decode(w, r, &payload) {
		return
	}
	if !h.methodAllowed(r, log, payload.PaymentMethod) {
		aqm.RespondError(w, http.StatusBadRequest, "Payment method not enabled")
		return
	}

	paid, err := s.Pay(r.Context(), payload.PaymentMethod)
	if err != nil && len(paid) == 0 {
		respondCartError(w, log, err, "pay items")
		return
	}

	view := viewCart(s)
	if err != nil {
		view.Warning = api.Message(err)
	}
	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"paid": len(paid),
		"cart": view,
	}, nil)
}

func (h *Handler) CloseCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CloseCart")
	defer finish()
	log := h.log(r)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		PaymentMethod string `json:"payment_method"`
	}
	if !decode(w, r, &payload) {
		return
	}
	if payload.PaymentMethod != "" && !h.methodAllowed(r, log, payload.PaymentMethod) {
		aqm.RespondError(w, http.StatusBadRequest, "Payment method not enabled")
		return
	}

	if err := s.Close(r.Context(), payload.PaymentMethod); err != nil {
		respondCartError(w, log, err, "close order")
		return
	}
	h.deps.Sessions.Remove(s.Key())
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"closed": s.OrderID()}, nil)
}

func (h *Handler) CancelCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CancelCart")
	defer finish()
	log := h.log(r)

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	if !decode(w, r, &payload) {
		return
	}

	if err := s.Cancel(r.Context(), payload.Reason); err != nil {
		respondCartError(w, log, err, "cancel order")
		return
	}
	h.deps.Sessions.Remove(s.Key())
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"cancelled": s.OrderID()}, nil)
}

// methodAllowed checks the method against the payment settings. When the
// settings cannot be read any non-empty method is accepted.
func (h *Handler) methodAllowed(r *http.Request, log aqm.Logger, method string) bool {
	if method == "" {
		return false
	}
	if h.deps.Settings == nil {
		return true
	}
	ps, err := h.deps.Settings.GetPayments(r.Context())
	if err != nil {
		log.Error("cannot load payment settings", "error", err)
		return true
	}
	return ps.Allows(method)
}
