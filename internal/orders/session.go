package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/appetiteclub/pos/pkg/enums/ordertype"
	"github.com/aquamarinepk/aqm"
)

var (
	ErrNothingToSubmit = errors.New("no pending items to submit")
	ErrNoOrder         = errors.New("no open order")
)

// ErrRefetchFailed means the backend accepted a submit but the order could not
// be reloaded; the submitted lines stay pending until it can.
var ErrRefetchFailed = errors.New("order submitted but not reloaded")

// Session is the order-taking state of one table or one off-table order: the
// backend order it writes to and the cart shown to staff.
type Session struct {
	mu        sync.Mutex
	key       string
	orderType ordertype.Type
	table     int
	customer  *Customer
	orderID   string
	cart      *Cart
	da        *DataAccess
	logger    aqm.Logger
}

// NewTableSession creates the session for a dine-in table.
func NewTableSession(da *DataAccess, table int, logger aqm.Logger) *Session {
	return newSession(da, TableKey(table), ordertype.Types.Table, table, nil, logger)
}

// NewSession creates a session for a phone, packet or takeaway order.
func NewSession(da *DataAccess, key string, t ordertype.Type, customer *Customer, logger aqm.Logger) *Session {
	return newSession(da, key, t, 0, customer, logger)
}

func newSession(da *DataAccess, key string, t ordertype.Type, table int, customer *Customer, logger aqm.Logger) *Session {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Session{
		key:       key,
		orderType: t,
		table:     table,
		customer:  customer,
		cart:      NewCart(),
		da:        da,
		logger:    logger.With("cart", key),
	}
}

func (s *Session) Key() string {
	return s.key
}

func (s *Session) Type() ordertype.Type {
	return s.orderType
}

func (s *Session) Table() int {
	return s.table
}

func (s *Session) Cart() *Cart {
	return s.cart
}

func (s *Session) OrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderID
}

// SetOrderID binds the session to an order that already exists.
func (s *Session) SetOrderID(id string) {
	s.mu.Lock()
	s.orderID = id
	s.mu.Unlock()
}

func (s *Session) Customer() *Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

func (s *Session) SetCustomer(c *Customer) {
	s.mu.Lock()
	s.customer = c
	s.mu.Unlock()
}

// Refresh reloads the authoritative items of the session's order. A dine-in
// session without an order id looks up the table's open order first.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	_, err := s.reloadLocked(ctx)
	return err
}

// reloadLocked refetches the order and reports how many submitted lines the
// backend has not confirmed yet.
func (s *Session) reloadLocked(ctx context.Context) (int, error) {
	if s.orderID == "" && s.orderType.DineIn() {
		open, err := s.da.ListOrders(ctx, Filter{
			Status:      StatusOpen,
			Type:        s.orderType.Code(),
			TableNumber: s.table,
		})
		if err != nil {
			return 0, fmt.Errorf("find open order: %w", err)
		}
		if len(open) > 0 {
			s.orderID = open[0].ID
		}
	}

	if s.orderID == "" {
		return s.cart.applyRefetch(nil), nil
	}

	items, err := s.da.ListOrderItems(ctx, s.orderID)
	if err != nil {
		return 0, fmt.Errorf("load order items: %w", err)
	}
	return s.cart.applyRefetch(items), nil
}

// Submit sends the pending lines and then refetches the order, bypassing the
// response cache. Lines only become existing once that refetch confirms them;
// until then they stay pending, flagged as submitted, are not sent again, and
// Submit returns an error wrapping ErrRefetchFailed.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.cart.submittable()
	if len(lines) == 0 {
		return ErrNothingToSubmit
	}

	payload := CreateOrderRequest{
		OrderID:  s.orderID,
		Type:     s.orderType.Code(),
		Customer: s.customer,
		Items:    make([]SubmitItem, 0, len(lines)),
	}
	if s.orderType.DineIn() {
		payload.TableNumber = s.table
	}
	for _, l := range lines {
		payload.Items = append(payload.Items, SubmitItem{
			ClientLineID: l.LineID.String(),
			ProductID:    l.ProductID,
			Name:         l.Name,
			Quantity:     l.Quantity,
			Price:        l.Price,
			Extras:       l.Extras,
			Note:         l.Note,
		})
	}

	order, err := s.da.CreateOrder(ctx, payload)
	if err != nil {
		return fmt.Errorf("submit order: %w", err)
	}
	s.cart.markSubmitted(lines)
	if order != nil && order.ID != "" {
		s.orderID = order.ID
	}
	s.logger.Info("order submitted", "order_id", s.orderID, "items", len(lines))

	waiting, err := s.reloadLocked(api.WithoutCache(ctx))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefetchFailed, err)
	}
	if waiting > 0 {
		return fmt.Errorf("%w: %d items missing from order %s", ErrRefetchFailed, waiting, s.orderID)
	}
	return nil
}

// Pay marks the selected existing lines paid and records them on the backend.
// The local paid set is not rolled back when the backend call fails.
func (s *Session) Pay(ctx context.Context, method string) ([]Line, error) {
	if method == "" {
		return nil, fmt.Errorf("missing payment method")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	paid, err := s.cart.MarkPaid(method)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(paid))
	for _, l := range paid {
		ids = append(ids, l.ServerID)
	}
	if len(ids) == 0 || s.orderID == "" {
		return paid, nil
	}

	if err := s.da.Pay(ctx, s.orderID, PayRequest{ItemIDs: ids, PaymentMethod: method}); err != nil {
		s.logger.Error("payment not recorded by backend", "order_id", s.orderID, "items", len(ids), "error", err)
		return paid, fmt.Errorf("record payment: %w", err)
	}
	return paid, nil
}

// Close settles the order on the backend.
func (s *Session) Close(ctx context.Context, method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.orderID == "" {
		return ErrNoOrder
	}
	if err := s.da.Close(ctx, s.orderID, method); err != nil {
		return fmt.Errorf("close order: %w", err)
	}
	s.logger.Info("order closed", "order_id", s.orderID, "payment_method", method)
	return nil
}

// Cancel cancels the order on the backend.
func (s *Session) Cancel(ctx context.Context, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.orderID == "" {
		return ErrNoOrder
	}
	if err := s.da.Cancel(ctx, s.orderID, reason); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	s.logger.Info("order cancelled", "order_id", s.orderID, "reason", reason)
	return nil
}
