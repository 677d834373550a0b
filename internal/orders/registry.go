package orders

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/appetiteclub/pos/pkg/enums/ordertype"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// TableKey is the session key of a dine-in table.
func TableKey(table int) string {
	return "table-" + strconv.Itoa(table)
}

// Registry keeps the open sessions of a terminal, one per table or order.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	da       *DataAccess
	logger   aqm.Logger
}

func NewRegistry(da *DataAccess, logger aqm.Logger) *Registry {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		da:       da,
		logger:   logger,
	}
}

// Table returns the session of a table, creating it on first use.
func (r *Registry) Table(table int) (*Session, error) {
	if table <= 0 {
		return nil, fmt.Errorf("invalid table number %d", table)
	}
	key := TableKey(table)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		return s, nil
	}
	s := NewTableSession(r.da, table, r.logger)
	r.sessions[key] = s
	return s, nil
}

// Open starts a session for an off-table order.
func (r *Registry) Open(t ordertype.Type, customer *Customer) (*Session, error) {
	if t.DineIn() {
		return nil, fmt.Errorf("table orders are opened with Table")
	}
	if ordertype.ByName(t.Code()) == nil {
		return nil, fmt.Errorf("unknown order type %q", t.Code())
	}
	if t.NeedsCustomer() && (customer == nil || strings.TrimSpace(customer.Phone) == "") {
		return nil, fmt.Errorf("%s orders need a customer phone", t.Code())
	}

	key := t.Code() + "-" + uuid.NewString()
	s := NewSession(r.da, key, t, customer, r.logger)

	r.mu.Lock()
	r.sessions[key] = s
	r.mu.Unlock()
	return s, nil
}

// Resume binds a session to an existing backend order.
func (r *Registry) Resume(order Order) (*Session, error) {
	t := ordertype.ByName(order.Type)
	if t == nil {
		return nil, fmt.Errorf("unknown order type %q", order.Type)
	}
	if t.DineIn() {
		s, err := r.Table(order.TableNumber)
		if err != nil {
			return nil, err
		}
		s.SetOrderID(order.ID)
		return s, nil
	}

	key := t.Code() + "-" + order.ID

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		return s, nil
	}
	s := NewSession(r.da, key, *t, order.Customer, r.logger)
	s.SetOrderID(order.ID)
	r.sessions[key] = s
	return s, nil
}

// Get looks a session up by key. Table keys create the session lazily.
func (r *Registry) Get(key string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[key]
	r.mu.RUnlock()
	if ok {
		return s, true
	}

	if n, found := strings.CutPrefix(key, "table-"); found {
		table, err := strconv.Atoi(n)
		if err == nil && table > 0 {
			s, err := r.Table(table)
			return s, err == nil
		}
	}
	return nil, false
}

// Remove forgets a session, typically after close or cancel.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	delete(r.sessions, key)
	r.mu.Unlock()
}

// Keys lists the open session keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.sessions))
	for k := range r.sessions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
