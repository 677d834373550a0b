package orders

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrExistingItem    = errors.New("item already sent to the backend")
	ErrItemPaid        = errors.New("item already paid")
	ErrNothingSelected = errors.New("no items selected")
	ErrPendingItem     = errors.New("item not sent to the backend yet")
)

const (
	existingPrefix = "existing-"
	pendingPrefix  = "pending-"
)

// ProductRef is the product data a cart line is created from.
type ProductRef struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Line is one cart entry. Pending lines have no ServerID; their LineID is
// generated once and never changes, so keys survive removals of other lines.
type Line struct {
	LineID     uuid.UUID       `json:"line_id"`
	ServerID   string          `json:"server_id,omitempty"`
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Extras     []Extra         `json:"extras,omitempty"`
	Note       string          `json:"note,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	PaidMethod string          `json:"paid_method,omitempty"`
	Submitted  bool            `json:"submitted,omitempty"`
}

// Key identifies the line for selection and payment.
func (l Line) Key() string {
	if l.ServerID != "" {
		return existingPrefix + l.ServerID
	}
	return pendingPrefix + l.LineID.String()
}

func (l Line) Pending() bool {
	return l.ServerID == ""
}

func (l Line) Total() decimal.Decimal {
	return LineTotal(l.Price, l.Quantity, l.Extras)
}

func (l Line) sameDish(productID string, extras []Extra, note string) bool {
	if l.ProductID != productID || l.Note != note || len(l.Extras) != len(extras) {
		return false
	}
	for i := range extras {
		if l.Extras[i].Name != extras[i].Name ||
			l.Extras[i].Quantity != extras[i].Quantity ||
			!l.Extras[i].Price.Equal(extras[i].Price) {
			return false
		}
	}
	return true
}

// Cart holds the existing lines of an order plus the pending lines staff
// added locally, and tracks which lines are selected for payment and paid.
type Cart struct {
	mu       sync.RWMutex
	existing []Line
	pending  []Line
	selected map[string]bool
	paid     map[string]bool
	now      func() time.Time
}

func NewCart() *Cart {
	return &Cart{
		selected: make(map[string]bool),
		paid:     make(map[string]bool),
		now:      time.Now,
	}
}

// LoadExisting replaces the existing lines with the backend's items. Items
// that arrive paid join the paid set; paid keys are never dropped.
func (c *Cart) LoadExisting(items []OrderItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadExistingLocked(items)
}

func (c *Cart) loadExistingLocked(items []OrderItem) {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		line := Line{
			LineID:     uuid.New(),
			ServerID:   it.ID,
			ProductID:  it.ProductID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			Price:      it.Price,
			Extras:     it.Extras,
			Note:       it.Note,
			PaidAt:     it.PaidAt,
			PaidMethod: it.PaidMethod,
		}
		if it.PaidAt != nil {
			c.paid[line.Key()] = true
		}
		lines = append(lines, line)
	}
	c.existing = lines
	c.pruneSelectionLocked()
}

// AddItem adds qty units of a product. An identical pending line that has not
// been submitted yet absorbs the quantity instead of a new line being created.
func (c *Cart) AddItem(p ProductRef, qty int, extras []Extra, note string) (Line, error) {
	if qty <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	for _, e := range extras {
		if e.Quantity <= 0 {
			return Line{}, ErrInvalidQuantity
		}
	}
	note = strings.TrimSpace(note)

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.pending {
		l := &c.pending[i]
		if l.Submitted || c.paid[l.Key()] || !l.sameDish(p.ID, extras, note) {
			continue
		}
		l.Quantity += qty
		return *l, nil
	}

	line := Line{
		LineID:    uuid.New(),
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  qty,
		Price:     p.Price,
		Extras:    append([]Extra(nil), extras...),
		Note:      note,
	}
	c.pending = append(c.pending, line)
	return line, nil
}

// SetQuantity changes a pending line; zero or less removes it.
func (c *Cart) SetQuantity(key string, qty int) error {
	if qty <= 0 {
		return c.Remove(key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.editablePendingLocked(key)
	if err != nil {
		return err
	}
	c.pending[i].Quantity = qty
	return nil
}

// SetNote replaces the kitchen note of a pending line.
func (c *Cart) SetNote(key, note string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.editablePendingLocked(key)
	if err != nil {
		return err
	}
	c.pending[i].Note = strings.TrimSpace(note)
	return nil
}

// Remove drops a pending line.
func (c *Cart) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.editablePendingLocked(key)
	if err != nil {
		return err
	}
	c.pending = append(c.pending[:i], c.pending[i+1:]...)
	delete(c.selected, key)
	return nil
}

func (c *Cart) editablePendingLocked(key string) (int, error) {
	if strings.HasPrefix(key, existingPrefix) {
		if c.indexExistingLocked(key) < 0 {
			return -1, ErrLineNotFound
		}
		return -1, ErrExistingItem
	}
	i := c.indexPendingLocked(key)
	if i < 0 {
		return -1, ErrLineNotFound
	}
	if c.paid[key] {
		return -1, ErrItemPaid
	}
	if c.pending[i].Submitted {
		return -1, ErrExistingItem
	}
	return i, nil
}

func (c *Cart) indexPendingLocked(key string) int {
	for i := range c.pending {
		if c.pending[i].Key() == key {
			return i
		}
	}
	return -1
}

func (c *Cart) indexExistingLocked(key string) int {
	for i := range c.existing {
		if c.existing[i].Key() == key {
			return i
		}
	}
	return -1
}

func (c *Cart) hasLineLocked(key string) bool {
	return c.indexExistingLocked(key) >= 0 || c.indexPendingLocked(key) >= 0
}

// Select marks an existing line for the next payment. Pending lines cannot be
// paid until the backend holds them.
func (c *Cart) Select(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasLineLocked(key) {
		return ErrLineNotFound
	}
	if c.paid[key] {
		return ErrItemPaid
	}
	if c.indexExistingLocked(key) < 0 {
		return ErrPendingItem
	}
	c.selected[key] = true
	return nil
}

// Deselect removes a line from the payment selection. Paid lines are locked.
func (c *Cart) Deselect(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paid[key] {
		return ErrItemPaid
	}
	if !c.hasLineLocked(key) {
		return ErrLineNotFound
	}
	delete(c.selected, key)
	return nil
}

// Toggle flips the selection of an unpaid line.
func (c *Cart) Toggle(key string) error {
	c.mu.RLock()
	selected := c.selected[key]
	c.mu.RUnlock()

	if selected {
		return c.Deselect(key)
	}
	return c.Select(key)
}

// SelectAllUnpaid selects every existing line that is not paid yet.
func (c *Cart) SelectAllUnpaid() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, l := range c.existing {
		key := l.Key()
		if c.paid[key] {
			continue
		}
		c.selected[key] = true
		count++
	}
	return count
}

// ClearSelection drops the payment selection.
func (c *Cart) ClearSelection() {
	c.mu.Lock()
	c.selected = make(map[string]bool)
	c.mu.Unlock()
}

// Selected returns the selected keys in line order.
func (c *Cart) Selected() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var keys []string
	for _, l := range c.linesLocked() {
		if c.selected[l.Key()] {
			keys = append(keys, l.Key())
		}
	}
	return keys
}

// MarkPaid moves the selected existing lines into the paid set and returns
// them. The paid set only grows.
func (c *Cart) MarkPaid(method string) ([]Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var paid []Line
	for i := range c.existing {
		key := c.existing[i].Key()
		if !c.selected[key] || c.paid[key] {
			continue
		}
		c.paid[key] = true
		c.existing[i].PaidAt = &now
		c.existing[i].PaidMethod = method
		paid = append(paid, c.existing[i])
	}

	if len(paid) == 0 {
		return nil, ErrNothingSelected
	}
	c.selected = make(map[string]bool)
	return paid, nil
}

func (c *Cart) IsPaid(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paid[key]
}

func (c *Cart) IsSelected(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected[key]
}

// Lines returns existing lines followed by pending lines.
func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Line(nil), c.linesLocked()...)
}

func (c *Cart) Existing() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Line(nil), c.existing...)
}

func (c *Cart) Pending() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Line(nil), c.pending...)
}

func (c *Cart) linesLocked() []Line {
	lines := make([]Line, 0, len(c.existing)+len(c.pending))
	lines = append(lines, c.existing...)
	return append(lines, c.pending...)
}

// Total sums every line, existing and pending.
func (c *Cart) Total() decimal.Decimal {
	return c.sum(func(string) bool { return true })
}

func (c *Cart) PaidTotal() decimal.Decimal {
	return c.sum(func(key string) bool { return c.paid[key] })
}

func (c *Cart) DueTotal() decimal.Decimal {
	return c.sum(func(key string) bool { return !c.paid[key] })
}

func (c *Cart) SelectedTotal() decimal.Decimal {
	return c.sum(func(key string) bool { return c.selected[key] })
}

func (c *Cart) sum(include func(key string) bool) decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := decimal.Zero
	for _, l := range c.linesLocked() {
		if include(l.Key()) {
			total = total.Add(l.Total())
		}
	}
	return total
}

// submittable returns the pending lines that still need to be sent.
func (c *Cart) submittable() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var lines []Line
	for _, l := range c.pending {
		if !l.Submitted {
			lines = append(lines, l)
		}
	}
	return lines
}

func (c *Cart) markSubmitted(lines []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sent := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		sent[l.LineID] = true
	}
	for i := range c.pending {
		if sent[c.pending[i].LineID] {
			c.pending[i].Submitted = true
		}
	}
}

// applyRefetch loads the backend's items and drops the submitted pending
// lines they confirm. It returns how many submitted lines are still waiting.
//
// A line is confirmed when an item echoes its client line id. Items without
// one confirm the remaining submitted lines only when at least as many of
// them are new since the last load, so a stale or partial list never drops a
// line the backend may not hold.
func (c *Cart) applyRefetch(items []OrderItem) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	known := make(map[string]bool, len(c.existing))
	for _, l := range c.existing {
		known[l.ServerID] = true
	}
	c.loadExistingLocked(items)

	echoed := make(map[string]bool)
	fresh := 0
	for _, it := range items {
		switch {
		case it.ClientLineID != "":
			echoed[it.ClientLineID] = true
		case !known[it.ID]:
			fresh++
		}
	}

	kept := c.pending[:0]
	waiting := 0
	for _, l := range c.pending {
		if l.Submitted && echoed[l.LineID.String()] {
			delete(c.selected, l.Key())
			continue
		}
		if l.Submitted {
			waiting++
		}
		kept = append(kept, l)
	}
	c.pending = kept

	if waiting == 0 || fresh < waiting {
		return waiting
	}
	kept = c.pending[:0]
	for _, l := range c.pending {
		if l.Submitted {
			delete(c.selected, l.Key())
			continue
		}
		kept = append(kept, l)
	}
	c.pending = kept
	return 0
}

func (c *Cart) pruneSelectionLocked() {
	for key := range c.selected {
		if !c.hasLineLocked(key) {
			delete(c.selected, key)
		}
	}
}
