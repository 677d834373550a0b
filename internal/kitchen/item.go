package kitchen

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/appetiteclub/pos/internal/orders"
	"github.com/appetiteclub/pos/pkg/enums/kitchenstatus"
	"github.com/appetiteclub/pos/pkg/enums/ordertype"
	"github.com/appetiteclub/pos/pkg/enums/station"
)

// KitchenOrderItem is an order item as the kitchen sees it.
type KitchenOrderItem struct {
	ID            string         `json:"id"`
	OrderID       string         `json:"order_id"`
	OrderType     string         `json:"order_type"`
	TableNumber   int            `json:"table_number,omitempty"`
	ProductName   string         `json:"product_name"`
	Quantity      int            `json:"quantity"`
	Extras        []orders.Extra `json:"extras,omitempty"`
	Note          string         `json:"note,omitempty"`
	Station       string         `json:"station,omitempty"`
	KitchenStatus string         `json:"kitchen_status"`
	CreatedAt     time.Time      `json:"created_at"`
	StartedAt     *time.Time     `json:"started_at,omitempty"`
	ReadyAt       *time.Time     `json:"ready_at,omitempty"`
	DeliveredAt   *time.Time     `json:"delivered_at,omitempty"`
}

// Status returns the parsed kitchen status. Unknown values read as new.
func (i KitchenOrderItem) Status() kitchenstatus.Status {
	if s := kitchenstatus.ByName(i.KitchenStatus); s != nil {
		return *s
	}
	return kitchenstatus.Statuses.New
}

// ProductionStation is where the item is prepared.
func (i KitchenOrderItem) ProductionStation() station.Station {
	return station.Of(i.Station)
}

// GroupKey is the queue group an item belongs to: table-<number> for dine-in
// items and <type>-<orderId> for everything else.
func GroupKey(item KitchenOrderItem) string {
	if t := ordertype.ByName(item.OrderType); t != nil && t.DineIn() {
		return "table-" + strconv.Itoa(item.TableNumber)
	}
	return item.OrderType + "-" + item.OrderID
}

// Group is one card on the kitchen queue.
type Group struct {
	Key         string             `json:"key"`
	Label       string             `json:"label"`
	OrderType   string             `json:"order_type"`
	TableNumber int                `json:"table_number,omitempty"`
	Oldest      time.Time          `json:"oldest"`
	Items       []KitchenOrderItem `json:"items"`
	Compiled    []CompiledLine     `json:"compiled,omitempty"`
}

// GroupItems buckets items by GroupKey. Groups are ordered by their oldest
// item; items keep their input order inside a group.
func GroupItems(items []KitchenOrderItem) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, item := range items {
		key := GroupKey(item)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Key:         key,
				Label:       groupLabel(item),
				OrderType:   item.OrderType,
				TableNumber: item.TableNumber,
				Oldest:      item.CreatedAt,
			})
		}
		g := &groups[i]
		g.Items = append(g.Items, item)
		if item.CreatedAt.Before(g.Oldest) {
			g.Oldest = item.CreatedAt
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Oldest.Before(groups[b].Oldest)
	})
	return groups
}

func groupLabel(item KitchenOrderItem) string {
	t := ordertype.ByName(item.OrderType)
	if t == nil {
		return item.OrderType + " " + shortID(item.OrderID)
	}
	if t.DineIn() {
		return "Table " + strconv.Itoa(item.TableNumber)
	}
	return t.Label() + " " + shortID(item.OrderID)
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}

// CompiledLine is several identical kitchen items shown as one.
type CompiledLine struct {
	ProductName   string         `json:"product_name"`
	Extras        []orders.Extra `json:"extras,omitempty"`
	Note          string         `json:"note,omitempty"`
	KitchenStatus string         `json:"kitchen_status"`
	Quantity      int            `json:"quantity"`
	ItemIDs       []string       `json:"item_ids"`
}

// Compile merges items with the same product, extras, note and status,
// summing their quantities. Lines keep the order of their first item.
func Compile(items []KitchenOrderItem) []CompiledLine {
	index := make(map[string]int)
	var lines []CompiledLine

	for _, item := range items {
		key := compileKey(item)
		i, ok := index[key]
		if !ok {
			index[key] = len(lines)
			lines = append(lines, CompiledLine{
				ProductName:   item.ProductName,
				Extras:        item.Extras,
				Note:          item.Note,
				KitchenStatus: item.KitchenStatus,
				Quantity:      item.Quantity,
				ItemIDs:       []string{item.ID},
			})
			continue
		}
		lines[i].Quantity += item.Quantity
		lines[i].ItemIDs = append(lines[i].ItemIDs, item.ID)
	}
	return lines
}

func compileKey(item KitchenOrderItem) string {
	var b strings.Builder
	b.WriteString(item.ProductName)
	b.WriteByte(0)
	b.WriteString(item.Note)
	b.WriteByte(0)
	b.WriteString(item.KitchenStatus)
	for _, e := range item.Extras {
		b.WriteByte(0)
		b.WriteString(e.Name)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(e.Quantity))
		b.WriteByte(':')
		b.WriteString(e.Price.String())
	}
	return b.String()
}

// Elapsed is how long an item has been in its current stage.
func Elapsed(item KitchenOrderItem, now time.Time) time.Duration {
	since := item.CreatedAt
	switch item.Status() {
	case kitchenstatus.Statuses.Preparing:
		if item.StartedAt != nil {
			since = *item.StartedAt
		}
	case kitchenstatus.Statuses.Ready:
		if item.ReadyAt != nil {
			since = *item.ReadyAt
		}
	case kitchenstatus.Statuses.Delivered:
		if item.DeliveredAt != nil {
			return item.DeliveredAt.Sub(item.CreatedAt)
		}
	}
	if now.Before(since) {
		return 0
	}
	return now.Sub(since)
}
