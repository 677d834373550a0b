package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/appetiteclub/pos/internal/api"
	"github.com/shopspring/decimal"
)

// ExtraOption is an add-on a product can be ordered with.
type ExtraOption struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Extras    []ExtraOption   `json:"extras,omitempty"`
	Available bool            `json:"available"`
}

// Extra returns the named add-on, if the product offers it.
func (p Product) Extra(name string) (ExtraOption, bool) {
	for _, e := range p.Extras {
		if e.Name == name {
			return e, true
		}
	}
	return ExtraOption{}, false
}

// Category groups the products of one menu section.
type Category struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// Menu is the product list as fetched, plus lookup helpers.
type Menu struct {
	products []Product
	byID     map[string]int
}

func NewMenu(products []Product) *Menu {
	m := &Menu{
		products: products,
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range products {
		m.byID[p.ID] = i
	}
	return m
}

func (m *Menu) Products() []Product {
	return m.products
}

func (m *Menu) Find(id string) (Product, bool) {
	i, ok := m.byID[id]
	if !ok {
		return Product{}, false
	}
	return m.products[i], true
}

// ByCategory returns available products grouped by category, categories
// sorted by name and products keeping menu order.
func (m *Menu) ByCategory() []Category {
	index := make(map[string]int)
	var categories []Category
	for _, p := range m.products {
		if !p.Available {
			continue
		}
		i, ok := index[p.Category]
		if !ok {
			i = len(categories)
			index[p.Category] = i
			categories = append(categories, Category{Name: p.Category})
		}
		categories[i].Products = append(categories[i].Products, p)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories
}

// DataAccess wraps the product endpoints.
type DataAccess struct {
	client *api.Client
}

func NewDataAccess(client *api.Client) *DataAccess {
	return &DataAccess{client: client}
}

func (da *DataAccess) ListProducts(ctx context.Context) ([]Product, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("product client not configured")
	}

	var products []Product
	if err := da.client.Get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// LoadMenu fetches the products and indexes them.
func (da *DataAccess) LoadMenu(ctx context.Context) (*Menu, error) {
	products, err := da.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return NewMenu(products), nil
}
