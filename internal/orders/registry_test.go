package orders

import (
	"strings"
	"testing"

	"github.com/appetiteclub/pos/pkg/enums/ordertype"
)

func TestRegistryTable(t *testing.T) {
	r := NewRegistry(nil, nil)

	first, err := r.Table(3)
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	again, _ := r.Table(3)
	if first != again {
		t.Error("Table() created a second session for the same table")
	}
	if first.Key() != "table-3" {
		t.Errorf("Key() = %s, want table-3", first.Key())
	}

	if _, err := r.Table(0); err == nil {
		t.Error("Table(0) error = nil, want error")
	}
}

func TestRegistryOpen(t *testing.T) {
	tests := []struct {
		name     string
		typ      ordertype.Type
		customer *Customer
		wantErr  bool
	}{
		{name: "takeaway", typ: ordertype.Types.Takeaway},
		{name: "packet", typ: ordertype.Types.Packet},
		{name: "phoneWithCustomer", typ: ordertype.Types.Phone, customer: &Customer{Name: "Ana", Phone: "555"}},
		{name: "phoneWithoutPhone", typ: ordertype.Types.Phone, customer: &Customer{Name: "Ana"}, wantErr: true},
		{name: "phoneNoCustomer", typ: ordertype.Types.Phone, wantErr: true},
		{name: "table", typ: ordertype.Types.Table, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(nil, nil)
			s, err := r.Open(tt.typ, tt.customer)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !strings.HasPrefix(s.Key(), tt.typ.Code()+"-") {
				t.Errorf("Key() = %s, want %s- prefix", s.Key(), tt.typ.Code())
			}
			if got, ok := r.Get(s.Key()); !ok || got != s {
				t.Error("Get() did not return the opened session")
			}
		})
	}
}

func TestRegistryResume(t *testing.T) {
	r := NewRegistry(nil, nil)

	s, err := r.Resume(Order{ID: "o1", Type: "table", TableNumber: 9})
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if s.Key() != "table-9" || s.OrderID() != "o1" {
		t.Errorf("Resume() = %s/%s, want table-9/o1", s.Key(), s.OrderID())
	}

	p, err := r.Resume(Order{ID: "o2", Type: "packet"})
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if p.Key() != "packet-o2" {
		t.Errorf("Key() = %s, want packet-o2", p.Key())
	}
	again, _ := r.Resume(Order{ID: "o2", Type: "packet"})
	if again != p {
		t.Error("Resume() created a second session for the same order")
	}

	if _, err := r.Resume(Order{ID: "o3", Type: "drone"}); err == nil {
		t.Error("Resume(unknown type) error = nil, want error")
	}
}

func TestRegistryGetAndRemove(t *testing.T) {
	r := NewRegistry(nil, nil)

	s, ok := r.Get("table-12")
	if !ok || s.Table() != 12 {
		t.Fatalf("Get(table-12) = %v, %v", s, ok)
	}
	if _, ok := r.Get("table-x"); ok {
		t.Error("Get(table-x) found a session")
	}
	if _, ok := r.Get("takeaway-nope"); ok {
		t.Error("Get(unknown) found a session")
	}

	r.Table(2)
	if got := r.Keys(); len(got) != 2 || got[0] != "table-12" || got[1] != "table-2" {
		t.Errorf("Keys() = %v, want [table-12 table-2]", got)
	}

	r.Remove("table-12")
	if got := r.Keys(); len(got) != 1 {
		t.Errorf("Keys() after Remove = %v", got)
	}
}
