package ordertype

import "strings"

type Type struct {
	Name string
}

func (t Type) Code() string {
	return t.Name
}

func (t Type) Label() string {
	if len(t.Name) == 0 {
		return ""
	}
	return strings.ToUpper(t.Name[:1]) + t.Name[1:]
}

// DineIn reports whether orders of this type are bound to a table.
func (t Type) DineIn() bool {
	return t.Name == Types.Table.Name
}

// NeedsCustomer reports whether orders of this type carry customer contact data.
func (t Type) NeedsCustomer() bool {
	return t.Name == Types.Phone.Name
}

type Enum struct {
	Table    Type
	Phone    Type
	Packet   Type
	Takeaway Type
}

var Types = Enum{
	Table:    Type{Name: "table"},
	Phone:    Type{Name: "phone"},
	Packet:   Type{Name: "packet"},
	Takeaway: Type{Name: "takeaway"},
}

var All = []Type{
	Types.Table,
	Types.Phone,
	Types.Packet,
	Types.Takeaway,
}

// ByName returns the order type for a given name, or nil if not found
func ByName(name string) *Type {
	for _, t := range All {
		if t.Name == name {
			return &t
		}
	}
	return nil
}
