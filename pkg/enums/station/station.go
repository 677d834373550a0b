package station

import "strings"

// Station is the production point a kitchen item is prepared at.
type Station struct {
	Name string
}

func (s Station) Code() string {
	return s.Name
}

func (s Station) Label() string {
	if len(s.Name) == 0 {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + s.Name[1:]
}

type Enum struct {
	Kitchen Station
	Dessert Station
	Bar     Station
	Coffee  Station
	Other   Station
}

var Stations = Enum{
	Kitchen: Station{Name: "kitchen"},
	Dessert: Station{Name: "dessert"},
	Bar:     Station{Name: "bar"},
	Coffee:  Station{Name: "coffee"},
	Other:   Station{Name: "other"},
}

var All = []Station{
	Stations.Kitchen,
	Stations.Dessert,
	Stations.Bar,
	Stations.Coffee,
	Stations.Other,
}

// ByName returns the station for a given name, or nil if not found
func ByName(name string) *Station {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}

// Of resolves the station an item was routed to. Items the backend sent
// without one are cooked in the kitchen; unknown names count as other.
func Of(name string) Station {
	if name == "" {
		return Stations.Kitchen
	}
	if s := ByName(strings.ToLower(name)); s != nil {
		return *s
	}
	return Stations.Other
}
