package kitchenstatus

import (
	"strings"
)

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	if len(s.Name) == 0 {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + s.Name[1:]
}

// Next returns the status a kitchen item moves to from s, or false when s is final.
func (s Status) Next() (Status, bool) {
	for i, st := range All {
		if st.Name == s.Name && i+1 < len(All) {
			return All[i+1], true
		}
	}
	return Status{}, false
}

// Active reports whether items in this status still belong on the kitchen queue.
func (s Status) Active() bool {
	return s.Name != Statuses.Delivered.Name
}

type Enum struct {
	New       Status
	Preparing Status
	Ready     Status
	Delivered Status
}

var Statuses = Enum{
	New:       Status{Name: "new"},
	Preparing: Status{Name: "preparing"},
	Ready:     Status{Name: "ready"},
	Delivered: Status{Name: "delivered"},
}

// All lists statuses in workflow order.
var All = []Status{
	Statuses.New,
	Statuses.Preparing,
	Statuses.Ready,
	Statuses.Delivered,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}
