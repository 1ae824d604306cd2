package model

import "fmt"

// FilterHasMissing selects items with a recorded missing quantity,
// independently of their status.
const FilterHasMissing = "has-missing"

// Filter is the inventory view selection. At most one of Status and
// HasMissing is set; the zero Filter selects everything.
type Filter struct {
	Status     Status `json:"status,omitempty"`
	HasMissing bool   `json:"has_missing,omitempty"`
}

// ParseFilter builds a Filter from the status and special query values.
// Asking for both at once is an error since the two are exclusive.
func ParseFilter(status, special string) (Filter, error) {
	if status != "" && special != "" {
		return Filter{}, fmt.Errorf("status and %s filters are mutually exclusive", FilterHasMissing)
	}

	var f Filter
	if status != "" {
		st, err := ParseStatus(status)
		if err != nil {
			return Filter{}, err
		}
		f.Status = st
	}
	if special != "" {
		if special != FilterHasMissing {
			return Filter{}, fmt.Errorf("unknown filter %q", special)
		}
		f.HasMissing = true
	}
	return f, nil
}

// Toggle selects status, or clears it when it is already selected.
// Either way the has-missing filter is cleared.
func (f Filter) Toggle(status Status) Filter {
	if f.Status == status {
		return Filter{}
	}
	return Filter{Status: status}
}

// ToggleHasMissing flips the has-missing filter and clears any status.
func (f Filter) ToggleHasMissing() Filter {
	return Filter{HasMissing: !f.HasMissing}
}

// IsZero reports whether no filter is active.
func (f Filter) IsZero() bool {
	return f.Status == "" && !f.HasMissing
}

// Match reports whether it passes the filter.
func (f Filter) Match(it InventoryItem) bool {
	if f.HasMissing {
		return it.HasMissing()
	}
	if f.Status == "" {
		return true
	}
	return it.Status() == f.Status
}

// Apply returns the items that pass the filter, preserving order.
func (f Filter) Apply(items []InventoryItem) []InventoryItem {
	if f.IsZero() {
		return items
	}
	out := make([]InventoryItem, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Summary aggregates an inventory for the overview panel.
type Summary struct {
	Total      int            `json:"total"`
	ByStatus   map[Status]int `json:"by_status"`
	HasMissing int            `json:"has_missing"`
	Requested  int            `json:"requested"`
	Received   int            `json:"received"`
	Missing    int            `json:"missing"`
}

// Summarize counts items per status and totals their quantities.
func Summarize(items []InventoryItem) Summary {
	s := Summary{ByStatus: make(map[Status]int, len(Statuses))}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, it := range items {
		s.Total++
		s.ByStatus[it.Status()]++
		if it.HasMissing() {
			s.HasMissing++
		}
		s.Requested += it.Requested
		s.Received += it.Received
		s.Missing += it.Missing
	}
	return s
}
