package model

import "fmt"

// Status is the display state derived from an inventory item's fields.
type Status string

// Item statuses, in reverse priority order.
const (
	StatusMissing  Status = "missing"
	StatusComplete Status = "complete"
	StatusAssigned Status = "assigned"
	StatusReturned Status = "returned"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusMissing, StatusComplete, StatusAssigned, StatusReturned}

// ParseStatus converts a query value into a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Status derives the display state. The stored flags are not mutually
// exclusive, so the order of the checks decides: returned, then assigned,
// then complete, else missing.
func (it InventoryItem) Status() Status {
	if it.Returned {
		return StatusReturned
	}
	if it.Verified {
		return StatusAssigned
	}
	if it.Received >= it.Requested {
		return StatusComplete
	}
	return StatusMissing
}

// HasMissing reports whether an incomplete return was recorded.
func (it InventoryItem) HasMissing() bool {
	return it.Missing > 0
}
