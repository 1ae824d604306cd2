package model

import "time"

// InventoryItem is one approved equipment request tracked through its
// lifecycle. The booleans and quantities are independent columns; Status
// derives the single display state from them.
type InventoryItem struct {
	ID         string    `json:"id"`
	ItemName   string    `json:"item_name"`
	Requested  int       `json:"requested"`
	OnHand     int       `json:"on_hand"`
	Received   int       `json:"received"`
	Missing    int       `json:"missing"`
	Verified   bool      `json:"verified"`
	Returned   bool      `json:"returned"`
	Custodian  string    `json:"custodian"`
	Location   string    `json:"location"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Expendable bool      `json:"expendable"`
	CreatedAt  time.Time `json:"created_at"`
}

// InventoryView is an item together with its derived status, as served to
// clients.
type InventoryView struct {
	InventoryItem
	Status Status `json:"status"`
}

// View attaches the derived status.
func (it InventoryItem) View() InventoryView {
	return InventoryView{InventoryItem: it, Status: it.Status()}
}

// RequestItem is a pending request awaiting an admin decision.
type RequestItem struct {
	ID         string    `json:"id"`
	ItemName   string    `json:"item_name"`
	Requested  int       `json:"requested"`
	Custodian  string    `json:"custodian"`
	Location   string    `json:"location"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Expendable bool      `json:"expendable"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToInventory copies the request into a fresh inventory record under id.
// Post-approval fields always start from zero, whatever the request held.
func (r RequestItem) ToInventory(id string) InventoryItem {
	return InventoryItem{
		ID:         id,
		ItemName:   r.ItemName,
		Requested:  r.Requested,
		Custodian:  r.Custodian,
		Location:   r.Location,
		Email:      r.Email,
		Phone:      r.Phone,
		Expendable: r.Expendable,
		CreatedAt:  r.CreatedAt,
	}
}

// ItemEdit holds the fields an edit overwrites in bulk.
type ItemEdit struct {
	ItemName   string `json:"item_name"`
	Requested  int    `json:"requested"`
	OnHand     int    `json:"on_hand"`
	Received   int    `json:"received"`
	Custodian  string `json:"custodian"`
	Location   string `json:"location"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Expendable bool   `json:"expendable"`
}
