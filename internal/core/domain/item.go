package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID            int64
	Name          string
	Quantity      int
	Location      string
	Category      string
	Description   string
	MinStockLevel int
	Price         decimal.Decimal
	SupplierID    *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock reports whether the item is at or below its minimum stock level.
func (i Item) IsLowStock() bool {
	return i.Quantity <= i.MinStockLevel
}

func (i Item) Draft() ItemDraft {
	return ItemDraft{
		Name:          i.Name,
		Quantity:      i.Quantity,
		Location:      i.Location,
		Category:      i.Category,
		Description:   i.Description,
		MinStockLevel: i.MinStockLevel,
		Price:         i.Price,
		SupplierID:    i.SupplierID,
	}
}

func (i Item) Basic() BasicItem {
	return BasicItem{ID: i.ID, Name: i.Name, Quantity: i.Quantity, Location: i.Location}
}

// ItemDraft is the caller-supplied field set of an item that has no identifier yet.
type ItemDraft struct {
	Name          string
	Quantity      int
	Location      string
	Category      string
	Description   string
	MinStockLevel int
	Price         decimal.Decimal
	SupplierID    *int64
}

func (d ItemDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(d.Location) == "" {
		return &ValidationError{Field: "location", Reason: "is required"}
	}
	if d.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if d.MinStockLevel < 0 {
		return &ValidationError{Field: "min_stock_level", Reason: "must not be negative"}
	}
	if d.Price.IsNegative() {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if !d.Price.Equal(d.Price.Round(2)) {
		return &ValidationError{Field: "price", Reason: "must have at most two decimal places"}
	}
	if d.SupplierID != nil && *d.SupplierID <= 0 {
		return &ValidationError{Field: "supplier_id", Reason: "must be a positive identifier"}
	}
	return nil
}

// BasicItem is the minimal item view: no category, pricing or supplier data.
type BasicItem struct {
	ID       int64
	Name     string
	Quantity int
	Location string
}

func NewBasicDraft(name string, quantity int, location string) ItemDraft {
	return ItemDraft{Name: name, Quantity: quantity, Location: location, Price: decimal.Zero}
}
