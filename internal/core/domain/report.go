package domain

import "github.com/shopspring/decimal"

type StockStatus string

const (
	StockStatusOK  StockStatus = "OK"
	StockStatusLow StockStatus = "LOW STOCK"
)

func StatusOf(item Item) StockStatus {
	if item.IsLowStock() {
		return StockStatusLow
	}
	return StockStatusOK
}

type InventorySummaryRow struct {
	ID            int64
	Name          string
	Quantity      int
	Location      string
	Category      string
	Price         decimal.Decimal
	MinStockLevel int
	Status        StockStatus
}

type LowStockRow struct {
	ID            int64
	Name          string
	Quantity      int
	MinStockLevel int
	Deficit       int // MinStockLevel - Quantity, never negative
	Category      string
	Location      string
}

type SupplierSummaryRow struct {
	ID            int64
	Name          string
	Contact       string
	Address       string
	ItemsSupplied int
}

type CategoryAnalysisRow struct {
	Category      string
	TotalItems    int
	TotalQuantity int
	TotalValue    decimal.Decimal
	LowStockCount int
}

// ReportSnapshot holds every report derived from a single read of items and suppliers.
type ReportSnapshot struct {
	Inventory  []InventorySummaryRow
	LowStock   []LowStockRow
	Suppliers  []SupplierSummaryRow
	Categories []CategoryAnalysisRow
}
