package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/rl1809/warehouse/internal/core/domain"
)

const seedWorkers = 4

type SeedResult struct {
	Suppliers int
	Added     int32
	Failed    int32
}

type seedItem struct {
	draft    domain.ItemDraft
	supplier int // index into demoSuppliers, -1 for none
}

var demoSuppliers = []domain.SupplierDraft{
	{Name: "Acme Fasteners", Contact: "sales@acme.example", Address: "12 Industrial Way"},
	{Name: "Northwind Tools", Contact: "+1 555 0100", Address: "400 Harbor Rd"},
	{Name: "Globex Packaging", Contact: "orders@globex.example", Address: "9 Depot St"},
}

var demoItems = []seedItem{
	{domain.ItemDraft{Name: "Hex Bolt M6", Quantity: 5, Location: "A1", Category: "Hardware", Description: "Zinc plated", MinStockLevel: 10, Price: decimal.RequireFromString("0.50")}, 0},
	{domain.ItemDraft{Name: "Hex Nut M6", Quantity: 240, Location: "A2", Category: "Hardware", MinStockLevel: 50, Price: decimal.RequireFromString("0.10")}, 0},
	{domain.ItemDraft{Name: "Washer M6", Quantity: 40, Location: "A3", Category: "Hardware", MinStockLevel: 40, Price: decimal.RequireFromString("0.05")}, 0},
	{domain.ItemDraft{Name: "Cordless Drill", Quantity: 2, Location: "B1", Category: "Tools", Description: "18V", MinStockLevel: 3, Price: decimal.RequireFromString("89.99")}, 1},
	{domain.ItemDraft{Name: "Claw Hammer", Quantity: 14, Location: "B2", Category: "Tools", MinStockLevel: 5, Price: decimal.RequireFromString("12.75")}, 1},
	{domain.ItemDraft{Name: "Packing Tape", Quantity: 0, Location: "C1", Category: "Packaging", MinStockLevel: 12, Price: decimal.RequireFromString("3.00")}, 2},
	{domain.ItemDraft{Name: "Shipping Box L", Quantity: 80, Location: "C2", Category: "Packaging", MinStockLevel: 20, Price: decimal.RequireFromString("1.20")}, 2},
	{domain.ItemDraft{Name: "Pallet Jack", Quantity: 1, Location: "D1", MinStockLevel: 0, Price: decimal.RequireFromString("349.00")}, -1},
}

// Seed loads the demo dataset through the domain services. Suppliers go in
// first so items can reference their generated ids.
func Seed(ctx context.Context, svc *Services) (SeedResult, error) {
	var result SeedResult

	supplierIDs := make([]int64, len(demoSuppliers))
	for i, draft := range demoSuppliers {
		id, err := svc.Suppliers.AddSupplier(ctx, draft)
		if err != nil {
			return result, fmt.Errorf("seed supplier %q: %w", draft.Name, err)
		}
		supplierIDs[i] = id
		result.Suppliers++
	}

	jobs := make(chan domain.ItemDraft)
	var added, failed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < seedWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for draft := range jobs {
				if _, err := svc.Inventory.AddItem(ctx, draft); err != nil {
					failed.Add(1)
					continue
				}
				added.Add(1)
			}
		}()
	}

	for _, it := range demoItems {
		draft := it.draft
		if it.supplier >= 0 {
			id := supplierIDs[it.supplier]
			draft.SupplierID = &id
		}
		jobs <- draft
	}
	close(jobs)
	wg.Wait()

	result.Added = added.Load()
	result.Failed = failed.Load()
	return result, nil
}
