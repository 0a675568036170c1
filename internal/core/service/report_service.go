package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/platform/observability"
)

type ItemReader interface {
	GetAllItems(ctx context.Context) []domain.Item
}

type SupplierReader interface {
	GetAllSuppliers(ctx context.Context) []domain.Supplier
}

// ReportService derives report rows from fresh reads of items and suppliers.
// It never talks to the store directly and keeps nothing between calls.
type ReportService struct {
	items     ItemReader
	suppliers SupplierReader
	tracer    observability.Tracer
}

func NewReportService(items ItemReader, suppliers SupplierReader, tracer observability.Tracer) *ReportService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &ReportService{items: items, suppliers: suppliers, tracer: tracer}
}

func (s *ReportService) InventorySummary(ctx context.Context) []domain.InventorySummaryRow {
	ctx, span := s.tracer.Start(ctx, "report.inventory_summary")
	defer span.End()
	return inventorySummary(s.items.GetAllItems(ctx))
}

func (s *ReportService) LowStockReport(ctx context.Context) []domain.LowStockRow {
	ctx, span := s.tracer.Start(ctx, "report.low_stock")
	defer span.End()
	return lowStockReport(s.items.GetAllItems(ctx))
}

func (s *ReportService) SupplierSummary(ctx context.Context) []domain.SupplierSummaryRow {
	ctx, span := s.tracer.Start(ctx, "report.supplier_summary")
	defer span.End()
	return supplierSummary(s.suppliers.GetAllSuppliers(ctx), s.items.GetAllItems(ctx))
}

func (s *ReportService) CategoryAnalysis(ctx context.Context) []domain.CategoryAnalysisRow {
	ctx, span := s.tracer.Start(ctx, "report.category_analysis")
	defer span.End()
	return categoryAnalysis(s.items.GetAllItems(ctx))
}

// Snapshot computes all four reports from one read of each entity set.
func (s *ReportService) Snapshot(ctx context.Context) domain.ReportSnapshot {
	ctx, span := s.tracer.Start(ctx, "report.snapshot")
	defer span.End()

	items := s.items.GetAllItems(ctx)
	suppliers := s.suppliers.GetAllSuppliers(ctx)
	return domain.ReportSnapshot{
		Inventory:  inventorySummary(items),
		LowStock:   lowStockReport(items),
		Suppliers:  supplierSummary(suppliers, items),
		Categories: categoryAnalysis(items),
	}
}

func inventorySummary(items []domain.Item) []domain.InventorySummaryRow {
	rows := make([]domain.InventorySummaryRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, domain.InventorySummaryRow{
			ID:            item.ID,
			Name:          item.Name,
			Quantity:      item.Quantity,
			Location:      item.Location,
			Category:      item.Category,
			Price:         item.Price,
			MinStockLevel: item.MinStockLevel,
			Status:        domain.StatusOf(item),
		})
	}
	return rows
}

func lowStockReport(items []domain.Item) []domain.LowStockRow {
	rows := []domain.LowStockRow{}
	for _, item := range items {
		if !item.IsLowStock() {
			continue
		}
		rows = append(rows, domain.LowStockRow{
			ID:            item.ID,
			Name:          item.Name,
			Quantity:      item.Quantity,
			MinStockLevel: item.MinStockLevel,
			Deficit:       item.MinStockLevel - item.Quantity,
			Category:      item.Category,
			Location:      item.Location,
		})
	}
	// items arrive in id order, so equal quantities stay in id order
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Quantity < rows[j].Quantity
	})
	return rows
}

func supplierSummary(suppliers []domain.Supplier, items []domain.Item) []domain.SupplierSummaryRow {
	counts := make(map[int64]int, len(suppliers))
	for _, item := range items {
		if item.SupplierID != nil {
			counts[*item.SupplierID]++
		}
	}

	rows := make([]domain.SupplierSummaryRow, 0, len(suppliers))
	for _, sup := range suppliers {
		rows = append(rows, domain.SupplierSummaryRow{
			ID:            sup.ID,
			Name:          sup.Name,
			Contact:       sup.Contact,
			Address:       sup.Address,
			ItemsSupplied: counts[sup.ID],
		})
	}
	return rows
}

func categoryAnalysis(items []domain.Item) []domain.CategoryAnalysisRow {
	byCategory := make(map[string]*domain.CategoryAnalysisRow)
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		row, ok := byCategory[item.Category]
		if !ok {
			row = &domain.CategoryAnalysisRow{Category: item.Category, TotalValue: decimal.Zero}
			byCategory[item.Category] = row
		}
		row.TotalItems++
		row.TotalQuantity += item.Quantity
		row.TotalValue = row.TotalValue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		if item.IsLowStock() {
			row.LowStockCount++
		}
	}

	rows := make([]domain.CategoryAnalysisRow, 0, len(byCategory))
	for _, row := range byCategory {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Category < rows[j].Category
	})
	return rows
}
