package console

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rl1809/warehouse/internal/core/domain"
)

type stubReporter struct{}

func (stubReporter) InventorySummary(ctx context.Context) []domain.InventorySummaryRow {
	return []domain.InventorySummaryRow{
		{ID: 1, Name: "Bolt", Quantity: 5, Location: "A1", Category: "Hardware", Price: decimal.RequireFromString("0.5"), MinStockLevel: 10, Status: domain.StockStatusLow},
	}
}

func (stubReporter) LowStockReport(ctx context.Context) []domain.LowStockRow {
	return []domain.LowStockRow{{ID: 1, Name: "Bolt", Quantity: 5, MinStockLevel: 10, Deficit: 5, Category: "Hardware", Location: "A1"}}
}

func (stubReporter) SupplierSummary(ctx context.Context) []domain.SupplierSummaryRow {
	return []domain.SupplierSummaryRow{{ID: 1, Name: "Acme", Contact: "acme@example.com", Address: "1 Main St", ItemsSupplied: 1}}
}

func (stubReporter) CategoryAnalysis(ctx context.Context) []domain.CategoryAnalysisRow {
	return []domain.CategoryAnalysisRow{{Category: "Hardware", TotalItems: 1, TotalQuantity: 5, TotalValue: decimal.RequireFromString("2.5"), LowStockCount: 1}}
}

func TestWriteReport_Formats(t *testing.T) {
	tests := []struct {
		kind   ReportKind
		format Format
		want   []string
	}{
		{ReportInventory, FormatTable, []string{"Bolt", "$0.50", "LOW STOCK"}},
		{ReportInventory, FormatCSV, []string{"1,Bolt,5,A1,Hardware,$0.50,10,LOW STOCK"}},
		{ReportLowStock, FormatCSV, []string{"1,Bolt,5,10,5,Hardware,A1"}},
		{ReportSuppliers, FormatTable, []string{"Acme", "1 Main St"}},
		{ReportCategories, FormatCSV, []string{"Hardware,1,5,$2.50,1"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteReport(context.Background(), &buf, stubReporter{}, tt.kind, tt.format); err != nil {
				t.Fatalf("WriteReport() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(context.Background(), &buf, stubReporter{}, ReportCategories, FormatJSON); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["category"] != "Hardware" || rows[0]["total_value"] != "2.5" || rows[0]["low_stock_count"] != float64(1) {
		t.Errorf("unexpected row: %v", rows[0])
	}
}

func TestWriteReport_EmptyJSONIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(context.Background(), &buf, emptyReporter{}, ReportLowStock, FormatJSON); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("got %q, want []", got)
	}
}

type emptyReporter struct{}

func (emptyReporter) InventorySummary(context.Context) []domain.InventorySummaryRow { return nil }
func (emptyReporter) LowStockReport(context.Context) []domain.LowStockRow            { return nil }
func (emptyReporter) SupplierSummary(context.Context) []domain.SupplierSummaryRow    { return nil }
func (emptyReporter) CategoryAnalysis(context.Context) []domain.CategoryAnalysisRow  { return nil }

func TestParseReportKind(t *testing.T) {
	for _, s := range []string{"inventory", "LOW-STOCK", " suppliers ", "categories"} {
		if _, err := ParseReportKind(s); err != nil {
			t.Errorf("ParseReportKind(%q) error = %v", s, err)
		}
	}
	if _, err := ParseReportKind("weekly"); err == nil {
		t.Error("ParseReportKind(weekly) should fail")
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "CSV", "json"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}
