package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"github.com/rl1809/warehouse/internal/core/domain"
)

type ReportKind string

const (
	ReportInventory  ReportKind = "inventory"
	ReportLowStock   ReportKind = "low-stock"
	ReportSuppliers  ReportKind = "suppliers"
	ReportCategories ReportKind = "categories"
)

var ReportKinds = []ReportKind{ReportInventory, ReportLowStock, ReportSuppliers, ReportCategories}

func ParseReportKind(s string) (ReportKind, error) {
	for _, k := range ReportKinds {
		if string(k) == strings.ToLower(strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown report %q (want one of %s)", s, joinKinds())
}

func joinKinds() string {
	names := make([]string, len(ReportKinds))
	for i, k := range ReportKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, csv or json)", s)
	}
}

// Reporter is the read side the renderers need.
type Reporter interface {
	InventorySummary(ctx context.Context) []domain.InventorySummaryRow
	LowStockReport(ctx context.Context) []domain.LowStockRow
	SupplierSummary(ctx context.Context) []domain.SupplierSummaryRow
	CategoryAnalysis(ctx context.Context) []domain.CategoryAnalysisRow
}

// WriteReport computes one report and writes it to w in the given format.
func WriteReport(ctx context.Context, w io.Writer, reports Reporter, kind ReportKind, format Format) error {
	var (
		header table.Row
		rows   []table.Row
		data   any
	)
	switch kind {
	case ReportInventory:
		result := reports.InventorySummary(ctx)
		header = table.Row{"ID", "Name", "Quantity", "Location", "Category", "Price", "Min Stock", "Status"}
		for _, r := range result {
			rows = append(rows, table.Row{r.ID, r.Name, r.Quantity, r.Location, r.Category, money(r.Price), r.MinStockLevel, string(r.Status)})
		}
		data = inventoryJSON(result)
	case ReportLowStock:
		result := reports.LowStockReport(ctx)
		header = table.Row{"ID", "Name", "Current Qty", "Min Stock", "Deficit", "Category", "Location"}
		for _, r := range result {
			rows = append(rows, table.Row{r.ID, r.Name, r.Quantity, r.MinStockLevel, r.Deficit, r.Category, r.Location})
		}
		data = lowStockJSON(result)
	case ReportSuppliers:
		result := reports.SupplierSummary(ctx)
		header = table.Row{"ID", "Name", "Contact", "Address", "Items Supplied"}
		for _, r := range result {
			rows = append(rows, table.Row{r.ID, r.Name, r.Contact, r.Address, r.ItemsSupplied})
		}
		data = suppliersJSON(result)
	case ReportCategories:
		result := reports.CategoryAnalysis(ctx)
		header = table.Row{"Category", "Total Items", "Total Quantity", "Total Value", "Low Stock Items"}
		for _, r := range result {
			rows = append(rows, table.Row{r.Category, r.TotalItems, r.TotalQuantity, money(r.TotalValue), r.LowStockCount})
		}
		data = categoriesJSON(result)
	default:
		return fmt.Errorf("unknown report %q", kind)
	}

	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.AppendRows(rows)
	switch format {
	case FormatCSV:
		t.RenderCSV()
	case FormatTable, "":
		t.SetStyle(table.StyleLight)
		t.Render()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

func writeItems(w io.Writer, items []domain.Item) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Qty", "Location", "Category", "Min Stock", "Price", "Supplier"})
	for _, it := range items {
		t.AppendRow(table.Row{it.ID, it.Name, it.Quantity, it.Location, it.Category, it.MinStockLevel, money(it.Price), supplierRef(it.SupplierID)})
	}
	t.AppendFooter(table.Row{"", "Total", len(items)})
	t.Render()
}

// writeBasicItems renders the quick-lookup view used by search.
func writeBasicItems(w io.Writer, items []domain.BasicItem) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Qty", "Location"})
	for _, it := range items {
		t.AppendRow(table.Row{it.ID, it.Name, it.Quantity, it.Location})
	}
	t.Render()
}

func writeSuppliers(w io.Writer, suppliers []domain.Supplier) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Contact", "Address"})
	for _, s := range suppliers {
		t.AppendRow(table.Row{s.ID, s.Name, s.Contact, s.Address})
	}
	t.Render()
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func supplierRef(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

type inventoryRowJSON struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	Location      string          `json:"location"`
	Category      string          `json:"category"`
	// decimal marshals as a quoted string
	Price         decimal.Decimal `json:"price"`
	MinStockLevel int             `json:"min_stock_level"`
	Status        string          `json:"status"`
}

func inventoryJSON(rows []domain.InventorySummaryRow) []inventoryRowJSON {
	out := make([]inventoryRowJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, inventoryRowJSON{r.ID, r.Name, r.Quantity, r.Location, r.Category, r.Price, r.MinStockLevel, string(r.Status)})
	}
	return out
}

type lowStockRowJSON struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level"`
	Deficit       int    `json:"deficit"`
	Category      string `json:"category"`
	Location      string `json:"location"`
}

func lowStockJSON(rows []domain.LowStockRow) []lowStockRowJSON {
	out := make([]lowStockRowJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, lowStockRowJSON{r.ID, r.Name, r.Quantity, r.MinStockLevel, r.Deficit, r.Category, r.Location})
	}
	return out
}

type supplierRowJSON struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Contact       string `json:"contact"`
	Address       string `json:"address"`
	ItemsSupplied int    `json:"items_supplied"`
}

func suppliersJSON(rows []domain.SupplierSummaryRow) []supplierRowJSON {
	out := make([]supplierRowJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, supplierRowJSON{r.ID, r.Name, r.Contact, r.Address, r.ItemsSupplied})
	}
	return out
}

type categoryRowJSON struct {
	Category      string          `json:"category"`
	TotalItems    int             `json:"total_items"`
	TotalQuantity int             `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockCount int             `json:"low_stock_count"`
}

func categoriesJSON(rows []domain.CategoryAnalysisRow) []categoryRowJSON {
	out := make([]categoryRowJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, categoryRowJSON{r.Category, r.TotalItems, r.TotalQuantity, r.TotalValue.Round(2), r.LowStockCount})
	}
	return out
}
