package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/platform/observability"
	"github.com/rl1809/warehouse/internal/port"
)

const itemColumns = `id, name, quantity, location, category, description, min_stock_level, price, supplier_id, created_date, updated_date`

const (
	insertItemSQL = `
		INSERT INTO items (name, quantity, location, category, description, min_stock_level, price, supplier_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	updateItemSQL = `
		UPDATE items
		SET name = ?, quantity = ?, location = ?, category = ?, description = ?,
			min_stock_level = ?, price = ?, supplier_id = ?, updated_date = CURRENT_TIMESTAMP
		WHERE id = ?`
	deleteItemSQL       = `DELETE FROM items WHERE id = ?`
	selectItemsSQL      = `SELECT ` + itemColumns + ` FROM items ORDER BY id`
	selectItemByIDSQL   = `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	searchItemsSQL      = `SELECT ` + itemColumns + ` FROM items WHERE name LIKE ? ORDER BY id`
	selectByCategorySQL = `SELECT ` + itemColumns + ` FROM items WHERE category = ? ORDER BY name, id`
	selectLowStockSQL   = `SELECT ` + itemColumns + ` FROM items WHERE quantity <= min_stock_level ORDER BY quantity, id`
	selectCategoriesSQL = `SELECT DISTINCT category FROM items WHERE category IS NOT NULL ORDER BY category`
)

// InventoryService validates and persists items. Writes report failures as
// errors; reads degrade to empty results and log the cause.
type InventoryService struct {
	store  port.RecordStore
	logger observability.Logger
	tracer observability.Tracer
}

func NewInventoryService(store port.RecordStore, logger observability.Logger, tracer observability.Tracer) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &InventoryService{store: store, logger: logger, tracer: tracer}
}

func (s *InventoryService) AddItem(ctx context.Context, draft domain.ItemDraft) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.add_item")
	defer span.End()

	if err := draft.Validate(); err != nil {
		return 0, rejected(s.logger, span, "add item", err)
	}

	res, err := s.store.Exec(ctx, insertItemSQL, itemArgs(draft)...)
	if err != nil {
		return 0, storeFailure(s.logger, span, "add item", err)
	}

	span.SetAttributes(attribute.Int64("item.id", res.LastInsertID))
	s.logger.Info("item added", zap.Int64("item_id", res.LastInsertID), zap.String("name", draft.Name))
	return res.LastInsertID, nil
}

// UpdateItem replaces every field of an existing item except its identifier
// and created timestamp.
func (s *InventoryService) UpdateItem(ctx context.Context, item domain.Item) error {
	ctx, span := s.tracer.Start(ctx, "inventory.update_item")
	defer span.End()
	span.SetAttributes(attribute.Int64("item.id", item.ID))

	if item.ID <= 0 {
		return rejected(s.logger, span, "update item", &domain.ValidationError{Field: "id", Reason: "must be a positive identifier"})
	}
	if err := item.Draft().Validate(); err != nil {
		return rejected(s.logger, span, "update item", err)
	}

	args := append(itemArgs(item.Draft()), item.ID)
	res, err := s.store.Exec(ctx, updateItemSQL, args...)
	if err != nil {
		return storeFailure(s.logger, span, "update item", err)
	}
	if res.RowsAffected == 0 {
		return notFound(span, "item", item.ID)
	}

	s.logger.Info("item updated", zap.Int64("item_id", item.ID))
	return nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "inventory.delete_item")
	defer span.End()
	span.SetAttributes(attribute.Int64("item.id", id))

	res, err := s.store.Exec(ctx, deleteItemSQL, id)
	if err != nil {
		return storeFailure(s.logger, span, "delete item", err)
	}
	if res.RowsAffected == 0 {
		return notFound(span, "item", id)
	}

	s.logger.Info("item deleted", zap.Int64("item_id", id))
	return nil
}

// GetItemByID returns nil when the item does not exist or the store fails.
func (s *InventoryService) GetItemByID(ctx context.Context, id int64) *domain.Item {
	items := s.listItems(ctx, "inventory.get_item", selectItemByIDSQL, id)
	if len(items) == 0 {
		return nil
	}
	return &items[0]
}

func (s *InventoryService) GetAllItems(ctx context.Context) []domain.Item {
	return s.listItems(ctx, "inventory.get_all_items", selectItemsSQL)
}

// SearchItemsByName matches term anywhere in the name using the store's LIKE
// operator. An empty term matches every item.
func (s *InventoryService) SearchItemsByName(ctx context.Context, term string) []domain.Item {
	return s.listItems(ctx, "inventory.search_items", searchItemsSQL, "%"+term+"%")
}

func (s *InventoryService) GetItemsByCategory(ctx context.Context, category string) []domain.Item {
	return s.listItems(ctx, "inventory.items_by_category", selectByCategorySQL, category)
}

func (s *InventoryService) GetLowStockItems(ctx context.Context) []domain.Item {
	return s.listItems(ctx, "inventory.low_stock_items", selectLowStockSQL)
}

func (s *InventoryService) GetAllCategories(ctx context.Context) []string {
	ctx, span := s.tracer.Start(ctx, "inventory.get_all_categories")
	defer span.End()

	categories := []string{}
	err := s.store.Query(ctx, selectCategoriesSQL, func(row port.Row) error {
		var category string
		if err := row.Scan(&category); err != nil {
			return err
		}
		categories = append(categories, category)
		return nil
	})
	if err != nil {
		storeFailure(s.logger, span, "get all categories", err)
		return []string{}
	}
	return categories
}

func (s *InventoryService) listItems(ctx context.Context, spanName, query string, args ...any) []domain.Item {
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	items := []domain.Item{}
	err := s.store.Query(ctx, query, func(row port.Row) error {
		item, err := scanItem(row)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	}, args...)
	if err != nil {
		storeFailure(s.logger, span, spanName, err)
		return []domain.Item{}
	}

	span.SetAttributes(attribute.Int("items.count", len(items)))
	return items
}

func itemArgs(d domain.ItemDraft) []any {
	return []any{
		d.Name,
		d.Quantity,
		d.Location,
		nullString(d.Category),
		nullString(d.Description),
		d.MinStockLevel,
		priceArg(d.Price),
		nullInt64(d.SupplierID),
	}
}

func scanItem(row port.Row) (domain.Item, error) {
	var (
		item                  domain.Item
		category, description sql.NullString
		supplierID            sql.NullInt64
		created, updated      dbTime
	)
	err := row.Scan(
		&item.ID, &item.Name, &item.Quantity, &item.Location, &category, &description,
		&item.MinStockLevel, &item.Price, &supplierID, &created, &updated,
	)
	if err != nil {
		return domain.Item{}, err
	}

	item.Category = category.String
	item.Description = description.String
	item.SupplierID = int64Ptr(supplierID)
	item.CreatedAt = created.Time
	item.UpdatedAt = updated.Time
	return item, nil
}

func rejected(logger observability.Logger, span trace.Span, op string, err error) error {
	span.SetStatus(codes.Error, "validation failed")
	logger.Info("rejected invalid input", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func storeFailure(logger observability.Logger, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	logger.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func notFound(span trace.Span, entity string, id int64) error {
	span.SetStatus(codes.Error, entity+" not found")
	return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
}
