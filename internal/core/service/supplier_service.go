package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/platform/observability"
	"github.com/rl1809/warehouse/internal/port"
)

const (
	insertSupplierSQL       = `INSERT INTO suppliers (name, contact, address) VALUES (?, ?, ?)`
	updateSupplierSQL       = `UPDATE suppliers SET name = ?, contact = ?, address = ? WHERE id = ?`
	deleteSupplierSQL       = `DELETE FROM suppliers WHERE id = ?`
	selectSuppliersSQL      = `SELECT id, name, contact, address FROM suppliers ORDER BY id`
	selectSupplierByIDSQL   = `SELECT id, name, contact, address FROM suppliers WHERE id = ?`
	countItemsBySupplierSQL = `SELECT COUNT(*) FROM items WHERE supplier_id = ?`
)

type SupplierService struct {
	store  port.RecordStore
	logger observability.Logger
	tracer observability.Tracer
}

func NewSupplierService(store port.RecordStore, logger observability.Logger, tracer observability.Tracer) *SupplierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &SupplierService{store: store, logger: logger, tracer: tracer}
}

func (s *SupplierService) AddSupplier(ctx context.Context, draft domain.SupplierDraft) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "supplier.add_supplier")
	defer span.End()

	if err := draft.Validate(); err != nil {
		return 0, rejected(s.logger, span, "add supplier", err)
	}

	res, err := s.store.Exec(ctx, insertSupplierSQL, draft.Name, draft.Contact, draft.Address)
	if err != nil {
		return 0, storeFailure(s.logger, span, "add supplier", err)
	}

	span.SetAttributes(attribute.Int64("supplier.id", res.LastInsertID))
	s.logger.Info("supplier added", zap.Int64("supplier_id", res.LastInsertID), zap.String("name", draft.Name))
	return res.LastInsertID, nil
}

func (s *SupplierService) UpdateSupplier(ctx context.Context, supplier domain.Supplier) error {
	ctx, span := s.tracer.Start(ctx, "supplier.update_supplier")
	defer span.End()
	span.SetAttributes(attribute.Int64("supplier.id", supplier.ID))

	if supplier.ID <= 0 {
		return rejected(s.logger, span, "update supplier", &domain.ValidationError{Field: "id", Reason: "must be a positive identifier"})
	}
	if err := supplier.Draft().Validate(); err != nil {
		return rejected(s.logger, span, "update supplier", err)
	}

	res, err := s.store.Exec(ctx, updateSupplierSQL, supplier.Name, supplier.Contact, supplier.Address, supplier.ID)
	if err != nil {
		return storeFailure(s.logger, span, "update supplier", err)
	}
	if res.RowsAffected == 0 {
		return notFound(span, "supplier", supplier.ID)
	}

	s.logger.Info("supplier updated", zap.Int64("supplier_id", supplier.ID))
	return nil
}

// DeleteSupplier refuses to remove a supplier that items still reference.
func (s *SupplierService) DeleteSupplier(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "supplier.delete_supplier")
	defer span.End()
	span.SetAttributes(attribute.Int64("supplier.id", id))

	var dependents int
	err := s.store.Query(ctx, countItemsBySupplierSQL, func(row port.Row) error {
		return row.Scan(&dependents)
	}, id)
	if err != nil {
		return storeFailure(s.logger, span, "delete supplier", err)
	}
	if dependents > 0 {
		span.SetStatus(codes.Error, "supplier in use")
		s.logger.Info("supplier delete refused", zap.Int64("supplier_id", id), zap.Int("items", dependents))
		return fmt.Errorf("supplier %d: %w (%d items)", id, domain.ErrSupplierInUse, dependents)
	}

	res, err := s.store.Exec(ctx, deleteSupplierSQL, id)
	if err != nil {
		return storeFailure(s.logger, span, "delete supplier", err)
	}
	if res.RowsAffected == 0 {
		return notFound(span, "supplier", id)
	}

	s.logger.Info("supplier deleted", zap.Int64("supplier_id", id))
	return nil
}

func (s *SupplierService) GetAllSuppliers(ctx context.Context) []domain.Supplier {
	return s.listSuppliers(ctx, "supplier.get_all_suppliers", selectSuppliersSQL)
}

// GetSupplierByID returns nil when the supplier does not exist or the store fails.
func (s *SupplierService) GetSupplierByID(ctx context.Context, id int64) *domain.Supplier {
	suppliers := s.listSuppliers(ctx, "supplier.get_supplier", selectSupplierByIDSQL, id)
	if len(suppliers) == 0 {
		return nil
	}
	return &suppliers[0]
}

func (s *SupplierService) listSuppliers(ctx context.Context, spanName, query string, args ...any) []domain.Supplier {
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	suppliers := []domain.Supplier{}
	err := s.store.Query(ctx, query, func(row port.Row) error {
		var sup domain.Supplier
		if err := row.Scan(&sup.ID, &sup.Name, &sup.Contact, &sup.Address); err != nil {
			return err
		}
		suppliers = append(suppliers, sup)
		return nil
	}, args...)
	if err != nil {
		storeFailure(s.logger, span, spanName, err)
		return []domain.Supplier{}
	}
	return suppliers
}
