package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rl1809/warehouse/internal/adapter/storage"
	"github.com/rl1809/warehouse/internal/config"
	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/port"
)

func newTestStore(t *testing.T) *storage.SQLStore {
	t.Helper()

	cfg := config.StoreConfig{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "warehouse.db"),
		MaxOpenConns: 2,
	}
	store, err := storage.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return store
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return zap.New(core), logs
}

// failingStore fails every call and counts how often it was reached.
type failingStore struct {
	err        error
	execCalls  int
	queryCalls int
}

func newFailingStore() *failingStore {
	return &failingStore{err: &domain.StoreError{Op: "acquire connection", Cause: errors.New("connection refused")}}
}

func (f *failingStore) Exec(ctx context.Context, query string, args ...any) (port.ExecResult, error) {
	f.execCalls++
	return port.ExecResult{}, f.err
}

func (f *failingStore) Query(ctx context.Context, query string, scan func(port.Row) error, args ...any) error {
	f.queryCalls++
	return f.err
}

func int64p(v int64) *int64 {
	return &v
}

func bolt(supplierID *int64) domain.ItemDraft {
	return domain.ItemDraft{
		Name:          "Bolt",
		Quantity:      5,
		Location:      "A1",
		Category:      "Hardware",
		Description:   "M6 hex bolt",
		MinStockLevel: 10,
		Price:         decimal.RequireFromString("0.50"),
		SupplierID:    supplierID,
	}
}
