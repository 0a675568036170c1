package storage

import (
	"context"
	"os"
	"testing"

	"github.com/rl1809/warehouse/internal/config"
	"github.com/rl1809/warehouse/internal/port"
)

func getMySQLStore(t *testing.T) *SQLStore {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/warehouse_db"
	}

	store, err := Open(context.Background(), config.StoreConfig{Driver: config.DriverMySQL, DSN: dsn}, nil)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	return store
}

func TestMySQL_UpdateWithoutChangesCountsMatchedRow(t *testing.T) {
	store := getMySQLStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	res, err := store.Exec(ctx, `INSERT INTO suppliers (name, contact, address) VALUES (?, ?, ?)`,
		"mysql-test-supplier", "c", "a")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	id := res.LastInsertID
	defer store.Exec(ctx, `DELETE FROM suppliers WHERE id = ?`, id)

	// same values: only clientFoundRows makes this report a matched row
	res, err = store.Exec(ctx, `UPDATE suppliers SET name = ?, contact = ?, address = ? WHERE id = ?`,
		"mysql-test-supplier", "c", "a", id)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if res.RowsAffected != 1 {
		t.Errorf("expected 1 matched row, got %d", res.RowsAffected)
	}

	var name string
	err = store.Query(ctx, `SELECT name FROM suppliers WHERE id = ?`, func(row port.Row) error {
		return row.Scan(&name)
	}, id)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if name != "mysql-test-supplier" {
		t.Errorf("expected mysql-test-supplier, got %s", name)
	}
}
