package storage

import (
	"context"
	"fmt"

	"github.com/rl1809/warehouse/internal/config"
)

var mysqlSchema = []string{`
	CREATE TABLE IF NOT EXISTS suppliers (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		contact VARCHAR(255) NOT NULL,
		address VARCHAR(500) NOT NULL
	)`, `
	CREATE TABLE IF NOT EXISTS items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		quantity INT NOT NULL DEFAULT 0,
		location VARCHAR(255) NOT NULL,
		category VARCHAR(100) NULL,
		description TEXT NULL,
		min_stock_level INT NOT NULL DEFAULT 0,
		price DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		supplier_id INT NULL,
		created_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_items_supplier FOREIGN KEY (supplier_id) REFERENCES suppliers(id)
	)`,
}

var sqliteSchema = []string{`
	CREATE TABLE IF NOT EXISTS suppliers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		contact TEXT NOT NULL,
		address TEXT NOT NULL
	)`, `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0,
		location TEXT NOT NULL,
		category TEXT,
		description TEXT,
		min_stock_level INTEGER NOT NULL DEFAULT 0,
		price DECIMAL(10,2) NOT NULL DEFAULT 0,
		supplier_id INTEGER REFERENCES suppliers(id),
		created_date DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_date DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Bootstrap creates the items and suppliers tables when they are missing.
// Existing tables are left untouched.
func (s *SQLStore) Bootstrap(ctx context.Context) error {
	var statements []string
	switch s.driver {
	case config.DriverMySQL:
		statements = mysqlSchema
	case config.DriverSQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", s.driver)
	}

	for _, stmt := range statements {
		if _, err := s.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
