package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. Tests that need it are
// skipped when no MySQL instance named 'stockledger_test' is reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/stockledger_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the tables in FK order and closes the handle.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{
		"audit_logs", "payments", "invoice_items", "invoices",
		"stock_entries", "sales", "lpos", "opening_stock",
		"products", "subcategories", "categories", "suppliers", "customers",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema used by integration tests.
func SetupTestTables(t *testing.T, db *sql.DB) {
	statements := []struct {
		name  string
		query string
	}{
		{"categories", `
		CREATE TABLE IF NOT EXISTS categories (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			description TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
		{"subcategories", `
		CREATE TABLE IF NOT EXISTS subcategories (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			category_id INT NOT NULL,
			name VARCHAR(100) NOT NULL,
			description TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (category_id) REFERENCES categories(id)
		)`},
		{"suppliers", `
		CREATE TABLE IF NOT EXISTS suppliers (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			company_name VARCHAR(255) NOT NULL,
			email VARCHAR(150) NOT NULL DEFAULT '',
			phone VARCHAR(30) NOT NULL DEFAULT '',
			address VARCHAR(255) NOT NULL DEFAULT '',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_supplier_name (company_name)
		)`},
		{"customers", `
		CREATE TABLE IF NOT EXISTS customers (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			company_name VARCHAR(255) NOT NULL,
			email VARCHAR(150) NOT NULL DEFAULT '',
			phone VARCHAR(30) NOT NULL DEFAULT '',
			address VARCHAR(255) NOT NULL DEFAULT '',
			payment_type VARCHAR(30) NOT NULL DEFAULT 'Cash',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_customer_name (company_name)
		)`},
		{"products", `
		CREATE TABLE IF NOT EXISTS products (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			subcategory_id INT NOT NULL,
			code VARCHAR(50) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			unit_price DECIMAL(12,2) NOT NULL DEFAULT 0.00,
			current_stock INT NOT NULL DEFAULT 0,
			minimum_stock INT NOT NULL DEFAULT 0,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (subcategory_id) REFERENCES subcategories(id),
			INDEX idx_product_name (name)
		)`},
		{"stock_entries", `
		CREATE TABLE IF NOT EXISTS stock_entries (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			product_id INT NOT NULL,
			entry_type VARCHAR(20) NOT NULL,
			quantity INT NOT NULL,
			supplier_id INT NULL,
			notes TEXT,
			recorded_by VARCHAR(100) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (product_id) REFERENCES products(id),
			FOREIGN KEY (supplier_id) REFERENCES suppliers(id),
			INDEX idx_entry_product (product_id)
		)`},
		{"sales", `
		CREATE TABLE IF NOT EXISTS sales (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			sale_number VARCHAR(50) NOT NULL UNIQUE,
			product_id INT NOT NULL,
			customer_id INT NOT NULL,
			quantity_ordered INT NOT NULL,
			quantity_supplied INT NOT NULL DEFAULT 0,
			supply_status VARCHAR(30) NOT NULL DEFAULT 'Not Supplied',
			unit_price DECIMAL(12,2) NOT NULL,
			total_amount DECIMAL(12,2) NOT NULL,
			lpo_quotation_number VARCHAR(100) NOT NULL DEFAULT '',
			delivery_number VARCHAR(100) NOT NULL DEFAULT '',
			notes TEXT,
			recorded_by VARCHAR(100) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (product_id) REFERENCES products(id),
			FOREIGN KEY (customer_id) REFERENCES customers(id),
			INDEX idx_sale_status (supply_status)
		)`},
		{"invoices", `
		CREATE TABLE IF NOT EXISTS invoices (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			invoice_number VARCHAR(50) NOT NULL UNIQUE,
			customer_id INT NOT NULL,
			total_amount DECIMAL(12,2) NOT NULL,
			paid_amount DECIMAL(12,2) NOT NULL DEFAULT 0.00,
			status VARCHAR(30) NOT NULL DEFAULT 'Outstanding',
			due_date DATE NULL,
			notes TEXT,
			created_by VARCHAR(100) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (customer_id) REFERENCES customers(id),
			INDEX idx_invoice_status (status)
		)`},
		{"invoice_items", `
		CREATE TABLE IF NOT EXISTS invoice_items (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			invoice_id INT NOT NULL,
			product_id INT NOT NULL,
			quantity INT NOT NULL,
			unit_price DECIMAL(12,2) NOT NULL,
			subtotal DECIMAL(12,2) NOT NULL,
			FOREIGN KEY (invoice_id) REFERENCES invoices(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`},
		{"payments", `
		CREATE TABLE IF NOT EXISTS payments (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			invoice_id INT NOT NULL,
			amount DECIMAL(12,2) NOT NULL,
			payment_method VARCHAR(30) NOT NULL,
			reference_number VARCHAR(100) NOT NULL DEFAULT '',
			payment_date DATETIME NOT NULL,
			notes TEXT,
			recorded_by VARCHAR(100) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (invoice_id) REFERENCES invoices(id)
		)`},
		{"lpos", `
		CREATE TABLE IF NOT EXISTS lpos (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			lpo_number VARCHAR(50) NOT NULL UNIQUE,
			supplier_id INT NOT NULL,
			product_id INT NOT NULL,
			ordered_quantity INT NOT NULL,
			delivered_quantity INT NOT NULL DEFAULT 0,
			status VARCHAR(30) NOT NULL DEFAULT 'Pending',
			order_date DATETIME NOT NULL,
			expected_delivery DATE NULL,
			actual_delivery DATETIME NULL,
			notes TEXT,
			created_by VARCHAR(100) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (supplier_id) REFERENCES suppliers(id),
			FOREIGN KEY (product_id) REFERENCES products(id),
			INDEX idx_lpo_status (status)
		)`},
		{"opening_stock", `
		CREATE TABLE IF NOT EXISTS opening_stock (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			product_id INT NOT NULL,
			month DATE NOT NULL,
			opening_quantity INT NOT NULL,
			recorded_by VARCHAR(100) NOT NULL DEFAULT '',
			recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_product_month (product_id, month),
			FOREIGN KEY (product_id) REFERENCES products(id)
		)`},
		{"audit_logs", `
		CREATE TABLE IF NOT EXISTS audit_logs (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			action VARCHAR(50) NOT NULL,
			user_id VARCHAR(100) NOT NULL,
			description TEXT,
			ip_address VARCHAR(45) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_audit_action (action)
		)`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt.query); err != nil {
			t.Logf("failed to create table %s: %v", stmt.name, err)
		}
	}
}

// SeedBasicCatalog inserts a category tree, a supplier, a customer and one
// product, returning the product id.
func SeedBasicCatalog(t *testing.T, db *sql.DB, initialStock int) (productID, supplierID, customerID int) {
	t.Helper()

	mustExec := func(query string, args ...interface{}) int {
		res, err := db.Exec(query, args...)
		if err != nil {
			t.Fatalf("seeding catalog: %v", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			t.Fatalf("seeding catalog: %v", err)
		}
		return int(id)
	}

	categoryID := mustExec(`INSERT INTO categories (name) VALUES ('Fire')`)
	subCategoryID := mustExec(`INSERT INTO subcategories (category_id, name) VALUES (?, 'Extinguishers')`, categoryID)
	supplierID = mustExec(`INSERT INTO suppliers (company_name) VALUES ('Blaze Supplies Ltd')`)
	customerID = mustExec(`INSERT INTO customers (company_name, payment_type) VALUES ('Acme Services', 'Credit')`)
	productID = mustExec(`
		INSERT INTO products (subcategory_id, code, name, unit_price, current_stock, minimum_stock)
		VALUES (?, 'CAP320', 'Fire Cap 320', 150.00, ?, 10)`, subCategoryID, initialStock)

	return productID, supplierID, customerID
}
