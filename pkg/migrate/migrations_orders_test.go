package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bloomhaus/bloomhaus-backend/pkg/migrate"
)

func TestOrderMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_order_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no order migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"CREATE TABLE IF NOT EXISTS addresses",
		"CREATE TABLE IF NOT EXISTS order_fulfillments",
		"CREATE TABLE IF NOT EXISTS order_fulfillment_items",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_order",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCatalogMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_catalog_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS product_attributes",
		"CREATE TABLE IF NOT EXISTS inventory",
		"CREATE TABLE IF NOT EXISTS nurseries",
		"CREATE TABLE IF NOT EXISTS nursery_inventory",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_nursery_product",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
