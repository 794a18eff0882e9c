package models

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// migration is a single schema step applied at startup
type migration struct {
	name string
	run  func(db *gorm.DB) error
}

// Steps run in order. Each one probes for the objects it creates before
// issuing DDL, so replaying the list on an existing database is a no-op.
var migrations = []migration{
	{"create_base_tables", createBaseTables},
	{"add_customers_due_day", addColumn("customers", "due_day", "INTEGER NOT NULL DEFAULT 1")},
	{"add_customers_coordinates", addColumns("customers", map[string]string{
		"latitude":  "REAL NOT NULL DEFAULT 0",
		"longitude": "REAL NOT NULL DEFAULT 0",
	})},
	{"add_odps_cable_route", addColumn("odps", "cable_route_id", "INTEGER")},
	{"add_cable_routes_color", addColumn("cable_routes", "color", "TEXT NOT NULL DEFAULT ''")},
	{"add_network_segments_vlan", addColumn("network_segments", "vlan_id", "INTEGER NOT NULL DEFAULT 0")},
	{"index_customers_status", createIndex("idx_customers_status", "customers", "status")},
	{"index_customers_pppoe", createIndex("idx_customers_pppoe", "customers", "pppoe_username")},
	{"index_odps_code", createIndex("idx_odps_code", "odps", "code")},
	{"index_customers_phone", createIndex("idx_customers_phone", "customers", "phone")},
	{"index_customers_odp", createIndex("idx_customers_odp", "customers", "odp_id")},
	{"index_odps_cable_route", createIndex("idx_odps_cable_route", "odps", "cable_route_id")},
	{"index_customers_package", createIndex("idx_customers_package", "customers", "package_id")},
	{"index_activity_logs_created", createIndex("idx_activity_logs_created", "activity_logs", "created_at")},
}

// AutoMigrate applies all schema steps using raw SQL. GORM's own migrator is
// bypassed so the schema stays identical across driver versions.
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	for _, m := range migrations {
		if err := m.run(db); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createBaseTables(db *gorm.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS packages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			price INTEGER NOT NULL DEFAULT 0,
			rate_limit TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			package_id INTEGER,
			odp_id INTEGER,
			pppoe_username TEXT NOT NULL DEFAULT '',
			pppoe_password TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS odps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			code TEXT NOT NULL DEFAULT '',
			capacity INTEGER NOT NULL DEFAULT 8,
			used_ports INTEGER NOT NULL DEFAULT 0,
			latitude REAL NOT NULL DEFAULT 0,
			longitude REAL NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS cable_routes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			path_points TEXT NOT NULL DEFAULT '[]',
			length_meters REAL NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS network_segments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			subnet TEXT NOT NULL DEFAULT '',
			router_host TEXT NOT NULL DEFAULT '',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS activity_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL DEFAULT '',
			entity_id INTEGER NOT NULL DEFAULT 0,
			entity_name TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			created_at DATETIME
		)`,
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// columnExists checks the live schema via pragma_table_info
func columnExists(db *gorm.DB, table, column string) bool {
	var count int64
	db.Raw("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&count)
	return count > 0
}

func addColumn(table, column, definition string) func(db *gorm.DB) error {
	return func(db *gorm.DB) error {
		if columnExists(db, table, column) {
			return nil
		}
		return db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)).Error
	}
}

func addColumns(table string, columns map[string]string) func(db *gorm.DB) error {
	return func(db *gorm.DB) error {
		for column, definition := range columns {
			if columnExists(db, table, column) {
				continue
			}
			if err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)).Error; err != nil {
				return err
			}
		}
		return nil
	}
}

func createIndex(name, table, column string) func(db *gorm.DB) error {
	return func(db *gorm.DB) error {
		return db.Exec(fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", name, table, column)).Error
	}
}
