package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds filtering and lookup indexes beyond what AutoMigrate
// derives from struct tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"todos", "idx_todos_status", "status"},
		{"todos", "idx_todos_priority", "priority"},
		{"todos", "idx_todos_category_id", "category_id"},
		{"todos", "idx_todos_created_at", "created_at"},

		{"todo_shares", "idx_todo_shares_shared_with_id", "shared_with_id"},

		{"categories", "idx_categories_user_name", "user_id, name"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
