package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database. Index
// existence is checked through pg_indexes, so this only runs against the
// postgres driver; AutoMigrate already covers the declared model indexes on
// other engines.
func AddIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Complaint indexes for owner listings and staff views
		{"complaints", "idx_complaints_user_id", "user_id"},
		{"complaints", "idx_complaints_status", "status"},
		{"complaints", "idx_complaints_created_at", "created_at"},

		// Comment lookups per complaint
		{"comments", "idx_comments_complaint_id", "complaint_id"},

		// Role scan for admin notification fan-out
		{"users", "idx_users_role", "role"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
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
