package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/taskflow/taskflow-api/internal/models"
	"gorm.io/gorm"
)

type index struct {
	model   interface{}
	name    string
	columns string
}

// Composite indexes backing the per-user list filters and stats grouping.
var taskIndexes = []index{
	{&models.Task{}, "idx_tasks_user_status", "user_id, status"},
	{&models.Task{}, "idx_tasks_user_priority", "user_id, priority"},
	{&models.Task{}, "idx_tasks_user_created_at", "user_id, created_at"},
	{&models.Task{}, "idx_tasks_user_due_date", "user_id, due_date"},
}

// AddIndexes adds the composite indexes that AutoMigrate does not derive from
// struct tags. Existing indexes are skipped.
func AddIndexes(db *gorm.DB, log *logrus.Logger) error {
	migrator := db.Migrator()

	for _, idx := range taskIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithField("index", idx.name).Infof("Created index on %s(%s)", stmt.Schema.Table, idx.columns)
	}

	return nil
}
