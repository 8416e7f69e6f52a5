package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/models"
)

// AutoMigrate creates or updates the database schema for all models. Tables
// created before the slug column existed gain it with empty values.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Blog{},
		&models.Project{},
		&models.Update{},
		&models.AdminSession{},
		&models.CacheEntry{},
	)
}

// SeedSample inserts one blog, project and update when the content tables are
// empty, so a fresh install renders a populated home page.
func SeedSample(db *gorm.DB, now time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Blog{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			blog := models.Blog{
				Title:       "Hello World",
				Slug:        "hello-world",
				Category:    "general",
				Excerpt:     "The first post on this site.",
				Content:     "# Hello World\n\nThe first post on this site.",
				ContentHTML: "<h1>Hello World</h1>\n<p>The first post on this site.</p>\n",
				Tags:        datatypes.JSONSlice[string]{"meta"},
				ReadingTime: 1,
				Date:        now,
			}
			if err := tx.Create(&blog).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Project{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			project := models.Project{
				Title:        "Portfolio",
				Slug:         "portfolio",
				Category:     "web",
				Description:  "This site: a Go API with a cache-aside read path.",
				Technologies: datatypes.JSONSlice[string]{"go", "gin", "redis"},
				Images:       datatypes.JSONSlice[string]{},
				Featured:     true,
				Date:         now,
			}
			if err := tx.Create(&project).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Update{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			update := models.Update{
				Title:    "Site launched",
				Content:  "The portfolio is live.",
				Category: "news",
				Date:     now,
			}
			if err := tx.Create(&update).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
