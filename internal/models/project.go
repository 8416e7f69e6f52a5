package models

import (
	"time"

	"gorm.io/datatypes"
)

// Project is a portfolio entry. Deletion is soft: IsDeleted hides it from every
// public read.
type Project struct {
	BaseModel
	Title        string                      `gorm:"size:255;not null" json:"title"`
	Slug         string                      `gorm:"size:255;index" json:"slug"`
	Category     string                      `gorm:"size:100;index" json:"category"`
	Description  string                      `gorm:"type:text" json:"description"`
	Content      string                      `gorm:"type:text" json:"content,omitempty"`
	Images       datatypes.JSONSlice[string] `json:"images"`
	Technologies datatypes.JSONSlice[string] `json:"technologies"`
	GithubURL    string                      `gorm:"size:1024" json:"githubUrl,omitempty"`
	DemoURL      string                      `gorm:"size:1024" json:"demoUrl,omitempty"`
	Featured     bool                        `gorm:"not null;default:false" json:"featured"`
	IsDeleted    bool                        `gorm:"index;not null;default:false" json:"-"`
	Date         time.Time                   `gorm:"index" json:"date"`
}

func (p Project) SlugFields() (string, string) { return p.Title, p.Slug }
