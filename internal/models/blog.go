package models

import (
	"time"

	"gorm.io/datatypes"
)

// Blog is a published article. Slug is empty for records written before slugs
// were stored; readers fall back to deriving it from Title.
type Blog struct {
	BaseModel
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Slug        string                      `gorm:"size:255;index" json:"slug"`
	Category    string                      `gorm:"size:100;index" json:"category"`
	Excerpt     string                      `gorm:"type:text" json:"excerpt"`
	Content     string                      `gorm:"type:text" json:"content,omitempty"`
	ContentHTML string                      `gorm:"type:text" json:"contentHtml,omitempty"`
	CoverImage  string                      `gorm:"size:1024" json:"coverImage"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	ReadingTime int                         `json:"readingTime"`
	Date        time.Time                   `gorm:"index" json:"date"`
}

func (b Blog) SlugFields() (string, string) { return b.Title, b.Slug }
