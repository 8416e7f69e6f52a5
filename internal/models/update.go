package models

import "time"

// Update is a short news item shown on the home page.
type Update struct {
	BaseModel
	Title    string    `gorm:"size:255;not null" json:"title"`
	Content  string    `gorm:"type:text" json:"content"`
	Category string    `gorm:"size:100" json:"category"`
	Link     string    `gorm:"size:1024" json:"link,omitempty"`
	Date     time.Time `gorm:"index" json:"date"`
}
