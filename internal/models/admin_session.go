package models

import "time"

// AdminSession backs an issued admin cookie. The cookie carries the session id;
// revoking or expiring the row invalidates the cookie server side.
type AdminSession struct {
	BaseModel
	Username   string     `gorm:"size:255;not null" json:"username"`
	IPAddress  string     `gorm:"size:64" json:"ipAddress"`
	UserAgent  string     `gorm:"size:512" json:"userAgent"`
	ExpiresAt  time.Time  `gorm:"index" json:"expiresAt"`
	LastUsedAt time.Time  `json:"lastUsedAt"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

// Active reports whether the session can still authenticate at now.
func (s *AdminSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
