package model

import "time"

type ShortLink struct {
	BaseModel
	ShortCode   string     `gorm:"uniqueIndex;size:32;not null" json:"shortCode"`
	TargetURL   string     `gorm:"size:2048;not null" json:"targetUrl"`
	AccessCount int64      `gorm:"default:0" json:"accessCount"`
	ExpiresAt   *time.Time `gorm:"index" json:"expiresAt"`
}

// Expired 判断短链在 now 时刻是否已过期（ExpiresAt 为空表示永不过期）
func (s *ShortLink) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}
