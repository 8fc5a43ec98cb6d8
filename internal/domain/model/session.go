package model

import "time"

// サーバー側で持つセッション。
// cookieには平文トークン、DBにはそのハッシュだけを保存する。
type Session struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	TokenHash string    `json:"-" gorm:"type:varchar(64);not null;uniqueIndex"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	Username  string    `json:"username" gorm:"type:varchar(50);not null"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;autoUpdateTime"`
}

func (s Session) Principal() Principal {
	return Principal{ID: s.UserID, Username: s.Username, Role: s.Role}
}

// 絶対期限を過ぎたか
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
