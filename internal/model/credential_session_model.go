package model

import (
	"time"
)

// CredentialSessionModel 凭证会话记录
type CredentialSessionModel struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AccessToken  string `json:"-" gorm:"type:text;not null"`
	RefreshToken string `json:"-" gorm:"type:text"`
	UserJSON     string `json:"user_json" gorm:"type:text"` // 缓存的用户资料（JSON）
}

// TableName 自定义表名
func (CredentialSessionModel) TableName() string {
	return "credential_session"
}
