package session

import (
	"errors"

	"github.com/blues/dps/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound 会话不存在
var ErrNotFound = errors.New("会话不存在")

// Store 凭证会话存储，只做数据存取，不含刷新策略
type Store struct {
	db *gorm.DB
}

// NewStore 创建凭证会话存储
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create 创建会话，返回会话ID
func (s *Store) Create(accessToken, refreshToken, userJSON string) (string, error) {
	record := &model.CredentialSessionModel{
		Id:           uuid.NewString(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserJSON:     userJSON,
	}
	if err := s.db.Create(record).Error; err != nil {
		return "", err
	}
	return record.Id, nil
}

// Get 查询会话
func (s *Store) Get(sessionID string) (*model.CredentialSessionModel, error) {
	var record model.CredentialSessionModel
	if err := s.db.First(&record, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// SetAccessToken 更新访问令牌（刷新成功后由网关调用）
func (s *Store) SetAccessToken(sessionID, accessToken string) error {
	return s.db.Model(&model.CredentialSessionModel{}).
		Where("id = ?", sessionID).
		Update("access_token", accessToken).Error
}

// Clear 清除会话（登出或刷新失败时的会话拆除）
func (s *Store) Clear(sessionID string) error {
	return s.db.Delete(&model.CredentialSessionModel{}, "id = ?", sessionID).Error
}

// UserJSON 读取缓存的用户资料
func (s *Store) UserJSON(sessionID string) (string, error) {
	record, err := s.Get(sessionID)
	if err != nil {
		return "", err
	}
	return record.UserJSON, nil
}
