package logic

import (
	"errors"
	"time"

	"github.com/blues/dps/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutRecordLogic 结账记录业务逻辑
//
// 本地记账：每次创建结账会话都落一条记录，供对账任务和统计端点使用。
// 捐赠数据的权威来源是平台后端，这里只是影子记录。
type CheckoutRecordLogic struct {
	db *gorm.DB
}

// NewCheckoutRecordLogic 创建结账记录业务逻辑
func NewCheckoutRecordLogic(db *gorm.DB) *CheckoutRecordLogic {
	return &CheckoutRecordLogic{db: db}
}

// CreateCheckoutRecord 创建结账记录
func (l *CheckoutRecordLogic) CreateCheckoutRecord(campaignID, donationID string, amount float64, currency, donorEmail, message string) (*model.CheckoutRecordModel, error) {
	if campaignID == "" {
		return nil, errors.New("活动ID不能为空")
	}
	if donationID == "" {
		return nil, errors.New("捐赠ID不能为空")
	}
	if amount <= 0 {
		return nil, errors.New("金额必须为正数")
	}
	if currency == "" {
		currency = "usd"
	}

	record := &model.CheckoutRecordModel{
		Id:          uuid.NewString(),
		CampaignId:  campaignID,
		DonationId:  donationID,
		AmountCents: int64(amount*100 + 0.5),
		Currency:    currency,
		DonorEmail:  donorEmail,
		Message:     message,
		Status:      string(model.DonationStatusPending),
	}
	if err := l.db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// ResolveStatus 按捐赠ID收敛记录状态，只接受终态
func (l *CheckoutRecordLogic) ResolveStatus(donationID string, status model.DonationStatus) error {
	if !status.IsTerminal() {
		return errors.New("只允许更新为终态")
	}
	return l.db.Model(&model.CheckoutRecordModel{}).
		Where("donation_id = ?", donationID).
		Update("status", string(status)).Error
}

// StalePendingRecords 查找超过指定时长仍为pending的记录（对账任务用）
func (l *CheckoutRecordLogic) StalePendingRecords(olderThan time.Duration, limit int) ([]model.CheckoutRecordModel, error) {
	var records []model.CheckoutRecordModel
	cutoff := time.Now().Add(-olderThan)
	err := l.db.Where("status = ? AND created_at < ?", string(model.DonationStatusPending), cutoff).
		Order("created_at asc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// RecentCheckoutRecords 最近的结账记录，按创建时间倒序（统计面板用）
func (l *CheckoutRecordLogic) RecentCheckoutRecords(limit int) ([]model.CheckoutRecordModel, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var records []model.CheckoutRecordModel
	err := l.db.Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetCheckoutStats 获取结账统计信息
func (l *CheckoutRecordLogic) GetCheckoutStats() (map[string]interface{}, error) {
	var total, succeeded, pending int64
	var succeededCents int64

	if err := l.db.Model(&model.CheckoutRecordModel{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if err := l.db.Model(&model.CheckoutRecordModel{}).
		Where("status = ?", string(model.DonationStatusSucceeded)).
		Count(&succeeded).Error; err != nil {
		return nil, err
	}
	if err := l.db.Model(&model.CheckoutRecordModel{}).
		Where("status = ?", string(model.DonationStatusPending)).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	row := l.db.Model(&model.CheckoutRecordModel{}).
		Where("status = ?", string(model.DonationStatusSucceeded)).
		Select("COALESCE(SUM(amount_cents), 0)").
		Row()
	if err := row.Scan(&succeededCents); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"totalCheckouts":     total,
		"succeededCheckouts": succeeded,
		"pendingCheckouts":   pending,
		"succeededCents":     succeededCents,
	}, nil
}
