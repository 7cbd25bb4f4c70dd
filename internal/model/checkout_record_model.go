package model

import (
	"time"
)

// CheckoutRecordModel 捐赠结账记录
type CheckoutRecordModel struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId  string `json:"campaign_id" gorm:"not null;index"`
	DonationId  string `json:"donation_id" gorm:"uniqueIndex"`
	AmountCents int64  `json:"amount_cents" gorm:"not null"`
	Currency    string `json:"currency" gorm:"default:'usd'"`
	DonorEmail  string `json:"donor_email"`
	Message     string `json:"message" gorm:"type:text"`
	Status      string `json:"status" gorm:"default:'pending';index"` // pending, succeeded, failed, canceled
}

// DonationStatus 捐赠状态
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"   // 待确认
	DonationStatusSucceeded DonationStatus = "succeeded" // 成功
	DonationStatusFailed    DonationStatus = "failed"    // 失败
	DonationStatusCanceled  DonationStatus = "canceled"  // 已取消
)

// IsTerminal 是否为终态（终态后不再轮询）
func (s DonationStatus) IsTerminal() bool {
	return s == DonationStatusSucceeded || s == DonationStatusFailed || s == DonationStatusCanceled
}

// TableName 自定义表名
func (CheckoutRecordModel) TableName() string {
	return "checkout_record"
}
