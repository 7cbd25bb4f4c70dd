package handler

import (
	"time"

	"github.com/blues/dps/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 结账相关请求/响应模型

// CreateCheckoutRequest 创建结账会话请求
type CreateCheckoutRequest struct {
	CampaignID string  `json:"campaign_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
	DonorEmail string  `json:"donor_email"`
	Message    string  `json:"message"`
}

// CreateCheckoutResponse 创建结账会话响应
// 浏览器端支付组件需要clientSecret、公钥和回跳地址
type CreateCheckoutResponse struct {
	ClientSecret   string  `json:"clientSecret"`
	DonationID     string  `json:"donation_id"`
	Amount         float64 `json:"amount"`
	PublishableKey string  `json:"publishable_key"`
	ReturnURL      string  `json:"return_url"`
}

// 布局相关请求/响应模型

// PutPageLayoutRequest 保存布局请求，blocks保持未定型以便本地校验
type PutPageLayoutRequest struct {
	Blocks any `json:"blocks"`
}

// GetPageLayoutResponse 获取布局响应
type GetPageLayoutResponse struct {
	Blocks any `json:"blocks"`
}

// 认证相关请求/响应模型

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User any `json:"user"`
}

// 结账记录相关响应模型

// CheckoutRecordResponse 结账记录响应模型
type CheckoutRecordResponse struct {
	ID          string    `json:"id"`
	CampaignID  string    `json:"campaignId"`
	DonationID  string    `json:"donationId"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GetCheckoutStatsResponse 获取结账统计响应
type GetCheckoutStatsResponse struct {
	Stats map[string]interface{} `json:"stats"`
}

// ToCheckoutRecordResponse 将数据库模型转换为响应模型
func ToCheckoutRecordResponse(record *model.CheckoutRecordModel) CheckoutRecordResponse {
	return CheckoutRecordResponse{
		ID:          record.Id,
		CampaignID:  record.CampaignId,
		DonationID:  record.DonationId,
		AmountCents: record.AmountCents,
		Currency:    record.Currency,
		Status:      record.Status,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
