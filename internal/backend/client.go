package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/blues/dps/internal/gateway"
	"github.com/blues/dps/internal/layout"
)

// Client 平台后端REST客户端，全部请求经认证网关
type Client struct {
	gw *gateway.Gateway
}

// NewClient 创建后端客户端
func NewClient(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// LoginResult 登录结果
type LoginResult struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         json.RawMessage `json:"user"`
}

// Login 凭邮箱密码登录，返回令牌对与用户资料
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	resp, err := c.gw.Do(ctx, "", http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errors.New(resp.ErrorMessage())
	}
	var result LoginResult
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("解析登录响应失败: %w", err)
	}
	return &result, nil
}

// Profile 获取当前登录用户资料（需要会话，经网关自动刷新）
func (c *Client) Profile(ctx context.Context, sessionID string) (json.RawMessage, error) {
	resp, err := c.gw.Do(ctx, sessionID, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errors.New(resp.ErrorMessage())
	}
	return json.RawMessage(resp.Body), nil
}

// PublicCampaign 获取活动公开投影
func (c *Client) PublicCampaign(ctx context.Context, campaignID string) (*layout.Campaign, error) {
	return c.fetchCampaign(ctx, "/api/campaigns/"+url.PathEscape(campaignID)+"/public")
}

// PublicCampaignBySlug 按组织与slug获取活动公开投影
func (c *Client) PublicCampaignBySlug(ctx context.Context, org, slug string) (*layout.Campaign, error) {
	return c.fetchCampaign(ctx, "/api/public/"+url.PathEscape(org)+"/"+url.PathEscape(slug))
}

func (c *Client) fetchCampaign(ctx context.Context, path string) (*layout.Campaign, error) {
	resp, err := c.gw.Do(ctx, "", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errors.New(resp.ErrorMessage())
	}
	var campaign layout.Campaign
	if err := resp.Decode(&campaign); err != nil {
		return nil, fmt.Errorf("解析活动数据失败: %w", err)
	}
	return &campaign, nil
}

// Progress 活动进度
type Progress struct {
	Goal           float64 `json:"goal"`
	TotalRaised    float64 `json:"total_raised"`
	Percent        float64 `json:"percent"`
	DonationsCount int64   `json:"donations_count"`
}

// CampaignProgress 获取活动进度（嵌入组件用的公开端点）
func (c *Client) CampaignProgress(ctx context.Context, campaignID string) (*Progress, error) {
	resp, err := c.gw.Do(ctx, "", http.MethodGet, "/api/campaigns/"+url.PathEscape(campaignID)+"/progress", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errors.New(resp.ErrorMessage())
	}
	var progress Progress
	if err := resp.Decode(&progress); err != nil {
		return nil, fmt.Errorf("解析活动进度失败: %w", err)
	}
	return &progress, nil
}

// MediaItem 活动媒体项
type MediaItem struct {
	Id    string `json:"id"`
	URL   string `json:"url"`
	S3Key string `json:"s3_key"`
}

// CampaignMedia 获取活动媒体列表
func (c *Client) CampaignMedia(ctx context.Context, campaignID string) ([]MediaItem, error) {
	resp, err := c.gw.Do(ctx, "", http.MethodGet, "/api/campaigns/"+url.PathEscape(campaignID)+"/media", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errors.New(resp.ErrorMessage())
	}
	var media []MediaItem
	if err := resp.Decode(&media); err != nil {
		// 后端历史上返回过非数组形态，按空列表降级
		return nil, nil
	}
	return media, nil
}

// PageLayout 获取活动布局文档（属主编辑器用，需要会话）
func (c *Client) PageLayout(ctx context.Context, sessionID, campaignID string) (*layout.Document, error) {
	resp, err := c.gw.Do(ctx, sessionID, http.MethodGet, "/api/campaigns/"+url.PathEscape(campaignID)+"/page-layout", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errors.New(resp.ErrorMessage())
	}
	var body struct {
		PageLayout json.RawMessage `json:"page_layout"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, fmt.Errorf("解析布局响应失败: %w", err)
	}
	return layout.ParseDocument(body.PageLayout)
}

// PutPageLayout 保存活动布局文档，写入固定为包裹形态
func (c *Client) PutPageLayout(ctx context.Context, sessionID, campaignID string, doc *layout.Document) error {
	resp, err := c.gw.Do(ctx, sessionID, http.MethodPut, "/api/campaigns/"+url.PathEscape(campaignID)+"/page-layout", map[string]any{
		"page_layout": doc,
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return errors.New(resp.ErrorMessage())
	}
	return nil
}

// CheckoutRequest 创建结账会话请求
type CheckoutRequest struct {
	CampaignID string  `json:"campaign_id"`
	Amount     float64 `json:"amount"`
	DonorEmail string  `json:"donor_email,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// CheckoutSession 服务端签发的结账会话：一次支付尝试的短期句柄
type CheckoutSession struct {
	ClientSecret string `json:"clientSecret"`
	DonationID   string `json:"donation_id"`
}

// CreateCheckout 创建捐赠结账会话
// 200响应体内带error字段的业务错误与传输错误同等对待
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	resp, err := c.gw.Do(ctx, "", http.MethodPost, "/api/donations/checkout", req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errors.New(resp.ErrorMessage())
	}
	var body struct {
		CheckoutSession
		Error string `json:"error"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, fmt.Errorf("解析结账响应失败: %w", err)
	}
	if body.Error != "" || body.ClientSecret == "" {
		msg := body.Error
		if msg == "" {
			msg = "Checkout failed"
		}
		return nil, errors.New(msg)
	}
	return &body.CheckoutSession, nil
}

// Donation 捐赠记录（状态轮询用）
type Donation struct {
	Id          string `json:"id"`
	CampaignID  string `json:"campaign_id"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Donor       string `json:"donor"`
	Message     string `json:"message"`
}

// GetDonation 查询捐赠状态
func (c *Client) GetDonation(ctx context.Context, donationID string) (*Donation, error) {
	resp, err := c.gw.Do(ctx, "", http.MethodGet, "/api/donations/"+url.PathEscape(donationID), nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, errors.New(resp.ErrorMessage())
	}
	var donation Donation
	if err := resp.Decode(&donation); err != nil {
		return nil, fmt.Errorf("解析捐赠数据失败: %w", err)
	}
	return &donation, nil
}
