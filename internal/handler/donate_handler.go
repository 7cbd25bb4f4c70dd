package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/checkout"
	"github.com/blues/dps/internal/layout"
	"github.com/blues/dps/internal/logger"
	"github.com/blues/dps/internal/logic"
	"github.com/blues/dps/internal/model"
	"github.com/blues/dps/internal/payment"
	"github.com/blues/dps/internal/render"
	"github.com/gin-gonic/gin"
)

// DonateHandler 捐赠页与结账处理器
type DonateHandler struct {
	backend       *backend.Client
	renderer      *render.Renderer
	payments      *payment.Client
	checkoutLogic *logic.CheckoutRecordLogic
	poller        *checkout.Poller
	publicOrigin  string
}

// NewDonateHandler 创建捐赠页处理器
func NewDonateHandler(backendClient *backend.Client, renderer *render.Renderer, payments *payment.Client, checkoutLogic *logic.CheckoutRecordLogic, publicOrigin string) *DonateHandler {
	return &DonateHandler{
		backend:       backendClient,
		renderer:      renderer,
		payments:      payments,
		checkoutLogic: checkoutLogic,
		poller:        checkout.NewPoller(backendClient),
		publicOrigin:  publicOrigin,
	}
}

// GetDonatePage 渲染活动捐赠页
func (h *DonateHandler) GetDonatePage(c *gin.Context) {
	campaign, err := h.backend.PublicCampaign(c.Request.Context(), c.Param("campaignId"))
	if err != nil {
		h.renderMessagePage(c, http.StatusNotFound, "Campaign not found", err.Error(), "", "")
		return
	}
	h.renderDonatePage(c, campaign)
}

// GetDonatePageBySlug 按组织与slug渲染活动捐赠页
func (h *DonateHandler) GetDonatePageBySlug(c *gin.Context) {
	campaign, err := h.backend.PublicCampaignBySlug(c.Request.Context(), c.Param("org"), c.Param("slug"))
	if err != nil {
		h.renderMessagePage(c, http.StatusNotFound, "Campaign not found", err.Error(), "", "")
		return
	}
	h.renderDonatePage(c, campaign)
}

func (h *DonateHandler) renderDonatePage(c *gin.Context, campaign *layout.Campaign) {
	// 支付未配置对结账是致命条件：渲染静态替代页而不是交互表单
	if !h.payments.Configured() {
		h.renderMessagePage(c, http.StatusOK, "Payment not configured",
			"Payment is not configured. Add the payment publishable key to the server environment.", "", "")
		return
	}

	blocks := campaign.Blocks()
	blocksHTML := h.renderer.Render(c.Request.Context(), blocks, campaign, "#donate")

	title := campaign.Title
	if title == "" {
		title = "Campaign"
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := pageTemplates.ExecuteTemplate(c.Writer, "donate_page", map[string]any{
		"Title":      title,
		"CampaignID": campaign.ID,
		"BlocksHTML": blocksHTML,
		"Presets":    layout.ResolvePresetAmounts(blocks),
	})
	if err != nil {
		logger.Error("Failed to render donate page for campaign %s: %v", campaign.ID, err)
	}
}

// CreateCheckout 创建结账会话
func (h *DonateHandler) CreateCheckout(c *gin.Context) {
	if !h.payments.Configured() {
		ErrorResponse(c, http.StatusServiceUnavailable, "支付未配置")
		return
	}

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数")
		return
	}

	orchestrator := checkout.NewOrchestrator(h.backend, req.CampaignID)
	orchestrator.SelectPreset(req.Amount)
	orchestrator.SetDonorEmail(req.DonorEmail)
	orchestrator.SetMessage(req.Message)

	session, err := orchestrator.Submit(c.Request.Context())
	if err != nil {
		// 创建会话失败可恢复：错误原样透出，调用方停留在选金额视图
		ErrorResponse(c, http.StatusBadGateway, err.Error())
		return
	}

	// 本地影子记录，失败不阻塞结账
	if _, err := h.checkoutLogic.CreateCheckoutRecord(req.CampaignID, session.DonationID, session.Amount, "usd", req.DonorEmail, req.Message); err != nil {
		logger.Warn("Failed to record checkout for donation %s: %v", session.DonationID, err)
	}

	SuccessResponse(c, http.StatusOK, "结账会话创建成功", CreateCheckoutResponse{
		ClientSecret:   session.ClientSecret,
		DonationID:     session.DonationID,
		Amount:         session.Amount,
		PublishableKey: h.payments.PublishableKey(),
		ReturnURL:      payment.ReturnURL(h.publicOrigin, req.CampaignID, session.DonationID),
	})
}

// GetThankYouPage 支付回跳页：轮询捐赠状态直到终态或预算用尽
func (h *DonateHandler) GetThankYouPage(c *gin.Context) {
	campaignID := c.Param("campaignId")
	donateURL := "/donate/" + url.PathEscape(campaignID)

	donationID := c.Query("donation_id")
	if donationID == "" {
		h.renderMessagePage(c, http.StatusBadRequest, "Something went wrong", "Missing donation reference.", donateURL, "Try again")
		return
	}

	result, err := h.poller.Poll(c.Request.Context(), donationID)
	if err != nil {
		h.renderMessagePage(c, http.StatusBadGateway, "Something went wrong", err.Error(), donateURL, "Try again")
		return
	}

	switch result.Outcome {
	case checkout.OutcomeSucceeded:
		h.resolveRecord(donationID, model.DonationStatusSucceeded)
		h.renderThankYou(c, campaignID, donateURL, result.Donation)

	case checkout.OutcomeFailed:
		h.resolveRecord(donationID, model.DonationStatus(result.Donation.Status))
		h.renderMessagePage(c, http.StatusOK, "Something went wrong", "Your payment could not be completed.", donateURL, "Try again")

	default:
		// 次数用尽仍为pending：不宣告成败，交给后台对账任务
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplates.ExecuteTemplate(c.Writer, "thank_you_pending", map[string]any{"DonateURL": donateURL}); err != nil {
			logger.Error("Failed to render pending page: %v", err)
		}
	}
}

func (h *DonateHandler) resolveRecord(donationID string, status model.DonationStatus) {
	if !status.IsTerminal() {
		return
	}
	if err := h.checkoutLogic.ResolveStatus(donationID, status); err != nil {
		logger.Warn("Failed to resolve checkout record %s: %v", donationID, err)
	}
}

func (h *DonateHandler) renderThankYou(c *gin.Context, campaignID, donateURL string, donation *backend.Donation) {
	campaignTitle := ""
	if campaign, err := h.backend.PublicCampaign(c.Request.Context(), campaignID); err == nil {
		campaignTitle = campaign.Title
	}

	shareURL := h.publicOrigin + donateURL
	shareText := "I just made a donation!"
	if campaignTitle != "" {
		shareText = fmt.Sprintf("I just donated to %s!", campaignTitle)
	}

	currency := "USD"
	if donation.Currency != "" {
		currency = strings.ToUpper(donation.Currency)
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := pageTemplates.ExecuteTemplate(c.Writer, "thank_you_success", map[string]any{
		"Amount":        fmt.Sprintf("%.2f", float64(donation.AmountCents)/100),
		"Currency":      currency,
		"CampaignTitle": campaignTitle,
		"DonorMessage":  donation.Message,
		"ShareText":     url.QueryEscape(shareText),
		"ShareURL":      url.QueryEscape(shareURL),
		"DonateURL":     donateURL,
	})
	if err != nil {
		logger.Error("Failed to render thank-you page: %v", err)
	}
}

// ListCheckouts 获取最近的结账记录列表
func (h *DonateHandler) ListCheckouts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.checkoutLogic.RecentCheckoutRecords(limit)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]CheckoutRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, ToCheckoutRecordResponse(&records[i]))
	}
	SuccessResponse(c, http.StatusOK, "获取结账记录成功", out)
}

// GetCheckoutStats 获取结账统计信息
func (h *DonateHandler) GetCheckoutStats(c *gin.Context) {
	stats, err := h.checkoutLogic.GetCheckoutStats()
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "获取结账统计信息成功", GetCheckoutStatsResponse{Stats: stats})
}

func (h *DonateHandler) renderMessagePage(c *gin.Context, status int, title, message, linkURL, linkText string) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := pageTemplates.ExecuteTemplate(c.Writer, "message_page", map[string]any{
		"Title":    title,
		"Message":  message,
		"LinkURL":  linkURL,
		"LinkText": linkText,
	})
	if err != nil {
		logger.Error("Failed to render message page: %v", err)
	}
}
