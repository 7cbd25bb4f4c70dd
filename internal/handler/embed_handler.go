package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/logger"
	"github.com/gin-gonic/gin"
)

// EmbedHandler 嵌入式进度组件处理器
//
// 只读视图，供第三方站点iframe嵌入：消费公开进度端点，除一条回到完整
// 捐赠页的链接外不提供任何结账入口。
type EmbedHandler struct {
	backend      *backend.Client
	publicOrigin string
}

// NewEmbedHandler 创建嵌入组件处理器
func NewEmbedHandler(backendClient *backend.Client, publicOrigin string) *EmbedHandler {
	return &EmbedHandler{
		backend:      backendClient,
		publicOrigin: publicOrigin,
	}
}

// GetProgressWidget 渲染活动进度小组件
func (h *EmbedHandler) GetProgressWidget(c *gin.Context) {
	campaignID := c.Param("campaignId")

	progress, err := h.backend.CampaignProgress(c.Request.Context(), campaignID)
	if err != nil {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusNotFound, "<div class=\"embed-progress\" style=\"padding: 1rem; font-size: 14px; color: #666\">Campaign not found.</div>")
		return
	}

	// 标题尽力而为：取不到也照常渲染进度
	title := ""
	if campaign, err := h.backend.PublicCampaign(c.Request.Context(), campaignID); err == nil {
		title = campaign.Title
	}

	percent := progress.Percent
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err = pageTemplates.ExecuteTemplate(c.Writer, "embed_progress", map[string]any{
		"Title":     title,
		"Raised":    fmt.Sprintf("%.0f", progress.TotalRaised),
		"Goal":      fmt.Sprintf("%.0f", progress.Goal),
		"Percent":   fmt.Sprintf("%.1f", percent),
		"DonateURL": h.publicOrigin + "/donate/" + url.PathEscape(campaignID),
	})
	if err != nil {
		logger.Error("Failed to render embed widget for campaign %s: %v", campaignID, err)
	}
}
