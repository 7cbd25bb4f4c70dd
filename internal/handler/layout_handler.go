package handler

import (
	"errors"
	"net/http"

	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/gateway"
	"github.com/blues/dps/internal/layout"
	"github.com/gin-gonic/gin"
)

// sessionCookieName 凭证会话cookie
const sessionCookieName = "dps_session"

// LayoutHandler 布局编辑器API处理器
type LayoutHandler struct {
	backend *backend.Client
}

// NewLayoutHandler 创建布局处理器
func NewLayoutHandler(backendClient *backend.Client) *LayoutHandler {
	return &LayoutHandler{backend: backendClient}
}

// GetPageLayout 获取活动布局
func (h *LayoutHandler) GetPageLayout(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "未登录")
		return
	}

	doc, err := h.backend.PageLayout(c.Request.Context(), sessionID, c.Param("id"))
	if err != nil {
		respondBackendError(c, err)
		return
	}

	blocks := doc.Blocks
	if blocks == nil {
		blocks = []layout.Block{}
	}
	SuccessResponse(c, http.StatusOK, "获取布局成功", GetPageLayoutResponse{Blocks: blocks})
}

// PutPageLayout 保存活动布局
// 先本地校验再转发：本地校验与后端决策一致，预览放行的布局保存必须同样放行
func (h *LayoutHandler) PutPageLayout(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "未登录")
		return
	}

	var req PutPageLayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数")
		return
	}

	if err := layout.Validate(req.Blocks); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	// 校验通过后定型为Block列表，写入固定为包裹形态
	doc := &layout.Document{}
	rawBlocks := req.Blocks.([]any)
	for _, item := range rawBlocks {
		obj := item.(map[string]any)
		block := layout.Block{
			ID:   obj["id"].(string),
			Type: layout.BlockType(obj["type"].(string)),
		}
		if props, ok := obj["props"].(map[string]any); ok {
			block.Props = props
		}
		doc.Blocks = append(doc.Blocks, block)
	}

	if err := h.backend.PutPageLayout(c.Request.Context(), sessionID, c.Param("id"), doc); err != nil {
		respondBackendError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "布局保存成功", nil)
}

// respondBackendError 区分会话失效与普通后端错误
func respondBackendError(c *gin.Context, err error) {
	if errors.Is(err, gateway.ErrSessionExpired) {
		c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	ErrorResponse(c, http.StatusBadGateway, err.Error())
}
