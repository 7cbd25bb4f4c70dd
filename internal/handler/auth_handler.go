package handler

import (
	"encoding/json"
	"net/http"

	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/logger"
	"github.com/blues/dps/internal/session"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
// 登录代理到平台后端，令牌对落在服务端会话存储，浏览器只持有会话cookie
type AuthHandler struct {
	backend *backend.Client
	store   *session.Store
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(backendClient *backend.Client, store *session.Store) *AuthHandler {
	return &AuthHandler{
		backend: backendClient,
		store:   store,
	}
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数")
		return
	}

	result, err := h.backend.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	sessionID, err := h.store.Create(result.AccessToken, result.RefreshToken, string(result.User))
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "创建会话失败")
		return
	}

	c.SetCookie(sessionCookieName, sessionID, 0, "/", "", false, true)

	var user any
	if len(result.User) > 0 {
		if err := json.Unmarshal(result.User, &user); err != nil {
			user = nil
		}
	}
	SuccessResponse(c, http.StatusOK, "登录成功", LoginResponse{User: user})
}

// Me 当前登录用户资料
// 登录时缓存的资料优先，缓存为空时回源平台后端
func (h *AuthHandler) Me(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "未登录")
		return
	}

	raw, err := h.store.UserJSON(sessionID)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "未登录")
		return
	}
	if raw == "" {
		fetched, err := h.backend.Profile(c.Request.Context(), sessionID)
		if err != nil {
			respondBackendError(c, err)
			return
		}
		raw = string(fetched)
	}

	var user any
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "解析用户资料失败")
		return
	}
	SuccessResponse(c, http.StatusOK, "获取用户资料成功", LoginResponse{User: user})
}

// Logout 登出：清除会话记录与cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(sessionCookieName); err == nil {
		if err := h.store.Clear(sessionID); err != nil {
			logger.Warn("Failed to clear session %s: %v", sessionID, err)
		}
	}
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	SuccessResponse(c, http.StatusOK, "已登出", nil)
}
