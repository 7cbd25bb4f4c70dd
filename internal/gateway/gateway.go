package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blues/dps/internal/logger"
	"github.com/blues/dps/internal/model"
)

// ErrSessionExpired 会话已失效：刷新失败或刷新后仍被拒绝，凭证已被清除
var ErrSessionExpired = errors.New("会话已过期，请重新登录")

// CredentialStore 网关依赖的凭证存取接口，由session.Store实现
type CredentialStore interface {
	Get(sessionID string) (*model.CredentialSessionModel, error)
	SetAccessToken(sessionID, accessToken string) error
	Clear(sessionID string) error
}

// Response 网关响应
type Response struct {
	StatusCode int
	Body       []byte
}

// OK 是否为2xx
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode 解码JSON响应体
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// ErrorMessage 从结构化错误体提取人类可读信息，没有时退回通用传输错误
func (r *Response) ErrorMessage() string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fmt.Sprintf("request failed with status %d", r.StatusCode)
}

// Gateway 认证请求网关
//
// 所有发往平台后端的请求统一经过这里：出站自动附加Bearer访问令牌；
// 收到401时由刷新协调器保证同一会话最多一个在途刷新，其余请求排队等待，
// 刷新成功后先重放发起请求再按序放行队列；每个请求最多重试一次。
type Gateway struct {
	baseURL string
	client  *http.Client
	store   CredentialStore
	coord   *refreshCoordinator
}

// New 创建网关
func New(baseURL string, timeout time.Duration, store CredentialStore) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		store:   store,
		coord:   newRefreshCoordinator(),
	}
}

// BaseURL 平台后端地址
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Do 发送请求
// sessionID为空表示匿名请求（公开端点）；body非nil时编码为JSON
func (g *Gateway) Do(ctx context.Context, sessionID, method, path string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("编码请求体失败: %w", err)
		}
	}

	token := ""
	if sessionID != "" {
		if record, err := g.store.Get(sessionID); err == nil {
			token = record.AccessToken
		}
	}

	resp, err := g.send(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && sessionID != "" {
		return g.retryAfterRefresh(ctx, sessionID, method, path, payload)
	}
	return resp, nil
}

// retryAfterRefresh 401处理：单飞刷新后重放原始请求，且只重放一次
func (g *Gateway) retryAfterRefresh(ctx context.Context, sessionID, method, path string, payload []byte) (*Response, error) {
	record, err := g.store.Get(sessionID)
	if err != nil || record.RefreshToken == "" {
		g.teardown(sessionID)
		return nil, ErrSessionExpired
	}

	leader, wait := g.coord.begin(sessionID)

	var newToken string
	if leader {
		newToken, err = g.refresh(ctx, record.RefreshToken)
		if err != nil {
			logger.Warn("Token refresh failed for session %s: %v", sessionID, err)
			g.teardown(sessionID)
			g.coord.finish(sessionID, refreshResult{err: ErrSessionExpired})
			return nil, ErrSessionExpired
		}
		if err := g.store.SetAccessToken(sessionID, newToken); err != nil {
			g.teardown(sessionID)
			g.coord.finish(sessionID, refreshResult{err: ErrSessionExpired})
			return nil, ErrSessionExpired
		}
	} else {
		select {
		case res := <-wait:
			if res.err != nil {
				return nil, res.err
			}
			newToken = res.token
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// 发起请求先于队列重放
	resp, err := g.send(ctx, method, path, payload, newToken)
	if leader {
		g.coord.finish(sessionID, refreshResult{token: newToken})
	}
	if err != nil {
		return nil, err
	}

	// 刷新后二次401视为致命，不再重试
	if resp.StatusCode == http.StatusUnauthorized {
		g.teardown(sessionID)
		return nil, ErrSessionExpired
	}
	return resp, nil
}

// refresh 调用刷新端点换取新的访问令牌，不经过网关自身（避免递归拦截）
func (g *Gateway) refresh(ctx context.Context, refreshToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/auth/refresh", bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", errors.New("refresh endpoint returned empty access token")
	}
	return body.AccessToken, nil
}

// send 发送单次HTTP请求
func (g *Gateway) send(ctx context.Context, method, path string, payload []byte, token string) (*Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// teardown 会话拆除：清除存储的全部凭证
func (g *Gateway) teardown(sessionID string) {
	if err := g.store.Clear(sessionID); err != nil {
		logger.Error("Failed to clear session %s: %v", sessionID, err)
	}
}
