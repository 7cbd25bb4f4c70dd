package payment

import (
	"fmt"
	"net/url"
	"strings"
)

// Client 托管支付处理器边界
//
// 确认支付由处理器的浏览器端组件完成：页面拿到clientSecret和公钥后交给
// 支付组件，处理器自行决定行内完成还是整页跳转，最终把浏览器带回含
// donation_id查询参数的回跳地址。本服务不假设具体路径。
type Client struct {
	publishableKey string
	secretKey      string
}

// NewClient 创建支付处理器客户端
func NewClient(publishableKey, secretKey string) *Client {
	return &Client{
		publishableKey: publishableKey,
		secretKey:      secretKey,
	}
}

// Configured 支付是否已配置
// 未配置是结账的致命条件：页面渲染静态的"未配置支付"状态而非交互表单
func (c *Client) Configured() bool {
	return c.publishableKey != "" && strings.HasPrefix(c.publishableKey, "pk_")
}

// PublishableKey 浏览器端公钥
func (c *Client) PublishableKey() string {
	return c.publishableKey
}

// ReturnURL 支付完成后的回跳地址，donation_id作为查询参数带回以便恢复状态轮询
func ReturnURL(origin, campaignID, donationID string) string {
	return fmt.Sprintf("%s/donate/%s/thank-you?donation_id=%s",
		strings.TrimSuffix(origin, "/"),
		url.PathEscape(campaignID),
		url.QueryEscape(donationID))
}
