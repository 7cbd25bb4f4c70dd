package gateway

import (
	"sync"
)

// refreshResult 一次刷新的结果，发布给所有等待者
type refreshResult struct {
	token string
	err   error
}

// refreshCoordinator 单飞刷新协调器
//
// 状态机：空闲 | 刷新中(等待者队列)。按会话ID分组：同一凭证对最多只有一个
// 刷新请求在途，期间其它失败请求登记回调等待结果；不同会话互不阻塞。
type refreshCoordinator struct {
	mu       sync.Mutex
	inflight map[string][]chan refreshResult
}

func newRefreshCoordinator() *refreshCoordinator {
	return &refreshCoordinator{
		inflight: make(map[string][]chan refreshResult),
	}
}

// begin 登记一次刷新意向
// 返回leader=true表示由调用方执行刷新；否则返回等待通道，刷新结束后按登记顺序收到结果
func (rc *refreshCoordinator) begin(sessionID string) (leader bool, wait <-chan refreshResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, refreshing := rc.inflight[sessionID]; refreshing {
		ch := make(chan refreshResult, 1)
		rc.inflight[sessionID] = append(rc.inflight[sessionID], ch)
		return false, ch
	}
	rc.inflight[sessionID] = nil
	return true, nil
}

// finish 结束刷新并按FIFO顺序放行等待者
// 刷新失败时等待者收到错误而不是被悬挂，调用方据此统一走会话拆除路径
func (rc *refreshCoordinator) finish(sessionID string, res refreshResult) {
	rc.mu.Lock()
	waiters := rc.inflight[sessionID]
	delete(rc.inflight, sessionID)
	rc.mu.Unlock()

	for _, ch := range waiters {
		ch <- res
	}
}
