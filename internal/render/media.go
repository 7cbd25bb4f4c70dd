package render

import (
	"context"
	"sync"
	"time"

	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/layout"
	"github.com/blues/dps/internal/logger"
)

// mediaFetchTimeout 媒体拉取超时：慢媒体不能拖住整页渲染
const mediaFetchTimeout = 5 * time.Second

// MediaFetcher 媒体拉取依赖（backend.Client实现）
type MediaFetcher interface {
	CampaignMedia(ctx context.Context, campaignID string) ([]backend.MediaItem, error)
}

type mediaResult struct {
	items []backend.MediaItem
	err   error
}

// prefetchMedia 并发预取布局中所有媒体画廊区块的媒体
//
// 每个画廊区块一次拉取，提交到协程池并行执行；单个区块拉取失败或超时
// 只降级该区块，不影响其它区块渲染。
func (r *Renderer) prefetchMedia(ctx context.Context, blocks []layout.Block, campaignID string) map[string]mediaResult {
	results := make(map[string]mediaResult)

	var galleries []string
	for _, b := range blocks {
		if b.Type == layout.BlockTypeMediaGallery {
			galleries = append(galleries, b.ID)
		}
	}
	if len(galleries) == 0 {
		return results
	}

	fetchCtx, cancel := context.WithTimeout(ctx, mediaFetchTimeout)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, blockID := range galleries {
		blockID := blockID
		wg.Add(1)
		task := func() {
			defer wg.Done()
			items, err := r.media.CampaignMedia(fetchCtx, campaignID)
			mu.Lock()
			results[blockID] = mediaResult{items: items, err: err}
			mu.Unlock()
		}
		if err := r.pool.Submit(task); err != nil {
			// 池不可用时退回同步执行，保证区块仍有结果
			logger.Warn("Media fetch pool submit failed: %v", err)
			task()
		}
	}
	wg.Wait()

	return results
}
