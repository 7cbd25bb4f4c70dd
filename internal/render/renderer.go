package render

import (
	"context"
	"html/template"
	"strings"

	"github.com/blues/dps/internal/layout"
	"github.com/blues/dps/internal/logger"
	"github.com/panjf2000/ants/v2"
)

// Renderer 区块渲染分发器
//
// 按类型标签把每个区块分发给对应策略。分发对标签是全函数：七个已知可渲染
// 类型各对应一个策略，progress_tube渲染进度管，其余一律渲染可见的未知区块
// 占位符——展示侧永不因为前向不兼容的数据崩溃（校验侧是严格的，两者刻意
// 不对称）。各策略只读自己的props子集，互相独立、可重排。
type Renderer struct {
	media MediaFetcher
	pool  *ants.Pool
}

// NewRenderer 创建渲染器，poolSize为媒体预取协程池大小
func NewRenderer(media MediaFetcher, poolSize int) (*Renderer, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &Renderer{media: media, pool: pool}, nil
}

// Close 释放协程池
func (r *Renderer) Close() {
	r.pool.Release()
}

// Render 渲染区块序列为HTML片段
// donateURL是捐赠按钮的跳转目标；渲染侧不持有任何结账状态
func (r *Renderer) Render(ctx context.Context, blocks []layout.Block, campaign *layout.Campaign, donateURL string) template.HTML {
	media := r.prefetchMedia(ctx, blocks, campaign.ID)

	var out strings.Builder
	for _, block := range blocks {
		fragment, err := r.renderBlock(block, campaign, donateURL, media)
		if err != nil {
			logger.Error("Failed to render block %s (%s): %v", block.ID, block.Type, err)
			continue
		}
		out.WriteString(string(fragment))
	}
	return template.HTML(out.String())
}

func (r *Renderer) renderBlock(block layout.Block, campaign *layout.Campaign, donateURL string, media map[string]mediaResult) (template.HTML, error) {
	switch block.Type {
	case layout.BlockTypeHero:
		return renderHero(block, campaign)
	case layout.BlockTypeCampaignInfo:
		return renderCampaignInfo(block, campaign)
	case layout.BlockTypeDonateButton:
		return renderDonateButton(block, donateURL)
	case layout.BlockTypeText:
		return renderText(block)
	case layout.BlockTypeMediaGallery:
		result := media[block.ID]
		return renderMediaGallery(block, result.items, result.err)
	case layout.BlockTypeEmbed:
		return renderEmbed(block)
	case layout.BlockTypeFooter:
		return renderFooter(block)
	case layout.BlockTypeProgressTube:
		return renderProgressTube(block, campaign)
	default:
		return renderUnknown(block)
	}
}
