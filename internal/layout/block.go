package layout

// BlockType 区块类型标签
type BlockType string

const (
	BlockTypeHero         BlockType = "hero"
	BlockTypeCampaignInfo BlockType = "campaign_info"
	BlockTypeDonateButton BlockType = "donate_button"
	BlockTypeMediaGallery BlockType = "media_gallery"
	BlockTypeText         BlockType = "text"
	BlockTypeEmbed        BlockType = "embed"
	BlockTypeFooter       BlockType = "footer"
	BlockTypeProgressTube BlockType = "progress_tube"
)

// blockTypes 已知区块类型集合（校验用，与平台后端保持一致）
var blockTypes = map[BlockType]bool{
	BlockTypeHero:         true,
	BlockTypeCampaignInfo: true,
	BlockTypeDonateButton: true,
	BlockTypeMediaGallery: true,
	BlockTypeText:         true,
	BlockTypeEmbed:        true,
	BlockTypeFooter:       true,
	BlockTypeProgressTube: true,
}

// Block 捐赠页的一个内容区块
// props 为开放属性袋：读取时按需取值并给默认值，持久化形态保持不变以兼容新旧版本
type Block struct {
	ID    string         `json:"id"`
	Type  BlockType      `json:"type"`
	Props map[string]any `json:"props,omitempty"`
}

// StringProp 读取字符串属性，缺失或类型不符时返回默认值
func (b Block) StringProp(key, fallback string) string {
	if v, ok := b.Props[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// NumberProp 读取数值属性，JSON解码后数值统一为float64
func (b Block) NumberProp(key string, fallback float64) float64 {
	if v, ok := b.Props[key].(float64); ok {
		return v
	}
	return fallback
}

// BoolProp 读取布尔属性
func (b Block) BoolProp(key string, fallback bool) bool {
	if v, ok := b.Props[key].(bool); ok {
		return v
	}
	return fallback
}

// LatestWinner 最近一次抽奖的中奖信息（后端反规范化字段）
type LatestWinner struct {
	Donor       string `json:"donor"`
	AmountCents int64  `json:"amount_cents"`
	CreatedAt   string `json:"created_at"`
}

// Campaign 活动公开投影，本服务只读
type Campaign struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Slug               string        `json:"slug"`
	Goal               float64       `json:"goal"`
	TotalRaised        float64       `json:"total_raised"`
	GiveawayPrizeCents int64         `json:"giveaway_prize_cents"`
	LatestWinner       *LatestWinner `json:"latest_winner,omitempty"`
	PageLayout         *Document     `json:"page_layout,omitempty"`
}

// Blocks 活动的有效区块列表：无自定义布局时合成默认布局
func (c Campaign) Blocks() []Block {
	if c.PageLayout != nil && len(c.PageLayout.Blocks) > 0 {
		return c.PageLayout.Blocks
	}
	return DefaultBlocks(c)
}
