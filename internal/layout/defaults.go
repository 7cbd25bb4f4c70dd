package layout

// defaultPresetAmounts 标准预设金额阶梯
var defaultPresetAmounts = []float64{5, 10, 25, 50, 100}

// DefaultPresetAmounts 标准预设金额阶梯的副本
func DefaultPresetAmounts() []float64 {
	out := make([]float64, len(defaultPresetAmounts))
	copy(out, defaultPresetAmounts)
	return out
}

// DefaultBlocks 为没有自定义布局的活动合成默认布局
//
// 固定四块：标题hero、进度信息、捐赠按钮（标准金额阶梯）、页脚。
// 相同活动快照下结果必须一致，不读写任何持久化布局。
func DefaultBlocks(c Campaign) []Block {
	title := c.Title
	if title == "" {
		title = "Campaign"
	}
	return []Block{
		{
			ID:   "hero-1",
			Type: BlockTypeHero,
			Props: map[string]any{
				"title":    title,
				"subtitle": "Thank you for your support.",
			},
		},
		{
			ID:   "info-1",
			Type: BlockTypeCampaignInfo,
			Props: map[string]any{
				"show_goal":            true,
				"show_progress_bar":    true,
				"show_donations_count": true,
				"show_winner":          true,
			},
		},
		{
			ID:   "donate-1",
			Type: BlockTypeDonateButton,
			Props: map[string]any{
				"preset_amounts": []any{float64(5), float64(10), float64(25), float64(50), float64(100)},
				"label":          "Donate",
			},
		},
		{
			ID:   "footer-1",
			Type: BlockTypeFooter,
			Props: map[string]any{
				"show_org_name": true,
			},
		},
	}
}

// ResolvePresetAmounts 解析捐赠按钮的预设金额
//
// 取第一个donate_button的preset_amounts；只保留大于0的数值项；
// 缺失、为空或全部无效时回退到标准阶梯，绝不返回空列表。
func ResolvePresetAmounts(blocks []Block) []float64 {
	for _, b := range blocks {
		if b.Type != BlockTypeDonateButton {
			continue
		}
		raw, ok := b.Props["preset_amounts"].([]any)
		if !ok || len(raw) == 0 {
			break
		}
		amounts := make([]float64, 0, len(raw))
		for _, item := range raw {
			if n, ok := item.(float64); ok && n > 0 {
				amounts = append(amounts, n)
			}
		}
		if len(amounts) > 0 {
			return amounts
		}
		break
	}
	return DefaultPresetAmounts()
}
