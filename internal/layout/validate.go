package layout

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// MaxBlocks 单个布局允许的区块数量上限
	MaxBlocks = 50
	// MaxIDLen 区块ID最大长度
	MaxIDLen = 100
)

// validID 区块ID规则（与平台后端一致）：1-100字符，去掉 - 和 _ 之后剩余部分非空且全为字母数字
func validID(id string) bool {
	if id == "" || len(id) > MaxIDLen {
		return false
	}
	stripped := strings.NewReplacer("-", "", "_", "").Replace(id)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if !isAlnum(r) {
			return false
		}
	}
	return true
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// sortedTypeNames 错误信息里列出的已知类型，按字典序
func sortedTypeNames() string {
	names := make([]string, 0, len(blockTypes))
	for t := range blockTypes {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Validate 校验候选布局
//
// 输入是尚未定型的JSON解码结果（保存请求可能带任何东西）。镜像平台后端的校验
// 决策：本地放行的布局提交到后端必须同样放行，否则预览通过后保存会莫名失败。
// 逐块按序检查，遇到第一个violation立即返回；单块内检查顺序为
// 对象性 → ID合法性 → ID唯一性 → 类型归属 → props形态。
func Validate(candidate any) error {
	blocks, ok := candidate.([]any)
	if !ok {
		return fmt.Errorf("layout must be an array of blocks")
	}
	if len(blocks) > MaxBlocks {
		return fmt.Errorf("at most %d blocks allowed", MaxBlocks)
	}

	seen := make(map[string]bool, len(blocks))
	for i, item := range blocks {
		obj, ok := item.(map[string]any)
		if !ok || obj == nil {
			return fmt.Errorf("block %d must be an object", i)
		}

		id, _ := obj["id"].(string)
		if !validID(id) {
			return fmt.Errorf("block %d: id required and must be alphanumeric with - or _", i)
		}
		if seen[id] {
			return fmt.Errorf("block %d: duplicate id '%s'", i, id)
		}
		seen[id] = true

		typ, _ := obj["type"].(string)
		if typ == "" || !blockTypes[BlockType(typ)] {
			return fmt.Errorf("block %d: type must be one of %s", i, sortedTypeNames())
		}

		if props, exists := obj["props"]; exists && props != nil {
			if _, isObj := props.(map[string]any); !isObj {
				return fmt.Errorf("block %d: props must be an object", i)
			}
		}
	}
	return nil
}

// ValidateBlocks 校验已定型的区块列表（编辑器内部路径）
func ValidateBlocks(blocks []Block) error {
	candidate := make([]any, len(blocks))
	for i, b := range blocks {
		obj := map[string]any{"id": b.ID, "type": string(b.Type)}
		if b.Props != nil {
			props := make(map[string]any, len(b.Props))
			for k, v := range b.Props {
				props[k] = v
			}
			obj["props"] = props
		}
		candidate[i] = obj
	}
	return Validate(candidate)
}
