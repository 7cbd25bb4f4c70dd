package layout

import (
	"encoding/json"
	"errors"
)

// Document 持久化的布局文档
// 历史上后端存过裸数组和 {blocks: [...]} 两种形态，读取时两者都要接受；
// 写入时一律使用 {blocks: [...]} 包裹形态
type Document struct {
	Blocks []Block
}

type documentEnvelope struct {
	Blocks []Block `json:"blocks"`
}

// UnmarshalJSON 兼容裸数组与包裹两种持久化形态
func (d *Document) UnmarshalJSON(data []byte) error {
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err == nil {
		d.Blocks = blocks
		return nil
	}

	var envelope documentEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return errors.New("页面布局格式无法识别")
	}
	d.Blocks = envelope.Blocks
	return nil
}

// MarshalJSON 写入时固定为包裹形态
func (d Document) MarshalJSON() ([]byte, error) {
	blocks := d.Blocks
	if blocks == nil {
		blocks = []Block{}
	}
	return json.Marshal(documentEnvelope{Blocks: blocks})
}

// ParseDocument 解析持久化布局文档
func ParseDocument(raw json.RawMessage) (*Document, error) {
	if len(raw) == 0 {
		return &Document{}, nil
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
