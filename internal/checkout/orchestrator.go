package checkout

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/blues/dps/internal/backend"
)

// State 结账状态机状态
type State string

const (
	StateSelectingAmount      State = "selecting_amount"      // 选择金额
	StateCreatingSession      State = "creating_session"      // 创建结账会话中
	StateAwaitingConfirmation State = "awaiting_confirmation" // 等待支付确认
	StateSucceeded            State = "succeeded"             // 成功
	StateFailed               State = "failed"                // 失败
)

// ErrInvalidAmount 金额校验失败：进入结账前金额必须为正数
var ErrInvalidAmount = errors.New("Please enter a valid amount.")

// Session 内存中的结账会话，仅在结账视图生命周期内存在
type Session struct {
	ClientSecret string
	DonationID   string
	Amount       float64
}

// SessionCreator 会话创建依赖（backend.Client实现）
type SessionCreator interface {
	CreateCheckout(ctx context.Context, req backend.CheckoutRequest) (*backend.CheckoutSession, error)
}

// Orchestrator 捐赠结账编排器
//
// 状态机：SelectingAmount → CreatingSession → AwaitingConfirmation → {Succeeded, Failed}。
// 金额二选一：选预设清空自定义输入，反之亦然。创建会话失败回到选金额，
// 已填的邮箱和留言保留；ChangeAmount从等待确认退回选金额同样不丢元数据。
// 不做客户端级的会话创建去重，重复提交由后端兜底。
type Orchestrator struct {
	creator    SessionCreator
	campaignID string

	state        State
	presetAmount float64 // >0 表示选中了预设
	customAmount string  // 自由输入的金额文本
	donorEmail   string
	message      string
	session      *Session
}

// NewOrchestrator 为一个活动创建结账编排器
func NewOrchestrator(creator SessionCreator, campaignID string) *Orchestrator {
	return &Orchestrator{
		creator:    creator,
		campaignID: campaignID,
		state:      StateSelectingAmount,
	}
}

// State 当前状态
func (o *Orchestrator) State() State {
	return o.state
}

// Session 当前结账会话（仅AwaitingConfirmation后有值）
func (o *Orchestrator) Session() *Session {
	return o.session
}

// SelectPreset 选中预设金额，清空自定义输入
func (o *Orchestrator) SelectPreset(amount float64) {
	o.presetAmount = amount
	o.customAmount = ""
}

// EnterCustomAmount 输入自定义金额，取消预设选中
func (o *Orchestrator) EnterCustomAmount(text string) {
	o.customAmount = text
	o.presetAmount = 0
}

// SetDonorEmail 设置捐赠者邮箱（可选，用于收据）
func (o *Orchestrator) SetDonorEmail(email string) {
	o.donorEmail = email
}

// SetMessage 设置留言（可选）
func (o *Orchestrator) SetMessage(message string) {
	o.message = message
}

// DonorEmail 当前邮箱
func (o *Orchestrator) DonorEmail() string {
	return o.donorEmail
}

// Message 当前留言
func (o *Orchestrator) Message() string {
	return o.message
}

// Amount 解析当前金额：预设优先，否则解析自定义文本；必须为正数
func (o *Orchestrator) Amount() (float64, error) {
	if o.presetAmount > 0 {
		return o.presetAmount, nil
	}
	text := strings.TrimSpace(o.customAmount)
	if text == "" {
		return 0, ErrInvalidAmount
	}
	amount, err := strconv.ParseFloat(text, 64)
	if err != nil || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// Submit 创建结账会话
// 成功携带clientSecret和捐赠ID进入AwaitingConfirmation；
// 任何失败（网络、校验、200体内error字段）回到SelectingAmount并原样透出错误
func (o *Orchestrator) Submit(ctx context.Context) (*Session, error) {
	amount, err := o.Amount()
	if err != nil {
		return nil, err
	}

	o.state = StateCreatingSession
	created, err := o.creator.CreateCheckout(ctx, backend.CheckoutRequest{
		CampaignID: o.campaignID,
		Amount:     amount,
		DonorEmail: strings.TrimSpace(o.donorEmail),
		Message:    strings.TrimSpace(o.message),
	})
	if err != nil {
		o.state = StateSelectingAmount
		return nil, err
	}

	o.session = &Session{
		ClientSecret: created.ClientSecret,
		DonationID:   created.DonationID,
		Amount:       amount,
	}
	o.state = StateAwaitingConfirmation
	return o.session, nil
}

// ChangeAmount 从等待确认退回选金额，不丢弃已填写的捐赠者信息
func (o *Orchestrator) ChangeAmount() {
	if o.state != StateAwaitingConfirmation {
		return
	}
	o.session = nil
	o.state = StateSelectingAmount
}

// Resolve 按最终捐赠状态收敛状态机
func (o *Orchestrator) Resolve(succeeded bool) {
	if succeeded {
		o.state = StateSucceeded
	} else {
		o.state = StateFailed
	}
}
