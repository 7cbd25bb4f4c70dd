package checkout

import (
	"context"
	"time"

	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/model"
)

const (
	// PollInterval 状态轮询间隔
	PollInterval = 2 * time.Second
	// MaxPollAttempts 最大轮询次数（约30秒上限）
	MaxPollAttempts = 15
)

// Outcome 轮询结果
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded" // 支付成功
	OutcomeFailed    Outcome = "failed"    // 支付失败或已取消
	OutcomeTimedOut  Outcome = "timed_out" // 次数用尽仍为pending，不宣告成败
)

// PollResult 轮询结束时的捐赠快照与结论
type PollResult struct {
	Donation *backend.Donation
	Outcome  Outcome
}

// StatusFetcher 状态查询依赖（backend.Client实现）
type StatusFetcher interface {
	GetDonation(ctx context.Context, donationID string) (*backend.Donation, error)
}

// Poller 支付回跳后的捐赠状态轮询器
//
// 回跳页面加载后独立于结账主流程运行。一旦状态到达终态
// （succeeded/failed/canceled）立即停止；次数用尽仍为pending时返回
// OutcomeTimedOut——既不算成功也不算失败，留给后台对账任务收尾。
// 取消通过context传入：视图拆除即取消轮询，无定时器残留。
type Poller struct {
	fetcher StatusFetcher

	// Interval和MaxAttempts可在测试中缩短，默认遵循2秒/15次预算
	Interval    time.Duration
	MaxAttempts int
}

// NewPoller 创建状态轮询器
func NewPoller(fetcher StatusFetcher) *Poller {
	return &Poller{
		fetcher:     fetcher,
		Interval:    PollInterval,
		MaxAttempts: MaxPollAttempts,
	}
}

// Poll 轮询捐赠状态直到终态、预算用尽或context取消
func (p *Poller) Poll(ctx context.Context, donationID string) (*PollResult, error) {
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		donation, err := p.fetcher.GetDonation(ctx, donationID)
		if err != nil {
			return nil, err
		}

		switch model.DonationStatus(donation.Status) {
		case model.DonationStatusSucceeded:
			return &PollResult{Donation: donation, Outcome: OutcomeSucceeded}, nil
		case model.DonationStatusFailed, model.DonationStatusCanceled:
			return &PollResult{Donation: donation, Outcome: OutcomeFailed}, nil
		}

		if attempt == p.MaxAttempts {
			return &PollResult{Donation: donation, Outcome: OutcomeTimedOut}, nil
		}

		timer := time.NewTimer(p.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	// MaxAttempts恒为正，循环内必然返回
	return &PollResult{Outcome: OutcomeTimedOut}, nil
}
