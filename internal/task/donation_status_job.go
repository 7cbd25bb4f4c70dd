package task

import (
	"context"
	"time"

	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/config"
	"github.com/blues/dps/internal/logger"
	"github.com/blues/dps/internal/logic"
	"github.com/blues/dps/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

const (
	// stalePendingAge 超过该时长仍pending的记录才进入对账
	stalePendingAge = 2 * time.Minute
	// sweepBatchSize 每轮对账处理的记录数上限
	sweepBatchSize = 50
)

// DonationStatusJob 捐赠状态对账任务
//
// 感谢页的轮询在捐赠者关掉浏览器或轮询超时后就停了，本任务兜底：
// 定期扫描本地仍为pending的结账记录，向平台后端查询最终状态并收敛。
type DonationStatusJob struct {
	config        *config.Config
	backend       *backend.Client
	checkoutLogic *logic.CheckoutRecordLogic
}

// NewDonationStatusJob 创建捐赠状态对账任务
func NewDonationStatusJob(db *gorm.DB, cfg *config.Config, backendClient *backend.Client) *DonationStatusJob {
	return &DonationStatusJob{
		config:        cfg,
		backend:       backendClient,
		checkoutLogic: logic.NewCheckoutRecordLogic(db),
	}
}

// GetName 获取任务名称
func (j *DonationStatusJob) GetName() string {
	return "donation_status_reconciler"
}

// GetSchedule 获取调度配置
func (j *DonationStatusJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *DonationStatusJob) Execute() {
	records, err := j.checkoutLogic.StalePendingRecords(stalePendingAge, sweepBatchSize)
	if err != nil {
		logger.Error("Failed to fetch stale pending checkouts: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}

	logger.Info("Reconciling %d pending checkout records", len(records))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resolved := 0
	for _, record := range records {
		donation, err := j.backend.GetDonation(ctx, record.DonationId)
		if err != nil {
			logger.Warn("Failed to fetch donation %s: %v", record.DonationId, err)
			continue
		}

		status := model.DonationStatus(donation.Status)
		if !status.IsTerminal() {
			continue
		}
		if err := j.checkoutLogic.ResolveStatus(record.DonationId, status); err != nil {
			logger.Error("Failed to resolve checkout record %s: %v", record.DonationId, err)
			continue
		}
		resolved++
	}

	if resolved > 0 {
		logger.Info("Donation reconciliation resolved %d records", resolved)
	}
}
