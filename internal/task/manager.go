package task

import (
	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/config"
	"github.com/blues/dps/internal/logger"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	backend   *backend.Client
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, backendClient *backend.Client, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		db:        db,
		backend:   backendClient,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(db *gorm.DB, backendClient *backend.Client, cfg *config.Config) *Manager {
	manager := NewManager(db, backendClient, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册捐赠状态对账任务
	m.RegisterDonationStatusJob()
}

// RegisterDonationStatusJob 注册捐赠状态对账任务
func (m *Manager) RegisterDonationStatusJob() {
	job := NewDonationStatusJob(m.db, m.config, m.backend)

	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
