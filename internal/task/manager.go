package task

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/petethec/obsidian-order/internal/config"
	"github.com/petethec/obsidian-order/internal/logger"
	"github.com/petethec/obsidian-order/internal/payment"
	"gorm.io/gorm"
)

// Job 定时任务
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	gateway   payment.Gateway
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, gateway payment.Gateway, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		db:        db,
		gateway:   gateway,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(db *gorm.DB, gateway payment.Gateway, cfg *config.Config) *Manager {
	manager := NewManager(db, gateway, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 活动到期评估任务
	m.registerJob(NewCampaignFinishJob(m.db, m.config))
	// 打款执行任务
	m.registerJob(NewPayoutJob(m.db, m.config, m.gateway))
}

// registerJob 注册单个任务
func (m *Manager) registerJob(job Job) {
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
