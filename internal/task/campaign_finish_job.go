package task

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/petethec/obsidian-order/internal/config"
	"github.com/petethec/obsidian-order/internal/logger"
	"github.com/petethec/obsidian-order/internal/logic"
	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// CampaignFinishJob 活动到期评估任务
// 轮询到期的进行中活动，交给后果引擎评估终态。
// 引擎本身幂等且用状态 CAS，和手工触发或多实例并发都是安全的。
type CampaignFinishJob struct {
	db          *gorm.DB
	config      *config.Config
	consequence *logic.ConsequenceLogic
}

// NewCampaignFinishJob 创建活动到期评估任务
func NewCampaignFinishJob(db *gorm.DB, cfg *config.Config) *CampaignFinishJob {
	return &CampaignFinishJob{
		db:          db,
		config:      cfg,
		consequence: logic.NewConsequenceLogic(db, cfg),
	}
}

// GetName 获取任务名称
func (j *CampaignFinishJob) GetName() string {
	return "campaign_finish_evaluator"
}

// GetSchedule 获取调度配置
func (j *CampaignFinishJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignFinishJob) Execute() {
	logger.Info("Starting campaign finish task")

	now := time.Now()

	// 查找到期待评估的活动
	var campaigns []model.CampaignModel
	err := j.db.Where("status = ? AND end_date <= ?",
		model.CampaignStatusActive, now).Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch campaigns for evaluation: %v", err)
		return
	}
	if len(campaigns) == 0 {
		logger.Info("Campaign finish task completed. Nothing to evaluate")
		return
	}

	poolSize := j.config.Task.PoolSize
	if poolSize <= 0 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		logger.Error("Failed to create evaluation pool: %v", err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	evaluated := 0

	// 协程池并发评估每个活动
	for _, campaign := range campaigns {
		campaignId := campaign.Id
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			status, err := j.consequence.EvaluateCampaign(campaignId, now)
			if err != nil {
				logger.Error("Failed to evaluate campaign %d: %v", campaignId, err)
				return
			}
			logger.Info("Campaign %d evaluated to status %s", campaignId, status)
			mu.Lock()
			evaluated++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit campaign %d for evaluation: %v", campaignId, err)
		}
	}
	wg.Wait()

	logger.Info("Campaign finish task completed. Evaluated %d campaigns", evaluated)
}
