package task

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-co-op/gocron/v2"
	"github.com/petethec/obsidian-order/internal/config"
	"github.com/petethec/obsidian-order/internal/logger"
	"github.com/petethec/obsidian-order/internal/model"
	"github.com/petethec/obsidian-order/internal/payment"
	"gorm.io/gorm"
)

// PayoutJob 打款执行任务
// 把已批准后果生成的待打款记录逐条提交给支付网关，指数退避重试。
type PayoutJob struct {
	db      *gorm.DB
	config  *config.Config
	gateway payment.Gateway
}

// NewPayoutJob 创建打款执行任务
func NewPayoutJob(db *gorm.DB, cfg *config.Config, gateway payment.Gateway) *PayoutJob {
	return &PayoutJob{
		db:      db,
		config:  cfg,
		gateway: gateway,
	}
}

// GetName 获取任务名称
func (j *PayoutJob) GetName() string {
	return "payout_executor"
}

// GetSchedule 获取调度配置
func (j *PayoutJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *PayoutJob) Execute() {
	logger.Info("Starting payout task")

	// 查找待打款的记录
	var records []model.PayoutRecordModel
	err := j.db.Where("status = ?", model.PayoutStatusPending).Find(&records).Error
	if err != nil {
		logger.Error("Failed to fetch pending payout records: %v", err)
		return
	}

	paidCount := 0

	for _, record := range records {
		if err := j.processPayout(&record); err != nil {
			logger.Error("Failed to process payout %d: %v", record.Id, err)
			j.markFailed(record.Id, err.Error())
			continue
		}
		paidCount++
	}

	logger.Info("Payout task completed. Paid %d records", paidCount)
}

// processPayout 处理单条打款
func (j *PayoutJob) processPayout(record *model.PayoutRecordModel) error {
	// 冻结类记录不走网关，转人工
	if record.Type == model.PayoutTypeChallengeHold {
		return j.db.Model(&model.PayoutRecordModel{}).
			Where("id = ?", record.Id).
			Update("status", model.PayoutStatusManual).Error
	}

	memo := fmt.Sprintf("campaign:%d payout:%d type:%s",
		record.CampaignId, record.Id, record.Type)

	ctx := context.Background()
	operation := func() (string, error) {
		return j.gateway.Transfer(ctx, record.Beneficiary, record.Amount, memo)
	}

	maxTries := j.config.Task.MaxRetries
	if maxTries <= 0 {
		maxTries = 1
	}
	reference, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(maxTries)))
	if err != nil {
		return fmt.Errorf("gateway transfer failed: %w", err)
	}

	updates := map[string]interface{}{
		"status":    model.PayoutStatusSuccess,
		"reference": reference,
	}
	if err := j.db.Model(&model.PayoutRecordModel{}).
		Where("id = ?", record.Id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update payout record: %w", err)
	}

	logger.Info("Payout %d settled: %d to %s (%s)",
		record.Id, record.Amount, record.Beneficiary, reference)
	return nil
}

// markFailed 标记打款失败
func (j *PayoutJob) markFailed(recordId int64, reason string) {
	updates := map[string]interface{}{
		"status":      model.PayoutStatusFailed,
		"fail_reason": reason,
	}
	if err := j.db.Model(&model.PayoutRecordModel{}).
		Where("id = ?", recordId).Updates(updates).Error; err != nil {
		logger.Error("Failed to update payout record %d status: %v", recordId, err)
	}
}
