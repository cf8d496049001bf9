package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// PledgeLogic 质押账本业务逻辑
type PledgeLogic struct {
	db *gorm.DB
}

// NewPledgeLogic 创建质押账本业务逻辑
func NewPledgeLogic(db *gorm.DB) *PledgeLogic {
	return &PledgeLogic{db: db}
}

// RecordPledge 记录一笔质押
// 插入质押记录与活动聚合金额的增量在同一事务内完成；
// 聚合更新用 SQL 端自增表达式，并发质押不会丢失更新。
func (l *PledgeLogic) RecordPledge(campaignId, backerId, amount int64) (*model.PledgeModel, error) {
	if amount <= 0 {
		return nil, NewValidationError("质押金额必须大于0")
	}
	if backerId <= 0 {
		return nil, NewValidationError("支持者不能为空")
	}

	pledge := &model.PledgeModel{
		CampaignId: campaignId,
		BackerId:   backerId,
		Amount:     amount,
		Status:     model.PledgeStatusPending,
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("获取活动失败: %w", err)
		}

		now := time.Now()
		if campaign.Status != model.CampaignStatusActive ||
			now.Before(campaign.StartDate) || !now.Before(campaign.EndDate) {
			return ErrStateConflict
		}

		if err := tx.Create(pledge).Error; err != nil {
			return fmt.Errorf("创建质押记录失败: %w", err)
		}

		// 状态条件放进 WHERE，终态并发切换时该更新会落空
		res := tx.Model(&model.CampaignModel{}).
			Where("id = ? AND status = ?", campaignId, model.CampaignStatusActive).
			Updates(map[string]interface{}{
				"current_amount": gorm.Expr("current_amount + ?", amount),
				"backer_count":   gorm.Expr("backer_count + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("更新活动金额失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStateConflict
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return pledge, nil
}

// GetCampaignPledges 获取活动的质押记录
func (l *PledgeLogic) GetCampaignPledges(campaignId int64, page, pageSize int) ([]model.PledgeModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := l.db.Model(&model.PledgeModel{}).Where("campaign_id = ?", campaignId)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取质押总数失败: %w", err)
	}

	var pledges []model.PledgeModel
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&pledges).Error; err != nil {
		return nil, 0, fmt.Errorf("获取质押记录失败: %w", err)
	}

	return pledges, total, nil
}
