package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// MilestoneLogic 里程碑业务逻辑
type MilestoneLogic struct {
	db *gorm.DB
}

// NewMilestoneLogic 创建里程碑业务逻辑
func NewMilestoneLogic(db *gorm.DB) *MilestoneLogic {
	return &MilestoneLogic{db: db}
}

// VerifyMilestone 核验里程碑
// 仅活动创建者或管理员可核验；pending -> completed/failed 单向，终态不可再变。
// 授权在任何写入之前同步完成，核验动作连同审计记录在同一事务内落库。
func (l *MilestoneLogic) VerifyMilestone(milestoneId, actorId int64, outcome model.MilestoneStatus, notes string) (*model.MilestoneModel, error) {
	if !outcome.IsResolved() {
		return nil, NewValidationError("核验结论必须是 completed 或 failed")
	}

	var milestone model.MilestoneModel
	if err := l.db.First(&milestone, milestoneId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取里程碑失败: %w", err)
	}

	var campaign model.CampaignModel
	if err := l.db.First(&campaign, milestone.CampaignId).Error; err != nil {
		return nil, fmt.Errorf("获取所属活动失败: %w", err)
	}

	if err := l.authorizeVerifier(actorId, &campaign); err != nil {
		return nil, err
	}

	if milestone.Status.IsResolved() {
		return nil, ErrStateConflict
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status": outcome,
			"notes":  notes,
		}
		if outcome == model.MilestoneStatusCompleted {
			now := time.Now()
			updates["completed_date"] = &now
		}

		res := tx.Model(&model.MilestoneModel{}).
			Where("id = ? AND status = ?", milestoneId, model.MilestoneStatusPending).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("更新里程碑失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStateConflict
		}

		verification := model.MilestoneVerificationModel{
			MilestoneId: milestoneId,
			CampaignId:  campaign.Id,
			ActorId:     actorId,
			Outcome:     outcome,
			Notes:       notes,
		}
		if err := tx.Create(&verification).Error; err != nil {
			return fmt.Errorf("创建核验记录失败: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := l.db.First(&milestone, milestoneId).Error; err != nil {
		return nil, fmt.Errorf("获取里程碑失败: %w", err)
	}
	return &milestone, nil
}

// GetCampaignMilestones 获取活动里程碑（按目标日期排序）
func (l *MilestoneLogic) GetCampaignMilestones(campaignId int64) ([]model.MilestoneModel, error) {
	var milestones []model.MilestoneModel
	if err := l.db.Where("campaign_id = ?", campaignId).
		Order("target_date ASC").Find(&milestones).Error; err != nil {
		return nil, fmt.Errorf("获取里程碑列表失败: %w", err)
	}
	return milestones, nil
}

// CompletionRatio 里程碑完成率（只读，不驱动活动状态变更）
func (l *MilestoneLogic) CompletionRatio(campaignId int64) (float64, error) {
	var total, completed int64
	if err := l.db.Model(&model.MilestoneModel{}).
		Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("统计里程碑失败: %w", err)
	}
	if total == 0 {
		return 0, nil
	}
	if err := l.db.Model(&model.MilestoneModel{}).
		Where("campaign_id = ? AND status = ?", campaignId, model.MilestoneStatusCompleted).
		Count(&completed).Error; err != nil {
		return 0, fmt.Errorf("统计里程碑失败: %w", err)
	}
	return float64(completed) / float64(total), nil
}

// authorizeVerifier 核验授权：活动创建者或管理员
func (l *MilestoneLogic) authorizeVerifier(actorId int64, campaign *model.CampaignModel) error {
	if actorId == campaign.CreatorId {
		return nil
	}

	var actor model.ProfileModel
	if err := l.db.First(&actor, actorId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("获取操作者失败: %w", err)
	}
	if actor.Role != string(model.ProfileRoleAdmin) {
		return ErrUnauthorized
	}
	return nil
}
