package logic

import (
	"errors"
	"fmt"

	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// TrustScoreLogic 信任分（GlassScore）计算
// 加权四项：筹款进度40、支持者规模30、里程碑完成率15、核验活跃度15。
type TrustScoreLogic struct {
	db *gorm.DB
}

// TrustScoreDetail 单项得分明细
type TrustScoreDetail struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Weight int    `json:"weight"`
}

// NewTrustScoreLogic 创建信任分计算逻辑
func NewTrustScoreLogic(db *gorm.DB) *TrustScoreLogic {
	return &TrustScoreLogic{db: db}
}

// Score 计算活动信任分（0-100）及各项明细
func (l *TrustScoreLogic) Score(campaignId int64) (int, []TrustScoreDetail, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, campaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, ErrNotFound
		}
		return 0, nil, fmt.Errorf("获取活动失败: %w", err)
	}

	fundingScore := 0
	if campaign.FundingGoal > 0 {
		fundingScore = int(campaign.CurrentAmount * 100 / campaign.FundingGoal)
		if fundingScore > 100 {
			fundingScore = 100
		}
	}

	// 支持者规模：每10人1分，1000人封顶
	backerScore := int(campaign.BackerCount / 10)
	if backerScore > 100 {
		backerScore = 100
	}

	var milestoneTotal, milestoneCompleted, verificationCount int64
	if err := l.db.Model(&model.MilestoneModel{}).
		Where("campaign_id = ?", campaignId).Count(&milestoneTotal).Error; err != nil {
		return 0, nil, fmt.Errorf("统计里程碑失败: %w", err)
	}
	l.db.Model(&model.MilestoneModel{}).
		Where("campaign_id = ? AND status = ?", campaignId, model.MilestoneStatusCompleted).
		Count(&milestoneCompleted)
	l.db.Model(&model.MilestoneVerificationModel{}).
		Where("campaign_id = ?", campaignId).Count(&verificationCount)

	milestoneScore := 0
	verificationScore := 0
	if milestoneTotal > 0 {
		milestoneScore = int(milestoneCompleted * 100 / milestoneTotal)
		verificationScore = int(verificationCount * 100 / milestoneTotal)
		if verificationScore > 100 {
			verificationScore = 100
		}
	}

	details := []TrustScoreDetail{
		{Name: "funding_progress", Score: fundingScore, Weight: 40},
		{Name: "backer_count", Score: backerScore, Weight: 30},
		{Name: "milestone_completion", Score: milestoneScore, Weight: 15},
		{Name: "verification_activity", Score: verificationScore, Weight: 15},
	}

	total := 0
	for _, d := range details {
		total += d.Score * d.Weight
	}
	return total / 100, details, nil
}
