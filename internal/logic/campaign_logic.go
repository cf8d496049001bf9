package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// CampaignLogic 活动业务逻辑
type CampaignLogic struct {
	db    *gorm.DB
	trust *TrustScoreLogic
}

// NewCampaignLogic 创建活动业务逻辑
func NewCampaignLogic(db *gorm.DB) *CampaignLogic {
	return &CampaignLogic{db: db, trust: NewTrustScoreLogic(db)}
}

// CreateCampaign 创建活动（草稿态），里程碑随活动一并批量创建
func (l *CampaignLogic) CreateCampaign(campaign *model.CampaignModel, milestones []model.MilestoneModel) error {
	if err := l.validateCampaign(campaign, milestones); err != nil {
		return err
	}

	// 设置初始状态
	campaign.Status = model.CampaignStatusDraft
	campaign.CurrentAmount = 0
	campaign.BackerCount = 0
	campaign.Version = 1

	return l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(campaign).Error; err != nil {
			return fmt.Errorf("创建活动失败: %w", err)
		}

		for i := range milestones {
			milestones[i].CampaignId = campaign.Id
			milestones[i].Status = model.MilestoneStatusPending
		}
		if err := tx.Create(&milestones).Error; err != nil {
			return fmt.Errorf("创建里程碑失败: %w", err)
		}

		return nil
	})
}

// PublishCampaign 发布活动：draft -> active
func (l *CampaignLogic) PublishCampaign(id, actorId int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取活动失败: %w", err)
	}

	if campaign.CreatorId != actorId {
		return nil, ErrUnauthorized
	}
	if campaign.Status != model.CampaignStatusDraft {
		return nil, ErrStateConflict
	}

	now := time.Now()
	res := l.db.Model(&model.CampaignModel{}).
		Where("id = ? AND status = ?", id, model.CampaignStatusDraft).
		Updates(map[string]interface{}{
			"status":       model.CampaignStatusActive,
			"published_at": &now,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("发布活动失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrStateConflict
	}

	if err := l.db.First(&campaign, id).Error; err != nil {
		return nil, fmt.Errorf("获取活动失败: %w", err)
	}
	return &campaign, nil
}

// GetCampaign 获取活动详情
func (l *CampaignLogic) GetCampaign(id int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取活动详情失败: %w", err)
	}
	return &campaign, nil
}

// GetCampaigns 获取活动列表
func (l *CampaignLogic) GetCampaigns(status, campaignType string, creatorId int64, page, pageSize int) ([]model.CampaignModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	query := l.db.Model(&model.CampaignModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if campaignType != "" {
		query = query.Where("type = ?", campaignType)
	}
	if creatorId > 0 {
		query = query.Where("creator_id = ?", creatorId)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取活动总数失败: %w", err)
	}

	var campaigns []model.CampaignModel
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&campaigns).Error; err != nil {
		return nil, 0, fmt.Errorf("获取活动列表失败: %w", err)
	}

	return campaigns, total, nil
}

// UpdateCampaign 更新活动（仅草稿态、仅创建者、仅白名单字段，版本号乐观锁）
func (l *CampaignLogic) UpdateCampaign(id, actorId, version int64, updates map[string]interface{}) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取活动失败: %w", err)
	}

	if campaign.CreatorId != actorId {
		return nil, ErrUnauthorized
	}
	if campaign.Status != model.CampaignStatusDraft {
		return nil, ErrStateConflict
	}

	// 只允许更新特定字段
	allowedFields := []string{"title", "description", "target", "success_description", "failure_description"}
	filtered := make(map[string]interface{})
	for key, value := range updates {
		if containsField(allowedFields, key) {
			filtered[key] = value
		}
	}
	if len(filtered) == 0 {
		return nil, NewValidationError("没有要更新的字段")
	}
	filtered["version"] = gorm.Expr("version + 1")

	res := l.db.Model(&model.CampaignModel{}).
		Where("id = ? AND version = ? AND status = ?", id, version, model.CampaignStatusDraft).
		Updates(filtered)
	if res.Error != nil {
		return nil, fmt.Errorf("更新活动失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrConcurrencyConflict
	}

	if err := l.db.First(&campaign, id).Error; err != nil {
		return nil, fmt.Errorf("获取活动失败: %w", err)
	}
	return &campaign, nil
}

// GetCampaignStats 获取活动统计信息
func (l *CampaignLogic) GetCampaignStats(id int64) (map[string]interface{}, error) {
	campaign, err := l.GetCampaign(id)
	if err != nil {
		return nil, err
	}

	// 里程碑完成率
	var milestoneTotal, milestoneCompleted int64
	l.db.Model(&model.MilestoneModel{}).Where("campaign_id = ?", id).Count(&milestoneTotal)
	l.db.Model(&model.MilestoneModel{}).
		Where("campaign_id = ? AND status = ?", id, model.MilestoneStatusCompleted).
		Count(&milestoneCompleted)

	milestoneRatio := float64(0)
	if milestoneTotal > 0 {
		milestoneRatio = float64(milestoneCompleted) / float64(milestoneTotal)
	}

	// 完成百分比
	completionPercentage := float64(0)
	if campaign.FundingGoal > 0 {
		completionPercentage = float64(campaign.CurrentAmount) / float64(campaign.FundingGoal) * 100
	}

	// 剩余时间
	remainingTime := time.Duration(0)
	if campaign.Status == model.CampaignStatusActive && time.Now().Before(campaign.EndDate) {
		remainingTime = time.Until(campaign.EndDate)
	}

	score, _, err := l.trust.Score(id)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"campaign_id":           campaign.Id,
		"current_amount":        campaign.CurrentAmount,
		"funding_goal":          campaign.FundingGoal,
		"completion_percentage": completionPercentage,
		"backer_count":          campaign.BackerCount,
		"milestone_ratio":       milestoneRatio,
		"remaining_time":        remainingTime.String(),
		"trust_score":           score,
		"status":                string(campaign.Status),
	}, nil
}

// validateCampaign 验证活动数据
func (l *CampaignLogic) validateCampaign(campaign *model.CampaignModel, milestones []model.MilestoneModel) error {
	var fields []string

	if campaign.Title == "" {
		fields = append(fields, "活动标题不能为空")
	}
	if len(campaign.Description) < 10 {
		fields = append(fields, "活动描述不能少于10个字符")
	}
	if !validCampaignType(campaign.Type) {
		fields = append(fields, "无效的活动类型")
	}
	if campaign.Target == "" {
		fields = append(fields, "问责对象不能为空")
	}
	if campaign.FundingGoal <= 0 {
		fields = append(fields, "筹款目标必须大于0")
	}
	if campaign.CreatorId <= 0 {
		fields = append(fields, "创建者不能为空")
	}
	if !campaign.EndDate.After(campaign.StartDate) {
		fields = append(fields, "结束时间必须晚于开始时间")
	}

	switch campaign.SuccessType {
	case model.SuccessTypeReward, model.SuccessTypeStretch, model.SuccessTypeCommunity:
		if len(campaign.SuccessDescription) < 20 {
			fields = append(fields, "成功后果描述不能少于20个字符")
		}
	default:
		fields = append(fields, "无效的成功后果类型")
	}

	switch campaign.FailureType {
	case model.FailureTypeRefund:
		if campaign.RefundPercentage < 0 || campaign.RefundPercentage > 100 {
			fields = append(fields, "退款比例必须在0-100之间")
		}
	case model.FailureTypeCharity:
		if campaign.CharityName == "" {
			fields = append(fields, "慈善机构名称不能为空")
		}
	case model.FailureTypeChallenge:
		// 挑战义务仅依赖描述文本
	default:
		fields = append(fields, "无效的失败后果类型")
	}
	if campaign.FailureType != "" && len(campaign.FailureDescription) < 20 {
		fields = append(fields, "失败后果描述不能少于20个字符")
	}

	if len(milestones) == 0 {
		fields = append(fields, "至少需要一个里程碑")
	}
	for i, m := range milestones {
		if m.Title == "" {
			fields = append(fields, fmt.Sprintf("里程碑%d标题不能为空", i+1))
		}
		if len(m.Description) < 10 {
			fields = append(fields, fmt.Sprintf("里程碑%d描述不能少于10个字符", i+1))
		}
		if m.TargetDate.IsZero() {
			fields = append(fields, fmt.Sprintf("里程碑%d目标日期不能为空", i+1))
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validCampaignType 检查活动类型是否合法
func validCampaignType(t model.CampaignType) bool {
	switch t {
	case model.CampaignTypeCorporateAdvocacy,
		model.CampaignTypeRefundableMilestone,
		model.CampaignTypeCompetitiveInnovation,
		model.CampaignTypeGovernment,
		model.CampaignTypeInnovation,
		model.CampaignTypeFailForward:
		return true
	}
	return false
}

// containsField 检查切片是否包含指定字段
func containsField(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
