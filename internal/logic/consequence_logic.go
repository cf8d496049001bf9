package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/petethec/obsidian-order/internal/config"
	"github.com/petethec/obsidian-order/internal/logger"
	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// ConsequenceLogic 后果引擎
// 活动到期后的终态切换、处置提议、审批与打款记录生成都在这里。
type ConsequenceLogic struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewConsequenceLogic 创建后果引擎
func NewConsequenceLogic(db *gorm.DB, cfg *config.Config) *ConsequenceLogic {
	return &ConsequenceLogic{db: db, cfg: cfg}
}

// EvaluateCampaign 评估活动终态
// 到期前调用是安全的空操作；已终态活动重复评估也是空操作。
// 终态切换用状态 CAS，多个评估者并发时只有一个会创建执行申请。
func (l *ConsequenceLogic) EvaluateCampaign(campaignId int64, now time.Time) (model.CampaignStatus, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, campaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("获取活动失败: %w", err)
	}

	// 终态与未发布的活动不评估；到期前不触发（即使已达标）
	if campaign.Status != model.CampaignStatusActive {
		return campaign.Status, nil
	}
	if now.Before(campaign.EndDate) {
		return campaign.Status, nil
	}

	outcome := model.CampaignStatusFailed
	if campaign.CurrentAmount >= campaign.FundingGoal {
		outcome = model.CampaignStatusSuccessful
	}

	// 先构造提议；数据完整性缺陷时不强行进入终态，留在 active 等人工修正
	request, err := l.buildProposal(&campaign, outcome)
	if err != nil {
		logger.Error("Campaign %d has a data integrity defect, left active: %v", campaign.Id, err)
		return campaign.Status, err
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.CampaignModel{}).
			Where("id = ? AND status = ?", campaignId, model.CampaignStatusActive).
			Updates(map[string]interface{}{
				"status":       outcome,
				"evaluated_at": &now,
				"version":      gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("更新活动状态失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// 其他评估者已完成切换
			return nil
		}

		exists, err := l.hasOpenRequest(tx, campaignId, request.Type)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("创建执行申请失败: %w", err)
		}

		logger.Info("Campaign %d evaluated to %s, consequence request %d created",
			campaignId, outcome, request.Id)
		return nil
	})
	if err != nil {
		return "", err
	}

	return outcome, nil
}

// RequestTrigger 由干系人发起后果执行申请
func (l *ConsequenceLogic) RequestTrigger(campaignId, requesterId int64, ctype model.ConsequenceType, notes string) (*model.ConsequenceRequestModel, error) {
	if ctype != model.ConsequenceTypeSuccess && ctype != model.ConsequenceTypeFailure {
		return nil, NewValidationError("后果类型必须是 success 或 failure")
	}

	var campaign model.CampaignModel
	if err := l.db.First(&campaign, campaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取活动失败: %w", err)
	}

	if err := l.authorizeStakeholder(requesterId, &campaign); err != nil {
		return nil, err
	}

	// 已终态的活动只接受与结果一致的申请类型
	if campaign.Status.IsTerminal() && !typeMatchesOutcome(ctype, campaign.Status) {
		return nil, ErrStateConflict
	}

	request := &model.ConsequenceRequestModel{
		CampaignId:  campaignId,
		Type:        ctype,
		Status:      model.ConsequenceStatusPending,
		Notes:       notes,
		RequesterId: requesterId,
	}

	// 活动已终态时，提议由引擎按活动数据补全
	if campaign.Status.IsTerminal() {
		proposed, err := l.buildProposal(&campaign, campaign.Status)
		if err != nil {
			return nil, err
		}
		request.ProposedAction = proposed.ProposedAction
		request.ProposedAmount = proposed.ProposedAmount
		request.Beneficiary = proposed.Beneficiary
		request.Detail = proposed.Detail
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		exists, err := l.hasOpenRequest(tx, campaignId, ctype)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateRequest
		}
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("创建执行申请失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// GetCampaignRequests 获取活动的后果执行申请
func (l *ConsequenceLogic) GetCampaignRequests(campaignId int64) ([]model.ConsequenceRequestModel, error) {
	var requests []model.ConsequenceRequestModel
	if err := l.db.Where("campaign_id = ?", campaignId).
		Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("获取执行申请失败: %w", err)
	}
	return requests, nil
}

// ResolveRequest 管理员审批执行申请
// 批准后在同一事务内生成打款记录并翻转质押状态；驳回则只改申请状态。
func (l *ConsequenceLogic) ResolveRequest(requestId, adminId int64, approve bool, notes string) (*model.ConsequenceRequestModel, error) {
	var admin model.ProfileModel
	if err := l.db.First(&admin, adminId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("获取审批人失败: %w", err)
	}
	if admin.Role != string(model.ProfileRoleAdmin) {
		return nil, ErrUnauthorized
	}

	var request model.ConsequenceRequestModel
	if err := l.db.First(&request, requestId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取执行申请失败: %w", err)
	}
	if request.Status != model.ConsequenceStatusPending {
		return nil, ErrStateConflict
	}

	newStatus := model.ConsequenceStatusRejected
	if approve {
		newStatus = model.ConsequenceStatusApproved
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&model.ConsequenceRequestModel{}).
			Where("id = ? AND status = ?", requestId, model.ConsequenceStatusPending).
			Updates(map[string]interface{}{
				"status":           newStatus,
				"resolver_id":      adminId,
				"resolved_at":      &now,
				"resolution_notes": notes,
			})
		if res.Error != nil {
			return fmt.Errorf("更新执行申请失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStateConflict
		}

		if approve {
			if err := l.executeApproved(tx, &request); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := l.db.First(&request, requestId).Error; err != nil {
		return nil, fmt.Errorf("获取执行申请失败: %w", err)
	}
	return &request, nil
}

// buildProposal 按活动数据确定性计算处置提议
func (l *ConsequenceLogic) buildProposal(campaign *model.CampaignModel, outcome model.CampaignStatus) (*model.ConsequenceRequestModel, error) {
	request := &model.ConsequenceRequestModel{
		CampaignId: campaign.Id,
		Status:     model.ConsequenceStatusPending,
	}

	if outcome == model.CampaignStatusSuccessful {
		request.Type = model.ConsequenceTypeSuccess
		request.ProposedAction = model.ConsequenceActionReleaseFunds
		request.ProposedAmount = campaign.CurrentAmount
		request.Beneficiary = fmt.Sprintf("creator:%d", campaign.CreatorId)

		switch campaign.SuccessType {
		case model.SuccessTypeReward:
			request.Detail = "全额放款给创建者"
		case model.SuccessTypeStretch:
			ratio := float64(0)
			if campaign.FundingGoal > 0 {
				ratio = float64(campaign.CurrentAmount) / float64(campaign.FundingGoal) * 100
			}
			request.Detail = fmt.Sprintf("放款并评估超额档位（达成率%.1f%%）: %s", ratio, campaign.SuccessDescription)
		case model.SuccessTypeCommunity:
			request.Detail = fmt.Sprintf("放款并定向社区用途: %s", campaign.SuccessDescription)
		default:
			return nil, fmt.Errorf("活动%d成功后果类型缺失或非法: %q", campaign.Id, campaign.SuccessType)
		}
		return request, nil
	}

	request.Type = model.ConsequenceTypeFailure
	switch campaign.FailureType {
	case model.FailureTypeRefund:
		if campaign.RefundPercentage < 0 || campaign.RefundPercentage > 100 {
			return nil, fmt.Errorf("活动%d退款比例非法: %d", campaign.Id, campaign.RefundPercentage)
		}
		request.ProposedAction = model.ConsequenceActionRefundBackers
		request.ProposedAmount = campaign.CurrentAmount
		request.Detail = fmt.Sprintf("按%d%%向每位支持者退款，余额归入资金池", campaign.RefundPercentage)
	case model.FailureTypeCharity:
		if campaign.CharityName == "" {
			return nil, fmt.Errorf("活动%d缺少慈善机构名称", campaign.Id)
		}
		request.ProposedAction = model.ConsequenceActionCharityTransfer
		request.ProposedAmount = campaign.CurrentAmount
		request.Beneficiary = campaign.CharityName
		request.Detail = fmt.Sprintf("全额转捐至 %s", campaign.CharityName)
	case model.FailureTypeChallenge:
		request.ProposedAction = model.ConsequenceActionChallengeHold
		request.ProposedAmount = campaign.CurrentAmount
		request.Detail = fmt.Sprintf("资金冻结，创建者须履行挑战义务（系统无法核验，转人工跟进）: %s", campaign.FailureDescription)
	default:
		return nil, fmt.Errorf("活动%d失败后果类型缺失或非法: %q", campaign.Id, campaign.FailureType)
	}
	return request, nil
}

// executeApproved 批准后生成打款记录并翻转质押状态
func (l *ConsequenceLogic) executeApproved(tx *gorm.DB, request *model.ConsequenceRequestModel) error {
	var campaign model.CampaignModel
	if err := tx.First(&campaign, request.CampaignId).Error; err != nil {
		return fmt.Errorf("获取活动失败: %w", err)
	}

	// 活动未终态或申请类型与终态不符，拒绝执行
	if !typeMatchesOutcome(request.Type, campaign.Status) {
		return ErrStateConflict
	}

	switch request.Type {
	case model.ConsequenceTypeSuccess:
		if err := l.executeSuccess(tx, request, &campaign); err != nil {
			return err
		}
	case model.ConsequenceTypeFailure:
		if err := l.executeFailure(tx, request, &campaign); err != nil {
			return err
		}
	}

	return tx.Model(&model.ConsequenceRequestModel{}).
		Where("id = ?", request.Id).
		Update("executed", true).Error
}

// executeSuccess 成功处置：质押转successful，全额放款给创建者
func (l *ConsequenceLogic) executeSuccess(tx *gorm.DB, request *model.ConsequenceRequestModel, campaign *model.CampaignModel) error {
	if err := tx.Model(&model.PledgeModel{}).
		Where("campaign_id = ? AND status = ?", campaign.Id, model.PledgeStatusPending).
		Update("status", model.PledgeStatusSuccessful).Error; err != nil {
		return fmt.Errorf("更新质押状态失败: %w", err)
	}

	payout := model.PayoutRecordModel{
		RequestId:   request.Id,
		CampaignId:  campaign.Id,
		Type:        model.PayoutTypeCreatorRelease,
		Amount:      campaign.CurrentAmount,
		Beneficiary: fmt.Sprintf("creator:%d", campaign.CreatorId),
		Status:      model.PayoutStatusPending,
	}
	if err := tx.Create(&payout).Error; err != nil {
		return fmt.Errorf("创建放款记录失败: %w", err)
	}
	return nil
}

// executeFailure 失败处置：按 failure_type 生成退款/转捐/冻结记录
func (l *ConsequenceLogic) executeFailure(tx *gorm.DB, request *model.ConsequenceRequestModel, campaign *model.CampaignModel) error {
	switch campaign.FailureType {
	case model.FailureTypeRefund:
		var pledges []model.PledgeModel
		if err := tx.Where("campaign_id = ? AND status = ?",
			campaign.Id, model.PledgeStatusPending).Find(&pledges).Error; err != nil {
			return fmt.Errorf("获取质押记录失败: %w", err)
		}

		var remainder, removed int64
		for _, pledge := range pledges {
			refund := pledge.Amount * int64(campaign.RefundPercentage) / 100
			remainder += pledge.Amount - refund
			removed += pledge.Amount

			payout := model.PayoutRecordModel{
				RequestId:   request.Id,
				CampaignId:  campaign.Id,
				PledgeId:    pledge.Id,
				Type:        model.PayoutTypeBackerRefund,
				Amount:      refund,
				Beneficiary: fmt.Sprintf("backer:%d", pledge.BackerId),
				Status:      model.PayoutStatusPending,
			}
			if err := tx.Create(&payout).Error; err != nil {
				return fmt.Errorf("创建退款记录失败: %w", err)
			}
			if err := tx.Model(&model.PledgeModel{}).
				Where("id = ?", pledge.Id).
				Update("status", model.PledgeStatusRefunded).Error; err != nil {
				return fmt.Errorf("更新质押状态失败: %w", err)
			}
		}

		if remainder > 0 {
			payout := model.PayoutRecordModel{
				RequestId:   request.Id,
				CampaignId:  campaign.Id,
				Type:        model.PayoutTypePoolRemainder,
				Amount:      remainder,
				Beneficiary: l.cfg.Payment.PoolName,
				Status:      model.PayoutStatusPending,
			}
			if err := tx.Create(&payout).Error; err != nil {
				return fmt.Errorf("创建资金池记录失败: %w", err)
			}
		}

		// 质押转入refunded后离开聚合口径，同事务扣减活动金额
		if removed > 0 {
			if err := tx.Model(&model.CampaignModel{}).
				Where("id = ?", campaign.Id).
				Update("current_amount", gorm.Expr("current_amount - ?", removed)).Error; err != nil {
				return fmt.Errorf("更新活动金额失败: %w", err)
			}
		}

	case model.FailureTypeCharity:
		var redirected int64
		if err := tx.Model(&model.PledgeModel{}).
			Where("campaign_id = ? AND status = ?", campaign.Id, model.PledgeStatusPending).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&redirected).Error; err != nil {
			return fmt.Errorf("统计质押金额失败: %w", err)
		}

		if err := tx.Model(&model.PledgeModel{}).
			Where("campaign_id = ? AND status = ?", campaign.Id, model.PledgeStatusPending).
			Update("status", model.PledgeStatusRedirected).Error; err != nil {
			return fmt.Errorf("更新质押状态失败: %w", err)
		}

		// 质押转入redirected后离开聚合口径，同事务扣减活动金额
		if redirected > 0 {
			if err := tx.Model(&model.CampaignModel{}).
				Where("id = ?", campaign.Id).
				Update("current_amount", gorm.Expr("current_amount - ?", redirected)).Error; err != nil {
				return fmt.Errorf("更新活动金额失败: %w", err)
			}
		}

		payout := model.PayoutRecordModel{
			RequestId:   request.Id,
			CampaignId:  campaign.Id,
			Type:        model.PayoutTypeCharityTransfer,
			Amount:      campaign.CurrentAmount,
			Beneficiary: campaign.CharityName,
			Status:      model.PayoutStatusPending,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return fmt.Errorf("创建转捐记录失败: %w", err)
		}

	case model.FailureTypeChallenge:
		// 资金冻结，质押保持 pending，人工跟进后另行处置
		payout := model.PayoutRecordModel{
			RequestId:   request.Id,
			CampaignId:  campaign.Id,
			Type:        model.PayoutTypeChallengeHold,
			Amount:      campaign.CurrentAmount,
			Beneficiary: fmt.Sprintf("escrow:%s", uuid.NewString()),
			Status:      model.PayoutStatusManual,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return fmt.Errorf("创建冻结记录失败: %w", err)
		}

	default:
		return fmt.Errorf("活动%d失败后果类型缺失或非法: %q", campaign.Id, campaign.FailureType)
	}
	return nil
}

// typeMatchesOutcome 申请类型与活动终态是否一致
func typeMatchesOutcome(ctype model.ConsequenceType, status model.CampaignStatus) bool {
	switch ctype {
	case model.ConsequenceTypeSuccess:
		return status == model.CampaignStatusSuccessful
	case model.ConsequenceTypeFailure:
		return status == model.CampaignStatusFailed
	}
	return false
}

// hasOpenRequest 同一活动同一类型是否已有待处理/已批准的申请
func (l *ConsequenceLogic) hasOpenRequest(tx *gorm.DB, campaignId int64, ctype model.ConsequenceType) (bool, error) {
	var count int64
	err := tx.Model(&model.ConsequenceRequestModel{}).
		Where("campaign_id = ? AND type = ? AND status IN ?",
			campaignId, ctype,
			[]model.ConsequenceStatus{model.ConsequenceStatusPending, model.ConsequenceStatusApproved}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询执行申请失败: %w", err)
	}
	return count > 0, nil
}

// authorizeStakeholder 发起人授权：创建者、管理员或该活动的支持者
func (l *ConsequenceLogic) authorizeStakeholder(requesterId int64, campaign *model.CampaignModel) error {
	if requesterId == campaign.CreatorId {
		return nil
	}

	var requester model.ProfileModel
	if err := l.db.First(&requester, requesterId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("获取发起人失败: %w", err)
	}
	if requester.Role == string(model.ProfileRoleAdmin) {
		return nil
	}

	var pledgeCount int64
	if err := l.db.Model(&model.PledgeModel{}).
		Where("campaign_id = ? AND backer_id = ?", campaign.Id, requesterId).
		Count(&pledgeCount).Error; err != nil {
		return fmt.Errorf("查询质押记录失败: %w", err)
	}
	if pledgeCount == 0 {
		return ErrUnauthorized
	}
	return nil
}
