package logic

import (
	"testing"
	"time"

	"github.com/petethec/obsidian-order/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 已到期、已达标的退款型活动
func seedExpiredFundedCampaign(t *testing.T, db *gorm.DB, creatorId int64, mutate ...func(*model.CampaignModel)) *model.CampaignModel {
	t.Helper()
	base := func(c *model.CampaignModel) {
		c.StartDate = time.Now().Add(-48 * time.Hour)
		c.EndDate = time.Now().Add(-time.Hour)
		c.CurrentAmount = 100000
		c.BackerCount = 2
	}
	return seedCampaign(t, db, creatorId, append([]func(*model.CampaignModel){base}, mutate...)...)
}

func TestEvaluateBeforeDeadlineIsNoop(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")

	// 已达标但未到期
	campaign := seedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.CurrentAmount = 150000
	})

	status, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusActive, status)

	var count int64
	db.Model(&model.ConsequenceRequestModel{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestEvaluateFundedCampaignToSuccessful(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id)
	seedPledge(t, db, campaign.Id, 101, 30000)
	seedPledge(t, db, campaign.Id, 102, 70000)

	status, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusSuccessful, status)

	var reloaded model.CampaignModel
	require.NoError(t, db.First(&reloaded, campaign.Id).Error)
	assert.Equal(t, model.CampaignStatusSuccessful, reloaded.Status)
	assert.NotNil(t, reloaded.EvaluatedAt)

	// 引擎只提议，不直接动钱
	var requests []model.ConsequenceRequestModel
	require.NoError(t, db.Find(&requests).Error)
	require.Len(t, requests, 1)
	assert.Equal(t, model.ConsequenceTypeSuccess, requests[0].Type)
	assert.Equal(t, model.ConsequenceStatusPending, requests[0].Status)
	assert.Equal(t, model.ConsequenceActionReleaseFunds, requests[0].ProposedAction)
	assert.Equal(t, int64(100000), requests[0].ProposedAmount)

	var pledges []model.PledgeModel
	require.NoError(t, db.Where("campaign_id = ?", campaign.Id).Find(&pledges).Error)
	for _, p := range pledges {
		assert.Equal(t, model.PledgeStatusPending, p.Status)
	}
}

func TestEvaluateUnderfundedCharityCampaignToFailed(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.CurrentAmount = 45000
		c.FailureType = model.FailureTypeCharity
		c.CharityName = "Acme Relief"
		c.RefundPercentage = 0
	})

	status, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusFailed, status)

	var requests []model.ConsequenceRequestModel
	require.NoError(t, db.Find(&requests).Error)
	require.Len(t, requests, 1)
	assert.Equal(t, model.ConsequenceTypeFailure, requests[0].Type)
	assert.Equal(t, model.ConsequenceActionCharityTransfer, requests[0].ProposedAction)
	assert.Equal(t, "Acme Relief", requests[0].Beneficiary)
	assert.Equal(t, int64(45000), requests[0].ProposedAmount)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id)

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)

	status, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusSuccessful, status)

	var count int64
	db.Model(&model.ConsequenceRequestModel{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEvaluateIntegrityDefectLeavesCampaignActive(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")

	// 转捐型但缺少慈善机构名称，属于数据完整性缺陷
	campaign := seedExpiredFundedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.CurrentAmount = 10000
		c.FailureType = model.FailureTypeCharity
		c.CharityName = ""
	})

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.Error(t, err)

	var reloaded model.CampaignModel
	require.NoError(t, db.First(&reloaded, campaign.Id).Error)
	assert.Equal(t, model.CampaignStatusActive, reloaded.Status)
}

func TestRequestTriggerDedup(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id)

	_, err := l.RequestTrigger(campaign.Id, creator.Id, model.ConsequenceTypeSuccess, "到期请处理")
	require.NoError(t, err)

	_, err = l.RequestTrigger(campaign.Id, creator.Id, model.ConsequenceTypeSuccess, "再催一次")
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestRequestTriggerAuthorization(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	backer := createTestProfile(t, db, "bob", "user")
	stranger := createTestProfile(t, db, "mallory", "user")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id)
	seedPledge(t, db, campaign.Id, backer.Id, 30000)

	// 支持者可以发起
	_, err := l.RequestTrigger(campaign.Id, backer.Id, model.ConsequenceTypeSuccess, "")
	require.NoError(t, err)

	// 无关用户不行
	_, err = l.RequestTrigger(campaign.Id, stranger.Id, model.ConsequenceTypeFailure, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRequestTriggerInvalidType(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())

	var validationErr *ValidationError
	_, err := l.RequestTrigger(1, 1, "nonsense", "")
	require.ErrorAs(t, err, &validationErr)
}

// 终态活动只接受与结果一致的申请类型
func TestRequestTriggerMismatchedOutcome(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id)
	seedPledge(t, db, campaign.Id, 101, 100000)

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)

	// 活动已成功，失败类申请不被接受
	_, err = l.RequestTrigger(campaign.Id, creator.Id, model.ConsequenceTypeFailure, "想要退款")
	assert.ErrorIs(t, err, ErrStateConflict)

	// 只留下引擎创建的那一条success申请
	var count int64
	db.Model(&model.ConsequenceRequestModel{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

// 活动未终态时批准的申请不得执行
func TestResolveRefusesRequestOnActiveCampaign(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	admin := createTestProfile(t, db, "root", "admin")
	campaign := seedCampaign(t, db, creator.Id) // active，未到期
	seedPledge(t, db, campaign.Id, 101, 30000)

	// 终态前的申请允许排队
	request, err := l.RequestTrigger(campaign.Id, creator.Id, model.ConsequenceTypeFailure, "提前申请")
	require.NoError(t, err)

	// 但在活动进入对应终态前不可批准执行
	_, err = l.ResolveRequest(request.Id, admin.Id, true, "")
	assert.ErrorIs(t, err, ErrStateConflict)

	// 批准失败整体回滚：申请仍pending，无打款，质押不动
	var reloaded model.ConsequenceRequestModel
	require.NoError(t, db.First(&reloaded, request.Id).Error)
	assert.Equal(t, model.ConsequenceStatusPending, reloaded.Status)
	assert.False(t, reloaded.Executed)

	var payoutCount int64
	db.Model(&model.PayoutRecordModel{}).Count(&payoutCount)
	assert.Equal(t, int64(0), payoutCount)

	var pledge model.PledgeModel
	require.NoError(t, db.Where("campaign_id = ?", campaign.Id).First(&pledge).Error)
	assert.Equal(t, model.PledgeStatusPending, pledge.Status)
}

func TestResolveRequestReject(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	admin := createTestProfile(t, db, "root", "admin")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id)
	seedPledge(t, db, campaign.Id, 101, 100000)

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	var request model.ConsequenceRequestModel
	require.NoError(t, db.First(&request).Error)

	resolved, err := l.ResolveRequest(request.Id, admin.Id, false, "证据不足")
	require.NoError(t, err)
	assert.Equal(t, model.ConsequenceStatusRejected, resolved.Status)
	assert.False(t, resolved.Executed)
	assert.Equal(t, admin.Id, resolved.ResolverId)
	assert.NotNil(t, resolved.ResolvedAt)

	// 驳回不产生打款记录，也不动质押
	var payoutCount int64
	db.Model(&model.PayoutRecordModel{}).Count(&payoutCount)
	assert.Equal(t, int64(0), payoutCount)
}

func TestResolveRequestRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id)

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	var request model.ConsequenceRequestModel
	require.NoError(t, db.First(&request).Error)

	_, err = l.ResolveRequest(request.Id, creator.Id, true, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveRequestTwice(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	admin := createTestProfile(t, db, "root", "admin")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id)

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	var request model.ConsequenceRequestModel
	require.NoError(t, db.First(&request).Error)

	_, err = l.ResolveRequest(request.Id, admin.Id, false, "")
	require.NoError(t, err)

	_, err = l.ResolveRequest(request.Id, admin.Id, true, "")
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestApproveSuccessReleasesFunds(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	admin := createTestProfile(t, db, "root", "admin")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id)
	seedPledge(t, db, campaign.Id, 101, 30000)
	seedPledge(t, db, campaign.Id, 102, 70000)

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	var request model.ConsequenceRequestModel
	require.NoError(t, db.First(&request).Error)

	resolved, err := l.ResolveRequest(request.Id, admin.Id, true, "放款")
	require.NoError(t, err)
	assert.Equal(t, model.ConsequenceStatusApproved, resolved.Status)
	assert.True(t, resolved.Executed)

	var payouts []model.PayoutRecordModel
	require.NoError(t, db.Find(&payouts).Error)
	require.Len(t, payouts, 1)
	assert.Equal(t, model.PayoutTypeCreatorRelease, payouts[0].Type)
	assert.Equal(t, int64(100000), payouts[0].Amount)
	assert.Equal(t, model.PayoutStatusPending, payouts[0].Status)

	var pledges []model.PledgeModel
	require.NoError(t, db.Where("campaign_id = ?", campaign.Id).Find(&pledges).Error)
	for _, p := range pledges {
		assert.Equal(t, model.PledgeStatusSuccessful, p.Status)
	}

	// successful质押仍在聚合口径内，金额不变
	var reloaded model.CampaignModel
	require.NoError(t, db.First(&reloaded, campaign.Id).Error)
	assert.Equal(t, int64(100000), reloaded.CurrentAmount)
}

func TestApprovePartialRefund(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	admin := createTestProfile(t, db, "root", "admin")

	// 75000/100000，未达标，按80%退款
	campaign := seedExpiredFundedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.CurrentAmount = 75000
	})
	seedPledge(t, db, campaign.Id, 101, 30000)
	seedPledge(t, db, campaign.Id, 102, 45000)

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	var request model.ConsequenceRequestModel
	require.NoError(t, db.First(&request).Error)
	require.Equal(t, model.ConsequenceActionRefundBackers, request.ProposedAction)

	_, err = l.ResolveRequest(request.Id, admin.Id, true, "")
	require.NoError(t, err)

	// 每笔退80%，余额归入资金池
	var refunds []model.PayoutRecordModel
	require.NoError(t, db.Where("type = ?", model.PayoutTypeBackerRefund).
		Order("amount ASC").Find(&refunds).Error)
	require.Len(t, refunds, 2)
	assert.Equal(t, int64(24000), refunds[0].Amount)
	assert.Equal(t, "backer:101", refunds[0].Beneficiary)
	assert.Equal(t, int64(36000), refunds[1].Amount)
	assert.Equal(t, "backer:102", refunds[1].Beneficiary)

	var remainder model.PayoutRecordModel
	require.NoError(t, db.Where("type = ?", model.PayoutTypePoolRemainder).First(&remainder).Error)
	assert.Equal(t, int64(15000), remainder.Amount)
	assert.Equal(t, "unfunded_pool", remainder.Beneficiary)

	var pledges []model.PledgeModel
	require.NoError(t, db.Where("campaign_id = ?", campaign.Id).Find(&pledges).Error)
	for _, p := range pledges {
		assert.Equal(t, model.PledgeStatusRefunded, p.Status)
	}

	// 全部质押离开聚合口径后金额归零
	var reloaded model.CampaignModel
	require.NoError(t, db.First(&reloaded, campaign.Id).Error)
	assert.Equal(t, int64(0), reloaded.CurrentAmount)
}

// 执行后聚合金额必须仍等于 pending/successful 质押之和
func TestApproveRefundKeepsAggregateInvariant(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	admin := createTestProfile(t, db, "root", "admin")

	campaign := seedExpiredFundedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.CurrentAmount = 75000
	})
	seedPledge(t, db, campaign.Id, 101, 30000)
	seedPledge(t, db, campaign.Id, 102, 45000)

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	var request model.ConsequenceRequestModel
	require.NoError(t, db.First(&request).Error)

	_, err = l.ResolveRequest(request.Id, admin.Id, true, "")
	require.NoError(t, err)

	var counted int64
	require.NoError(t, db.Model(&model.PledgeModel{}).
		Where("campaign_id = ? AND status IN ?", campaign.Id,
			[]model.PledgeStatus{model.PledgeStatusPending, model.PledgeStatusSuccessful}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&counted).Error)

	var reloaded model.CampaignModel
	require.NoError(t, db.First(&reloaded, campaign.Id).Error)
	assert.Equal(t, counted, reloaded.CurrentAmount)
	assert.Equal(t, int64(0), reloaded.CurrentAmount)
}

func TestApproveCharityTransfer(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	admin := createTestProfile(t, db, "root", "admin")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.CurrentAmount = 45000
		c.FailureType = model.FailureTypeCharity
		c.CharityName = "Acme Relief"
	})
	seedPledge(t, db, campaign.Id, 101, 45000)

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	var request model.ConsequenceRequestModel
	require.NoError(t, db.First(&request).Error)

	_, err = l.ResolveRequest(request.Id, admin.Id, true, "")
	require.NoError(t, err)

	var payout model.PayoutRecordModel
	require.NoError(t, db.Where("type = ?", model.PayoutTypeCharityTransfer).First(&payout).Error)
	assert.Equal(t, "Acme Relief", payout.Beneficiary)
	assert.Equal(t, int64(45000), payout.Amount)

	var pledge model.PledgeModel
	require.NoError(t, db.Where("campaign_id = ?", campaign.Id).First(&pledge).Error)
	assert.Equal(t, model.PledgeStatusRedirected, pledge.Status)

	// redirected质押离开聚合口径，金额归零
	var reloaded model.CampaignModel
	require.NoError(t, db.First(&reloaded, campaign.Id).Error)
	assert.Equal(t, int64(0), reloaded.CurrentAmount)
}

func TestApproveChallengeHold(t *testing.T) {
	db := newTestDB(t)
	l := NewConsequenceLogic(db, newTestConfig())
	creator := createTestProfile(t, db, "alice", "user")
	admin := createTestProfile(t, db, "root", "admin")
	campaign := seedExpiredFundedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.CurrentAmount = 45000
		c.FailureType = model.FailureTypeChallenge
	})
	seedPledge(t, db, campaign.Id, 101, 45000)

	_, err := l.EvaluateCampaign(campaign.Id, time.Now())
	require.NoError(t, err)
	var request model.ConsequenceRequestModel
	require.NoError(t, db.First(&request).Error)

	_, err = l.ResolveRequest(request.Id, admin.Id, true, "")
	require.NoError(t, err)

	// 冻结记录直接转人工，不进打款队列
	var payout model.PayoutRecordModel
	require.NoError(t, db.Where("type = ?", model.PayoutTypeChallengeHold).First(&payout).Error)
	assert.Equal(t, model.PayoutStatusManual, payout.Status)

	// 挑战义务待人工跟进，质押保持原状
	var pledge model.PledgeModel
	require.NoError(t, db.Where("campaign_id = ?", campaign.Id).First(&pledge).Error)
	assert.Equal(t, model.PledgeStatusPending, pledge.Status)
}
