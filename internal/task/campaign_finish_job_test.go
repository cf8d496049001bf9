package task

import (
	"testing"
	"time"

	"github.com/petethec/obsidian-order/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignFinishJobEvaluatesExpiredCampaigns(t *testing.T) {
	db := newTestDB(t)
	job := NewCampaignFinishJob(db, newTestConfig())

	now := time.Now()
	expired := &model.CampaignModel{
		Title:              "让供应商公开碳排放数据",
		Description:        "推动目标企业在季度报告中披露完整碳排放数据",
		Type:               model.CampaignTypeCorporateAdvocacy,
		Target:             "某大型制造企业",
		FundingGoal:        100000,
		CurrentAmount:      120000,
		StartDate:          now.Add(-48 * time.Hour),
		EndDate:            now.Add(-time.Hour),
		Status:             model.CampaignStatusActive,
		Version:            1,
		CreatorId:          1,
		SuccessType:        model.SuccessTypeReward,
		SuccessDescription: "目标达成后全额放款用于后续监督行动",
		FailureType:        model.FailureTypeRefund,
		FailureDescription: "未达标时按约定比例退款给全部支持者",
		RefundPercentage:   80,
	}
	require.NoError(t, db.Create(expired).Error)

	running := &model.CampaignModel{}
	*running = *expired
	running.Id = 0
	running.EndDate = now.Add(24 * time.Hour)
	require.NoError(t, db.Create(running).Error)

	job.Execute()

	var reloaded model.CampaignModel
	require.NoError(t, db.First(&reloaded, expired.Id).Error)
	assert.Equal(t, model.CampaignStatusSuccessful, reloaded.Status)

	// 未到期的不动
	reloaded = model.CampaignModel{}
	require.NoError(t, db.First(&reloaded, running.Id).Error)
	assert.Equal(t, model.CampaignStatusActive, reloaded.Status)
}
