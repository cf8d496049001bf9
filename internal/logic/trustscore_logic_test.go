package logic

import (
	"testing"

	"github.com/petethec/obsidian-order/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustScore(t *testing.T) {
	db := newTestDB(t)
	l := NewTrustScoreLogic(db)
	creator := createTestProfile(t, db, "alice", "user")

	// 满额、200支持者、唯一里程碑已完成并核验
	campaign := seedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.CurrentAmount = 120000
		c.BackerCount = 200
	})
	milestone := seedMilestone(t, db, campaign.Id, model.MilestoneStatusCompleted)
	require.NoError(t, db.Create(&model.MilestoneVerificationModel{
		MilestoneId: milestone.Id,
		CampaignId:  campaign.Id,
		ActorId:     creator.Id,
		Outcome:     model.MilestoneStatusCompleted,
	}).Error)

	score, details, err := l.Score(campaign.Id)
	require.NoError(t, err)

	// 100*0.4 + 20*0.3 + 100*0.15 + 100*0.15
	assert.Equal(t, 76, score)
	require.Len(t, details, 4)
	assert.Equal(t, "funding_progress", details[0].Name)
	assert.Equal(t, 100, details[0].Score)
	assert.Equal(t, "backer_count", details[1].Name)
	assert.Equal(t, 20, details[1].Score)
	assert.Equal(t, "milestone_completion", details[2].Name)
	assert.Equal(t, 100, details[2].Score)
	assert.Equal(t, "verification_activity", details[3].Name)
	assert.Equal(t, 100, details[3].Score)
}

func TestTrustScoreEmptyCampaign(t *testing.T) {
	db := newTestDB(t)
	l := NewTrustScoreLogic(db)
	creator := createTestProfile(t, db, "alice", "user")
	campaign := seedCampaign(t, db, creator.Id)

	score, _, err := l.Score(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestTrustScoreCapsFundingProgress(t *testing.T) {
	db := newTestDB(t)
	l := NewTrustScoreLogic(db)
	creator := createTestProfile(t, db, "alice", "user")

	// 超额筹款不应把单项推过100
	campaign := seedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.CurrentAmount = 500000
	})

	score, details, err := l.Score(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, 100, details[0].Score)
	assert.Equal(t, 40, score)
}

func TestTrustScoreNotFound(t *testing.T) {
	db := newTestDB(t)
	l := NewTrustScoreLogic(db)

	_, _, err := l.Score(404)
	assert.ErrorIs(t, err, ErrNotFound)
}
