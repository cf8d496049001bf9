package logic

import (
	"testing"
	"time"

	"github.com/petethec/obsidian-order/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRecordPledge(t *testing.T) {
	db := newTestDB(t)
	l := NewPledgeLogic(db)
	creator := createTestProfile(t, db, "alice", "user")
	backer := createTestProfile(t, db, "bob", "user")
	campaign := seedCampaign(t, db, creator.Id)

	pledge, err := l.RecordPledge(campaign.Id, backer.Id, 30000)
	require.NoError(t, err)
	assert.Equal(t, model.PledgeStatusPending, pledge.Status)

	var reloaded model.CampaignModel
	require.NoError(t, db.First(&reloaded, campaign.Id).Error)
	assert.Equal(t, int64(30000), reloaded.CurrentAmount)
	assert.Equal(t, int64(1), reloaded.BackerCount)
}

func TestRecordPledgeValidation(t *testing.T) {
	db := newTestDB(t)
	l := NewPledgeLogic(db)

	var validationErr *ValidationError
	_, err := l.RecordPledge(1, 1, 0)
	require.ErrorAs(t, err, &validationErr)

	_, err = l.RecordPledge(1, 0, 100)
	require.ErrorAs(t, err, &validationErr)
}

func TestRecordPledgeCampaignNotFound(t *testing.T) {
	db := newTestDB(t)
	l := NewPledgeLogic(db)

	_, err := l.RecordPledge(404, 1, 100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordPledgeOutsideWindow(t *testing.T) {
	db := newTestDB(t)
	l := NewPledgeLogic(db)
	creator := createTestProfile(t, db, "alice", "user")
	backer := createTestProfile(t, db, "bob", "user")

	// 草稿态
	draft := seedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.Status = model.CampaignStatusDraft
	})
	_, err := l.RecordPledge(draft.Id, backer.Id, 100)
	assert.ErrorIs(t, err, ErrStateConflict)

	// 已过截止时间但状态还没被评估任务翻转
	expired := seedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.StartDate = time.Now().Add(-48 * time.Hour)
		c.EndDate = time.Now().Add(-time.Hour)
	})
	_, err = l.RecordPledge(expired.Id, backer.Id, 100)
	assert.ErrorIs(t, err, ErrStateConflict)

	// 未到开始时间
	upcoming := seedCampaign(t, db, creator.Id, func(c *model.CampaignModel) {
		c.StartDate = time.Now().Add(time.Hour)
		c.EndDate = time.Now().Add(48 * time.Hour)
	})
	_, err = l.RecordPledge(upcoming.Id, backer.Id, 100)
	assert.ErrorIs(t, err, ErrStateConflict)

	var count int64
	db.Model(&model.PledgeModel{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

// 并发质押不丢失聚合更新
func TestRecordPledgeConcurrent(t *testing.T) {
	db := newTestDB(t)
	l := NewPledgeLogic(db)
	creator := createTestProfile(t, db, "alice", "user")
	campaign := seedCampaign(t, db, creator.Id)

	amounts := []int64{30000, 45000}
	var g errgroup.Group
	for i, amount := range amounts {
		backerId := int64(100 + i)
		amount := amount
		g.Go(func() error {
			_, err := l.RecordPledge(campaign.Id, backerId, amount)
			return err
		})
	}
	require.NoError(t, g.Wait())

	var reloaded model.CampaignModel
	require.NoError(t, db.First(&reloaded, campaign.Id).Error)
	assert.Equal(t, int64(75000), reloaded.CurrentAmount)
	assert.Equal(t, int64(2), reloaded.BackerCount)

	var count int64
	db.Model(&model.PledgeModel{}).Where("campaign_id = ?", campaign.Id).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestGetCampaignPledges(t *testing.T) {
	db := newTestDB(t)
	l := NewPledgeLogic(db)
	creator := createTestProfile(t, db, "alice", "user")
	campaign := seedCampaign(t, db, creator.Id)

	for i := int64(1); i <= 3; i++ {
		seedPledge(t, db, campaign.Id, 100+i, i*1000)
	}

	pledges, total, err := l.GetCampaignPledges(campaign.Id, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, pledges, 2)
}
