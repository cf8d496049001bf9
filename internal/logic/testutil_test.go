package logic

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/petethec/obsidian-order/internal/config"
	"github.com/petethec/obsidian-order/internal/database"
	"github.com/petethec/obsidian-order/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// newTestDB 内存数据库，单连接保证并发测试串行落库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true,
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Task: config.TaskConfig{
			Interval:   60,
			PoolSize:   4,
			MaxRetries: 3,
		},
		Marketplace: config.MarketplaceConfig{
			MinTrustScore:    75,
			MinPrice:         1000,
			MaxPrice:         1000000,
			MinDiscount:      5,
			MaxDiscount:      30,
			MinRoyalty:       5,
			MaxRoyalty:       20,
			MinDurationMonth: 12,
			MaxDurationMonth: 36,
		},
		Payment: config.PaymentConfig{
			Provider: "sandbox",
			PoolName: "unfunded_pool",
		},
	}
}

func createTestProfile(t *testing.T, db *gorm.DB, username, role string) *model.ProfileModel {
	t.Helper()
	profile := &model.ProfileModel{
		Username: username,
		Role:     role,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

// seedCampaign 直接落一条进行中的退款型活动，筹款目标100000，窗口前后各一天
func seedCampaign(t *testing.T, db *gorm.DB, creatorId int64, mutate ...func(*model.CampaignModel)) *model.CampaignModel {
	t.Helper()
	now := time.Now()
	campaign := &model.CampaignModel{
		Title:              "让供应商公开碳排放数据",
		Description:        "推动目标企业在季度报告中披露完整碳排放数据",
		Type:               model.CampaignTypeCorporateAdvocacy,
		Target:             "某大型制造企业",
		FundingGoal:        100000,
		StartDate:          now.Add(-24 * time.Hour),
		EndDate:            now.Add(24 * time.Hour),
		Status:             model.CampaignStatusActive,
		Version:            1,
		CreatorId:          creatorId,
		SuccessType:        model.SuccessTypeReward,
		SuccessDescription: "目标达成后全额放款用于后续监督行动",
		FailureType:        model.FailureTypeRefund,
		FailureDescription: "未达标时按约定比例退款给全部支持者",
		RefundPercentage:   80,
	}
	for _, m := range mutate {
		m(campaign)
	}
	require.NoError(t, db.Create(campaign).Error)
	return campaign
}

func seedMilestone(t *testing.T, db *gorm.DB, campaignId int64, status model.MilestoneStatus) *model.MilestoneModel {
	t.Helper()
	milestone := &model.MilestoneModel{
		CampaignId:  campaignId,
		Title:       "收集一万份联署签名",
		Description: "线上线下合计收集一万份有效联署签名",
		TargetDate:  time.Now().Add(12 * time.Hour),
		Status:      status,
	}
	require.NoError(t, db.Create(milestone).Error)
	return milestone
}

func seedPledge(t *testing.T, db *gorm.DB, campaignId, backerId, amount int64) *model.PledgeModel {
	t.Helper()
	pledge := &model.PledgeModel{
		CampaignId: campaignId,
		BackerId:   backerId,
		Amount:     amount,
		Status:     model.PledgeStatusPending,
	}
	require.NoError(t, db.Create(pledge).Error)
	return pledge
}

// newMilestoneInput 满足创建校验的里程碑输入
func newMilestoneInput() []model.MilestoneModel {
	return []model.MilestoneModel{
		{
			Title:       "发布第一份调查报告",
			Description: "完成并公开第一阶段调查报告",
			TargetDate:  time.Now().Add(7 * 24 * time.Hour),
		},
	}
}
