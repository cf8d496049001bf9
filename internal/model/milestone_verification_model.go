package model

import (
	"time"
)

// MilestoneVerificationModel 里程碑核验记录（审计用，只增不改）
type MilestoneVerificationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	MilestoneId int64           `json:"milestone_id" gorm:"not null;index"`
	CampaignId  int64           `json:"campaign_id" gorm:"not null;index"`
	ActorId     int64           `json:"actor_id" gorm:"not null"`
	Outcome     MilestoneStatus `json:"outcome" gorm:"not null"`
	Notes       string          `json:"notes" gorm:"type:text"`
}

// TableName 自定义表名
func (MilestoneVerificationModel) TableName() string {
	return "milestone_verification"
}
