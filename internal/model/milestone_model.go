package model

import (
	"time"
)

// MilestoneModel 活动里程碑
type MilestoneModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId    int64           `json:"campaign_id" gorm:"not null;index"`
	Title         string          `json:"title" gorm:"not null"`
	Description   string          `json:"description" gorm:"type:text"`
	TargetDate    time.Time       `json:"target_date" gorm:"not null"`
	CompletedDate *time.Time      `json:"completed_date"`
	Status        MilestoneStatus `json:"status" gorm:"default:'pending'"`
	Notes         string          `json:"notes" gorm:"type:text"` // 最近一次核验备注
}

// MilestoneStatus 里程碑状态
type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"   // 待核验
	MilestoneStatusCompleted MilestoneStatus = "completed" // 已完成（终态）
	MilestoneStatusFailed    MilestoneStatus = "failed"    // 未达成（终态）
)

// IsResolved 是否已核验为终态
func (s MilestoneStatus) IsResolved() bool {
	return s == MilestoneStatusCompleted || s == MilestoneStatusFailed
}

// TableName 自定义表名
func (MilestoneModel) TableName() string {
	return "milestone"
}
