package model

import (
	"time"
)

// PledgeModel 质押记录
type PledgeModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64        `json:"campaign_id" gorm:"not null;index"`
	BackerId   int64        `json:"backer_id" gorm:"not null;index"`
	Amount     int64        `json:"amount" gorm:"not null"`
	Status     PledgeStatus `json:"status" gorm:"default:'pending'"`
}

// PledgeStatus 质押状态
type PledgeStatus string

const (
	PledgeStatusPending    PledgeStatus = "pending"    // 已承诺，待活动终态处理
	PledgeStatusSuccessful PledgeStatus = "successful" // 活动成功，计入放款
	PledgeStatusRefunded   PledgeStatus = "refunded"   // 已退款
	PledgeStatusRedirected PledgeStatus = "redirected" // 已转捐
)

// TableName 自定义表名
func (PledgeModel) TableName() string {
	return "pledge"
}
