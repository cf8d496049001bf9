package model

import (
	"time"
)

// ConsequenceRequestModel 后果执行申请
// 活动进入终态后，引擎只计算并提议处置动作；资金动作必须经管理员审批。
type ConsequenceRequestModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64             `json:"campaign_id" gorm:"not null;index"`
	Type       ConsequenceType   `json:"type" gorm:"not null"`
	Status     ConsequenceStatus `json:"status" gorm:"default:'pending';index"`
	Notes      string            `json:"notes" gorm:"type:text"`

	// 提议的处置动作（由引擎根据活动数据确定性计算）
	ProposedAction ConsequenceAction `json:"proposed_action"`
	ProposedAmount int64             `json:"proposed_amount"`
	Beneficiary    string            `json:"beneficiary"`
	Detail         string            `json:"detail" gorm:"type:text"`

	// 审批信息
	RequesterId     int64      `json:"requester_id"` // 0 表示引擎自动创建
	ResolverId      int64      `json:"resolver_id"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	ResolutionNotes string     `json:"resolution_notes" gorm:"type:text"`
	Executed        bool       `json:"executed" gorm:"default:false"` // 审批通过后是否已生成打款记录
}

// ConsequenceType 后果类型
type ConsequenceType string

const (
	ConsequenceTypeSuccess ConsequenceType = "success" // 成功后果
	ConsequenceTypeFailure ConsequenceType = "failure" // 失败后果
)

// ConsequenceStatus 申请状态
type ConsequenceStatus string

const (
	ConsequenceStatusPending  ConsequenceStatus = "pending"  // 待审批
	ConsequenceStatusApproved ConsequenceStatus = "approved" // 已批准
	ConsequenceStatusRejected ConsequenceStatus = "rejected" // 已驳回
)

// ConsequenceAction 提议的处置动作
type ConsequenceAction string

const (
	ConsequenceActionReleaseFunds    ConsequenceAction = "release_funds"    // 放款给创建者
	ConsequenceActionRefundBackers   ConsequenceAction = "refund_backers"   // 按比例退款给支持者
	ConsequenceActionCharityTransfer ConsequenceAction = "charity_transfer" // 全额转捐慈善机构
	ConsequenceActionChallengeHold   ConsequenceAction = "challenge_hold"   // 冻结资金，人工跟进挑战义务
)

// TableName 自定义表名
func (ConsequenceRequestModel) TableName() string {
	return "consequence_request"
}
