package model

import (
	"time"
)

// CampaignModel 活动模型
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string       `json:"title" gorm:"not null"`
	Description string       `json:"description" gorm:"type:text"`
	Type        CampaignType `json:"type" gorm:"not null"`
	Target      string       `json:"target" gorm:"type:text"` // 被问责对象（自由文本）

	// 筹款信息
	FundingGoal   int64 `json:"funding_goal" gorm:"not null"`
	CurrentAmount int64 `json:"current_amount" gorm:"default:0"` // 由质押账本聚合得出
	BackerCount   int64 `json:"backer_count" gorm:"default:0"`

	// 时间信息
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`

	// 状态
	Status  CampaignStatus `json:"status" gorm:"default:'draft';index"`
	Version int64          `json:"version" gorm:"default:1"` // 乐观锁版本号

	// 创建者信息
	CreatorId int64 `json:"creator_id" gorm:"not null;index"`

	// 成功后果
	SuccessType        SuccessType `json:"success_type" gorm:"not null"`
	SuccessDescription string      `json:"success_description" gorm:"type:text"`

	// 失败后果
	FailureType        FailureType `json:"failure_type" gorm:"not null"`
	FailureDescription string      `json:"failure_description" gorm:"type:text"`
	CharityName        string      `json:"charity_name"`                     // failure_type=charity 时必填
	RefundPercentage   int         `json:"refund_percentage" gorm:"default:0"` // failure_type=refund 时必填，0-100

	// 终态信息
	PublishedAt *time.Time `json:"published_at"`
	EvaluatedAt *time.Time `json:"evaluated_at"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusDraft      CampaignStatus = "draft"      // 草稿
	CampaignStatusActive     CampaignStatus = "active"     // 进行中
	CampaignStatusSuccessful CampaignStatus = "successful" // 成功（终态）
	CampaignStatusFailed     CampaignStatus = "failed"     // 失败（终态）
)

// CampaignType 活动类型
type CampaignType string

const (
	CampaignTypeCorporateAdvocacy     CampaignType = "corporate_advocacy"     // 企业问责
	CampaignTypeRefundableMilestone   CampaignType = "refundable_milestone"   // 可退款里程碑
	CampaignTypeCompetitiveInnovation CampaignType = "competitive_innovation" // 竞赛创新
	CampaignTypeGovernment            CampaignType = "government"             // 政府
	CampaignTypeInnovation            CampaignType = "innovation"             // 创新
	CampaignTypeFailForward           CampaignType = "fail_forward"           // 失败前行
)

// SuccessType 成功后果类型
type SuccessType string

const (
	SuccessTypeReward    SuccessType = "reward"    // 全额放款给创建者
	SuccessTypeStretch   SuccessType = "stretch"   // 放款并评估超额档位
	SuccessTypeCommunity SuccessType = "community" // 放款并定向社区用途
)

// FailureType 失败后果类型
type FailureType string

const (
	FailureTypeRefund    FailureType = "refund"    // 按比例退款
	FailureTypeCharity   FailureType = "charity"   // 全额转捐慈善机构
	FailureTypeChallenge FailureType = "challenge" // 资金冻结，创建者履行挑战义务
)

// IsTerminal 是否处于终态
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusSuccessful || s == CampaignStatusFailed
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
