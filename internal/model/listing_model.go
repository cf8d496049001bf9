package model

import (
	"time"
)

// ListingModel 二级市场挂牌
type ListingModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`
	SellerId   int64  `json:"seller_id" gorm:"not null;index"`
	Price      int64  `json:"price" gorm:"not null"`
	Summary    string `json:"summary" gorm:"type:text"`

	// legacy share 条款：买家以折扣价购入，按比例向卖家分成若干个月
	LegacyShareEnabled    bool `json:"legacy_share_enabled" gorm:"default:false"`
	LegacyShareDiscount   int  `json:"legacy_share_discount"`   // 折扣（%）
	RoyaltyPercentage     int  `json:"royalty_percentage"`      // 分成比例（%）
	RoyaltyDurationMonths int  `json:"royalty_duration_months"` // 分成期限（月）

	// 顾问条款：卖家以顾问身份继续参与
	AdvisorRoleEnabled     bool                   `json:"advisor_role_enabled" gorm:"default:false"`
	AdvisorEngagementLevel AdvisorEngagementLevel `json:"advisor_engagement_level"`

	TrustScore int           `json:"trust_score"` // 挂牌时的信任分快照
	Status     ListingStatus `json:"status" gorm:"default:'active';index"`
}

// ListingStatus 挂牌状态
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"    // 在售
	ListingStatusSold      ListingStatus = "sold"      // 已售出（终态）
	ListingStatusWithdrawn ListingStatus = "withdrawn" // 已撤牌（终态）
)

// AdvisorEngagementLevel 顾问参与程度
type AdvisorEngagementLevel string

const (
	AdvisorEngagementLight    AdvisorEngagementLevel = "light"    // 轻度
	AdvisorEngagementModerate AdvisorEngagementLevel = "moderate" // 中度
	AdvisorEngagementHandsOn  AdvisorEngagementLevel = "hands_on" // 深度
)

// TableName 自定义表名
func (ListingModel) TableName() string {
	return "listing"
}
