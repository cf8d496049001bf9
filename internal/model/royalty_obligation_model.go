package model

import (
	"time"
)

// RoyaltyObligationModel legacy share 分成义务
// 售出启用 legacy share 的挂牌后生成，买家在期限内按比例向原卖家分成。
type RoyaltyObligationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TransferId    int64     `json:"transfer_id" gorm:"not null;index"`
	CampaignId    int64     `json:"campaign_id" gorm:"not null;index"`
	BeneficiaryId int64     `json:"beneficiary_id" gorm:"not null"` // 原卖家
	PayerId       int64     `json:"payer_id" gorm:"not null"`       // 买家
	Percentage    int       `json:"percentage" gorm:"not null"`     // 未来收入分成比例（%）
	StartsAt      time.Time `json:"starts_at" gorm:"not null"`
	EndsAt        time.Time `json:"ends_at" gorm:"not null"`

	Status RoyaltyStatus `json:"status" gorm:"default:'active'"`
}

// RoyaltyStatus 分成义务状态
type RoyaltyStatus string

const (
	RoyaltyStatusActive  RoyaltyStatus = "active"  // 生效中
	RoyaltyStatusExpired RoyaltyStatus = "expired" // 已到期
)

// TableName 自定义表名
func (RoyaltyObligationModel) TableName() string {
	return "royalty_obligation"
}
