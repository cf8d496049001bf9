package model

import (
	"time"
)

// CampaignTransferModel 活动所有权转让记录
type CampaignTransferModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ListingId  int64  `json:"listing_id" gorm:"not null;index"`
	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`
	SellerId   int64  `json:"seller_id" gorm:"not null"`
	BuyerId    int64  `json:"buyer_id" gorm:"not null"`
	Price      int64  `json:"price" gorm:"not null"`
	Reference  string `json:"reference" gorm:"uniqueIndex"` // 对外交易参考号
}

// TableName 自定义表名
func (CampaignTransferModel) TableName() string {
	return "campaign_transfer"
}
