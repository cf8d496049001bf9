package model

import (
	"time"
)

// PayoutRecordModel 打款记录
// 由已批准的后果执行申请生成，打款任务逐条提交给支付网关。
type PayoutRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RequestId  int64 `json:"request_id" gorm:"not null;index"`
	CampaignId int64 `json:"campaign_id" gorm:"not null;index"`
	PledgeId   int64 `json:"pledge_id"` // 退款时对应的质押记录，其余为0

	Type        PayoutType   `json:"type" gorm:"not null"`
	Amount      int64        `json:"amount" gorm:"not null"`
	Beneficiary string       `json:"beneficiary" gorm:"not null"`
	Status      PayoutStatus `json:"status" gorm:"default:'pending';index"`
	Reference   string       `json:"reference" gorm:"index"` // 网关返回的交易参考号
	FailReason  string       `json:"fail_reason" gorm:"type:text"`
}

// PayoutType 打款类型
type PayoutType string

const (
	PayoutTypeCreatorRelease  PayoutType = "creator_release"  // 放款给创建者
	PayoutTypeBackerRefund    PayoutType = "backer_refund"    // 退款给支持者
	PayoutTypeCharityTransfer PayoutType = "charity_transfer" // 转捐慈善机构
	PayoutTypePoolRemainder   PayoutType = "pool_remainder"   // 退款余额归入指定资金池
	PayoutTypeChallengeHold   PayoutType = "challenge_hold"   // 冻结，人工处理
)

// PayoutStatus 打款状态
type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending" // 待打款
	PayoutStatusSuccess PayoutStatus = "success" // 成功
	PayoutStatusFailed  PayoutStatus = "failed"  // 失败
	PayoutStatusManual  PayoutStatus = "manual"  // 需人工处理，不走网关
)

// TableName 自定义表名
func (PayoutRecordModel) TableName() string {
	return "payout_record"
}
