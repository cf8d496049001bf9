package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/petethec/obsidian-order/internal/config"
	"github.com/petethec/obsidian-order/internal/logger"
	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// MarketplaceLogic 二级市场业务逻辑
type MarketplaceLogic struct {
	db    *gorm.DB
	cfg   *config.Config
	trust *TrustScoreLogic
}

// NewMarketplaceLogic 创建二级市场业务逻辑
func NewMarketplaceLogic(db *gorm.DB, cfg *config.Config) *MarketplaceLogic {
	return &MarketplaceLogic{db: db, cfg: cfg, trust: NewTrustScoreLogic(db)}
}

// CreateListing 创建挂牌
// 准入：活动成功终态 + 信任分达标 + 卖家为活动当前所有者；条款越界直接拒绝。
func (l *MarketplaceLogic) CreateListing(listing *model.ListingModel) (*model.ListingModel, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, listing.CampaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取活动失败: %w", err)
	}

	if campaign.CreatorId != listing.SellerId {
		return nil, ErrUnauthorized
	}
	if campaign.Status != model.CampaignStatusSuccessful {
		return nil, ErrStateConflict
	}

	score, _, err := l.trust.Score(campaign.Id)
	if err != nil {
		return nil, err
	}
	if score < l.cfg.Marketplace.MinTrustScore {
		return nil, fmt.Errorf("%w: 信任分%d低于准入线%d",
			ErrStateConflict, score, l.cfg.Marketplace.MinTrustScore)
	}

	if err := l.validateTerms(listing); err != nil {
		return nil, err
	}

	// 同一活动不允许并存多个在售挂牌
	var activeCount int64
	if err := l.db.Model(&model.ListingModel{}).
		Where("campaign_id = ? AND status = ?", campaign.Id, model.ListingStatusActive).
		Count(&activeCount).Error; err != nil {
		return nil, fmt.Errorf("查询挂牌失败: %w", err)
	}
	if activeCount > 0 {
		return nil, ErrStateConflict
	}

	listing.TrustScore = score
	listing.Status = model.ListingStatusActive
	if err := l.db.Create(listing).Error; err != nil {
		return nil, fmt.Errorf("创建挂牌失败: %w", err)
	}

	logger.Info("Listing %d created for campaign %d (trust score %d)",
		listing.Id, campaign.Id, score)
	return listing, nil
}

// Purchase 购买挂牌
// 挂牌售出、活动所有权转移、转让记录与分成义务在同一事务内完成；
// 挂牌状态 CAS 保证并发买家只有一个成交。
func (l *MarketplaceLogic) Purchase(listingId, buyerId int64, termsAccepted bool) (*model.CampaignTransferModel, error) {
	if !termsAccepted {
		return nil, NewValidationError("必须先接受交易条款")
	}
	if buyerId <= 0 {
		return nil, NewValidationError("买家不能为空")
	}

	var listing model.ListingModel
	if err := l.db.First(&listing, listingId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取挂牌失败: %w", err)
	}
	if listing.Status != model.ListingStatusActive {
		return nil, ErrStateConflict
	}
	if listing.SellerId == buyerId {
		return nil, NewValidationError("不能购买自己的挂牌")
	}

	transfer := &model.CampaignTransferModel{
		ListingId:  listing.Id,
		CampaignId: listing.CampaignId,
		SellerId:   listing.SellerId,
		BuyerId:    buyerId,
		Price:      listing.Price,
		Reference:  uuid.NewString(),
	}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ListingModel{}).
			Where("id = ? AND status = ?", listingId, model.ListingStatusActive).
			Update("status", model.ListingStatusSold)
		if res.Error != nil {
			return fmt.Errorf("更新挂牌状态失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// 已被其他买家成交或已撤牌
			return ErrStateConflict
		}

		if err := tx.Model(&model.CampaignModel{}).
			Where("id = ?", listing.CampaignId).
			Updates(map[string]interface{}{
				"creator_id": buyerId,
				"version":    gorm.Expr("version + 1"),
			}).Error; err != nil {
			return fmt.Errorf("转移活动所有权失败: %w", err)
		}

		if err := tx.Create(transfer).Error; err != nil {
			return fmt.Errorf("创建转让记录失败: %w", err)
		}

		if listing.LegacyShareEnabled {
			now := time.Now()
			obligation := model.RoyaltyObligationModel{
				TransferId:    transfer.Id,
				CampaignId:    listing.CampaignId,
				BeneficiaryId: listing.SellerId,
				PayerId:       buyerId,
				Percentage:    listing.RoyaltyPercentage,
				StartsAt:      now,
				EndsAt:        now.AddDate(0, listing.RoyaltyDurationMonths, 0),
				Status:        model.RoyaltyStatusActive,
			}
			if err := tx.Create(&obligation).Error; err != nil {
				return fmt.Errorf("创建分成义务失败: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Listing %d sold to buyer %d, transfer %s",
		listingId, buyerId, transfer.Reference)
	return transfer, nil
}

// Withdraw 撤牌
func (l *MarketplaceLogic) Withdraw(listingId, sellerId int64) error {
	var listing model.ListingModel
	if err := l.db.First(&listing, listingId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("获取挂牌失败: %w", err)
	}
	if listing.SellerId != sellerId {
		return ErrUnauthorized
	}
	if listing.Status != model.ListingStatusActive {
		return ErrStateConflict
	}

	res := l.db.Model(&model.ListingModel{}).
		Where("id = ? AND status = ?", listingId, model.ListingStatusActive).
		Update("status", model.ListingStatusWithdrawn)
	if res.Error != nil {
		return fmt.Errorf("撤牌失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// GetListing 获取挂牌详情
func (l *MarketplaceLogic) GetListing(id int64) (*model.ListingModel, error) {
	var listing model.ListingModel
	if err := l.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取挂牌详情失败: %w", err)
	}
	return &listing, nil
}

// GetListings 获取挂牌列表
func (l *MarketplaceLogic) GetListings(status string, page, pageSize int) ([]model.ListingModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := l.db.Model(&model.ListingModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取挂牌总数失败: %w", err)
	}

	var listings []model.ListingModel
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("获取挂牌列表失败: %w", err)
	}

	return listings, total, nil
}

// validateTerms 校验挂牌条款边界
func (l *MarketplaceLogic) validateTerms(listing *model.ListingModel) error {
	var fields []string
	mc := l.cfg.Marketplace

	if listing.Price < mc.MinPrice || listing.Price > mc.MaxPrice {
		fields = append(fields, fmt.Sprintf("价格必须在%d-%d之间", mc.MinPrice, mc.MaxPrice))
	}

	if listing.LegacyShareEnabled {
		if listing.LegacyShareDiscount < mc.MinDiscount || listing.LegacyShareDiscount > mc.MaxDiscount {
			fields = append(fields, fmt.Sprintf("折扣必须在%d%%-%d%%之间", mc.MinDiscount, mc.MaxDiscount))
		}
		if listing.RoyaltyPercentage < mc.MinRoyalty || listing.RoyaltyPercentage > mc.MaxRoyalty {
			fields = append(fields, fmt.Sprintf("分成比例必须在%d%%-%d%%之间", mc.MinRoyalty, mc.MaxRoyalty))
		}
		if listing.RoyaltyDurationMonths < mc.MinDurationMonth || listing.RoyaltyDurationMonths > mc.MaxDurationMonth {
			fields = append(fields, fmt.Sprintf("分成期限必须在%d-%d个月之间", mc.MinDurationMonth, mc.MaxDurationMonth))
		}
	}

	if listing.AdvisorRoleEnabled {
		switch listing.AdvisorEngagementLevel {
		case model.AdvisorEngagementLight, model.AdvisorEngagementModerate, model.AdvisorEngagementHandsOn:
		default:
			fields = append(fields, "无效的顾问参与程度")
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
