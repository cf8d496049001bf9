package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/petethec/obsidian-order/internal/config"
	"github.com/petethec/obsidian-order/internal/logic"
	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// MarketplaceHandler 活动交易市场处理器
type MarketplaceHandler struct {
	marketplaceLogic *logic.MarketplaceLogic
}

// NewMarketplaceHandler 创建活动交易市场处理器
func NewMarketplaceHandler(db *gorm.DB, cfg *config.Config) *MarketplaceHandler {
	return &MarketplaceHandler{
		marketplaceLogic: logic.NewMarketplaceLogic(db, cfg),
	}
}

// CreateListing 创建挂牌
func (h *MarketplaceHandler) CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	listing := &model.ListingModel{
		CampaignId:             req.CampaignId,
		SellerId:               req.SellerId,
		Price:                  req.Price,
		Summary:                req.Summary,
		LegacyShareEnabled:     req.LegacyShareEnabled,
		LegacyShareDiscount:    req.LegacyShareDiscount,
		RoyaltyPercentage:      req.RoyaltyPercentage,
		RoyaltyDurationMonths:  req.RoyaltyDurationMonths,
		AdvisorRoleEnabled:     req.AdvisorRoleEnabled,
		AdvisorEngagementLevel: model.AdvisorEngagementLevel(req.AdvisorEngagementLevel),
	}

	created, err := h.marketplaceLogic.CreateListing(listing)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "挂牌创建成功", ToListingResponse(created))
}

// GetListings 查询挂牌列表
func (h *MarketplaceHandler) GetListings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	status := c.Query("status")
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	listings, total, err := h.marketplaceLogic.GetListings(status, page, pageSize)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取挂牌列表成功", gin.H{
		"listings":   ToListingResponseList(listings),
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetListing 查询单个挂牌
func (h *MarketplaceHandler) GetListing(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的挂牌ID")
		return
	}

	listing, err := h.marketplaceLogic.GetListing(id)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取挂牌成功", ToListingResponse(listing))
}

// PurchaseListing 购买挂牌（活动所有权转让）
func (h *MarketplaceHandler) PurchaseListing(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的挂牌ID")
		return
	}

	var req PurchaseListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	transfer, err := h.marketplaceLogic.Purchase(id, req.BuyerId, req.TermsAccepted)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "购买成功", ToTransferResponse(transfer))
}

// WithdrawListing 撤牌
func (h *MarketplaceHandler) WithdrawListing(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的挂牌ID")
		return
	}

	var req WithdrawListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	if err := h.marketplaceLogic.Withdraw(id, req.SellerId); err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "撤牌成功", nil)
}
