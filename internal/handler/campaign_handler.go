package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/petethec/obsidian-order/internal/logic"
	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// CampaignHandler 活动处理器
type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(db *gorm.DB) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic: logic.NewCampaignLogic(db),
	}
}

// CreateCampaign 创建活动（草稿态）
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	campaign := &model.CampaignModel{
		Title:              req.Title,
		Description:        req.Description,
		Type:               model.CampaignType(req.Type),
		Target:             req.Target,
		FundingGoal:        req.FundingGoal,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		CreatorId:          req.CreatorId,
		SuccessType:        model.SuccessType(req.SuccessType),
		SuccessDescription: req.SuccessDescription,
		FailureType:        model.FailureType(req.FailureType),
		FailureDescription: req.FailureDescription,
		CharityName:        req.CharityName,
		RefundPercentage:   req.RefundPercentage,
	}

	milestones := make([]model.MilestoneModel, len(req.Milestones))
	for i, m := range req.Milestones {
		milestones[i] = model.MilestoneModel{
			Title:       m.Title,
			Description: m.Description,
			TargetDate:  m.TargetDate,
		}
	}

	if err := h.campaignLogic.CreateCampaign(campaign, milestones); err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "活动创建成功", ToCampaignResponse(campaign))
}

// GetCampaigns 查询活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	status := c.Query("status")
	campaignType := c.Query("type")
	creatorId, _ := strconv.ParseInt(c.DefaultQuery("creatorId", "0"), 10, 64)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	campaigns, total, err := h.campaignLogic.GetCampaigns(status, campaignType, creatorId, page, pageSize)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动列表成功", gin.H{
		"campaigns":  ToCampaignResponseList(campaigns),
		"pagination": NewPagination(page, pageSize, total),
	})
}

// GetCampaign 查询单个活动
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(id)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动成功", ToCampaignResponse(campaign))
}

// UpdateCampaign 更新草稿活动（乐观锁）
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Target != nil {
		updates["target"] = *req.Target
	}
	if req.SuccessDescription != nil {
		updates["success_description"] = *req.SuccessDescription
	}
	if req.FailureDescription != nil {
		updates["failure_description"] = *req.FailureDescription
	}

	campaign, err := h.campaignLogic.UpdateCampaign(id, req.ActorId, req.Version, updates)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "活动更新成功", ToCampaignResponse(campaign))
}

// PublishCampaign 发布活动
func (h *CampaignHandler) PublishCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req PublishCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	campaign, err := h.campaignLogic.PublishCampaign(id, req.ActorId)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "活动发布成功", ToCampaignResponse(campaign))
}

// GetCampaignStats 查询活动统计
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	stats, err := h.campaignLogic.GetCampaignStats(id)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取活动统计成功", stats)
}
