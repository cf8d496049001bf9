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

// ConsequenceHandler 后果引擎处理器
type ConsequenceHandler struct {
	consequenceLogic *logic.ConsequenceLogic
}

// NewConsequenceHandler 创建后果引擎处理器
func NewConsequenceHandler(db *gorm.DB, cfg *config.Config) *ConsequenceHandler {
	return &ConsequenceHandler{
		consequenceLogic: logic.NewConsequenceLogic(db, cfg),
	}
}

// TriggerConsequence 申请触发后果
func (h *ConsequenceHandler) TriggerConsequence(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req TriggerConsequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	request, err := h.consequenceLogic.RequestTrigger(campaignId, req.RequesterId,
		model.ConsequenceType(req.Type), req.Notes)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "后果触发申请已提交", ToConsequenceRequestResponse(request))
}

// GetCampaignRequests 查询活动的后果申请列表
func (h *ConsequenceHandler) GetCampaignRequests(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	requests, err := h.consequenceLogic.GetCampaignRequests(campaignId)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取后果申请列表成功", ToConsequenceRequestResponseList(requests))
}

// ResolveRequest 审批后果申请
func (h *ConsequenceHandler) ResolveRequest(c *gin.Context) {
	requestId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的申请ID")
		return
	}

	var req ResolveConsequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	request, err := h.consequenceLogic.ResolveRequest(requestId, req.AdminId, req.Approve, req.Notes)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "后果申请审批成功", ToConsequenceRequestResponse(request))
}
