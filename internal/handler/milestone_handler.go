package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/petethec/obsidian-order/internal/logic"
	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// MilestoneHandler 里程碑处理器
type MilestoneHandler struct {
	milestoneLogic *logic.MilestoneLogic
}

// NewMilestoneHandler 创建里程碑处理器
func NewMilestoneHandler(db *gorm.DB) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneLogic: logic.NewMilestoneLogic(db),
	}
}

// VerifyMilestone 核验里程碑
func (h *MilestoneHandler) VerifyMilestone(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的里程碑ID")
		return
	}

	var req VerifyMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	milestone, err := h.milestoneLogic.VerifyMilestone(id, req.ActorId,
		model.MilestoneStatus(req.Outcome), req.Notes)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "里程碑核验成功", ToMilestoneResponse(milestone))
}

// GetCampaignMilestones 查询活动的里程碑列表
func (h *MilestoneHandler) GetCampaignMilestones(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	milestones, err := h.milestoneLogic.GetCampaignMilestones(campaignId)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取里程碑列表成功", ToMilestoneResponseList(milestones))
}
