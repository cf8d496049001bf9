package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/petethec/obsidian-order/internal/logic"
	"gorm.io/gorm"
)

// PledgeHandler 质押处理器
type PledgeHandler struct {
	pledgeLogic *logic.PledgeLogic
}

// NewPledgeHandler 创建质押处理器
func NewPledgeHandler(db *gorm.DB) *PledgeHandler {
	return &PledgeHandler{
		pledgeLogic: logic.NewPledgeLogic(db),
	}
}

// CreatePledge 记录一笔质押
func (h *PledgeHandler) CreatePledge(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req CreatePledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	pledge, err := h.pledgeLogic.RecordPledge(campaignId, req.BackerId, req.Amount)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "质押记录成功", ToPledgeResponse(pledge))
}

// GetCampaignPledges 查询活动的质押列表
func (h *PledgeHandler) GetCampaignPledges(c *gin.Context) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	pledges, total, err := h.pledgeLogic.GetCampaignPledges(campaignId, page, pageSize)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取质押列表成功", gin.H{
		"pledges":    ToPledgeResponseList(pledges),
		"pagination": NewPagination(page, pageSize, total),
	})
}
