package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/petethec/obsidian-order/internal/logic"
	"github.com/petethec/obsidian-order/internal/model"
	"gorm.io/gorm"
)

// ProfileHandler 用户档案处理器
type ProfileHandler struct {
	profileLogic *logic.ProfileLogic
}

// NewProfileHandler 创建用户档案处理器
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{
		profileLogic: logic.NewProfileLogic(db),
	}
}

// CreateProfile 创建用户档案
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	profile := &model.ProfileModel{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		Bio:      req.Bio,
		Website:  req.Website,
	}

	if err := h.profileLogic.CreateProfile(profile); err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "用户档案创建成功", ToProfileResponse(profile))
}

// GetProfile 查询用户档案
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	profile, err := h.profileLogic.GetProfile(id)
	if err != nil {
		HandleLogicError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取用户档案成功", ToProfileResponse(profile))
}
