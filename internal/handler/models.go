package handler

import (
	"time"

	"github.com/petethec/obsidian-order/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// NewPagination 计算分页信息
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		totalPage++
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

// 请求模型

// MilestoneInput 创建活动时的里程碑输入
type MilestoneInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TargetDate  time.Time `json:"target_date"`
}

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Title              string           `json:"title"`
	Type               string           `json:"type"`
	Description        string           `json:"description"`
	Target             string           `json:"target"`
	FundingGoal        int64            `json:"funding_goal"`
	StartDate          time.Time        `json:"start_date"`
	EndDate            time.Time        `json:"end_date"`
	CreatorId          int64            `json:"creator_id"`
	SuccessType        string           `json:"success_type"`
	SuccessDescription string           `json:"success_description"`
	FailureType        string           `json:"failure_type"`
	FailureDescription string           `json:"failure_description"`
	CharityName        string           `json:"charity_name"`
	RefundPercentage   int              `json:"refund_percentage"`
	Milestones         []MilestoneInput `json:"milestones"`
}

// UpdateCampaignRequest 更新活动请求（乐观锁）
type UpdateCampaignRequest struct {
	ActorId            int64   `json:"actor_id"`
	Version            int64   `json:"version"`
	Title              *string `json:"title"`
	Description        *string `json:"description"`
	Target             *string `json:"target"`
	SuccessDescription *string `json:"success_description"`
	FailureDescription *string `json:"failure_description"`
}

// PublishCampaignRequest 发布活动请求
type PublishCampaignRequest struct {
	ActorId int64 `json:"actor_id"`
}

// CreatePledgeRequest 质押请求
type CreatePledgeRequest struct {
	BackerId int64 `json:"backer_id"`
	Amount   int64 `json:"amount"`
}

// VerifyMilestoneRequest 里程碑核验请求
type VerifyMilestoneRequest struct {
	ActorId int64  `json:"actor_id"`
	Outcome string `json:"outcome"` // completed, failed
	Notes   string `json:"notes"`
}

// TriggerConsequenceRequest 后果触发申请请求
type TriggerConsequenceRequest struct {
	RequesterId int64  `json:"requester_id"`
	Type        string `json:"type"` // success, failure
	Notes       string `json:"notes"`
}

// ResolveConsequenceRequest 后果申请审批请求
type ResolveConsequenceRequest struct {
	AdminId int64  `json:"admin_id"`
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// CreateListingRequest 创建挂牌请求
type CreateListingRequest struct {
	CampaignId             int64  `json:"campaign_id"`
	SellerId               int64  `json:"seller_id"`
	Price                  int64  `json:"price"`
	Summary                string `json:"summary"`
	LegacyShareEnabled     bool   `json:"legacy_share_enabled"`
	LegacyShareDiscount    int    `json:"legacy_share_discount"`
	RoyaltyPercentage      int    `json:"royalty_percentage"`
	RoyaltyDurationMonths  int    `json:"royalty_duration_months"`
	AdvisorRoleEnabled     bool   `json:"advisor_role_enabled"`
	AdvisorEngagementLevel string `json:"advisor_engagement_level"`
}

// PurchaseListingRequest 购买挂牌请求
type PurchaseListingRequest struct {
	BuyerId       int64 `json:"buyer_id"`
	TermsAccepted bool  `json:"terms_accepted"`
}

// WithdrawListingRequest 撤牌请求
type WithdrawListingRequest struct {
	SellerId int64 `json:"seller_id"`
}

// CreateProfileRequest 创建用户档案请求
type CreateProfileRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Bio      string `json:"bio"`
	Website  string `json:"website"`
}

// 响应模型

// CampaignResponse 活动响应模型
type CampaignResponse struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Type               string     `json:"type"`
	Target             string     `json:"target"`
	CreatorID          int64      `json:"creatorId"`
	FundingGoal        int64      `json:"fundingGoal"`
	CurrentAmount      int64      `json:"currentAmount"`
	BackerCount        int64      `json:"backerCount"`
	Status             string     `json:"status"`
	Version            int64      `json:"version"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            time.Time  `json:"endDate"`
	SuccessType        string     `json:"successType"`
	SuccessDescription string     `json:"successDescription"`
	FailureType        string     `json:"failureType"`
	FailureDescription string     `json:"failureDescription"`
	CharityName        string     `json:"charityName,omitempty"`
	RefundPercentage   int        `json:"refundPercentage,omitempty"`
	PublishedAt        *time.Time `json:"publishedAt,omitempty"`
	EvaluatedAt        *time.Time `json:"evaluatedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// PledgeResponse 质押响应模型
type PledgeResponse struct {
	ID         int64     `json:"id"`
	CampaignID int64     `json:"campaignId"`
	BackerID   int64     `json:"backerId"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MilestoneResponse 里程碑响应模型
type MilestoneResponse struct {
	ID            int64      `json:"id"`
	CampaignID    int64      `json:"campaignId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TargetDate    time.Time  `json:"targetDate"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
}

// ConsequenceRequestResponse 后果执行申请响应模型
type ConsequenceRequestResponse struct {
	ID             int64      `json:"id"`
	CampaignID     int64      `json:"campaignId"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
	ProposedAction string     `json:"proposedAction,omitempty"`
	ProposedAmount int64      `json:"proposedAmount"`
	Beneficiary    string     `json:"beneficiary,omitempty"`
	Detail         string     `json:"detail,omitempty"`
	RequesterID    int64      `json:"requesterId"`
	ResolverID     int64      `json:"resolverId,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
	Executed       bool       `json:"executed"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// ListingResponse 挂牌响应模型
type ListingResponse struct {
	ID                     int64     `json:"id"`
	CampaignID             int64     `json:"campaignId"`
	SellerID               int64     `json:"sellerId"`
	Price                  int64     `json:"price"`
	Summary                string    `json:"summary,omitempty"`
	LegacyShareEnabled     bool      `json:"legacyShareEnabled"`
	LegacyShareDiscount    int       `json:"legacyShareDiscount,omitempty"`
	RoyaltyPercentage      int       `json:"royaltyPercentage,omitempty"`
	RoyaltyDurationMonths  int       `json:"royaltyDurationMonths,omitempty"`
	AdvisorRoleEnabled     bool      `json:"advisorRoleEnabled"`
	AdvisorEngagementLevel string    `json:"advisorEngagementLevel,omitempty"`
	TrustScore             int       `json:"trustScore"`
	Status                 string    `json:"status"`
	CreatedAt              time.Time `json:"createdAt"`
}

// TransferResponse 转让响应模型
type TransferResponse struct {
	ID         int64     `json:"id"`
	ListingID  int64     `json:"listingId"`
	CampaignID int64     `json:"campaignId"`
	SellerID   int64     `json:"sellerId"`
	BuyerID    int64     `json:"buyerId"`
	Price      int64     `json:"price"`
	Reference  string    `json:"reference"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ProfileResponse 用户档案响应模型
type ProfileResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Bio      string `json:"bio,omitempty"`
	Website  string `json:"website,omitempty"`
}

// 转换函数

// ToCampaignResponse 将数据库模型转换为响应模型
func ToCampaignResponse(campaign *model.CampaignModel) CampaignResponse {
	return CampaignResponse{
		ID:                 campaign.Id,
		Title:              campaign.Title,
		Description:        campaign.Description,
		Type:               string(campaign.Type),
		Target:             campaign.Target,
		CreatorID:          campaign.CreatorId,
		FundingGoal:        campaign.FundingGoal,
		CurrentAmount:      campaign.CurrentAmount,
		BackerCount:        campaign.BackerCount,
		Status:             string(campaign.Status),
		Version:            campaign.Version,
		StartDate:          campaign.StartDate,
		EndDate:            campaign.EndDate,
		SuccessType:        string(campaign.SuccessType),
		SuccessDescription: campaign.SuccessDescription,
		FailureType:        string(campaign.FailureType),
		FailureDescription: campaign.FailureDescription,
		CharityName:        campaign.CharityName,
		RefundPercentage:   campaign.RefundPercentage,
		PublishedAt:        campaign.PublishedAt,
		EvaluatedAt:        campaign.EvaluatedAt,
		CreatedAt:          campaign.CreatedAt,
		UpdatedAt:          campaign.UpdatedAt,
	}
}

// ToCampaignResponseList 将数据库模型列表转换为响应模型列表
func ToCampaignResponseList(campaigns []model.CampaignModel) []CampaignResponse {
	result := make([]CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		result[i] = ToCampaignResponse(&campaign)
	}
	return result
}

// ToPledgeResponse 将质押数据库模型转换为响应模型
func ToPledgeResponse(pledge *model.PledgeModel) PledgeResponse {
	return PledgeResponse{
		ID:         pledge.Id,
		CampaignID: pledge.CampaignId,
		BackerID:   pledge.BackerId,
		Amount:     pledge.Amount,
		Status:     string(pledge.Status),
		CreatedAt:  pledge.CreatedAt,
	}
}

// ToPledgeResponseList 将质押数据库模型列表转换为响应模型列表
func ToPledgeResponseList(pledges []model.PledgeModel) []PledgeResponse {
	result := make([]PledgeResponse, len(pledges))
	for i, pledge := range pledges {
		result[i] = ToPledgeResponse(&pledge)
	}
	return result
}

// ToMilestoneResponse 将里程碑数据库模型转换为响应模型
func ToMilestoneResponse(milestone *model.MilestoneModel) MilestoneResponse {
	return MilestoneResponse{
		ID:            milestone.Id,
		CampaignID:    milestone.CampaignId,
		Title:         milestone.Title,
		Description:   milestone.Description,
		TargetDate:    milestone.TargetDate,
		CompletedDate: milestone.CompletedDate,
		Status:        string(milestone.Status),
		Notes:         milestone.Notes,
	}
}

// ToMilestoneResponseList 将里程碑数据库模型列表转换为响应模型列表
func ToMilestoneResponseList(milestones []model.MilestoneModel) []MilestoneResponse {
	result := make([]MilestoneResponse, len(milestones))
	for i, milestone := range milestones {
		result[i] = ToMilestoneResponse(&milestone)
	}
	return result
}

// ToConsequenceRequestResponse 将后果执行申请数据库模型转换为响应模型
func ToConsequenceRequestResponse(request *model.ConsequenceRequestModel) ConsequenceRequestResponse {
	return ConsequenceRequestResponse{
		ID:             request.Id,
		CampaignID:     request.CampaignId,
		Type:           string(request.Type),
		Status:         string(request.Status),
		Notes:          request.Notes,
		ProposedAction: string(request.ProposedAction),
		ProposedAmount: request.ProposedAmount,
		Beneficiary:    request.Beneficiary,
		Detail:         request.Detail,
		RequesterID:    request.RequesterId,
		ResolverID:     request.ResolverId,
		ResolvedAt:     request.ResolvedAt,
		Executed:       request.Executed,
		CreatedAt:      request.CreatedAt,
	}
}

// ToConsequenceRequestResponseList 将后果执行申请列表转换为响应模型列表
func ToConsequenceRequestResponseList(requests []model.ConsequenceRequestModel) []ConsequenceRequestResponse {
	result := make([]ConsequenceRequestResponse, len(requests))
	for i, request := range requests {
		result[i] = ToConsequenceRequestResponse(&request)
	}
	return result
}

// ToListingResponse 将挂牌数据库模型转换为响应模型
func ToListingResponse(listing *model.ListingModel) ListingResponse {
	return ListingResponse{
		ID:                     listing.Id,
		CampaignID:             listing.CampaignId,
		SellerID:               listing.SellerId,
		Price:                  listing.Price,
		Summary:                listing.Summary,
		LegacyShareEnabled:     listing.LegacyShareEnabled,
		LegacyShareDiscount:    listing.LegacyShareDiscount,
		RoyaltyPercentage:      listing.RoyaltyPercentage,
		RoyaltyDurationMonths:  listing.RoyaltyDurationMonths,
		AdvisorRoleEnabled:     listing.AdvisorRoleEnabled,
		AdvisorEngagementLevel: string(listing.AdvisorEngagementLevel),
		TrustScore:             listing.TrustScore,
		Status:                 string(listing.Status),
		CreatedAt:              listing.CreatedAt,
	}
}

// ToListingResponseList 将挂牌数据库模型列表转换为响应模型列表
func ToListingResponseList(listings []model.ListingModel) []ListingResponse {
	result := make([]ListingResponse, len(listings))
	for i, listing := range listings {
		result[i] = ToListingResponse(&listing)
	}
	return result
}

// ToTransferResponse 将转让数据库模型转换为响应模型
func ToTransferResponse(transfer *model.CampaignTransferModel) TransferResponse {
	return TransferResponse{
		ID:         transfer.Id,
		ListingID:  transfer.ListingId,
		CampaignID: transfer.CampaignId,
		SellerID:   transfer.SellerId,
		BuyerID:    transfer.BuyerId,
		Price:      transfer.Price,
		Reference:  transfer.Reference,
		CreatedAt:  transfer.CreatedAt,
	}
}

// ToProfileResponse 将用户档案数据库模型转换为响应模型
func ToProfileResponse(profile *model.ProfileModel) ProfileResponse {
	return ProfileResponse{
		ID:       profile.Id,
		Username: profile.Username,
		FullName: profile.FullName,
		Email:    profile.Email,
		Role:     profile.Role,
		Bio:      profile.Bio,
		Website:  profile.Website,
	}
}
