package router

import (
	"github.com/gin-gonic/gin"
	"github.com/petethec/obsidian-order/internal/config"
	"github.com/petethec/obsidian-order/internal/handler"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "obsidian-order",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 活动相关路由
		campaignHandler := handler.NewCampaignHandler(db)
		pledgeHandler := handler.NewPledgeHandler(db)
		milestoneHandler := handler.NewMilestoneHandler(db)
		consequenceHandler := handler.NewConsequenceHandler(db, cfg)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.PUT("/:id", campaignHandler.UpdateCampaign)
			campaigns.POST("/:id/publish", campaignHandler.PublishCampaign)
			campaigns.GET("/:id/stats", campaignHandler.GetCampaignStats)
			campaigns.POST("/:id/pledges", pledgeHandler.CreatePledge)
			campaigns.GET("/:id/pledges", pledgeHandler.GetCampaignPledges)
			campaigns.GET("/:id/milestones", milestoneHandler.GetCampaignMilestones)
			campaigns.POST("/:id/consequence-requests", consequenceHandler.TriggerConsequence)
			campaigns.GET("/:id/consequence-requests", consequenceHandler.GetCampaignRequests)
		}

		// 里程碑相关路由
		milestones := v1.Group("/milestones")
		{
			milestones.POST("/:id/verify", milestoneHandler.VerifyMilestone)
		}

		// 后果申请审批路由
		consequences := v1.Group("/consequence-requests")
		{
			consequences.POST("/:id/resolve", consequenceHandler.ResolveRequest)
		}

		// 二级市场相关路由
		marketplaceHandler := handler.NewMarketplaceHandler(db, cfg)
		listings := v1.Group("/listings")
		{
			listings.POST("", marketplaceHandler.CreateListing)
			listings.GET("", marketplaceHandler.GetListings)
			listings.GET("/:id", marketplaceHandler.GetListing)
			listings.POST("/:id/purchase", marketplaceHandler.PurchaseListing)
			listings.POST("/:id/withdraw", marketplaceHandler.WithdrawListing)
		}

		// 用户档案相关路由
		profileHandler := handler.NewProfileHandler(db)
		profiles := v1.Group("/profiles")
		{
			profiles.POST("", profileHandler.CreateProfile)
			profiles.GET("/:id", profileHandler.GetProfile)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
