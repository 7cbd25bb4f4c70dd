package router

import (
	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/config"
	"github.com/blues/dps/internal/handler"
	"github.com/blues/dps/internal/logic"
	"github.com/blues/dps/internal/payment"
	"github.com/blues/dps/internal/render"
	"github.com/blues/dps/internal/session"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, backendClient *backend.Client, renderer *render.Renderer, payments *payment.Client, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "donation-page-service",
		})
	})

	sessionStore := session.NewStore(db)
	checkoutLogic := logic.NewCheckoutRecordLogic(db)

	donateHandler := handler.NewDonateHandler(backendClient, renderer, payments, checkoutLogic, cfg.Server.PublicOrigin)
	embedHandler := handler.NewEmbedHandler(backendClient, cfg.Server.PublicOrigin)
	layoutHandler := handler.NewLayoutHandler(backendClient)
	authHandler := handler.NewAuthHandler(backendClient, sessionStore)

	// 静态资源
	r.Static("/static", "./web/static")

	// 访客页面
	r.GET("/donate/:campaignId", donateHandler.GetDonatePage)
	r.GET("/donate/:campaignId/thank-you", donateHandler.GetThankYouPage)
	r.GET("/donate/o/:org/:slug", donateHandler.GetDonatePageBySlug)
	r.GET("/embed/:campaignId/progress", embedHandler.GetProgressWidget)

	// API
	api := r.Group("/api")
	{
		donations := api.Group("/donations")
		{
			donations.POST("/checkout", donateHandler.CreateCheckout)
		}

		campaigns := api.Group("/campaigns")
		{
			campaigns.GET("/:id/page-layout", layoutHandler.GetPageLayout)
			campaigns.PUT("/:id/page-layout", layoutHandler.PutPageLayout)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authHandler.Me)
		}

		api.GET("/checkouts", donateHandler.ListCheckouts)
		api.GET("/stats/checkouts", donateHandler.GetCheckoutStats)
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
