package router

import (
	"net/http"

	"github.com/Greybash/ngo-service/internal/config"
	"github.com/Greybash/ngo-service/internal/handler"
	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/Greybash/ngo-service/internal/metrics"
	"github.com/Greybash/ngo-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Services 路由依赖的业务逻辑
type Services struct {
	Accounts   *logic.AccountLogic
	Donations  *logic.DonationLogic
	Volunteers *logic.VolunteerLogic
	Jobs       *logic.JobLogic
	Dashboard  *logic.DashboardLogic
	Limiter    *middleware.RateLimiter
}

func Setup(cfg *config.Config, svc *Services) *gin.Engine {
	handler.InitValidator()

	r := gin.New()

	// 中间件
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger.GetDefaultZapLogger()))
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(metrics.PrometheusMiddleware())
	if svc.Limiter != nil {
		r.Use(svc.Limiter.Middleware())
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "ngo-service",
		})
	})
	r.GET("/metrics", metrics.Handler())

	// 本地存储的简历
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		r.Static("/media", cfg.Storage.LocalDir)
	}

	requireAuth := middleware.RequireAuth(svc.Accounts)
	optionalAuth := middleware.OptionalAuth(svc.Accounts)

	donationHandler := handler.NewDonationHandler(svc.Donations)

	// 网关回调，路径由支付组件配置
	r.POST("/payment-success", donationHandler.PaymentSuccess)
	r.GET("/payment-cancelled", donationHandler.PaymentCancelled)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		accountHandler := handler.NewAccountHandler(svc.Accounts)
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", accountHandler.Signup)
			auth.POST("/login", accountHandler.Login)
		}

		donations := v1.Group("/donations")
		{
			donations.GET("/form", requireAuth, donationHandler.Form)
			donations.GET("/top", donationHandler.TopDonors)
			donations.POST("", optionalAuth, donationHandler.Initiate)
			donations.GET("/:id", requireAuth, donationHandler.Get)
		}

		volunteerHandler := handler.NewVolunteerHandler(svc.Volunteers)
		v1.POST("/volunteers", requireAuth, volunteerHandler.Submit)

		jobHandler := handler.NewJobHandler(svc.Jobs)
		jobs := v1.Group("/jobs", requireAuth)
		{
			jobs.GET("", jobHandler.List)
			jobs.GET("/:id", jobHandler.Get)
			jobs.POST("/:id/applications", jobHandler.Apply)
		}

		adminHandler := handler.NewAdminHandler(svc.Dashboard, svc.Donations, svc.Volunteers, svc.Jobs)
		admin := v1.Group("/admin", requireAuth, middleware.RequireStaff())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/donations", adminHandler.DonationReport)
			admin.GET("/volunteers", adminHandler.Volunteers)
			admin.POST("/volunteers/:id/status", adminHandler.ReviewVolunteer)
			admin.GET("/jobs", adminHandler.Jobs)
			admin.POST("/jobs", adminHandler.CreateJob)
			admin.GET("/jobs/:id/applications", adminHandler.Applications)
			admin.GET("/jobs/:id/applications/export", adminHandler.ExportApplications)
			admin.POST("/jobs/:id/applications/:app_id/status", adminHandler.UpdateApplicationStatus)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, X-Request-ID, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
