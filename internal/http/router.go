package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"jobportal/internal/domain/user"
	"jobportal/internal/http/handlers"
	httpmw "jobportal/internal/http/middleware"
	"jobportal/internal/http/response"
	"jobportal/internal/metrics"
)

const (
	maxBodySize     = "1M"
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

type RouterDependencies struct {
	AuthHandler         *handlers.AuthHandler
	JobHandler          *handlers.JobHandler
	ApplicationHandler  *handlers.ApplicationHandler
	RecruiterHandler    *handlers.RecruiterHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	NotificationHandler *handlers.NotificationHandler
	CMSHandler          *handlers.CMSHandler
	HealthHandler       *handlers.HealthHandler
	MaintenanceHandler  *handlers.MaintenanceHandler
	AuthMiddleware      *httpmw.AuthMiddleware
	Limiter             httpmw.Limiter
	Metrics             *metrics.Collector
	Logger              logrus.FieldLogger
	RequestTimeout      time.Duration
	CORSOrigins         []string
}

func NewRouter(deps RouterDependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = response.ErrorHandler(deps.Logger)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(httpmw.RequestLogger(deps.Logger))
	e.Use(httpmw.Metrics(deps.Metrics))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit(maxBodySize))
	if len(deps.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
		}))
	}
	if deps.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeout(deps.RequestTimeout))
	}

	e.GET("/health", deps.HealthHandler.Health)
	e.GET("/metrics", handlers.MetricsHandler(deps.Metrics))

	auth := deps.AuthMiddleware
	api := e.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", deps.AuthHandler.Register)
	authGroup.POST("/login", deps.AuthHandler.Login, httpmw.RateLimit(deps.Limiter, httpmw.ClientIPKey("login"), loginRateLimit, loginRateWindow))
	authGroup.GET("/me", deps.AuthHandler.Me, auth.Authenticate)

	public := api.Group("", auth.OptionalAuth)
	public.GET("/jobs", deps.JobHandler.List)
	public.GET("/jobs/:id", deps.JobHandler.Get)
	public.GET("/plans", deps.SubscriptionHandler.ListPlans)
	public.GET("/cms/banners", deps.CMSHandler.Banners)
	public.GET("/cms/cards", deps.CMSHandler.Cards)

	seeker := api.Group("/user", auth.Authenticate, httpmw.RequireRole(user.RoleJobSeeker))
	seeker.POST("/applications", deps.ApplicationHandler.Apply)
	seeker.GET("/applications", deps.ApplicationHandler.ListMine)
	seeker.GET("/applications/:id", deps.ApplicationHandler.GetMine)
	seeker.PATCH("/applications/:id/withdraw", deps.ApplicationHandler.Withdraw)

	recruiter := api.Group("/recruiter", auth.Authenticate, httpmw.RequireRole(user.RoleRecruiter))
	recruiter.GET("/profile", deps.RecruiterHandler.GetProfile)
	recruiter.PUT("/profile", deps.RecruiterHandler.UpsertProfile)
	recruiter.POST("/jobs", deps.JobHandler.Create)
	recruiter.GET("/jobs", deps.JobHandler.ListMine)
	recruiter.GET("/jobs/:id", deps.JobHandler.GetMine)
	recruiter.PUT("/jobs/:id", deps.JobHandler.Update)
	recruiter.PATCH("/jobs/:id/status", deps.JobHandler.UpdateStatus)
	recruiter.GET("/jobs/:id/applications", deps.ApplicationHandler.ListForJob)
	recruiter.PATCH("/applications/:id/status", deps.ApplicationHandler.UpdateStatus)
	recruiter.GET("/subscription", deps.SubscriptionHandler.Current)
	recruiter.POST("/subscription", deps.SubscriptionHandler.Subscribe)
	recruiter.DELETE("/subscription", deps.SubscriptionHandler.Cancel)
	recruiter.GET("/subscription/check", deps.SubscriptionHandler.Check)
	recruiter.GET("/subscription/history", deps.SubscriptionHandler.History)

	notifications := api.Group("/notifications", auth.Authenticate)
	notifications.GET("", deps.NotificationHandler.List)
	notifications.GET("/unread-count", deps.NotificationHandler.UnreadCount)
	notifications.PATCH("/read-all", deps.NotificationHandler.MarkAllRead)
	notifications.PATCH("/:id/read", deps.NotificationHandler.MarkRead)

	admin := api.Group("/admin", auth.Authenticate, httpmw.RequireRole(user.RoleAdmin))
	admin.GET("/plans", deps.SubscriptionHandler.AdminListPlans)
	admin.POST("/plans", deps.SubscriptionHandler.CreatePlan)
	admin.PUT("/plans/:id", deps.SubscriptionHandler.UpdatePlan)
	admin.GET("/recruiters", deps.RecruiterHandler.AdminList)
	admin.PATCH("/recruiters/:id/status", deps.RecruiterHandler.SetStatus)
	admin.PATCH("/recruiters/:id/verify", deps.RecruiterHandler.SetVerified)
	admin.GET("/jobs", deps.JobHandler.AdminList)
	admin.PATCH("/jobs/:id/status", deps.JobHandler.Moderate)
	admin.GET("/cms/banners", deps.CMSHandler.AdminListBanners)
	admin.POST("/cms/banners", deps.CMSHandler.CreateBanner)
	admin.PUT("/cms/banners/:id", deps.CMSHandler.UpdateBanner)
	admin.DELETE("/cms/banners/:id", deps.CMSHandler.DeleteBanner)
	admin.GET("/cms/cards", deps.CMSHandler.AdminListCards)
	admin.POST("/cms/cards", deps.CMSHandler.CreateCard)
	admin.PUT("/cms/cards/:id", deps.CMSHandler.UpdateCard)
	admin.DELETE("/cms/cards/:id", deps.CMSHandler.DeleteCard)
	admin.POST("/maintenance/expire", deps.MaintenanceHandler.Expire)

	return e
}
