package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/zeus1411/aquastore/internal/interface/http/handler"
	"github.com/zeus1411/aquastore/internal/interface/http/middleware"
	"github.com/zeus1411/aquastore/pkg/jwt"
	"github.com/zeus1411/aquastore/pkg/response"
)

// Router HTTP路由装配
type Router struct {
	orderHandler        *handler.OrderHandler
	paymentHandler      *handler.PaymentHandler
	notificationHandler *handler.NotificationHandler
	jwtManager          *jwt.Manager
	blacklist           middleware.TokenBlacklist
}

// NewRouter 创建路由装配器
func NewRouter(
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	notificationHandler *handler.NotificationHandler,
	jwtManager *jwt.Manager,
	blacklist middleware.TokenBlacklist,
) *Router {
	return &Router{
		orderHandler:        orderHandler,
		paymentHandler:      paymentHandler,
		notificationHandler: notificationHandler,
		jwtManager:          jwtManager,
		blacklist:           blacklist,
	}
}

// Setup 注册全部路由
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(gin.Recovery())
	engine.Use(middleware.Metrics())

	// 运维端点
	engine.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := engine.Group("/api/v1")

	// 网关回调不走认证：请求来自网关/浏览器跳转，身份由签名保证
	v1.GET("/payments/vnpay/return", r.paymentHandler.VNPayReturn)

	auth := v1.Group("")
	auth.Use(middleware.JWTAuth(r.jwtManager, r.blacklist))
	{
		auth.POST("/orders", r.orderHandler.Create)
		auth.GET("/orders", r.orderHandler.List)
		auth.GET("/orders/:id", r.orderHandler.Get)
		auth.POST("/orders/:id/cancel", r.orderHandler.Cancel)

		auth.GET("/notifications", r.notificationHandler.List)
		auth.PUT("/notifications/:id/read", r.notificationHandler.MarkRead)
	}
}
