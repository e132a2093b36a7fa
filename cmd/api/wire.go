//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 使用方式：
//
//	wire gen ./cmd/api
//
// 生成wire_gen.go后，main.go可改用InitializeApp()替代手动组装。
// Wire在编译期生成代码：零运行时开销、类型安全、编译期发现循环依赖。
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appNotification "github.com/zeus1411/aquastore/internal/application/notification"
	appOrder "github.com/zeus1411/aquastore/internal/application/order"
	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/internal/domain/product"
	"github.com/zeus1411/aquastore/internal/domain/promotion"
	"github.com/zeus1411/aquastore/internal/infrastructure/config"
	"github.com/zeus1411/aquastore/internal/infrastructure/gateway/vnpay"
	"github.com/zeus1411/aquastore/internal/infrastructure/persistence/mysql"
	"github.com/zeus1411/aquastore/internal/infrastructure/persistence/redis"
	"github.com/zeus1411/aquastore/internal/infrastructure/staging"
	httpiface "github.com/zeus1411/aquastore/internal/interface/http"
	"github.com/zeus1411/aquastore/internal/interface/http/handler"
	"github.com/zeus1411/aquastore/internal/interface/http/middleware"
	"github.com/zeus1411/aquastore/pkg/jwt"
	"github.com/zeus1411/aquastore/pkg/mq"
)

// infrastructureSet 基础设施层：配置、数据库、Redis
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
)

// repositorySet 仓储层
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewProductRepository,
	mysql.NewCartRepository,
	mysql.NewPromotionRepository,
	mysql.NewOrderRepository,
	mysql.NewPaymentRepository,
	mysql.NewNotificationRepository,
	mysql.NewTxManager,
	wire.Bind(new(appOrder.TxManager), new(*mysql.TxManager)),
)

// applicationSet 应用层用例
var applicationSet = wire.NewSet(
	promotion.NewEvaluator,
	appOrder.NewStockEngine,
	appOrder.NewNotifier,
	appOrder.NewCreateOrderUseCase,
	appOrder.NewPaymentCallbackUseCase,
	appOrder.NewCancelOrderUseCase,
	appOrder.NewQueryUseCase,
	appNotification.NewUseCase,
)

// handlerSet 接口层
var handlerSet = wire.NewSet(
	handler.NewOrderHandler,
	handler.NewNotificationHandler,
	providePaymentHandler,
	httpiface.NewRouter,
)

// provideJWTManager 从配置提取JWT参数
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

// provideSessionStore 会话存储（同时充当Token黑名单）
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideProductCache 商品缓存
func provideProductCache(client *goredis.Client, cfg *config.Config) *redis.ProductCache {
	return redis.NewProductCache(client, cfg.Cache.ProductTTL)
}

// provideGateway 支付网关客户端
func provideGateway(cfg *config.Config) *vnpay.Client {
	return vnpay.NewClient(cfg.VNPay)
}

// provideStaging 按配置选择暂存存储实现
func provideStaging(cfg *config.Config, client *goredis.Client) order.Staging {
	if cfg.Staging.Store == "redis" {
		return redis.NewStagingStore(client, cfg.Staging.TTL)
	}
	return staging.NewMemoryStore(cfg.Staging.TTL)
}

// providePublisher MQ发布者，broker不可用时返回nil（仅站内通知）
func providePublisher(cfg *config.Config) appOrder.EventPublisher {
	if cfg.MQ.URL == "" {
		return nil
	}
	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil
	}
	return pub
}

// providePaymentHandler 支付处理器需要前端结果页地址
func providePaymentHandler(callback *appOrder.PaymentCallbackUseCase, cfg *config.Config) *handler.PaymentHandler {
	return handler.NewPaymentHandler(callback, cfg.VNPay.ResultURL)
}

// provideGinEngine 创建引擎并装配路由
func provideGinEngine(cfg *config.Config, router *httpiface.Router) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	router.Setup(engine)
	return engine
}

// InitializeApp 组装完整应用，返回配置好的Gin引擎
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		handlerSet,
		provideJWTManager,
		provideSessionStore,
		wire.Bind(new(middleware.TokenBlacklist), new(*redis.SessionStore)),
		provideProductCache,
		wire.Bind(new(product.Cache), new(*redis.ProductCache)),
		provideGateway,
		wire.Bind(new(appOrder.Gateway), new(*vnpay.Client)),
		provideStaging,
		providePublisher,
		provideGinEngine,
	)
	return nil, nil
}
