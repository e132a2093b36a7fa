package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	appNotification "github.com/zeus1411/aquastore/internal/application/notification"
	appOrder "github.com/zeus1411/aquastore/internal/application/order"
	"github.com/zeus1411/aquastore/internal/domain/order"
	"github.com/zeus1411/aquastore/internal/domain/promotion"
	"github.com/zeus1411/aquastore/internal/infrastructure/config"
	"github.com/zeus1411/aquastore/internal/infrastructure/gateway/vnpay"
	"github.com/zeus1411/aquastore/internal/infrastructure/persistence/mysql"
	"github.com/zeus1411/aquastore/internal/infrastructure/persistence/redis"
	"github.com/zeus1411/aquastore/internal/infrastructure/staging"
	httpiface "github.com/zeus1411/aquastore/internal/interface/http"
	"github.com/zeus1411/aquastore/internal/interface/http/handler"
	"github.com/zeus1411/aquastore/pkg/jwt"
	"github.com/zeus1411/aquastore/pkg/metrics"
	"github.com/zeus1411/aquastore/pkg/mq"
	"github.com/zeus1411/aquastore/pkg/tracing"
)

// @title AquaStore API
// @version 1.0
// @description 水族电商的订单创建与履约服务
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. 配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - 暂存存储: %s\n", cfg.Staging.Store)

	// 2. 可观测性
	metrics.InitMetrics()
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer("aquastore-api", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化Tracer失败: %v", err)
		}
		defer shutdown(context.Background())
	}

	// 3. 存储连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 依赖注入（手动组装；wire.go提供等价的Wire注入器）
	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	promotionRepo := mysql.NewPromotionRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)
	notificationRepo := mysql.NewNotificationRepository(db)
	txManager := mysql.NewTxManager(db)
	productCache := redis.NewProductCache(redisClient, cfg.Cache.ProductTTL)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
	gateway := vnpay.NewClient(cfg.VNPay)

	// 暂存存储：单实例memory，多实例redis（回调可能落到任意实例）
	var stagingStore order.Staging
	if cfg.Staging.Store == "redis" {
		stagingStore = redis.NewStagingStore(redisClient, cfg.Staging.TTL)
	} else {
		stagingStore = staging.NewMemoryStore(cfg.Staging.TTL)
	}

	// MQ发布者：broker不可用时降级为仅站内通知，不阻止服务启动
	var publisher appOrder.EventPublisher
	if cfg.MQ.URL != "" {
		pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Printf("MQ连接失败(降级为仅站内通知): %v", err)
		} else {
			publisher = pub
			defer pub.Close()
		}
	}

	// 应用层
	stockEngine := appOrder.NewStockEngine(productRepo, productCache)
	evaluator := promotion.NewEvaluator(promotionRepo)
	notifier := appOrder.NewNotifier(notificationRepo, userRepo, publisher)
	createOrder := appOrder.NewCreateOrderUseCase(
		cartRepo, stockEngine, evaluator, promotionRepo,
		orderRepo, paymentRepo, txManager, stagingStore, gateway, notifier,
	)
	paymentCallback := appOrder.NewPaymentCallbackUseCase(createOrder, stagingStore, gateway)
	cancelOrder := appOrder.NewCancelOrderUseCase(orderRepo, paymentRepo, txManager, stockEngine)
	orderQueries := appOrder.NewQueryUseCase(orderRepo)
	notificationUC := appNotification.NewUseCase(notificationRepo)

	// 接口层
	orderHandler := handler.NewOrderHandler(createOrder, cancelOrder, orderQueries)
	paymentHandler := handler.NewPaymentHandler(paymentCallback, cfg.VNPay.ResultURL)
	notificationHandler := handler.NewNotificationHandler(notificationUC)
	router := httpiface.NewRouter(orderHandler, paymentHandler, notificationHandler, jwtManager, sessionStore)

	// 5. HTTP服务
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	router.Setup(engine)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动: http://localhost%s\n", srv.Addr)
		fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", srv.Addr)
		fmt.Printf("   指标: http://localhost%s/metrics\n\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 6. 优雅退出：等在途请求（含下单提交序列）完成
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到退出信号，开始优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("关闭HTTP服务失败: %v", err)
	}
	log.Println("服务已退出")
}
