package main

import (
	"log"

	"github.com/blues/dps/internal/backend"
	"github.com/blues/dps/internal/config"
	"github.com/blues/dps/internal/gateway"
	"github.com/blues/dps/internal/logger"
	"github.com/blues/dps/internal/payment"
	"github.com/blues/dps/internal/render"
	"github.com/blues/dps/internal/repository"
	"github.com/blues/dps/internal/router"
	"github.com/blues/dps/internal/session"
	"github.com/blues/dps/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	level := logger.ParseLogLevel(cfg.Log.Level)
	var appLogger *logger.Logger
	var err error
	if cfg.Log.Output == "file" {
		appLogger, err = logger.NewWithRotation(level, cfg.Log.File)
	} else {
		appLogger, err = logger.New(level)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化认证网关与后端客户端
	sessionStore := session.NewStore(db)
	gw := gateway.New(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout(), sessionStore)
	backendClient := backend.NewClient(gw)

	// 初始化支付处理器客户端
	payments := payment.NewClient(cfg.Stripe.PublishableKey, cfg.Stripe.SecretKey)

	// 初始化区块渲染器
	renderer, err := render.NewRenderer(backendClient, 8)
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}
	defer renderer.Close()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, backendClient, renderer, payments, cfg)

	// 启动定时任务
	manager := task.Start(db, backendClient, cfg)
	defer manager.Stop()

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
