// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"osteo-upgrade-go/internal/config"
	"osteo-upgrade-go/internal/handler"
	"osteo-upgrade-go/internal/middleware"
	"osteo-upgrade-go/internal/model"
	"osteo-upgrade-go/internal/pipeline"
	"osteo-upgrade-go/internal/repository"
	"osteo-upgrade-go/internal/service"
	"osteo-upgrade-go/pkg/database"
	"osteo-upgrade-go/pkg/es"
	"osteo-upgrade-go/pkg/hash"
	"osteo-upgrade-go/pkg/kafka"
	"osteo-upgrade-go/pkg/log"
	"osteo-upgrade-go/pkg/storage"
	"osteo-upgrade-go/pkg/token"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储、检索与消息队列
	dsn := cfg.Database.MySQL.DSN
	if cfg.Database.Driver == "sqlite" {
		dsn = cfg.Database.SQLite.Path
	}
	database.InitDB(cfg.Database.Driver, dsn)
	if err := database.DB.AutoMigrate(
		&model.User{},
		&model.DecisionTree{},
		&model.OrthoTest{},
		&model.DiagnosticSession{},
		&model.Setting{},
	); err != nil {
		log.Fatal("数据库迁移失败", err)
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	treeRepo := repository.NewTreeRepository(database.DB)
	testRepo := repository.NewTestRepository(database.DB)
	diagnosticRepo := repository.NewDiagnosticRepository(database.DB)
	settingRepo := repository.NewSettingRepository(database.DB)
	traversalRepo := repository.NewTraversalRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	userService := service.NewUserService(userRepo, jwtManager)
	settingService := service.NewSettingService(settingRepo)
	treeService := service.NewTreeService(treeRepo, settingService)
	testService := service.NewTestService(testRepo, cfg.Elasticsearch)
	diagnosticService := service.NewDiagnosticService(diagnosticRepo, treeRepo, kafka.Publisher{})
	traversalService := service.NewTraversalService(treeRepo, traversalRepo, settingService, diagnosticService)
	statsService := service.NewStatsService(userRepo, diagnosticRepo, treeRepo, testRepo)

	// 6. 启动后台 Kafka 消费者（统计聚合管道）
	go kafka.StartConsumer(cfg.Kafka, pipeline.NewAggregator())

	// 7. 幂等种子数据：初始管理员账号与 freemium 参数
	seed(cfg, userRepo, settingService)

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.RateLimiter(cfg.RateLimit))

	// 9. 注册路由
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	treeHandler := handler.NewTreeHandler(treeService)
	testHandler := handler.NewTestHandler(testService)
	diagnosticHandler := handler.NewDiagnosticHandler(diagnosticService, cfg.MinIO.BucketName)
	traversalHandler := handler.NewTraversalHandler(traversalService)
	settingHandler := handler.NewSettingHandler(settingService)
	adminHandler := handler.NewAdminHandler(statsService)

	authed := middleware.AuthMiddleware(jwtManager, userService)
	adminOnly := middleware.AdminAuthMiddleware()

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refreshToken", authHandler.RefreshToken)
			auth.POST("/logout", authed, authHandler.Logout)
			auth.GET("/me", authed, authHandler.Me)
		}

		users := api.Group("/users", authed)
		{
			users.PUT("/:id/password", userHandler.ChangePassword)

			adminUsers := users.Group("", adminOnly)
			{
				adminUsers.GET("", userHandler.List)
				adminUsers.POST("", userHandler.Create)
				adminUsers.PUT("/:id", userHandler.Update)
				adminUsers.DELETE("/:id", userHandler.Delete)
			}
		}

		trees := api.Group("/trees", authed)
		{
			trees.GET("", treeHandler.List)
			trees.GET("/:id", treeHandler.Get)
			trees.POST("/:id/traversals", traversalHandler.Start)

			adminTrees := trees.Group("", adminOnly)
			{
				adminTrees.POST("", treeHandler.Create)
				adminTrees.PUT("/:id", treeHandler.Update)
				adminTrees.DELETE("/:id", treeHandler.Delete)
			}
		}

		traversals := api.Group("/traversals", authed)
		{
			traversals.GET("/:token", traversalHandler.Get)
			traversals.POST("/:token/answer", traversalHandler.Answer)
			traversals.POST("/:token/back", traversalHandler.Back)
		}

		tests := api.Group("/tests", authed)
		{
			tests.GET("", testHandler.List)
			tests.GET("/search", testHandler.Search)
			tests.GET("/:id", testHandler.Get)

			adminTests := tests.Group("", adminOnly)
			{
				adminTests.POST("", testHandler.Create)
				adminTests.PUT("/:id", testHandler.Update)
				adminTests.DELETE("/:id", testHandler.Delete)
			}
		}

		diagnostics := api.Group("/diagnostics", authed)
		{
			diagnostics.POST("", diagnosticHandler.Create)
			diagnostics.GET("", diagnosticHandler.List)
			diagnostics.GET("/:id/pdf", diagnosticHandler.DownloadPDF)
		}

		settings := api.Group("/settings", authed)
		{
			settings.GET("/:key", settingHandler.Get)
			settings.PUT("/:key", adminOnly, settingHandler.Set)
		}

		api.GET("/stats", authed, adminOnly, adminHandler.Stats)
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}

// seed 写入首次启动需要的种子数据，重复启动时跳过已存在的记录。
func seed(cfg config.Config, userRepo repository.UserRepository, settingService service.SettingService) {
	if cfg.Admin.Email != "" {
		if _, err := userRepo.FindByEmail(cfg.Admin.Email); errors.Is(err, gorm.ErrRecordNotFound) {
			hashed, herr := hash.HashPassword(cfg.Admin.Password)
			if herr != nil {
				log.Error("seed: 无法哈希管理员密码", herr)
				return
			}
			admin := &model.User{
				Email:    cfg.Admin.Email,
				Password: hashed,
				Name:     cfg.Admin.Name,
				Status:   model.StatusAdmin,
				IsActive: true,
			}
			if cerr := userRepo.Create(admin); cerr != nil {
				log.Error("seed: 创建管理员账号失败", cerr)
			} else {
				log.Infof("seed: 管理员账号 '%s' 已创建", cfg.Admin.Email)
			}
		}
	}

	if _, err := settingService.Get(model.SettingFreemiumTreeID); errors.Is(err, gorm.ErrRecordNotFound) {
		if serr := settingService.Set(model.SettingFreemiumTreeID, strconv.Itoa(1)); serr != nil {
			log.Error("seed: 初始化 freemium 参数失败", serr)
		} else {
			log.Infof("seed: 参数 '%s' 初始化为 1", model.SettingFreemiumTreeID)
		}
	}
}
