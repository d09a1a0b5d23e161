package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam_engine_backend/internal/config"
	"exam_engine_backend/internal/controller"
	"exam_engine_backend/internal/repository"
	"exam_engine_backend/internal/service"
	"exam_engine_backend/pkg/configwatcher"
	"exam_engine_backend/pkg/database"
	"exam_engine_backend/pkg/logger"
	"exam_engine_backend/pkg/monitoring"
	"exam_engine_backend/pkg/security"
	"exam_engine_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	quiz    *repository.QuizRepository
	attempt *repository.AttemptRepository
}

type services struct {
	quiz      *service.QuizService
	attempt   *service.AttemptService
	analytics *service.AnalyticsService
}

type controllers struct {
	quiz      *controller.QuizController
	attempt   *controller.AttemptController
	grade     *controller.GradeController
	analytics *controller.AnalyticsController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		quiz:    repository.NewQuizRepository(db),
		attempt: repository.NewAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{
		quiz:      service.NewQuizService(repos.quiz, cfg.Grading.DefaultPassingScorePercent),
		attempt:   service.NewAttemptService(repos.quiz, repos.attempt, cfg.Grading.ExpiryGraceSeconds),
		analytics: service.NewAnalyticsService(repos.quiz, repos.attempt, rdb, cfg.Grading.AnalyticsCacheTTLSeconds),
	}
	// 交卷与批改后失效对应测验的统计缓存
	s.attempt.Analytics = s.analytics
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		quiz:      controller.NewQuizController(s.quiz),
		attempt:   controller.NewAttemptController(s.attempt),
		grade:     controller.NewGradeController(s.attempt),
		analytics: controller.NewAnalyticsController(s.analytics),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 每分钟清扫一次超时未交卷的答题
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if err := s.attempt.ExpireOverdueAttempts(); err != nil {
				logger.Log.Error("expire sweep error", zap.Error(err))
			}
		}
	}()
}

// watchConfig 热更新判分相关的运行时参数，服务端口等仍需重启生效
func (a *App) watchConfig(configPath string) {
	go configwatcher.WatchConfig(configPath, func(cfg *config.Config) {
		a.services.attempt.ExpiryGraceSeconds = cfg.Grading.ExpiryGraceSeconds
		a.services.analytics.CacheTTL = time.Duration(cfg.Grading.AnalyticsCacheTTLSeconds) * time.Second
		logger.Log.Info("config reloaded",
			zap.Int("expiryGraceSeconds", cfg.Grading.ExpiryGraceSeconds),
			zap.Int("analyticsCacheTTLSeconds", cfg.Grading.AnalyticsCacheTTLSeconds))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != "release"
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("exam-engine", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if !cfg.MigrateOnly {
		app.startBackgroundTasks(services)
		app.watchConfig("configs")
	}

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
