package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz_review_backend/internal/config"
	"quiz_review_backend/internal/controller"
	"quiz_review_backend/internal/repository"
	"quiz_review_backend/internal/service"
	"quiz_review_backend/pkg/database"
	"quiz_review_backend/pkg/logger"
	"quiz_review_backend/pkg/monitoring"
	"quiz_review_backend/pkg/security"
	"quiz_review_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Policy *service.PolicyProvider

	tracerShutdown func(context.Context) error
}

type repositories struct {
	user       *repository.UserRepository
	contest    *repository.ContestRepository
	question   *repository.QuestionRepository
	submission *repository.SubmissionRepository
	analytics  *repository.AnalyticsRepository
	reviewLog  *repository.ReviewLogRepository
}

type services struct {
	auth       *service.AuthService
	submission *service.SubmissionService
	review     *service.ReviewService
	rescore    *service.RescoreService
	analytics  *service.AnalyticsService
}

type controllers struct {
	auth       *controller.AuthController
	submission *controller.SubmissionController
	review     *controller.ReviewController
	analytics  *controller.AnalyticsController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		contest:    repository.NewContestRepository(db),
		question:   repository.NewQuestionRepository(db),
		submission: repository.NewSubmissionRepository(db),
		analytics:  repository.NewAnalyticsRepository(db),
		reviewLog:  repository.NewReviewLogRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	a.Policy = service.NewPolicyProvider(cfg)

	s.auth = service.NewAuthService(repos.user, cfg)
	s.submission = service.NewSubmissionService(repos.submission, repos.question, repos.contest, a.Policy)
	s.review = service.NewReviewService(repos.submission, repos.analytics, repos.reviewLog, a.Policy, rdb)
	s.rescore = service.NewRescoreService(repos.submission, repos.reviewLog, a.Policy)
	s.analytics = service.NewAnalyticsService(repos.analytics, s.review)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		submission: controller.NewSubmissionController(s.submission, s.review),
		review:     controller.NewReviewController(s.review, s.rescore),
		analytics:  controller.NewAnalyticsController(s.analytics),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Review claims are advisory; run without them.
		logger.Log.Warn("Redis unavailable, review claims disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("quiz-review", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerShutdown = tp.Shutdown
	}

	app.registerRoutes(router, controllers, cfg)

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

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	logger.Log.Sync()

	log.Println("Server exiting")
}
