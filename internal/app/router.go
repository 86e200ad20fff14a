package app

import (
	"quiz_review_backend/internal/config"
	"quiz_review_backend/internal/middleware"
	"quiz_review_backend/internal/model"
	"quiz_review_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// Submission intake is called by the contest platform at contest
		// close, before any reviewer account is involved.
		public.POST("/submissions", c.submission.Ingest)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.GET("/submissions/:id", c.submission.GetSubmission)

		teacher := authGroup.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Reviewer))
		{
			teacher.GET("/review-queue", c.review.ListQueue)
			teacher.GET("/review-queue/summary", c.review.QueueSummary)
			teacher.GET("/submissions/:id", c.review.GetForReview)
			teacher.POST("/submissions/:id/review", c.review.SubmitReview)
			teacher.POST("/submissions/:id/rescore", c.review.Rescore)
			teacher.GET("/submissions/:id/history", c.review.History)
			teacher.POST("/contests/:id/rescore", c.review.RescoreContest)
			teacher.GET("/analytics", c.analytics.GetAnalytics)
		}
	}
}
