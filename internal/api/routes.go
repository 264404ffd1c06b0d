package api

import (
	"net/http"
	"time"

	"alcyxob/confidence-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Auth       service.AuthService
	Users      service.UserService
	Assessment service.AssessmentService
	Plans      service.PlanService
	Progress   service.ProgressService
	Reports    service.ReportService
}

// SetupRoutes registers every endpoint under /api. With authRequired set, all
// routes except health, questions, register and login need a bearer token.
func SetupRoutes(router *gin.Engine, svc Services, authRequired bool) {
	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users)
	assessmentHandler := NewAssessmentHandler(svc.Assessment)
	planHandler := NewPlanHandler(svc.Plans)
	progressHandler := NewProgressHandler(svc.Progress, svc.Reports)

	api := router.Group("/api")

	// --- Public ---
	api.GET("/health", Health)
	api.GET("/assessment/questions", assessmentHandler.GetQuestions)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(AuthMiddleware(svc.Auth, authRequired))
	{
		protected.GET("/users/:id", userHandler.GetUser)
		protected.PUT("/users/:id/profile", userHandler.UpdateProfile)

		protected.POST("/assessment/submit", assessmentHandler.Submit)

		plans := protected.Group("/plans")
		{
			plans.GET("/today", planHandler.GetToday)
			plans.POST("/generate", planHandler.Generate)
			plans.PATCH("/tasks/:taskId", planHandler.ToggleTask)
			plans.GET("/history", planHandler.History)
			plans.PATCH("/complete", planHandler.Complete)
			plans.PATCH("/cancel", planHandler.Cancel)
		}

		progress := protected.Group("/progress")
		{
			progress.GET("", progressHandler.List)
			progress.POST("/submit", progressHandler.Submit)
			progress.GET("/confidence", progressHandler.Confidence)
			progress.GET("/stats", progressHandler.Stats)
			progress.POST("/export", progressHandler.Export)
		}
	}
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"message":   "Confidence Coach API is running!",
	})
}
