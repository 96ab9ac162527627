package routes

import (
	"projectdrive/middleware"
	"projectdrive/remotedrive"
	"projectdrive/services"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, drive remotedrive.Client, templates *services.TemplateRegistry) {
	// Global middleware
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(gin.Recovery())

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware())
	{
		ProjectRoutes(v1, drive, templates)
		FileRoutes(v1, drive)
		SettingsRoutes(v1, drive)
	}
}
