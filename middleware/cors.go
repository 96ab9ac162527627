package middleware

import (
	"time"

	"projectdrive/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware configures CORS for the application
func CORSMiddleware() gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Length",
			"Content-Type",
			"Accept",
			"Accept-Encoding",
			"Accept-Language",
			"Connection",
			"Host",
			"Referer",
			"User-Agent",
			"X-Requested-With",
			"X-Request-ID",
			"X-Upload-Content-Type",
			"X-Upload-Content-Length",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"Content-Disposition",
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// AllowAllOrigins and AllowOrigins are mutually exclusive
	origins := config.AppConfig.CORSAllowedOrigins
	if gin.Mode() == gin.DebugMode && len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowWildcard = true
	} else {
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000", "http://localhost:8080"}
		}
		corsConfig.AllowOrigins = origins
		corsConfig.AllowWildcard = false
	}

	return cors.New(corsConfig)
}
