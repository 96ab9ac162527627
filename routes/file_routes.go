package routes

import (
	"projectdrive/controllers"
	"projectdrive/middleware"
	"projectdrive/remotedrive"

	"github.com/gin-gonic/gin"
)

func FileRoutes(r *gin.RouterGroup, drive remotedrive.Client) {
	fileController := controllers.NewFileController(drive)

	files := r.Group("/files")
	{
		// Move and rename
		files.POST("/:id/move", fileController.MoveFile)
		files.POST("/bulk/move", middleware.BulkRateLimitMiddleware(), fileController.BulkMove)

		// Content access
		files.GET("/:id/download-url", middleware.ContentRateLimitMiddleware(), fileController.GetDownloadURL)
		files.GET("/:id/content", middleware.ContentRateLimitMiddleware(), fileController.DownloadContent)
		files.PUT("/:id/content", middleware.ContentRateLimitMiddleware(), fileController.UploadContent)

		// Remote search
		files.GET("/search", fileController.Search)
	}
}
