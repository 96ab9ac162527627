package routes

import (
	"projectdrive/controllers"
	"projectdrive/middleware"
	"projectdrive/remotedrive"
	"projectdrive/services"

	"github.com/gin-gonic/gin"
)

func ProjectRoutes(r *gin.RouterGroup, drive remotedrive.Client, templates *services.TemplateRegistry) {
	projectController := controllers.NewProjectController(drive, templates)

	projects := r.Group("/projects")
	{
		// Provisioning and scanning
		projects.POST("/:code/folder", projectController.ProvisionFolder)
		projects.POST("/:code/scan", middleware.ScanRateLimitMiddleware(), projectController.ScanProject)

		// Indexed file view
		projects.GET("/:code/files", projectController.GetProjectFiles)

		// Folder mappings
		projects.GET("/mappings", projectController.ListMappings)
		projects.GET("/:code/mapping", projectController.GetMapping)
		projects.DELETE("/:code/mapping", projectController.DeleteMapping)

		// Reconciliation
		projects.GET("/orphans", projectController.GetOrphanProjects)
		projects.POST("/reconcile", middleware.ReconcileRateLimitMiddleware(), projectController.Reconcile)
	}

	// Ad hoc scan of a drive folder that has no project mapping
	r.POST("/scan", middleware.ScanRateLimitMiddleware(), projectController.ScanFolder)
}
