package routes

import (
	"projectdrive/controllers"
	"projectdrive/remotedrive"

	"github.com/gin-gonic/gin"
)

func SettingsRoutes(r *gin.RouterGroup, drive remotedrive.Client) {
	settingsController := controllers.NewSettingsController(drive)

	settings := r.Group("/settings")
	{
		settings.GET("/root-folder", settingsController.GetRootFolder)
		settings.PUT("/root-folder", settingsController.UpdateRootFolder)
	}
}
