package controllers

import (
	"fmt"

	"projectdrive/models"
	"projectdrive/remotedrive"
	"projectdrive/services"
	"projectdrive/utils"

	"github.com/gin-gonic/gin"
)

// SettingsController serves the root folder configuration.
type SettingsController struct {
	settingsService *services.SettingsService
}

func NewSettingsController(drive remotedrive.Client) *SettingsController {
	return &SettingsController{
		settingsService: services.NewSettingsService(drive),
	}
}

// GetRootFolder returns the configured root folder
func (sc *SettingsController) GetRootFolder(c *gin.Context) {
	config, err := sc.settingsService.GetRootFolder()
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			utils.NotFoundResponse(c, fmt.Sprintf("Root folder is not configured; provisioning falls back to %s", services.DefaultRootFolderPath))
			return
		}
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Root folder configuration retrieved successfully", config)
}

// UpdateRootFolder validates and saves a new root folder path
func (sc *SettingsController) UpdateRootFolder(c *gin.Context) {
	var req models.RootFolderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	config, err := sc.settingsService.UpdateRootFolder(req.FolderPath)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Root folder configuration updated successfully", config)
}
