package controllers

import (
	"net/http"
	"strconv"

	"projectdrive/models"
	"projectdrive/remotedrive"
	"projectdrive/services"
	"projectdrive/utils"

	"github.com/gin-gonic/gin"
)

// FileController serves per-file operations against the remote drive:
// moves, renames, content and search.
type FileController struct {
	moveService *services.MoveService
	fileService *services.FileService
}

func NewFileController(drive remotedrive.Client) *FileController {
	fileIndex := services.NewFileIndexService()
	return &FileController{
		moveService: services.NewMoveService(drive, fileIndex),
		fileService: services.NewFileService(drive, fileIndex),
	}
}

// MoveFile moves and/or renames a single file
func (fc *FileController) MoveFile(c *gin.Context) {
	fileID := c.Param("id")

	var req models.MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}

	target := req.TargetFolderID
	if target == "" {
		target = req.TargetPath
	}

	result, err := fc.moveService.MoveOrRename(fileID, target, req.NewName)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	message := "File renamed successfully"
	if result.Moved {
		message = "File moved successfully"
	}
	utils.SuccessResponse(c, message, result)
}

// BulkMove runs a batch of move operations
func (fc *FileController) BulkMove(c *gin.Context) {
	var req models.BulkMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	result, err := fc.moveService.BulkMoveOrRename(req.Operations)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	if len(result.Failed) > 0 {
		utils.MultiStatusResponse(c, "Bulk move completed with failures", result)
		return
	}

	utils.SuccessResponse(c, "Bulk move completed successfully", result)
}

// GetDownloadURL returns a fresh download link, never the indexed one
func (fc *FileController) GetDownloadURL(c *gin.Context) {
	fileID := c.Param("id")

	url, err := fc.fileService.GetDownloadURL(fileID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Download URL retrieved successfully", gin.H{
		"file_id":      fileID,
		"download_url": url,
	})
}

// DownloadContent streams the file content through to the caller
func (fc *FileController) DownloadContent(c *gin.Context) {
	fileID := c.Param("id")

	reader, err := fc.fileService.DownloadContent(fileID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", reader, nil)
}

// UploadContent replaces the file content with the request body
func (fc *FileController) UploadContent(c *gin.Context) {
	fileID := c.Param("id")

	record, err := fc.fileService.UploadContent(fileID, c.Request.Body, c.Request.ContentLength)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "File content updated successfully", record)
}

// Search runs a remote drive search
func (fc *FileController) Search(c *gin.Context) {
	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	records, err := fc.fileService.Search(query, limit)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Search completed successfully", gin.H{
		"query":   query,
		"count":   len(records),
		"results": records,
	})
}
