package controllers

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"projectdrive/models"
	"projectdrive/remotedrive"
	"projectdrive/services"
	"projectdrive/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProjectController serves the project-scoped folder operations:
// provisioning, scanning, the file index view, mappings and
// reconciliation.
type ProjectController struct {
	provisionService *services.ProvisionService
	scanService      *services.ScanService
	reconcileService *services.ReconcileService
	mappingService   *services.MappingService
	projectService   *services.ProjectService
	fileIndexService *services.FileIndexService
}

func NewProjectController(drive remotedrive.Client, templates *services.TemplateRegistry) *ProjectController {
	mappings := services.NewMappingService()
	projects := services.NewProjectService()
	settings := services.NewSettingsService(drive)
	fileIndex := services.NewFileIndexService()
	provision := services.NewProvisionService(drive, templates, mappings, settings)

	return &ProjectController{
		provisionService: provision,
		scanService:      services.NewScanService(drive, fileIndex, mappings),
		reconcileService: services.NewReconcileService(drive, mappings, projects, provision, settings),
		mappingService:   mappings,
		projectService:   projects,
		fileIndexService: fileIndex,
	}
}

// ProvisionFolder creates the remote folder tree for a project
func (pc *ProjectController) ProvisionFolder(c *gin.Context) {
	code := c.Param("code")

	var req models.ProvisionFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	// The bookkeeping registry fills in the description when the request
	// leaves it out.
	description := req.Description
	if description == "" {
		if project, err := pc.projectService.GetProjectByCode(code); err == nil {
			description = project.Description
		}
	}

	result, err := pc.provisionService.ProvisionProject(code, req.Template, description)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	if result.Partial() {
		utils.MultiStatusResponse(c, "Project folder created, some subfolders failed", result)
		return
	}

	utils.CreatedResponse(c, "Project folder created successfully", result)
}

// ScanProject scans the project's mapped folder into the file index
func (pc *ProjectController) ScanProject(c *gin.Context) {
	code := c.Param("code")

	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	includeSubfolders := true
	if req.IncludeSubfolders != nil {
		includeSubfolders = *req.IncludeSubfolders
	}

	result, err := pc.scanService.ScanProject(code, services.ScanOptions{
		IncludeSubfolders: includeSubfolders,
		MaxDepth:          req.MaxDepth,
	})
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Scan completed successfully", result)
}

// GetProjectFiles returns the indexed files of a project
func (pc *ProjectController) GetProjectFiles(c *gin.Context) {
	code := utils.SanitizeProjectCode(c.Param("code"))

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, total, err := pc.fileIndexService.GetProjectFiles(code, page, limit)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to get project files")
		return
	}

	utils.PaginatedResponse(c, "Project files retrieved successfully", records, page, limit, int(total))
}

// GetMapping returns the folder mapping of a project
func (pc *ProjectController) GetMapping(c *gin.Context) {
	code := c.Param("code")

	mapping, err := pc.mappingService.GetMapping(code)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Mapping retrieved successfully", mapping)
}

// DeleteMapping removes the folder mapping of a project along with its
// index entries. The remote folder itself is left untouched.
func (pc *ProjectController) DeleteMapping(c *gin.Context) {
	code := c.Param("code")

	existed, err := pc.mappingService.DeleteMapping(code)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to delete mapping")
		return
	}
	if !existed {
		utils.NotFoundResponse(c, "No folder mapping for project "+code)
		return
	}

	removed, err := pc.fileIndexService.DeleteProjectRecords(utils.SanitizeProjectCode(code))
	if err != nil {
		logrus.WithField("project", code).WithError(err).Warn("index cleanup after mapping delete failed")
	}

	utils.SuccessResponse(c, "Mapping deleted successfully", gin.H{
		"project_code":    code,
		"removed_records": removed,
	})
}

// GetOrphanProjects lists active projects that have no folder mapping
func (pc *ProjectController) GetOrphanProjects(c *gin.Context) {
	projects, err := pc.projectService.GetActiveProjects()
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to get projects")
		return
	}

	orphans, err := pc.mappingService.FindOrphanProjects(projects)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to find orphan projects")
		return
	}

	utils.SuccessResponse(c, "Orphan projects retrieved successfully", gin.H{
		"count":    len(orphans),
		"projects": orphans,
	})
}

// ListMappings returns all project folder mappings
func (pc *ProjectController) ListMappings(c *gin.Context) {
	mappings, err := pc.mappingService.GetAllMappings()
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to get mappings")
		return
	}

	utils.SuccessResponse(c, "Mappings retrieved successfully", gin.H{
		"count":    len(mappings),
		"mappings": mappings,
	})
}

// ScanFolder scans an arbitrary drive folder into the file index
func (pc *ProjectController) ScanFolder(c *gin.Context) {
	var req models.ScanFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	includeSubfolders := true
	if req.IncludeSubfolders != nil {
		includeSubfolders = *req.IncludeSubfolders
	}

	result, err := pc.scanService.ScanFolder(req.FolderPath, services.ScanOptions{
		IncludeSubfolders: includeSubfolders,
		MaxDepth:          req.MaxDepth,
	})
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Scan completed successfully", result)
}

// Reconcile repairs every orphaned project and returns the full report
func (pc *ProjectController) Reconcile(c *gin.Context) {
	report, err := pc.reconcileService.ReconcileOrphans()
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	message := fmt.Sprintf("Reconciliation finished: %d mapped, %d created, %d errors",
		report.Mapped, report.Created, report.Errors)
	utils.SuccessResponse(c, message, report)
}
