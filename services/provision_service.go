package services

import (
	"context"
	"fmt"
	"time"

	"projectdrive/models"
	"projectdrive/remotedrive"
	"projectdrive/utils"

	"github.com/sirupsen/logrus"
)

// ProvisionService creates project folder trees on the remote drive from a
// template and records the resulting mapping.
type ProvisionService struct {
	drive     remotedrive.Client
	templates *TemplateRegistry
	mappings  MappingStore
	settings  RootConfigStore
}

// NewProvisionService creates a new provision service instance
func NewProvisionService(drive remotedrive.Client, templates *TemplateRegistry, mappings MappingStore, settings RootConfigStore) *ProvisionService {
	return &ProvisionService{
		drive:     drive,
		templates: templates,
		mappings:  mappings,
		settings:  settings,
	}
}

// ProvisionProject creates the folder for a project under the configured
// root, fills it with the template's subfolders and records the mapping.
//
// The root folder create is strict: an existing folder with the same name
// surfaces as NameConflict, never as silent success. Subfolder failures do
// not abort the operation; they are collected on the result and the caller
// decides how loudly to surface them.
func (ps *ProvisionService) ProvisionProject(projectCode, templateID, description string) (*models.ProvisionResult, error) {
	template, err := ps.templates.Get(templateID)
	if err != nil {
		return nil, err
	}

	code := utils.SanitizeProjectCode(projectCode)
	if code == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "project code is required")
	}

	// Mapped projects are rejected before any remote call; replacing a
	// folder is delete-then-create on the mapping.
	if _, err := ps.mappings.GetMapping(code); err == nil {
		return nil, models.NewDomainError(models.KindDuplicateMapping, fmt.Sprintf("project %s already has a folder mapping", code))
	} else if !models.IsKind(err, models.KindNotFound) {
		return nil, err
	}

	displayName := utils.BuildFolderDisplayName(code, description)
	if err := utils.ValidateItemName(displayName); err != nil {
		return nil, err
	}

	rootPath := ps.settings.RootFolderPath()
	folderPath := utils.JoinDrivePath(rootPath, displayName)
	if err := utils.ValidateItemPath(folderPath); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	root, err := ensureFolderPath(ctx, ps.drive, rootPath)
	if err != nil {
		return nil, err
	}

	folder, err := ps.drive.CreateFolder(ctx, root.ID, displayName)
	if err != nil {
		return nil, err
	}

	result := &models.ProvisionResult{
		ProjectCode: code,
		Template:    template.ID,
		Folder: models.ProvisionedFolder{
			FolderID:   folder.ID,
			FolderName: folder.Name,
			FolderPath: folderPath,
			WebURL:     folder.WebURL,
		},
		Subfolders: []string{},
	}

	for _, subfolder := range template.Subfolders {
		if err := utils.ValidateItemName(subfolder); err != nil {
			result.Failed = append(result.Failed, failureFromError(subfolder, err))
			continue
		}
		if _, err := ps.drive.CreateFolder(ctx, folder.ID, subfolder); err != nil {
			logrus.WithFields(logrus.Fields{
				"project":   code,
				"subfolder": subfolder,
			}).WithError(err).Warn("subfolder creation failed")
			result.Failed = append(result.Failed, failureFromError(subfolder, err))
			continue
		}
		result.Subfolders = append(result.Subfolders, subfolder)
	}

	mapping := &models.ProjectFolderMapping{
		ProjectCode:    code,
		RemoteFolderID: folder.ID,
		FolderPath:     folderPath,
		FolderName:     folder.Name,
		WebURL:         folder.WebURL,
	}
	if err := ps.mappings.CreateMapping(mapping); err != nil {
		// The folder exists remotely at this point; without the mapping the
		// project stays orphaned and the next reconciliation adopts it.
		return nil, fmt.Errorf("folder created but mapping could not be recorded: %v", err)
	}

	return result, nil
}
