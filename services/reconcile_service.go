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

// defaultTemplateID is applied to registry entries that never chose a
// template.
const defaultTemplateID = "long"

// Provisioner creates a project folder tree. ReconcileService consumes it
// for projects whose conventional folder does not exist yet.
type Provisioner interface {
	ProvisionProject(projectCode, templateID, description string) (*models.ProvisionResult, error)
}

// ReconcileService repairs projects that have no folder mapping, either
// by adopting an existing remote folder or by provisioning a fresh one.
type ReconcileService struct {
	drive       remotedrive.Client
	mappings    MappingStore
	projects    ProjectStore
	provisioner Provisioner
	settings    RootConfigStore
}

// NewReconcileService creates a new reconcile service instance
func NewReconcileService(drive remotedrive.Client, mappings MappingStore, projects ProjectStore, provisioner Provisioner, settings RootConfigStore) *ReconcileService {
	return &ReconcileService{
		drive:       drive,
		mappings:    mappings,
		projects:    projects,
		provisioner: provisioner,
		settings:    settings,
	}
}

// ReconcileOrphans walks every active project without a mapping, strictly
// one at a time. A folder already sitting at the conventional
// root/<code> path is adopted; a missing one is provisioned with the
// project's own template and description. A failure on one project never
// stops the next.
func (rs *ReconcileService) ReconcileOrphans() (*models.ReconcileReport, error) {
	report := &models.ReconcileReport{
		StartedAt: time.Now(),
		Outcomes:  []models.ReconcileOutcome{},
	}

	projects, err := rs.projects.GetActiveProjects()
	if err != nil {
		return nil, err
	}

	orphans, err := rs.mappings.FindOrphanProjects(projects)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"projects": len(projects),
		"orphans":  len(orphans),
	}).Info("starting reconciliation")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	rootPath := rs.settings.RootFolderPath()

	for _, project := range orphans {
		outcome := rs.reconcileProject(ctx, project, rootPath)
		report.Outcomes = append(report.Outcomes, outcome)

		switch outcome.Status {
		case models.ReconcileMappedExisting:
			report.Mapped++
		case models.ReconcileCreatedNew:
			report.Created++
		default:
			report.Errors++
			logrus.WithFields(logrus.Fields{
				"project": outcome.ProjectCode,
				"message": outcome.Message,
			}).Warn("project reconciliation failed")
		}
	}

	report.Total = len(orphans)
	report.FinishedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"total":   report.Total,
		"mapped":  report.Mapped,
		"created": report.Created,
		"errors":  report.Errors,
	}).Info("reconciliation finished")

	return report, nil
}

func (rs *ReconcileService) reconcileProject(ctx context.Context, project models.Project, rootPath string) models.ReconcileOutcome {
	code := utils.SanitizeProjectCode(project.Code)
	if code == "" {
		return models.ReconcileOutcome{
			ProjectCode: project.Code,
			Status:      models.ReconcileError,
			Message:     "project code is empty after sanitizing",
		}
	}

	candidatePath := utils.JoinDrivePath(rootPath, code)
	item, err := rs.drive.GetItemByPath(ctx, candidatePath)
	switch {
	case err == nil:
		return rs.adoptExisting(code, candidatePath, item)
	case models.IsKind(err, models.KindNotFound):
		return rs.provisionFresh(project, code)
	default:
		return models.ReconcileOutcome{
			ProjectCode: code,
			Status:      models.ReconcileError,
			Message:     err.Error(),
		}
	}
}

// adoptExisting points a new mapping at a folder that already exists at
// the conventional path.
func (rs *ReconcileService) adoptExisting(code, candidatePath string, item *remotedrive.Item) models.ReconcileOutcome {
	if !item.IsFolder {
		return models.ReconcileOutcome{
			ProjectCode: code,
			Status:      models.ReconcileError,
			Message:     fmt.Sprintf("item at %s is not a folder", candidatePath),
		}
	}

	mapping := &models.ProjectFolderMapping{
		ProjectCode:    code,
		RemoteFolderID: item.ID,
		FolderPath:     candidatePath,
		FolderName:     item.Name,
		WebURL:         item.WebURL,
	}
	if err := rs.mappings.CreateMapping(mapping); err != nil {
		return models.ReconcileOutcome{
			ProjectCode: code,
			Status:      models.ReconcileError,
			Message:     err.Error(),
		}
	}

	return models.ReconcileOutcome{
		ProjectCode: code,
		Status:      models.ReconcileMappedExisting,
		FolderID:    item.ID,
		FolderPath:  candidatePath,
	}
}

func (rs *ReconcileService) provisionFresh(project models.Project, code string) models.ReconcileOutcome {
	templateID := project.Template
	if templateID == "" {
		templateID = defaultTemplateID
	}

	result, err := rs.provisioner.ProvisionProject(code, templateID, project.Description)
	if err != nil {
		return models.ReconcileOutcome{
			ProjectCode: code,
			Status:      models.ReconcileError,
			Message:     err.Error(),
		}
	}

	outcome := models.ReconcileOutcome{
		ProjectCode: code,
		Status:      models.ReconcileCreatedNew,
		FolderID:    result.Folder.FolderID,
		FolderPath:  result.Folder.FolderPath,
	}
	if result.Partial() {
		outcome.Message = fmt.Sprintf("%d of %d subfolders failed",
			len(result.Failed), len(result.Failed)+len(result.Subfolders))
	}
	return outcome
}
