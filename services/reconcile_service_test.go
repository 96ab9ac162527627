package services

import (
	"testing"

	"projectdrive/models"
	"projectdrive/remotedrive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconcileFixture struct {
	service       *ReconcileService
	drive         *fakeDrive
	mappings      *fakeMappingStore
	projectsStore *fakeProjectStore
	provisioner   *fakeProvisioner
	rootFolder    *remotedrive.Item
}

func newReconcileFixture(t *testing.T, projects ...models.Project) *reconcileFixture {
	t.Helper()

	drive := newFakeDrive()
	rootFolder := drive.addFolder("root", "Projects")
	mappings := newFakeMappingStore()
	store := &fakeProjectStore{projects: projects}
	provisioner := newFakeProvisioner()

	return &reconcileFixture{
		service:       NewReconcileService(drive, mappings, store, provisioner, &fakeSettings{rootPath: "/Projects"}),
		drive:         drive,
		mappings:      mappings,
		projectsStore: store,
		provisioner:   provisioner,
		rootFolder:    rootFolder,
	}
}

func TestReconcileOrphansAdoptsExistingFolder(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{Code: "24ABC01", IsActive: true})
	folder := fx.drive.addFolder(fx.rootFolder.ID, "24ABC01")

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Mapped)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 0, report.Errors)

	require.Len(t, report.Outcomes, 1)
	outcome := report.Outcomes[0]
	assert.Equal(t, "24ABC01", outcome.ProjectCode)
	assert.Equal(t, models.ReconcileMappedExisting, outcome.Status)
	assert.Equal(t, folder.ID, outcome.FolderID)
	assert.Equal(t, "/Projects/24ABC01", outcome.FolderPath)

	mapping, err := fx.mappings.GetMapping("24ABC01")
	require.NoError(t, err)
	assert.Equal(t, folder.ID, mapping.RemoteFolderID)
	assert.Equal(t, "/Projects/24ABC01", mapping.FolderPath)
	assert.Equal(t, "24ABC01", mapping.FolderName)

	assert.Empty(t, fx.provisioner.calls, "an adopted folder must not be provisioned")
}

func TestReconcileOrphansProvisionsMissingFolder(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{
		Code:        "25DEF02",
		Description: "Dam refurbishment",
		Template:    "short",
		IsActive:    true,
	})

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Outcomes, 1)
	outcome := report.Outcomes[0]
	assert.Equal(t, models.ReconcileCreatedNew, outcome.Status)
	assert.Equal(t, "prov-25DEF02", outcome.FolderID)
	assert.Equal(t, "/Projects/25DEF02", outcome.FolderPath)
	assert.Empty(t, outcome.Message)

	require.Len(t, fx.provisioner.calls, 1)
	assert.Equal(t, provisionCall{"25DEF02", "short", "Dam refurbishment"}, fx.provisioner.calls[0])
}

func TestReconcileOrphansDefaultsTemplate(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{Code: "25DEF02", IsActive: true})

	_, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	require.Len(t, fx.provisioner.calls, 1)
	assert.Equal(t, defaultTemplateID, fx.provisioner.calls[0].templateID)
}

func TestReconcileOrphansSkipsMappedProjects(t *testing.T) {
	fx := newReconcileFixture(t,
		models.Project{Code: "24ABC01", IsActive: true},
		models.Project{Code: "25DEF02", IsActive: true},
	)
	fx.mappings.mappings["24ABC01"] = &models.ProjectFolderMapping{ProjectCode: "24ABC01"}

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "25DEF02", report.Outcomes[0].ProjectCode)
}

func TestReconcileOrphansSkipsInactiveProjects(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{Code: "24ABC01", IsActive: false})

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.Outcomes)
	assert.Empty(t, fx.drive.calls)
}

func TestReconcileOrphansConventionalPathNotAFolder(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{Code: "24ABC01", IsActive: true})
	fx.drive.addFile(fx.rootFolder.ID, "24ABC01", []byte("a file, not a folder"))

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Errors)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, models.ReconcileError, report.Outcomes[0].Status)
	assert.Contains(t, report.Outcomes[0].Message, "item at /Projects/24ABC01 is not a folder")
	assert.Empty(t, fx.mappings.created)
}

func TestReconcileOrphansProvisionFailure(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{Code: "25DEF02", IsActive: true})
	fx.provisioner.errs["25DEF02"] = models.NewRemoteError(models.KindQuotaExceeded, "quotaLimitReached", "drive is full")

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Errors)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, models.ReconcileError, report.Outcomes[0].Status)
	assert.Contains(t, report.Outcomes[0].Message, "drive is full")
}

func TestReconcileOrphansPartialProvision(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{Code: "25DEF02", Template: "short", IsActive: true})
	fx.provisioner.results["25DEF02"] = &models.ProvisionResult{
		ProjectCode: "25DEF02",
		Template:    "short",
		Folder:      models.ProvisionedFolder{FolderID: "f1", FolderPath: "/Projects/25DEF02"},
		Subfolders:  []string{"01_Contract", "03_Deliverables", "04_Invoices"},
		Failed: []models.FailureRecord{
			{Target: "02_Correspondence", Kind: models.KindRateLimited, Message: "throttled"},
		},
	}

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	// A partial provision still counts as created; the message carries the
	// subfolder shortfall.
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Errors)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, models.ReconcileCreatedNew, report.Outcomes[0].Status)
	assert.Equal(t, "1 of 4 subfolders failed", report.Outcomes[0].Message)
}

func TestReconcileOrphansAdoptMappingFailure(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{Code: "24ABC01", IsActive: true})
	fx.drive.addFolder(fx.rootFolder.ID, "24ABC01")
	fx.mappings.createErr = models.NewDomainError(models.KindUnknown, "write timeout")

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Errors)
	assert.Contains(t, report.Outcomes[0].Message, "write timeout")
}

func TestReconcileOrphansLookupFailure(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{Code: "24ABC01", IsActive: true})
	fx.drive.failOn("GetItemByPath", "/Projects/24ABC01",
		models.NewRemoteError(models.KindRateLimited, "activityLimitReached", "throttled"))

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	// Only a clean NotFound triggers provisioning; anything else is an
	// error outcome for that project.
	assert.Equal(t, 1, report.Errors)
	assert.Empty(t, fx.provisioner.calls)
}

func TestReconcileOrphansUnsanitizableCode(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{Code: "///", IsActive: true})

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Errors)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "///", report.Outcomes[0].ProjectCode)
	assert.Contains(t, report.Outcomes[0].Message, "project code is empty after sanitizing")
}

func TestReconcileOrphansFailureIsolation(t *testing.T) {
	fx := newReconcileFixture(t,
		models.Project{Code: "24ABC01", IsActive: true},
		models.Project{Code: "25DEF02", IsActive: true},
		models.Project{Code: "26GHI03", IsActive: true},
	)
	fx.drive.addFolder(fx.rootFolder.ID, "24ABC01")
	fx.provisioner.errs["25DEF02"] = models.NewDomainError(models.KindUnknown, "provider exploded")

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Mapped)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Errors)

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, models.ReconcileMappedExisting, report.Outcomes[0].Status)
	assert.Equal(t, models.ReconcileError, report.Outcomes[1].Status)
	assert.Equal(t, models.ReconcileCreatedNew, report.Outcomes[2].Status)
}

func TestReconcileOrphansNothingToDo(t *testing.T) {
	fx := newReconcileFixture(t)

	report, err := fx.service.ReconcileOrphans()
	require.NoError(t, err)

	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.Outcomes)
	assert.False(t, report.StartedAt.IsZero())
	assert.False(t, report.FinishedAt.IsZero())
}

func TestReconcileOrphansProjectStoreFailure(t *testing.T) {
	fx := newReconcileFixture(t)
	fx.projectsStore.err = models.NewDomainError(models.KindUnknown, "registry unavailable")

	_, err := fx.service.ReconcileOrphans()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry unavailable")
}

func TestReconcileOrphansOrphanLookupFailure(t *testing.T) {
	fx := newReconcileFixture(t, models.Project{Code: "24ABC01", IsActive: true})
	fx.mappings.orphanErr = models.NewDomainError(models.KindUnknown, "mapping store unavailable")

	_, err := fx.service.ReconcileOrphans()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping store unavailable")
}
