package services

import (
	"context"
	"testing"

	"projectdrive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvisionFixture(rootPath string) (*ProvisionService, *fakeDrive, *fakeMappingStore) {
	drive := newFakeDrive()
	mappings := newFakeMappingStore()
	service := NewProvisionService(drive, NewTemplateRegistry(), mappings, &fakeSettings{rootPath: rootPath})
	return service, drive, mappings
}

func TestProvisionProject(t *testing.T) {
	service, drive, mappings := newProvisionFixture("/Projects")
	drive.addFolder("root", "Projects")

	result, err := service.ProvisionProject("24ABC01", "short", "Ponte sul Po")
	require.NoError(t, err)

	assert.Equal(t, "24ABC01", result.ProjectCode)
	assert.Equal(t, "short", result.Template)
	assert.Equal(t, "24ABC01_Ponte_sul_Po", result.Folder.FolderName)
	assert.Equal(t, "/Projects/24ABC01_Ponte_sul_Po", result.Folder.FolderPath)
	assert.NotEmpty(t, result.Folder.FolderID)
	assert.Equal(t, []string{"01_Contract", "02_Correspondence", "03_Deliverables", "04_Invoices"}, result.Subfolders)
	assert.Empty(t, result.Failed)
	assert.False(t, result.Partial())

	folder := drive.item(result.Folder.FolderID)
	require.NotNil(t, folder)
	assert.Equal(t, "/Projects/24ABC01_Ponte_sul_Po", folder.Path)

	mapping, err := mappings.GetMapping("24ABC01")
	require.NoError(t, err)
	assert.Equal(t, result.Folder.FolderID, mapping.RemoteFolderID)
	assert.Equal(t, "/Projects/24ABC01_Ponte_sul_Po", mapping.FolderPath)
	assert.Equal(t, "24ABC01_Ponte_sul_Po", mapping.FolderName)
	assert.Equal(t, folder.WebURL, mapping.WebURL)
}

func TestProvisionProjectCreatesMissingRootPath(t *testing.T) {
	service, drive, _ := newProvisionFixture("/Clients/2026")

	result, err := service.ProvisionProject("26XYZ02", "short", "")
	require.NoError(t, err)
	assert.Equal(t, "/Clients/2026/26XYZ02", result.Folder.FolderPath)

	folder := drive.item(result.Folder.FolderID)
	require.NotNil(t, folder)
	assert.Equal(t, "/Clients/2026/26XYZ02", folder.Path)

	// Two root segments, the project folder and four subfolders.
	assert.Equal(t, 7, drive.callsTo("CreateFolder"))
}

func TestProvisionProjectAdoptsRootSegmentCreatedConcurrently(t *testing.T) {
	service, drive, _ := newProvisionFixture("/Projects")
	drive.addFolder("root", "Projects")

	// Both lookups miss, the create then collides with the existing folder
	// and the resolver falls back to looking it up again and adopting it.
	drive.failTimes("GetItemByPath", "/Projects",
		models.NewDomainError(models.KindNotFound, "no item at /Projects"), 2)

	result, err := service.ProvisionProject("24ABC01", "short", "")
	require.NoError(t, err)

	folder := drive.item(result.Folder.FolderID)
	require.NotNil(t, folder)
	assert.Equal(t, "/Projects/24ABC01", folder.Path)

	// The conflicted segment create, the project folder and four subfolders.
	assert.Equal(t, 6, drive.callsTo("CreateFolder"))
}

func TestProvisionProjectUnknownTemplate(t *testing.T) {
	service, drive, _ := newProvisionFixture("/Projects")

	_, err := service.ProvisionProject("24ABC01", "medium", "")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNotFound))
	assert.Empty(t, drive.calls, "template validation must happen before any remote call")
}

func TestProvisionProjectEmptyCode(t *testing.T) {
	service, _, _ := newProvisionFixture("/Projects")

	for _, code := range []string{"", "   ", "///"} {
		_, err := service.ProvisionProject(code, "short", "")
		require.Error(t, err, "code %q", code)
		assert.True(t, models.IsKind(err, models.KindMissingParameter))
		assert.Contains(t, err.Error(), "project code is required")
	}
}

func TestProvisionProjectDuplicateMapping(t *testing.T) {
	service, drive, mappings := newProvisionFixture("/Projects")
	mappings.mappings["24ABC01"] = &models.ProjectFolderMapping{
		ProjectCode:    "24ABC01",
		RemoteFolderID: "existing",
	}

	_, err := service.ProvisionProject("24ABC01", "short", "")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindDuplicateMapping))
	assert.Contains(t, err.Error(), "project 24ABC01 already has a folder mapping")
	assert.Empty(t, drive.calls, "mapped projects must be rejected before any remote call")
}

func TestProvisionProjectMappingLookupFailure(t *testing.T) {
	service, drive, mappings := newProvisionFixture("/Projects")
	mappings.getErr = models.NewDomainError(models.KindUnknown, "mapping store unavailable")

	_, err := service.ProvisionProject("24ABC01", "short", "")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindUnknown))
	assert.Empty(t, drive.calls)
}

func TestProvisionProjectReservedFolderName(t *testing.T) {
	service, drive, _ := newProvisionFixture("/Projects")

	_, err := service.ProvisionProject("CON", "short", "")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindInvalidName))
	assert.Empty(t, drive.calls)
}

func TestProvisionProjectRootFolderConflict(t *testing.T) {
	service, drive, mappings := newProvisionFixture("/Projects")
	projects := drive.addFolder("root", "Projects")
	drive.addFolder(projects.ID, "24ABC01_Ponte_sul_Po")

	_, err := service.ProvisionProject("24ABC01", "short", "Ponte sul Po")
	require.Error(t, err)
	assert.True(t, models.IsKind(err, models.KindNameConflict),
		"an existing project folder must surface as a conflict, not as silent success")
	assert.Empty(t, mappings.created)
}

func TestProvisionProjectPartialSubfolderFailure(t *testing.T) {
	service, drive, mappings := newProvisionFixture("/Projects")
	drive.addFolder("root", "Projects")
	drive.failOn("CreateFolder", "02_Correspondence",
		models.NewRemoteError(models.KindRateLimited, "activityLimitReached", "throttled"))

	result, err := service.ProvisionProject("24ABC01", "short", "")
	require.NoError(t, err, "subfolder failures must not abort provisioning")

	assert.True(t, result.Partial())
	assert.Equal(t, []string{"01_Contract", "03_Deliverables", "04_Invoices"}, result.Subfolders)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "02_Correspondence", result.Failed[0].Target)
	assert.Equal(t, models.KindRateLimited, result.Failed[0].Kind)
	assert.Equal(t, "throttled", result.Failed[0].Message)

	// The mapping is still recorded; the missing subfolder is repairable.
	assert.Equal(t, []string{"24ABC01"}, mappings.created)
}

func TestProvisionProjectMappingWriteFailure(t *testing.T) {
	service, drive, mappings := newProvisionFixture("/Projects")
	drive.addFolder("root", "Projects")
	mappings.createErr = models.NewDomainError(models.KindUnknown, "write timeout")

	_, err := service.ProvisionProject("24ABC01", "short", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "folder created but mapping could not be recorded")

	// The remote folder exists at this point and is picked up by the next
	// reconciliation run.
	_, lookupErr := drive.GetItemByPath(context.Background(), "/Projects/24ABC01")
	assert.NoError(t, lookupErr)
}
